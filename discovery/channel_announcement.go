package discovery

import (
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/staging"
)

// HandleChannelAnnouncement validates and stages ann, per spec §4.3.1.
// On success it returns the scid and true; the caller is expected to ask
// the on-chain collaborator to confirm the funding output and deliver the
// result back through ConfirmFunding. Rejection is always silent: ok is
// false and the gossiper's state is unchanged.
func (g *Gossiper) HandleChannelAnnouncement(
	ann *lnwire.ChannelAnnouncement) (scid lnwire.ShortChannelID, ok bool) {

	if c := g.store.LookupChannel(ann.ShortChannelID); c != nil && c.Public {
		log.Debugf("Ignoring channel_announcement for already-public "+
			"channel %d", ann.ShortChannelID)
		return 0, false
	}
	if g.stage.LookupChannel(ann.ShortChannelID) != nil {
		log.Debugf("Ignoring channel_announcement for already-pending "+
			"channel %d", ann.ShortChannelID)
		return 0, false
	}

	if ann.Features.HasUnknownRequiredFeature() {
		log.Debugf("Rejecting channel_announcement %d: unknown "+
			"required feature bit", ann.ShortChannelID)
		return 0, false
	}

	if ann.ChainHash != g.cfg.ChainHash {
		log.Debugf("Rejecting channel_announcement %d: wrong chain %v",
			ann.ShortChannelID, ann.ChainHash)
		return 0, false
	}

	if !g.verifyAnnouncementSigs(ann) {
		log.Warnf("Rejecting channel_announcement %d: signature "+
			"verification failed", ann.ShortChannelID)
		return 0, false
	}

	pending := &staging.PendingChannel{
		SCID:        ann.ShortChannelID,
		NodeID1:     ann.NodeID1,
		NodeID2:     ann.NodeID2,
		BitcoinKey1: ann.BitcoinKey1,
		BitcoinKey2: ann.BitcoinKey2,
		Raw:         ann.Raw,
	}
	g.stage.AddChannel(pending)

	log.Debugf("Staged pending channel_announcement for %d", ann.ShortChannelID)

	return ann.ShortChannelID, true
}

// verifyAnnouncementSigs checks all four signatures against the payload
// past the fixed 258-byte signature prefix.
func (g *Gossiper) verifyAnnouncementSigs(ann *lnwire.ChannelAnnouncement) bool {
	payload := ann.SignedPayload()
	if payload == nil {
		return false
	}
	digest := lnwire.DoubleSHA256(payload)

	nodeKey1, err := ann.NodeID1.PubKey()
	if err != nil {
		return false
	}
	nodeKey2, err := ann.NodeID2.PubKey()
	if err != nil {
		return false
	}
	fundingKey1, err := ann.BitcoinKey1.PubKey()
	if err != nil {
		return false
	}
	fundingKey2, err := ann.BitcoinKey2.PubKey()
	if err != nil {
		return false
	}

	return ann.NodeSig1.Verify(digest[:], nodeKey1) &&
		ann.NodeSig2.Verify(digest[:], nodeKey2) &&
		ann.BitcoinSig1.Verify(digest[:], fundingKey1) &&
		ann.BitcoinSig2.Verify(digest[:], fundingKey2)
}
