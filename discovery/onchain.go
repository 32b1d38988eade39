package discovery

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/xcrypto"
)

// ConfirmFunding delivers the on-chain collaborator's answer for a pending
// channel_announcement (spec §4.3.2). outScript is the funding output's
// scriptPubKey, or empty if the output is spent or unknown.
//
// It returns isLocal=true iff either endpoint of the now-public channel is
// this node's own id; err is one of the sentinels in errors.go if scid
// could not be adopted, in which case the pending entry is dropped as a
// side effect regardless.
func (g *Gossiper) ConfirmFunding(scid lnwire.ShortChannelID,
	capacity btcutil.Amount, outScript []byte) (isLocal bool, err error) {

	pending := g.stage.LookupChannel(scid)
	if pending == nil {
		return false, ErrNotPending
	}

	if len(outScript) == 0 {
		log.Debugf("Dropping pending channel %d: funding output spent "+
			"or unknown", scid)
		g.stage.Resolve(scid, nil)
		return false, ErrFundingSpent
	}

	expected, scriptErr := xcrypto.ExpectedFundingScript(pending.BitcoinKey1,
		pending.BitcoinKey2)
	if scriptErr != nil || !bytes.Equal(expected, outScript) {
		log.Warnf("Dropping pending channel %d: funding script mismatch",
			scid)
		g.stage.Resolve(scid, nil)
		return false, ErrFundingScriptMismatch
	}

	channel := g.store.LookupChannel(scid)
	if channel == nil {
		channel = g.store.CreateChannel(scid, pending.NodeID1,
			pending.NodeID2, g.now(), g.cfg.PruneTimeout)
	}
	channel.Public = true
	channel.Capacity = capacity
	channel.Raw = pending.Raw

	replaced := g.cfg.Broadcaster.ReplaceBroadcast(&channel.BroadcastIndex,
		MsgChannelAnnouncement, SCIDRoutingKey(scid), pending.Raw)
	if replaced {
		log.Criticalf("Broadcast collaborator reports channel_announcement "+
			"%d replaced an existing slot on first publish", scid)
		panic("discovery: broadcast replaced on first channel_announcement publish")
	}

	log.Infof("Channel %d confirmed on-chain, capacity=%v", scid, capacity)

	for direction := uint8(0); direction < 2; direction++ {
		if upd := pending.DeferredUpdate(direction); upd != nil {
			g.applyChannelUpdate(channel, direction, upd)
		}
	}

	g.stage.Resolve(scid, func(ann *lnwire.NodeAnnouncement) {
		g.HandleNodeAnnouncement(ann)
	})

	local := channel.Nodes[0].ID == g.cfg.LocalID ||
		channel.Nodes[1].ID == g.cfg.LocalID

	return local, nil
}
