package discovery

import (
	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
)

// maxProportionalFee is 2^24 (spec §6's MAX_PROPORTIONAL_FEE): the routing
// algebra assumes a bounded ppm, so a half advertising at or above this is
// forced inactive rather than rejected outright.
const maxProportionalFee = 1 << 24

// HandleChannelUpdate validates and applies upd, or defers it if the
// channel it targets is still pending confirmation (spec §4.3.3).
func (g *Gossiper) HandleChannelUpdate(upd *lnwire.ChannelUpdate) {
	direction := upd.ChannelFlags.Direction()

	if upd.ChainHash != g.cfg.ChainHash {
		log.Debugf("Discarding channel_update for %d: wrong chain",
			upd.ShortChannelID)
		return
	}

	channel := g.store.LookupChannel(upd.ShortChannelID)
	if channel == nil || !channel.Public {
		if g.stage.StageUpdate(upd.ShortChannelID, direction, upd) {
			return
		}
		log.Debugf("Discarding channel_update for unknown channel %d",
			upd.ShortChannelID)
		return
	}

	g.applyChannelUpdate(channel, direction, upd)
}

// applyChannelUpdate runs the staleness check, signature verification, and
// field application shared by direct ingestion and deferred-update replay
// during on-chain confirmation.
func (g *Gossiper) applyChannelUpdate(channel *graph.Channel, direction uint8,
	upd *lnwire.ChannelUpdate) {

	half := &channel.Half[direction]

	if int64(upd.Timestamp) <= half.LastTimestamp {
		log.Debugf("Discarding stale channel_update for %d(%d)",
			channel.SCID, direction)
		return
	}

	signer := channel.Nodes[direction]
	pubKey, err := signer.ID.PubKey()
	if err != nil {
		log.Warnf("Discarding channel_update for %d(%d): bad signer key",
			channel.SCID, direction)
		return
	}

	payload := upd.SignedPayload()
	if payload == nil {
		return
	}
	digest := lnwire.DoubleSHA256(payload)
	if !upd.Signature.Verify(digest[:], pubKey) {
		log.Warnf("Discarding channel_update for %d(%d): bad signature",
			channel.SCID, direction)
		return
	}

	half.BaseFee = upd.FeeBaseMSat
	half.ProportionalFee = upd.FeeProportionalMillionths
	half.TimeLockDelta = uint32(upd.TimeLockDelta)
	half.HTLCMinimumMSat = upd.HTLCMinimumMSat
	half.Active = !upd.ChannelFlags.IsDisabled()
	half.UnroutableUntil = 0
	half.LastTimestamp = int64(upd.Timestamp)
	half.Raw = upd.Raw

	if half.ProportionalFee >= maxProportionalFee {
		log.Debugf("Forcing channel %d(%d) inactive: proportional fee "+
			"%d exceeds the bound", channel.SCID, direction,
			half.ProportionalFee)
		half.Active = false
	}

	g.cfg.Broadcaster.ReplaceBroadcast(&half.BroadcastIndex, MsgChannelUpdate,
		ChanUpdateRoutingKey(channel.SCID, direction), upd.Raw)
}
