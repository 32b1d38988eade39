package graph

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/petrkovac/lightning/lnwire"
)

// HalfChannel is the per-direction policy and liveness of one side of a
// Channel. Channel always holds exactly two, indexed by direction bit.
type HalfChannel struct {
	// Direction must always equal this half's index within the parent
	// Channel's Half array (spec invariant I2).
	Direction uint8

	Active bool

	// UnroutableUntil is a monotonic wall-clock second value before which
	// the pathfinder must skip this edge.
	UnroutableUntil int64

	BaseFee          uint32
	ProportionalFee  uint32
	TimeLockDelta    uint32
	HTLCMinimumMSat  uint64

	// LastTimestamp is the timestamp of the last accepted update for
	// this direction. Initialized to now - prune_timeout/2 so an
	// unseen direction is "half-aged" (spec §3).
	LastTimestamp int64

	Raw            []byte
	BroadcastIndex uint64
}

// IsRoutable reports whether this half-channel can currently be used by the
// pathfinder: active and not under a temporary penalty.
func (h *HalfChannel) IsRoutable(now int64) bool {
	return h.Active && h.UnroutableUntil < now
}

func newHalfChannel(direction uint8, seedTimestamp int64) HalfChannel {
	return HalfChannel{
		Direction:     direction,
		LastTimestamp: seedTimestamp,
	}
}

// Channel is one bidirectional edge of the graph, identified by its
// short-channel-id. Nodes[0]/Half[0] is always the endpoint with the
// lexicographically smaller serialized public key (spec §3, "Canonical
// endpoint order").
type Channel struct {
	SCID lnwire.ShortChannelID

	Nodes [2]*Node

	Capacity btcutil.Amount

	// Public is true once the channel's funding output has been
	// confirmed on-chain; false for operator-added local channels that
	// haven't (or won't) be publicly announced.
	Public bool

	Raw            []byte
	BroadcastIndex uint64

	Half [2]HalfChannel
}

// DirectionOf returns the index of the half-channel representing the
// direction *away from* node n along this channel, and whether n is in
// fact an endpoint of c.
func (c *Channel) DirectionOf(n *Node) (uint8, bool) {
	switch {
	case c.Nodes[0] == n:
		return 0, true
	case c.Nodes[1] == n:
		return 1, true
	default:
		return 0, false
	}
}

// DirectionInto returns the index of the half-channel governing payments
// flowing into node n along this channel — that is, the policy of the
// endpoint on the *other* side, who is the one charging the fee. The
// pathfinder relaxes edges using this half, since it searches backward
// from the destination.
func (c *Channel) DirectionInto(n *Node) (uint8, bool) {
	switch {
	case c.Nodes[0] == n:
		return 1, true
	case c.Nodes[1] == n:
		return 0, true
	default:
		return 0, false
	}
}

// OtherEndpoint returns the endpoint of c that is not n.
func (c *Channel) OtherEndpoint(n *Node) *Node {
	if c.Nodes[0] == n {
		return c.Nodes[1]
	}
	return c.Nodes[0]
}

// HasEndpoint reports whether n is one of c's two endpoints.
func (c *Channel) HasEndpoint(n *Node) bool {
	return c.Nodes[0] == n || c.Nodes[1] == n
}
