// Package failure applies onion-decoded routing failures to the channel
// graph: temporary or permanent edge penalties, and an optional fresher
// channel_update carried alongside the failure. Grounded directly on
// routing_failure/routing_failure_channel_out/mark_channel_unroutable in
// the original gossip daemon's routing.c (spec §4.6).
package failure

import (
	"github.com/lightningnetwork/lnd/clock"
	"github.com/petrkovac/lightning/discovery"
	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
)

// Code is an onion failure code bitmask, as carried in a decoded HTLC
// failure message. Only the three bits the routing core acts on are named
// here; the rest of the code (including which specific failure occurred)
// is irrelevant to penalty policy.
type Code uint16

const (
	// UpdateBit indicates the failure carries a fresher channel_update.
	UpdateBit Code = 0x1000

	// NodeBit indicates the failure should be treated as disqualifying
	// every channel incident to the erring node, not just one.
	NodeBit Code = 0x2000

	// PermBit indicates the failure is permanent: the channel should be
	// removed rather than merely suspended.
	PermBit Code = 0x4000
)

// UnroutablePenalty is how long a temporarily failed half-channel is kept
// out of pathfinding consideration (spec §6's UNROUTABLE_PENALTY).
const UnroutablePenalty = 20 // seconds

// Handler applies routing failures and explicit unroutable markings to a
// graph.Store. It is not safe for concurrent use.
type Handler struct {
	store     *graph.Store
	gossiper  *discovery.Gossiper
	localID   lnwire.NodeID
	clock     clock.Clock
}

// New constructs a Handler. gossiper is used to replay a fresher
// channel_update carried alongside an UPDATE-flagged failure through
// normal ingestion; localID suppresses the "no channel_update given" log
// for failures blamed on this node's own channels.
func New(store *graph.Store, gossiper *discovery.Gossiper,
	localID lnwire.NodeID, clk clock.Clock) *Handler {

	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Handler{store: store, gossiper: gossiper, localID: localID, clock: clk}
}

func (h *Handler) now() int64 {
	return h.clock.Now().Unix()
}

// RoutingFailure applies the penalty policy for a single onion-decoded
// failure (spec §4.6). update is the decoded channel_update carried
// alongside the failure, or nil if none was provided.
func (h *Handler) RoutingFailure(erringNode lnwire.NodeID,
	scid lnwire.ShortChannelID, failcode Code, update *lnwire.ChannelUpdate) {

	node := h.store.LookupNode(erringNode)
	if node == nil {
		// No node, so no channel, so any accompanying channel_update can
		// also be ignored.
		log.Warnf("Routing failure: erring node %x not in graph", erringNode)
		return
	}

	if failcode&NodeBit != 0 {
		// Snapshot: penalizing a channel may destroy it and mutate
		// node.Channels out from under a live range over it.
		chans := append([]*graph.Channel(nil), node.Channels...)
		for _, c := range chans {
			h.penalize(node, c, failcode)
		}
	} else {
		c := h.store.LookupChannel(scid)
		switch {
		case c == nil:
			log.Warnf("Routing failure: channel %d unknown", scid)
		case !c.HasEndpoint(node):
			log.Warnf("Routing failure: channel %d does not connect "+
				"to %x", scid, erringNode)
		default:
			h.penalize(node, c, failcode)
		}
	}

	if failcode&UpdateBit == 0 {
		if update != nil {
			log.Warnf("Routing failure: UPDATE bit clear but a " +
				"channel_update was given")
		}
		return
	}

	if update == nil {
		if erringNode == h.localID {
			return
		}
		log.Warnf("Routing failure: UPDATE bit set, no channel_update "+
			"given. failcode=0x%04x", uint16(failcode))
		return
	}

	// Applied after the penalty above, so a fresher legitimate update
	// re-enables the channel if the peer's peek at the network disagrees
	// with ours.
	h.gossiper.HandleChannelUpdate(update)
}

// penalize applies the per-channel penalty to the half-channel that leaves
// the erring node toward its peer.
func (h *Handler) penalize(node *graph.Node, c *graph.Channel, failcode Code) {
	idx, ok := c.DirectionOf(node)
	if !ok {
		return
	}

	if failcode&PermBit == 0 {
		c.Half[idx].UnroutableUntil = h.now() + UnroutablePenalty
		return
	}

	log.Debugf("Destroying channel %d: permanent routing failure from %x",
		c.SCID, node.ID)
	h.store.DestroyChannel(c)
}

// MarkChannelUnroutable suspends both directions of scid for
// UnroutablePenalty seconds, independent of any onion failure. It is its
// own exported entry point, not folded into RoutingFailure, matching the
// original mark_channel_unroutable being a distinct public call (spec §9).
func (h *Handler) MarkChannelUnroutable(scid lnwire.ShortChannelID) {
	c := h.store.LookupChannel(scid)
	if c == nil {
		log.Warnf("MarkChannelUnroutable: channel %d not in graph", scid)
		return
	}

	until := h.now() + UnroutablePenalty
	c.Half[0].UnroutableUntil = until
	c.Half[1].UnroutableUntil = until
}
