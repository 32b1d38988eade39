// Package graph holds the in-memory channel graph: nodes, channels, and the
// two independently-updated half-channels each channel carries. There is no
// persistence layer — spec.md's Non-goals rule it out, and the graph is
// expected to be rebuilt from gossip on every restart.
//
// The store is not safe for concurrent use. Per spec §5, the routing core
// runs as a single cooperative event loop; all mutation happens serially on
// that loop.
package graph

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/petrkovac/lightning/lnwire"
)

// Store owns every Node and Channel known to the local view of the public
// (plus operator-added local) channel graph, indexed by node id and by
// short-channel-id.
type Store struct {
	nodes    map[lnwire.NodeID]*Node
	channels map[lnwire.ShortChannelID]*Channel
}

// NewStore returns an empty graph store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[lnwire.NodeID]*Node),
		channels: make(map[lnwire.ShortChannelID]*Channel),
	}
}

// LookupNode returns the node with the given id, or nil if none exists.
func (s *Store) LookupNode(id lnwire.NodeID) *Node {
	return s.nodes[id]
}

// LookupChannel returns the channel with the given scid, or nil if none
// exists.
func (s *Store) LookupChannel(scid lnwire.ShortChannelID) *Channel {
	return s.channels[scid]
}

// getOrCreateNode returns the existing node for id, creating an empty one
// on demand.
func (s *Store) getOrCreateNode(id lnwire.NodeID) *Node {
	if n, ok := s.nodes[id]; ok {
		return n
	}
	n := newNode(id)
	s.nodes[id] = n
	return n
}

// CreateChannel creates a new Channel between id1 and id2, auto-creating
// either endpoint Node that doesn't yet exist, and seeds both half-channels
// with the "half-aged" timestamp `now - pruneTimeout/2` (spec §3/§6). It is
// the caller's responsibility to ensure scid isn't already present
// (graph.Store does not check); calling it twice for the same scid
// replaces the old Channel in the channel index but leaves it in the
// nodes' incident lists, so
// callers (the gossip handlers) check LookupChannel / the pending set
// first, per spec §4.3.
func (s *Store) CreateChannel(scid lnwire.ShortChannelID, id1,
	id2 lnwire.NodeID, now int64, pruneTimeout time.Duration) *Channel {

	n1 := s.getOrCreateNode(id1)
	n2 := s.getOrCreateNode(id2)

	// Canonical order: half[0] belongs to the lexicographically smaller
	// node id (spec §3).
	var first, second *Node
	if id1.Less(id2) {
		first, second = n1, n2
	} else {
		first, second = n2, n1
	}

	seed := now - int64(pruneTimeout/2/time.Second)

	c := &Channel{
		SCID:  scid,
		Nodes: [2]*Node{first, second},
		Half: [2]HalfChannel{
			newHalfChannel(0, seed),
			newHalfChannel(1, seed),
		},
	}

	first.addChannel(c)
	second.addChannel(c)

	s.channels[scid] = c

	return c
}

// CreateLocalChannel registers an operator-added channel that has not (or
// will not) be announced on the gossip network. It is otherwise identical
// to CreateChannel; callers that later receive a channel_announcement
// confirming the same scid on-chain are expected to adopt this object
// rather than create a second one (spec §4.3.2 step 4).
func (s *Store) CreateLocalChannel(scid lnwire.ShortChannelID, id1,
	id2 lnwire.NodeID, now int64, pruneTimeout time.Duration,
	capacity btcutil.Amount) *Channel {

	c := s.CreateChannel(scid, id1, id2, now, pruneTimeout)
	c.Capacity = capacity
	return c
}

// DestroyChannel removes c from the store, from both endpoint nodes'
// incident lists, and destroys either endpoint whose incident list becomes
// empty as a result (spec §4.1).
func (s *Store) DestroyChannel(c *Channel) {
	delete(s.channels, c.SCID)

	n0, n1 := c.Nodes[0], c.Nodes[1]

	if !n0.removeChannel(c) || !n1.removeChannel(c) {
		failInvariant("channel %d missing from an endpoint's "+
			"incident list", c.SCID)
	}

	if len(n0.Channels) == 0 {
		s.destroyNode(n0)
	}
	// n0 and n1 may be the same pointer only if a channel had identical
	// endpoints, which gossip validation never allows; guard anyway.
	if n1 != n0 && len(n1.Channels) == 0 {
		s.destroyNode(n1)
	}
}

func (s *Store) destroyNode(n *Node) {
	delete(s.nodes, n.ID)
}

// ForEachNode calls cb for every node currently in the store. The callback
// must not mutate the store's node/channel maps.
func (s *Store) ForEachNode(cb func(*Node) error) error {
	for _, n := range s.nodes {
		if err := cb(n); err != nil {
			return err
		}
	}
	return nil
}

// ForEachChannel calls cb for every channel currently in the store.
func (s *Store) ForEachChannel(cb func(*Channel) error) error {
	for _, c := range s.channels {
		if err := cb(c); err != nil {
			return err
		}
	}
	return nil
}

// NumNodes returns the number of nodes currently reachable from the store.
func (s *Store) NumNodes() int {
	return len(s.nodes)
}

// NumChannels returns the number of public-or-local channels in the store.
func (s *Store) NumChannels() int {
	return len(s.channels)
}
