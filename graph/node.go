package graph

import (
	"fmt"

	"github.com/petrkovac/lightning/lnwire"
)

// noTimestamp marks a node that has never had an authenticated descriptor
// applied, matching the C original's `last_timestamp = -1` sentinel for
// nodes. Half-channels do not use it; they are seeded with a half-aged
// timestamp instead.
const noTimestamp int64 = -1

// Node is one vertex of the channel graph, keyed by its 33-byte compressed
// public key. It is created on demand by the first incident Channel and
// destroyed when its last incident Channel is removed — see spec §3.
type Node struct {
	ID lnwire.NodeID

	Alias *[32]byte
	Color *[3]byte

	Addresses []lnwire.Address

	// LastTimestamp is the timestamp of the last accepted
	// node_announcement, or noTimestamp if none has ever been accepted.
	LastTimestamp int64

	// Raw is the last accepted node_announcement payload, or nil.
	Raw []byte

	// BroadcastIndex is the slot handle returned by the broadcast
	// collaborator for Raw, kept so a later announcement can replace it.
	BroadcastIndex uint64

	// Channels is the unordered set of channels incident to this node.
	Channels []*Channel
}

func newNode(id lnwire.NodeID) *Node {
	return &Node{
		ID:            id,
		LastTimestamp: noTimestamp,
	}
}

// HasDescriptor reports whether a node_announcement has ever been accepted
// for this node.
func (n *Node) HasDescriptor() bool {
	return n.LastTimestamp != noTimestamp
}

// addChannel appends c to the node's incident list. Callers must not add
// the same channel twice.
func (n *Node) addChannel(c *Channel) {
	n.Channels = append(n.Channels, c)
}

// removeChannel removes the first occurrence of c from the node's incident
// list, returning true if it was found. It does not look for duplicates.
func (n *Node) removeChannel(c *Channel) bool {
	for i, cur := range n.Channels {
		if cur != c {
			continue
		}
		last := len(n.Channels) - 1
		n.Channels[i] = n.Channels[last]
		n.Channels[last] = nil
		n.Channels = n.Channels[:last]
		return true
	}
	return false
}

// invariantViolation is panicked when bookkeeping that the store itself
// maintains (the incident-channel lists) is found inconsistent. Per spec
// §4.1, this indicates an earlier invariant violation elsewhere, not a
// recoverable runtime condition.
type invariantViolation string

func (e invariantViolation) Error() string { return string(e) }

func failInvariant(format string, args ...interface{}) {
	log.Criticalf(format, args...)
	panic(invariantViolation(fmt.Sprintf(format, args...)))
}
