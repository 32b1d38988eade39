// Package staging holds gossip that has arrived but can't yet be applied to
// the graph: channel announcements awaiting on-chain confirmation, and node
// descriptors that arrived before the channel announcement that would
// introduce their node. This is the "pending + deferred" two-tier design
// described in spec §4.2 / §9, grounded on the C original's
// pending_cannouncement / pending_node_announce structs
// (original_source/gossipd/routing.c).
package staging

import (
	"github.com/petrkovac/lightning/lnwire"
)

// PendingChannel is a validated but not-yet-confirmed channel_announcement.
type PendingChannel struct {
	SCID lnwire.ShortChannelID

	NodeID1, NodeID2       lnwire.NodeID
	BitcoinKey1, BitcoinKey2 lnwire.NodeID

	Raw []byte

	// deferredUpdates[d] holds at most one deferred channel_update for
	// direction d — the newest-timestamped one seen while pending.
	deferredUpdates       [2]*lnwire.ChannelUpdate
	deferredUpdateStamps  [2]uint32
}

// DeferredUpdate returns the deferred update staged for direction d, if
// any.
func (p *PendingChannel) DeferredUpdate(direction uint8) *lnwire.ChannelUpdate {
	return p.deferredUpdates[direction]
}

// stageUpdate keeps upd as the deferred update for its direction only if
// its timestamp is newer than whatever is already staged there — "only
// ever replace with newer updates" (spec §3, §4.2).
func (p *PendingChannel) stageUpdate(direction uint8, upd *lnwire.ChannelUpdate) {
	if upd.Timestamp <= p.deferredUpdateStamps[direction] {
		log.Debugf("Not deferring stale update for pending channel "+
			"%d(%d): ts=%d <= staged=%d", p.SCID, direction,
			upd.Timestamp, p.deferredUpdateStamps[direction])
		return
	}

	log.Debugf("Deferring update for pending channel %d(%d)", p.SCID,
		direction)

	p.deferredUpdates[direction] = upd
	p.deferredUpdateStamps[direction] = upd.Timestamp
}

// PendingNodeSlot marks that some channel announcement currently pending
// confirmation references this node id, and optionally holds the newest
// deferred node_announcement seen for it while it waits.
type PendingNodeSlot struct {
	NodeID lnwire.NodeID

	Descriptor *lnwire.NodeAnnouncement
	Timestamp  uint32

	// refs counts how many pending channel announcements reference this
	// node id, so the slot is only dropped once none remain.
	refs int
}

// Stage holds both pending collections. It is not safe for concurrent use.
type Stage struct {
	channels map[lnwire.ShortChannelID]*PendingChannel
	nodes    map[lnwire.NodeID]*PendingNodeSlot
}

// NewStage returns an empty staging area.
func NewStage() *Stage {
	return &Stage{
		channels: make(map[lnwire.ShortChannelID]*PendingChannel),
		nodes:    make(map[lnwire.NodeID]*PendingNodeSlot),
	}
}

// LookupChannel returns the pending entry for scid, or nil.
func (s *Stage) LookupChannel(scid lnwire.ShortChannelID) *PendingChannel {
	return s.channels[scid]
}

// LookupNode returns the pending node slot for id, or nil.
func (s *Stage) LookupNode(id lnwire.NodeID) *PendingNodeSlot {
	return s.nodes[id]
}

// AddChannel inserts a new pending channel announcement and registers both
// of its endpoints in the pending-node map, creating empty slots as needed.
// It returns false without effect if scid is already pending (callers are
// expected to also have checked the public channel index; spec §4.2).
func (s *Stage) AddChannel(p *PendingChannel) bool {
	if _, exists := s.channels[p.SCID]; exists {
		return false
	}

	s.channels[p.SCID] = p
	s.refNode(p.NodeID1)
	s.refNode(p.NodeID2)

	return true
}

func (s *Stage) refNode(id lnwire.NodeID) {
	slot, ok := s.nodes[id]
	if !ok {
		slot = &PendingNodeSlot{NodeID: id}
		s.nodes[id] = slot
	}
	slot.refs++
}

func (s *Stage) unrefNode(id lnwire.NodeID) {
	slot, ok := s.nodes[id]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs <= 0 {
		delete(s.nodes, id)
	}
}

// StageUpdate defers upd for scid/direction if it is pending, returning
// false if there is no pending entry for scid (the caller falls back to
// discarding the update entirely).
func (s *Stage) StageUpdate(scid lnwire.ShortChannelID, direction uint8,
	upd *lnwire.ChannelUpdate) bool {

	p, ok := s.channels[scid]
	if !ok {
		return false
	}
	p.stageUpdate(direction, upd)
	return true
}

// StageNodeAnnouncement defers ann in the pending slot for its node id if
// one exists and ann is newer than what's already staged there, returning
// false if no slot exists at all.
func (s *Stage) StageNodeAnnouncement(ann *lnwire.NodeAnnouncement) bool {
	slot, ok := s.nodes[ann.NodeID]
	if !ok {
		return false
	}
	if slot.Descriptor != nil && slot.Timestamp >= ann.Timestamp {
		return true
	}
	slot.Descriptor = ann
	slot.Timestamp = ann.Timestamp
	return true
}

// Resolve removes the pending channel entry for scid (successful
// confirmation or explicit drop) and unrefs its two endpoints' pending-node
// slots. If onNodeDescriptor is non-nil, it is invoked with any deferred
// node_announcement staged for either endpoint before that slot is
// discarded, letting the caller apply it through normal ingestion — spec
// §4.2's "Its referenced pending-node slots are processed at that moment".
func (s *Stage) Resolve(scid lnwire.ShortChannelID,
	onNodeDescriptor func(*lnwire.NodeAnnouncement)) {

	p, ok := s.channels[scid]
	if !ok {
		return
	}
	delete(s.channels, scid)

	for _, id := range [2]lnwire.NodeID{p.NodeID1, p.NodeID2} {
		if slot, ok := s.nodes[id]; ok && slot.Descriptor != nil &&
			onNodeDescriptor != nil {

			onNodeDescriptor(slot.Descriptor)
		}
		s.unrefNode(id)
	}
}
