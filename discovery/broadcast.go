package discovery

import "github.com/petrkovac/lightning/lnwire"

// MessageType tags a broadcast slot with the gossip message kind it holds,
// mirroring the wire message type field.
type MessageType uint16

const (
	MsgChannelAnnouncement MessageType = 256
	MsgNodeAnnouncement    MessageType = 257
	MsgChannelUpdate       MessageType = 258
)

// Broadcaster is the external fan-out queue collaborator (spec §6): it
// replaces or indexes an outbound gossip message keyed by a routing tag, and
// reports whether doing so replaced a previously broadcast message for the
// same slot. routingKey is the scid for channel announcements, (scid,
// direction) for updates, and the node id for node descriptors.
//
// The core retains the returned/updated slot index in the owning entity
// (Node.BroadcastIndex, Channel.BroadcastIndex, HalfChannel.BroadcastIndex)
// so a later replacement reuses the same slot.
type Broadcaster interface {
	ReplaceBroadcast(slot *uint64, msgType MessageType, routingKey []byte,
		payload []byte) (replaced bool)
}

// ChanUpdateRoutingKey packs scid and direction into the routing key shape
// the broadcast collaborator expects for channel_update messages.
func ChanUpdateRoutingKey(scid lnwire.ShortChannelID, direction uint8) []byte {
	key := make([]byte, 10)
	putUint64(key, uint64(scid))
	key[8] = 0
	key[9] = direction
	return key
}

// SCIDRoutingKey returns the routing key for a channel_announcement.
func SCIDRoutingKey(scid lnwire.ShortChannelID) []byte {
	key := make([]byte, 8)
	putUint64(key, uint64(scid))
	return key
}

// NodeRoutingKey returns the routing key for a node_announcement.
func NodeRoutingKey(id lnwire.NodeID) []byte {
	key := make([]byte, len(id))
	copy(key, id[:])
	return key
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
