package discovery

import (
	"context"

	"github.com/lightningnetwork/lnd/queue"
	"github.com/petrkovac/lightning/lnwire"
)

// defaultInboxCapacity bounds how much gossip can queue up behind the
// single-threaded core before producers start blocking or getting dropped.
const defaultInboxCapacity = 1000

// Message is a single decoded gossip item destined for the core's one
// event-loop thread (spec §5). Exactly one of the three fields is set.
type Message struct {
	ChannelAnnouncement *lnwire.ChannelAnnouncement
	ChannelUpdate       *lnwire.ChannelUpdate
	NodeAnnouncement    *lnwire.NodeAnnouncement
}

// Inbox serializes concurrently-arriving gossip into the single queue the
// core's event loop drains, grounded on lnd/queue's BackpressureQueue: many
// peer-connection goroutines can Enqueue concurrently, while Run dispatches
// one Message at a time on the calling goroutine, matching spec §5's "all
// handlers execute serially, with no internal locking" model.
type Inbox struct {
	q *queue.BackpressureQueue[Message]
}

// NewInbox returns an Inbox with room for capacity queued messages; once
// full, new messages are dropped rather than applying backpressure to
// every peer connection over a single slow core.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	drop := func(queueLen int, _ Message) bool {
		return queueLen >= capacity
	}
	return &Inbox{q: queue.NewBackpressureQueue[Message](capacity, drop)}
}

// Enqueue submits msg for processing. It returns queue.ErrQueueFullAndDropped
// if the inbox is saturated and the message was dropped rather than queued.
func (ib *Inbox) Enqueue(ctx context.Context, msg Message) error {
	return ib.q.Enqueue(ctx, msg)
}

// Run drains the inbox on the calling goroutine until ctx is done,
// dispatching each Message to the matching Gossiper handler. The caller is
// expected to run this as the routing core's single event-loop goroutine.
func (ib *Inbox) Run(ctx context.Context, g *Gossiper) error {
	for {
		result := ib.q.Dequeue(ctx)
		msg, err := result.Unpack()
		if err != nil {
			return err
		}

		switch {
		case msg.ChannelAnnouncement != nil:
			g.HandleChannelAnnouncement(msg.ChannelAnnouncement)
		case msg.ChannelUpdate != nil:
			g.HandleChannelUpdate(msg.ChannelUpdate)
		case msg.NodeAnnouncement != nil:
			g.HandleNodeAnnouncement(msg.NodeAnnouncement)
		}
	}
}
