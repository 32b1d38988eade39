package pathfind

import (
	"errors"

	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
)

// ErrRouteNotSourced is returned by AssembleRoute if the supplied channel
// list doesn't actually begin at source; it should be unreachable for a
// route produced by FindRoute.
var ErrRouteNotSourced = errors.New("pathfind: route does not begin at source")

// Hop is one forwarding instruction along an assembled route.
type Hop struct {
	Channel *graph.Channel

	// NextNodeID is the node this hop's channel forwards into.
	NextNodeID lnwire.NodeID

	// AmountMsat is the amount this hop forwards onward over Channel,
	// i.e. what the next node receives before it deducts its own
	// forwarding fee.
	AmountMsat uint64

	// CLTVExpiry is the cumulative time-lock delta accumulated from
	// finalCLTVDelta back to this hop; the caller adds the current
	// block height to turn it into an absolute expiry if one is needed.
	CLTVExpiry uint32
}

// AssembleRoute converts the ordered channel list FindRoute returns into
// per-hop forwarding instructions (spec §4.5). source and destination are
// required because channels alone don't record which endpoint sends first
// or receives last. deliverMsat is the amount the destination should
// actually receive; finalCLTVDelta is the minimum time-lock the
// destination requires.
func AssembleRoute(route []*graph.Channel, source, destination lnwire.NodeID,
	deliverMsat uint64, finalCLTVDelta uint32) ([]Hop, error) {

	hops := make([]Hop, len(route))

	totalAmount := deliverMsat
	totalDelay := finalCLTVDelta

	n, err := nodeByID(route, destination)
	if err != nil {
		return nil, err
	}

	for i := len(route) - 1; i >= 0; i-- {
		c := route[i]
		idx, ok := c.DirectionInto(n)
		if !ok {
			return nil, ErrRouteNotSourced
		}
		half := &c.Half[idx]

		hops[i] = Hop{
			Channel:    c,
			NextNodeID: n.ID,
			AmountMsat: totalAmount,
			CLTVExpiry: totalDelay,
		}

		totalAmount += connectionFee(half, totalAmount)
		totalDelay += half.TimeLockDelta
		n = c.OtherEndpoint(n)
	}

	if n.ID != source {
		return nil, ErrRouteNotSourced
	}

	return hops, nil
}

// nodeByID finds destination as an endpoint of route's final channel,
// without requiring callers to thread a graph.Store through just for this.
func nodeByID(route []*graph.Channel, destination lnwire.NodeID) (*graph.Node, error) {
	if len(route) == 0 {
		return nil, ErrNoRoute
	}
	last := route[len(route)-1]
	for _, n := range last.Nodes {
		if n.ID == destination {
			return n, nil
		}
	}
	return nil, ErrRouteNotSourced
}
