// Package pathfind implements the amount-aware, hop-indexed Bellman-Ford
// search described in spec §4.4, grounded directly on the
// find_route/bfg_one_edge pair in the original gossip daemon's routing.c:
// ordinary Bellman-Ford can't model a cost that depends on the cumulative
// amount flowing through an edge, so the relaxation carries one slot per
// hop count instead of a single best-known distance.
package pathfind

import (
	"errors"

	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/xcrypto"
)

const (
	// MaxHops is the hard cap on path length (spec §6's ROUTING_MAX_HOPS).
	MaxHops = 20

	// MaxMsatoshi bounds any amount the pathfinder will consider, the
	// destination's requested amount included (spec §6's MAX_MSATOSHI).
	MaxMsatoshi = uint64(1) << 40

	// BlocksPerYear normalizes a caller-supplied annual risk factor into
	// the per-block, per-msat units find_route expects (spec §6).
	BlocksPerYear = 52596
)

// NormalizeRiskFactor converts an annualized risk factor into the
// per-block units FindRoute's riskFactor parameter expects, mirroring the
// original get_route wrapper's `riskfactor / BLOCKS_PER_YEAR / 10000`.
func NormalizeRiskFactor(riskFactor float64) float64 {
	return riskFactor / BlocksPerYear / 10000
}

var (
	// ErrUnknownNode is returned when the source or destination node is
	// absent from the graph.
	ErrUnknownNode = errors.New("pathfind: unknown source or destination node")

	// ErrNoRoute is returned when the destination can't be reached
	// within MaxHops, or when source equals destination.
	ErrNoRoute = errors.New("pathfind: no route found")

	// ErrAmountTooLarge is returned when the requested amount is at or
	// above MaxMsatoshi.
	ErrAmountTooLarge = errors.New("pathfind: amount exceeds routing limit")
)

type slot struct {
	reached bool
	total   uint64
	risk    uint64
	prev    *graph.Channel
}

type nodeState struct {
	node  *graph.Node
	slots [MaxHops + 1]slot
}

// FindRoute searches for a path from source to destination able to deliver
// amountMsat, returning the ordered list of channels to traverse (source to
// destination) and the total fee paid along the way, in msat.
//
// riskFactor must already be normalized to per-block, per-msat units (see
// NormalizeRiskFactor). fuzz, if greater than zero, perturbs each channel's
// effective fee by a deterministic amount derived from seed, so that
// repeated calls with the same seed retry the same route while different
// seeds explore different tie-breaks (spec §4.4).
func FindRoute(store *graph.Store, source, destination lnwire.NodeID,
	amountMsat uint64, riskFactor, fuzz float64, seed uint64,
	now int64) (route []*graph.Channel, feeMsat uint64, err error) {

	if amountMsat >= MaxMsatoshi {
		return nil, 0, ErrAmountTooLarge
	}
	if source == destination {
		return nil, 0, ErrNoRoute
	}

	srcNode := store.LookupNode(source)
	dstNode := store.LookupNode(destination)
	if srcNode == nil || dstNode == nil {
		return nil, 0, ErrUnknownNode
	}

	states := make(map[lnwire.NodeID]*nodeState)
	err = store.ForEachNode(func(n *graph.Node) error {
		states[n.ID] = &nodeState{node: n}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Search runs backward: the destination is the search's origin, and
	// we look for the shortest path back to the real source.
	origin := states[destination]
	target := states[source]
	origin.slots[0] = slot{reached: true, total: amountMsat}

	for run := 0; run < MaxHops; run++ {
		for _, n := range states {
			for _, c := range n.node.Channels {
				idx, ok := c.DirectionInto(n.node)
				if !ok {
					continue
				}
				half := &c.Half[idx]
				if !half.IsRoutable(now) {
					continue
				}
				relaxEdge(n, c, idx, riskFactor, fuzz, seed, states)
			}
		}
	}

	best := 0
	bestTotal := effectiveTotal(target.slots[0])
	for h := 1; h <= MaxHops; h++ {
		if t := effectiveTotal(target.slots[h]); t < bestTotal {
			bestTotal = t
			best = h
		}
	}
	if bestTotal >= MaxMsatoshi {
		return nil, 0, ErrNoRoute
	}

	route = make([]*graph.Channel, best)
	n := target
	for i := 0; i < best; i++ {
		c := n.slots[best-i].prev
		route[i] = c
		n = states[c.OtherEndpoint(n.node).ID]
	}
	if n.node != origin.node {
		log.Criticalf("pathfind: route reconstruction did not terminate " +
			"at the destination")
		panic("pathfind: inconsistent route reconstruction")
	}

	// The source doesn't charge itself a fee, so the amount it actually
	// needs to send is read one hop further in, at best-1.
	neighbor := states[route[0].OtherEndpoint(target.node).ID]
	feeMsat = neighbor.slots[best-1].total - amountMsat

	return route, feeMsat, nil
}

func effectiveTotal(s slot) uint64 {
	if !s.reached {
		return MaxMsatoshi
	}
	return s.total
}

// relaxEdge is bfg_one_edge: for every hop count h at which n has a
// reached slot, try to extend the channel's other endpoint's slot h+1.
func relaxEdge(n *nodeState, c *graph.Channel, idx uint8,
	riskFactor, fuzz float64, seed uint64, states map[lnwire.NodeID]*nodeState) {

	half := &c.Half[idx]

	feeScale := 1.0
	if fuzz != 0 {
		feeScale = xcrypto.FeeFuzzScale(seed, uint64(c.SCID), fuzz)
	}

	src := states[c.Nodes[idx].ID]

	for h := 0; h < MaxHops; h++ {
		if !n.slots[h].reached {
			continue
		}

		total := n.slots[h].total

		fee := uint64(float64(connectionFee(half, total)) * feeScale)
		risk := n.slots[h].risk + riskFee(total+fee, half.TimeLockDelta, riskFactor)

		if total+fee+risk >= MaxMsatoshi {
			continue
		}

		if !src.slots[h+1].reached ||
			total+fee+risk < src.slots[h+1].total+src.slots[h+1].risk {

			src.slots[h+1] = slot{
				reached: true,
				total:   total + fee,
				risk:    risk,
				prev:    c,
			}
		}
	}
}

// connectionFee is the cost of forwarding msat over half.
func connectionFee(half *graph.HalfChannel, msat uint64) uint64 {
	fee := (uint64(half.ProportionalFee) * msat) / 1000000
	return uint64(half.BaseFee) + fee
}

// riskFee is the time-lock risk cost of routing amount through a channel
// with the given delay. The added 1 is a tiny constant that prefers
// shorter routes when all else is equal.
func riskFee(amount uint64, delay uint32, riskFactor float64) uint64 {
	return 1 + uint64(float64(amount)*float64(delay)*riskFactor)
}
