package pathfind

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
)

func testNodeID(b byte) lnwire.NodeID {
	var id lnwire.NodeID
	id[0] = 0x02
	id[32] = b
	return id
}

func activateHalf(c *graph.Channel, toward *graph.Node, baseFee,
	ppm uint32, delay uint16, now int64) {

	idx, _ := c.DirectionInto(toward)
	half := &c.Half[idx]
	half.Active = true
	half.BaseFee = baseFee
	half.ProportionalFee = ppm
	half.TimeLockDelta = uint32(delay)
	half.LastTimestamp = now
}

// TestFindRouteThreeNodeChain reproduces the A-B-C routing scenario: A-B
// charges a proportional fee with no base fee, B-C charges a flat base fee
// with no proportional component, and with risk disabled the fees alone
// must produce the documented hop amounts.
func TestFindRouteThreeNodeChain(t *testing.T) {
	store := graph.NewStore()
	now := int64(1_700_000_000)

	a, b, c := testNodeID(1), testNodeID(2), testNodeID(3)

	chanAB := store.CreateChannel(0xAB, a, b, now, time.Hour)
	chanBC := store.CreateChannel(0xBC, b, c, now, time.Hour)

	nodeA := store.LookupNode(a)
	nodeB := store.LookupNode(b)
	nodeC := store.LookupNode(c)

	activateHalf(chanAB, nodeB, 0, 1000, 10, now)
	activateHalf(chanBC, nodeC, 1000, 0, 10, now)
	// The reverse directions are activated too; the route from A to C
	// never uses them.
	activateHalf(chanAB, nodeA, 0, 1000, 10, now)
	activateHalf(chanBC, nodeB, 1000, 0, 10, now)

	route, fee, err := FindRoute(store, a, c, 1_000_000, 0, 0, 0, now)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), fee)
	require.Equal(t, []*graph.Channel{chanAB, chanBC}, route)

	hops, err := AssembleRoute(route, a, c, 1_000_000, 9)
	require.NoError(t, err)
	require.Len(t, hops, 2)

	require.Equal(t, chanAB, hops[0].Channel)
	require.Equal(t, b, hops[0].NextNodeID)
	require.Equal(t, uint64(1_001_000), hops[0].AmountMsat)
	require.Equal(t, uint32(19), hops[0].CLTVExpiry)

	require.Equal(t, chanBC, hops[1].Channel)
	require.Equal(t, c, hops[1].NextNodeID)
	require.Equal(t, uint64(1_000_000), hops[1].AmountMsat)
	require.Equal(t, uint32(9), hops[1].CLTVExpiry)

	_, err = AssembleRoute(route, b, c, 1_000_000, 9)
	require.ErrorIs(t, err, ErrRouteNotSourced)
}

func TestFindRouteUnknownNode(t *testing.T) {
	store := graph.NewStore()
	a, b := testNodeID(1), testNodeID(2)
	store.CreateChannel(0x1, a, b, 0, time.Hour)

	_, _, err := FindRoute(store, a, testNodeID(9), 1000, 0, 0, 0, 0)
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestFindRouteSelfIsRejected(t *testing.T) {
	store := graph.NewStore()
	a := testNodeID(1)
	_, _, err := FindRoute(store, a, a, 1000, 0, 0, 0, 0)
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestFindRouteAmountTooLarge(t *testing.T) {
	store := graph.NewStore()
	a, b := testNodeID(1), testNodeID(2)
	store.CreateChannel(0x1, a, b, 0, time.Hour)

	_, _, err := FindRoute(store, a, b, MaxMsatoshi, 0, 0, 0, 0)
	require.ErrorIs(t, err, ErrAmountTooLarge)
}

func TestFindRouteNoPathWhenHalfInactive(t *testing.T) {
	store := graph.NewStore()
	now := int64(1_700_000_000)
	a, b := testNodeID(1), testNodeID(2)

	store.CreateChannel(0x1, a, b, now, time.Hour)
	// Never activated: both halves stay inactive.

	_, _, err := FindRoute(store, a, b, 1000, 0, 0, 0, now)
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestNormalizeRiskFactor(t *testing.T) {
	got := NormalizeRiskFactor(BlocksPerYear * 10000)
	require.InDelta(t, 1.0, got, 1e-9)
}
