package discovery

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"

	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/staging"
)

var testChainHash chainhash.Hash

func newTestGossiper(t *testing.T) (*Gossiper, *graph.Store, *mockBroadcaster) {
	t.Helper()

	store := graph.NewStore()
	stage := staging.NewStage()
	bc := &mockBroadcaster{}

	g := New(Config{
		ChainHash:    testChainHash,
		PruneTimeout: time.Hour,
		Broadcaster:  bc,
		Clock:        clock.NewTestClock(time.Unix(1_700_000_000, 0)),
	}, store, stage)

	return g, store, bc
}

// Scenario 1 (spec §8): a channel_announcement followed by on-chain
// confirmation adopts the channel as public and broadcasts it once.
func TestHappyPathChannelAdoption(t *testing.T) {
	g, store, bc := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0001_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash

	gotSCID, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok)
	require.Equal(t, scid, gotSCID)
	require.Nil(t, store.LookupChannel(scid), "not public until confirmed")

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)

	isLocal, err := g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)
	require.False(t, isLocal)

	channel := store.LookupChannel(scid)
	require.NotNil(t, channel)
	require.True(t, channel.Public)
	require.Len(t, bc.published, 1)
	require.Equal(t, MsgChannelAnnouncement, bc.published[0].msgType)
}

// Scenario 2 (spec §8): a channel_update arriving before confirmation is
// deferred and replayed once the channel goes public; a newer deferred
// update for the same direction wins over an older one.
func TestDeferredUpdateReplayedOnConfirmation(t *testing.T) {
	g, store, _ := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0002_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash
	_, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok)

	// Both timestamps lie after the test clock, so neither is older than
	// the half-aged timestamp the new channel's halves are seeded with.
	oldUpd := buildChannelUpdate(t, node1, scid, 0, 1_700_000_100, false, 1, 10, 40, []byte("old"))
	oldUpd.ChainHash = testChainHash
	newUpd := buildChannelUpdate(t, node1, scid, 0, 1_700_000_200, false, 2, 20, 40, []byte("new"))
	newUpd.ChainHash = testChainHash

	g.HandleChannelUpdate(oldUpd)
	g.HandleChannelUpdate(newUpd)

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)
	_, err = g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)

	channel := store.LookupChannel(scid)
	require.NotNil(t, channel)
	require.Equal(t, uint32(2), channel.Half[0].BaseFee)
	require.Equal(t, int64(1_700_000_200), channel.Half[0].LastTimestamp)
}

// Scenario 4 (spec §8): a channel_update advertising a proportional fee at
// or above the bound is applied but forced inactive.
func TestExcessiveProportionalFeeDisablesHalf(t *testing.T) {
	g, store, _ := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0003_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash
	_, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok)

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)
	_, err = g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)

	upd := buildChannelUpdate(t, node1, scid, 0, 1_700_000_100, false, 1, maxProportionalFee, 40,
		[]byte("excessive"))
	upd.ChainHash = testChainHash
	g.HandleChannelUpdate(upd)

	channel := store.LookupChannel(scid)
	require.False(t, channel.Half[0].Active)
	require.Equal(t, uint32(maxProportionalFee), channel.Half[0].ProportionalFee)
}

// An operator-registered local channel must not block the pending path
// for its own later channel_announcement, and ConfirmFunding must adopt
// the same Channel object rather than create a second one (spec §4.3.1
// step 2, §4.3.2 step 4).
func TestLocalChannelAdoptedByLaterAnnouncement(t *testing.T) {
	g, store, bc := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0006_0000)
	local := g.RegisterLocalChannel(scid, node1.id, node2.id, 500_000)
	require.False(t, local.Public)

	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash

	gotSCID, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok, "a local channel must not block its own pending announcement")
	require.Equal(t, scid, gotSCID)

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)

	_, err = g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)

	channel := store.LookupChannel(scid)
	require.Same(t, local, channel, "ConfirmFunding must adopt the pre-registered object")
	require.True(t, channel.Public)
	require.Equal(t, btcutil.Amount(1_000_000), channel.Capacity)
	require.Len(t, bc.published, 1)
}

func TestChannelAnnouncementIgnoresAlreadyPublicDuplicate(t *testing.T) {
	g, _, _ := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0007_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash

	_, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok)

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)
	_, err = g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)

	// Now that the channel is public, a duplicate announcement for the
	// same scid must be rejected.
	dup := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	dup.ChainHash = testChainHash
	_, ok = g.HandleChannelAnnouncement(dup)
	require.False(t, ok)
}

func TestChannelAnnouncementRejectsBadSignature(t *testing.T) {
	g, _, _ := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0004_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash
	ann.Raw[len(ann.Raw)-1] ^= 0xff // corrupt the signed payload

	_, ok := g.HandleChannelAnnouncement(ann)
	require.False(t, ok)
}
