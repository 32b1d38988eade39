package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrkovac/lightning/lnwire"
)

func TestOrphanNodeAnnouncementDeferredThenApplied(t *testing.T) {
	g, store, _ := newTestGossiper(t)

	node1, node2 := newTestKey(t), newTestKey(t)
	btc1, btc2 := newTestKey(t), newTestKey(t)
	if !node1.id.Less(node2.id) {
		node1, node2 = node2, node1
	}

	scid := lnwire.ShortChannelID(0x64_0005_0000)
	ann := buildChannelAnnouncement(t, scid, node1, node2, btc1, btc2, []byte("tail"))
	ann.ChainHash = testChainHash
	_, ok := g.HandleChannelAnnouncement(ann)
	require.True(t, ok)

	// node2 isn't a graph node yet, so its node_announcement is an
	// orphan that must be staged and replayed on confirmation.
	nodeAnn := buildNodeAnnouncement(t, node2, 50, nil, []byte("addrs"))
	g.HandleNodeAnnouncement(nodeAnn)
	require.Nil(t, store.LookupNode(node2.id))

	script, err := expectedScriptFor(t, btc1, btc2)
	require.NoError(t, err)
	_, err = g.ConfirmFunding(scid, 1_000_000, script)
	require.NoError(t, err)

	resolved := store.LookupNode(node2.id)
	require.NotNil(t, resolved)
	require.True(t, resolved.HasDescriptor())
	require.Equal(t, int64(50), resolved.LastTimestamp)
}

func TestNodeAnnouncementRejectsBadSignature(t *testing.T) {
	g, store, _ := newTestGossiper(t)

	key := newTestKey(t)
	ann := buildNodeAnnouncement(t, key, 1, nil, []byte("addrs"))
	ann.Raw[len(ann.Raw)-1] ^= 0xff // corrupt the signed payload

	g.HandleNodeAnnouncement(ann)
	require.Nil(t, store.LookupNode(key.id))
}
