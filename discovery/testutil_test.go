package discovery

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/xcrypto"
)

// testKey is a convenience wrapper bundling a private key with the
// lnwire.NodeID derived from its compressed public key.
type testKey struct {
	priv *btcec.PrivateKey
	id   lnwire.NodeID
}

func newTestKey(t *testing.T) testKey {
	t.Helper()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var id lnwire.NodeID
	copy(id[:], priv.PubKey().SerializeCompressed())

	return testKey{priv: priv, id: id}
}

func sign(t *testing.T, k testKey, payload []byte) lnwire.Sig {
	t.Helper()
	digest := lnwire.DoubleSHA256(payload)
	sig := ecdsa.Sign(k.priv, digest[:])
	return lnwire.NewSigFromSignature(sig)
}

// buildChannelAnnouncement constructs a validly-signed channel_announcement
// for the given endpoints. tail is arbitrary payload bytes that get
// signed; its contents don't matter for these tests beyond being hashed.
func buildChannelAnnouncement(t *testing.T, scid lnwire.ShortChannelID,
	node1, node2, btc1, btc2 testKey, tail []byte) *lnwire.ChannelAnnouncement {

	t.Helper()

	raw := make([]byte, lnwire.ChannelAnnouncementSigOffset+len(tail))
	copy(raw[lnwire.ChannelAnnouncementSigOffset:], tail)
	payload := raw[lnwire.ChannelAnnouncementSigOffset:]

	return &lnwire.ChannelAnnouncement{
		NodeSig1:       sign(t, node1, payload),
		NodeSig2:       sign(t, node2, payload),
		BitcoinSig1:    sign(t, btc1, payload),
		BitcoinSig2:    sign(t, btc2, payload),
		ShortChannelID: scid,
		NodeID1:        node1.id,
		NodeID2:        node2.id,
		BitcoinKey1:    btc1.id,
		BitcoinKey2:    btc2.id,
		Raw:            raw,
	}
}

func buildChannelUpdate(t *testing.T, signer testKey, scid lnwire.ShortChannelID,
	direction uint8, timestamp uint32, disabled bool, baseFee,
	ppm uint32, delay uint16, tail []byte) *lnwire.ChannelUpdate {

	t.Helper()

	raw := make([]byte, lnwire.ChannelUpdateSigOffset+len(tail))
	copy(raw[lnwire.ChannelUpdateSigOffset:], tail)
	payload := raw[lnwire.ChannelUpdateSigOffset:]

	flags := lnwire.ChanUpdateChanFlags(direction)
	if disabled {
		flags |= lnwire.ChanUpdateDisabled
	}

	return &lnwire.ChannelUpdate{
		Signature:                 sign(t, signer, payload),
		ShortChannelID:            scid,
		Timestamp:                 timestamp,
		ChannelFlags:              flags,
		TimeLockDelta:             delay,
		FeeBaseMSat:               baseFee,
		FeeProportionalMillionths: ppm,
		Raw:                       raw,
	}
}

func buildNodeAnnouncement(t *testing.T, signer testKey, timestamp uint32,
	addresses []byte, tail []byte) *lnwire.NodeAnnouncement {

	t.Helper()

	raw := make([]byte, lnwire.ChannelUpdateSigOffset+len(tail))
	copy(raw[lnwire.ChannelUpdateSigOffset:], tail)
	payload := raw[lnwire.ChannelUpdateSigOffset:]

	return &lnwire.NodeAnnouncement{
		Signature: sign(t, signer, payload),
		NodeID:    signer.id,
		Timestamp: timestamp,
		Addresses: addresses,
		Raw:       raw,
	}
}

// expectedScriptFor returns the P2WSH scriptPubKey a funding output for
// the given bitcoin keys must carry, matching what ConfirmFunding expects.
func expectedScriptFor(t *testing.T, btc1, btc2 testKey) ([]byte, error) {
	t.Helper()
	return xcrypto.ExpectedFundingScript(btc1.id, btc2.id)
}

// mockBroadcaster records every publish without replacing anything,
// unless told to via forceReplace.
type mockBroadcaster struct {
	published    []publishedMsg
	forceReplace bool
}

type publishedMsg struct {
	msgType    MessageType
	routingKey []byte
	payload    []byte
}

func (m *mockBroadcaster) ReplaceBroadcast(slot *uint64, msgType MessageType,
	routingKey, payload []byte) bool {

	m.published = append(m.published, publishedMsg{msgType, routingKey, payload})
	*slot++
	return m.forceReplace
}
