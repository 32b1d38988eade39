// Package lnwire holds the decoded field sets of the three gossip message
// kinds this node ingests. Deserialization of the wire encoding itself is
// out of scope (see spec §1); callers are expected to have already parsed
// raw bytes into these structs and to hand the routing core both the
// decoded fields and the original payload so signatures can be checked
// against the exact bytes that were signed.
package lnwire

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// NodeID is a 33-byte compressed secp256k1 public key, the primary key for
// a node everywhere it appears.
type NodeID [33]byte

// Less reports whether n sorts before other under the canonical ordering
// used to assign channel endpoints to half[0]/half[1].
func (n NodeID) Less(other NodeID) bool {
	for i := range n {
		switch {
		case n[i] < other[i]:
			return true
		case n[i] > other[i]:
			return false
		}
	}
	return false
}

// PubKey parses the compressed key. Callers that reach this point have
// already had the key validated by the gossip collaborator, so a parse
// failure here is treated as malformed input.
func (n NodeID) PubKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(n[:])
}

// Sig wraps a fixed 64-byte compact ECDSA signature as carried on the wire.
type Sig struct {
	sig *ecdsa.Signature
}

// NewSigFromSignature wraps an already-parsed signature.
func NewSigFromSignature(sig *ecdsa.Signature) Sig {
	return Sig{sig: sig}
}

// Verify reports whether the signature is valid for hash under pubKey.
func (s Sig) Verify(hash []byte, pubKey *btcec.PublicKey) bool {
	if s.sig == nil || pubKey == nil {
		return false
	}
	return s.sig.Verify(hash, pubKey)
}

// DoubleSHA256 hashes buf with SHA-256d, the hash function used for all
// signed gossip payloads (spec §6).
func DoubleSHA256(buf []byte) [32]byte {
	return chainhash.DoubleHashH(buf)
}

// ShortChannelID is the 64-bit block/tx/output-packed channel identifier.
type ShortChannelID uint64

// ChannelAnnouncement carries the decoded fields of a channel_announcement
// gossip message, plus the raw payload the signatures were computed over.
//
// The signed payload begins at byte offset 258 (2 bytes type + 4 * 64 byte
// signatures); spec §6.
type ChannelAnnouncement struct {
	NodeSig1    Sig
	NodeSig2    Sig
	BitcoinSig1 Sig
	BitcoinSig2 Sig

	Features *RawFeatureVector

	ChainHash chainhash.Hash

	ShortChannelID ShortChannelID

	NodeID1 NodeID
	NodeID2 NodeID

	BitcoinKey1 NodeID
	BitcoinKey2 NodeID

	// Raw is the full serialized message, required to recompute the
	// signed-payload hash.
	Raw []byte
}

// ChannelAnnouncementSigOffset is the byte offset of the signed payload
// within a serialized channel_announcement.
const ChannelAnnouncementSigOffset = 2 + 4*64

// SignedPayload returns the slice of Raw that the four signatures cover.
func (a *ChannelAnnouncement) SignedPayload() []byte {
	if len(a.Raw) < ChannelAnnouncementSigOffset {
		return nil
	}
	return a.Raw[ChannelAnnouncementSigOffset:]
}

// ChanUpdateChanFlags is the flags field of a channel_update message.
type ChanUpdateChanFlags uint16

const (
	// ChanUpdateDirection is the least significant bit: 0 for the update
	// from node_1, 1 for the update from node_2.
	ChanUpdateDirection ChanUpdateChanFlags = 1

	// ChanUpdateDisabled marks the advertised direction as disabled.
	ChanUpdateDisabled ChanUpdateChanFlags = 1 << 1
)

// Direction returns the direction bit (0 or 1) encoded in the flags field.
func (f ChanUpdateChanFlags) Direction() uint8 {
	return uint8(f & ChanUpdateDirection)
}

// IsDisabled reports whether the disabled bit is set.
func (f ChanUpdateChanFlags) IsDisabled() bool {
	return f&ChanUpdateDisabled != 0
}

// ChannelUpdate carries the decoded fields of a channel_update message.
//
// The signed payload begins at byte offset 66 (2 bytes type + 64 byte
// signature); spec §6.
type ChannelUpdate struct {
	Signature Sig

	ChainHash chainhash.Hash

	ShortChannelID ShortChannelID

	Timestamp uint32

	ChannelFlags ChanUpdateChanFlags

	TimeLockDelta uint16

	HTLCMinimumMSat uint64

	FeeBaseMSat uint32

	FeeProportionalMillionths uint32

	Raw []byte
}

// ChannelUpdateSigOffset is the byte offset of the signed payload within a
// serialized channel_update or node_announcement.
const ChannelUpdateSigOffset = 2 + 64

// SignedPayload returns the slice of Raw that the signature covers.
func (u *ChannelUpdate) SignedPayload() []byte {
	if len(u.Raw) < ChannelUpdateSigOffset {
		return nil
	}
	return u.Raw[ChannelUpdateSigOffset:]
}

// NodeAnnouncement carries the decoded fields of a node_announcement
// message. The signed payload begins at the same offset as ChannelUpdate's.
type NodeAnnouncement struct {
	Signature Sig

	Features *RawFeatureVector

	Timestamp uint32

	NodeID NodeID

	RGBColor [3]byte

	Alias [32]byte

	// Addresses is the raw, not-yet-parsed address-list payload; see
	// ParseAddresses.
	Addresses []byte

	Raw []byte
}

// SignedPayload returns the slice of Raw that the signature covers.
func (n *NodeAnnouncement) SignedPayload() []byte {
	if len(n.Raw) < ChannelUpdateSigOffset {
		return nil
	}
	return n.Raw[ChannelUpdateSigOffset:]
}
