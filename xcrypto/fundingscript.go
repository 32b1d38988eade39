// Package xcrypto adapts the cryptographic and scripting primitives the
// routing core treats as external collaborators (spec §6): signature
// verification lives on lnwire.Sig directly, so what remains here is
// deriving the expected funding scriptPubKey from a channel's two funding
// keys, and the SipHash-2-4 mix used for per-request pathfinding fee fuzz.
package xcrypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/petrkovac/lightning/lnwire"
)

// ExpectedFundingScript derives the P2WSH scriptPubKey for the 2-of-2
// multisig funding output announced by a channel_announcement, given its
// two funding keys. BOLT #7 funding transactions always build the redeem
// script from the two keys in ascending lexicographic order, independent of
// which one is bitcoin_key_1 in the message.
func ExpectedFundingScript(key1, key2 lnwire.NodeID) ([]byte, error) {
	pub1, err := key1.PubKey()
	if err != nil {
		return nil, err
	}
	pub2, err := key2.PubKey()
	if err != nil {
		return nil, err
	}

	if key2.Less(key1) {
		pub1, pub2 = pub2, pub1
	}

	redeem, err := multiSigScript(pub1, pub2)
	if err != nil {
		return nil, err
	}

	witnessScriptHash := sha256.Sum256(redeem)

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(witnessScriptHash[:]).
		Script()
}

// multiSigScript builds the canonical "2 <pub1> <pub2> 2 CHECKMULTISIG"
// redeem script for a Lightning funding output.
func multiSigScript(pub1, pub2 *btcec.PublicKey) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_2)
	builder.AddData(pub1.SerializeCompressed())
	builder.AddData(pub2.SerializeCompressed())
	builder.AddOp(txscript.OP_2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)
	return builder.Script()
}
