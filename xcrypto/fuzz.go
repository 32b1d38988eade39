package xcrypto

import "github.com/dchest/siphash"

// FeeFuzzScale returns a deterministic multiplier in [1-fuzz, 1+fuzz] for
// scid under the given per-request seed, used by the pathfinder to
// perturb edge weights without affecting the same call's internal
// consistency (spec §4.4's "per-edge fuzz").
func FeeFuzzScale(seed uint64, scid uint64, fuzz float64) float64 {
	if fuzz <= 0 {
		return 1
	}

	h := siphash.Hash(seed, 0, scidBytes(scid))

	// Normalize the top 53 bits to a float in [0, 1); 53 bits keeps the
	// conversion exact in a float64 mantissa.
	norm := float64(h>>11) / float64(uint64(1)<<53)

	return 1 - fuzz + 2*fuzz*norm
}

func scidBytes(scid uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(scid)
		scid >>= 8
	}
	return b
}
