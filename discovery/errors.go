package discovery

import "errors"

// These are returned by the confirmation callback and the local-adoption
// path; the three gossip handlers otherwise drop malformed/stale/unknown
// input silently per spec §7 and report nothing back to the caller.
var (
	// ErrNotPending is returned by ConfirmFunding when scid has no
	// matching pending channel announcement.
	ErrNotPending = errors.New("discovery: scid not pending")

	// ErrFundingScriptMismatch is returned by ConfirmFunding when the
	// on-chain output script doesn't match the 2-of-2 P2WSH derived from
	// the announcement's funding keys.
	ErrFundingScriptMismatch = errors.New("discovery: funding output " +
		"script does not match announced keys")

	// ErrFundingSpent is returned by ConfirmFunding when the on-chain
	// collaborator reports the funding output as spent or unknown.
	ErrFundingSpent = errors.New("discovery: funding output spent or unknown")
)
