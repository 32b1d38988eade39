// Package build provides small, shared scaffolding for the rest of the
// module — today just the subsystem logger constructor used by every
// package's log.go, mirroring lnd's build.NewSubLogger.
package build

import (
	"github.com/btcsuite/btclog"
)

// NewSubLogger constructs a logger tagged with subsystem via genSubLogger.
// If genSubLogger is nil, logging is disabled — packages must call
// UseLogger explicitly to get output, matching the rest of the corpus
// where logging is off until a caller opts in.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	if genSubLogger == nil {
		return btclog.Disabled
	}
	return genSubLogger(subsystem)
}

// NewBackendSubLogger is a convenience wrapper for the common case of
// generating every subsystem logger from one shared backend.
func NewBackendSubLogger(subsystem string, backend *btclog.Backend) btclog.Logger {
	return NewSubLogger(subsystem, backend.Logger)
}
