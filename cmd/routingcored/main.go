// Command routingcored wires the routing core's packages together into a
// standalone process, the way cmd/lnd/main.go wires up the full node. It
// owns no network or on-chain I/O itself — that's left to whatever
// integration supplies the gossip, on-chain, and broadcast collaborators
// described in spec §6; this harness exists so the core can be exercised
// and its subsystem logging configured the way lnd's cmd/lnd does.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/petrkovac/lightning/build"
	"github.com/petrkovac/lightning/config"
	"github.com/petrkovac/lightning/discovery"
	"github.com/petrkovac/lightning/failure"
	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/prune"
	"github.com/petrkovac/lightning/staging"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/lightningnetwork/lnd/clock"
)

func main() {
	if err := run(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	backend := btclog.NewBackend(os.Stdout)
	setupLoggers(backend, cfg.DebugLevel)

	var chainHash chainhash.Hash
	if cfg.ChainHash != "" {
		raw, err := hex.DecodeString(cfg.ChainHash)
		if err != nil {
			return fmt.Errorf("invalid chainhash: %w", err)
		}
		copy(chainHash[:], raw)
	}

	var localID lnwire.NodeID
	if cfg.NodeKey != "" {
		raw, err := hex.DecodeString(cfg.NodeKey)
		if err != nil {
			return fmt.Errorf("invalid nodekey: %w", err)
		}
		copy(localID[:], raw)
	}

	clk := clock.NewDefaultClock()

	store := graph.NewStore()
	stage := staging.NewStage()

	gossiper := discovery.New(discovery.Config{
		ChainHash:    chainHash,
		LocalID:      localID,
		PruneTimeout: cfg.PruneTimeout,
		Broadcaster:  loggingBroadcaster{},
		Clock:        clk,
	}, store, stage)

	// Wired up for whatever delivers onion-decoded HTLC failures in a
	// full integration; this harness has no such feed of its own.
	_ = failure.New(store, gossiper, localID, clk)

	pruner := prune.New(prune.Config{
		Store:        store,
		PruneTimeout: cfg.PruneTimeout,
		Interval:     cfg.PruneInterval,
		Clock:        clk,
	})
	pruner.Start(pruner.Sweep)
	defer pruner.Stop()

	select {}
}

func setupLoggers(backend *btclog.Backend, level string) {
	lvl, _ := btclog.LevelFromString(level)

	loggers := []btclog.Logger{
		build.NewBackendSubLogger("GRPH", backend),
		build.NewBackendSubLogger("STAG", backend),
		build.NewBackendSubLogger("DISC", backend),
		build.NewBackendSubLogger("FAIL", backend),
		build.NewBackendSubLogger("PRUN", backend),
	}
	for _, l := range loggers {
		l.SetLevel(lvl)
	}

	graph.UseLogger(loggers[0])
	staging.UseLogger(loggers[1])
	discovery.UseLogger(loggers[2])
	failure.UseLogger(loggers[3])
	prune.UseLogger(loggers[4])
}

// loggingBroadcaster is a placeholder Broadcaster that publishes nothing: it
// only advances the slot index and never reports a replacement. A real
// deployment supplies its own, backed by the peer fan-out queue (spec §6).
type loggingBroadcaster struct{}

func (loggingBroadcaster) ReplaceBroadcast(slot *uint64,
	msgType discovery.MessageType, routingKey, payload []byte) bool {

	*slot++
	return false
}
