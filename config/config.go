// Package config defines the command-line surface of the routingcored
// harness, in the go-flags style lnd's own cmd/lnd/main.go and config.go
// use. Options are read from the command line only; no configuration file
// is parsed.
package config

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "routingcored.conf"
	defaultPruneTimeout   = 2 * 7 * 24 * time.Hour
	defaultPruneInterval  = time.Hour
	defaultLogLevel       = "info"
)

// Config holds every knob the routing core's standalone harness exposes.
// A real integration (e.g. as a subsystem of a bigger node) would
// construct discovery.Config/prune.Config directly instead.
type Config struct {
	ShowVersion bool `short:"V" long:"version" description:"Exit immediately without starting the harness (no version string is printed)"`

	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file (accepted but not read)"`

	ChainHash string `long:"chainhash" description:"Hex-encoded genesis hash of the chain to route on"`

	NodeKey string `long:"nodekey" description:"Hex-encoded compressed public key identifying this node"`

	PruneTimeout  time.Duration `long:"prunetimeout" description:"Maximum age of a channel's freshest half before it is pruned"`
	PruneInterval time.Duration `long:"pruneinterval" description:"How often the pruner sweep runs"`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}"`
}

// DefaultConfig returns a Config populated with the harness's defaults,
// matching the zero-config behavior of lnd's own DefaultConfig.
func DefaultConfig() Config {
	return Config{
		ConfigFile:    defaultConfigFilename,
		PruneTimeout:  defaultPruneTimeout,
		PruneInterval: defaultPruneInterval,
		DebugLevel:    defaultLogLevel,
	}
}

// Load parses command-line arguments over the harness defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		os.Exit(0)
	}

	return &cfg, nil
}
