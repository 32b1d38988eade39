// Package discovery implements the gossip ingestion pipeline (spec §4.3):
// validating, deduplicating, and applying channel_announcement,
// channel_update, and node_announcement messages, staging out-of-order
// arrivals via the staging package and landing accepted state in the graph
// store.
package discovery

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/petrkovac/lightning/graph"
	"github.com/petrkovac/lightning/lnwire"
	"github.com/petrkovac/lightning/staging"
)

// Config bundles the collaborators and parameters the Gossiper needs that
// come from outside the routing core (spec §6).
type Config struct {
	// ChainHash is the genesis hash of the chain this node routes on.
	// Announcements/updates for any other chain are silently dropped.
	ChainHash chainhash.Hash

	// LocalID is this node's own public key, used by ConfirmFunding to
	// report whether a newly public channel has this node as an endpoint.
	LocalID lnwire.NodeID

	// PruneTimeout is the maximum age of a channel's freshest half
	// before the pruner would delete it; also used to seed unseen
	// half-channel timestamps at PruneTimeout/2.
	PruneTimeout time.Duration

	// Broadcaster fans out accepted gossip to peers.
	Broadcaster Broadcaster

	// Clock supplies the current time; overridden with a test clock in
	// unit tests for determinism.
	Clock clock.Clock
}

// Gossiper is the routing core's gossip ingestion pipeline. It is not safe
// for concurrent use — see spec §5.
type Gossiper struct {
	cfg   Config
	store *graph.Store
	stage *staging.Stage
}

// New constructs a Gossiper over the given graph store and staging area.
func New(cfg Config, store *graph.Store, stage *staging.Stage) *Gossiper {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	return &Gossiper{cfg: cfg, store: store, stage: stage}
}

func (g *Gossiper) now() int64 {
	return g.cfg.Clock.Now().Unix()
}

// RegisterLocalChannel adds an operator-configured channel that isn't (and
// may never be) announced on the gossip network, so the pathfinder can
// route over it immediately. If a channel_announcement for the same scid
// is later confirmed on-chain, ConfirmFunding adopts this same object
// rather than creating a second one (spec §4.3.2 step 4).
func (g *Gossiper) RegisterLocalChannel(scid lnwire.ShortChannelID,
	id1, id2 lnwire.NodeID, capacity btcutil.Amount) *graph.Channel {

	return g.store.CreateLocalChannel(scid, id1, id2, g.now(),
		g.cfg.PruneTimeout, capacity)
}
