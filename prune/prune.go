// Package prune periodically ages out public channels whose gossip has
// gone stale, grounded on route_prune in the original gossip daemon's
// routing.c (spec §4.7).
package prune

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/petrkovac/lightning/graph"
)

// Pruner drives a periodic sweep of a graph.Store on its own ticker. Sweep
// itself is safe to call directly from the event loop; Start/Stop manage
// the background delivery of tick events into the core's single thread.
type Pruner struct {
	store        *graph.Store
	pruneTimeout time.Duration
	clock        clock.Clock
	ticker       ticker.Ticker

	quit chan struct{}
}

// Config configures a Pruner.
type Config struct {
	// Store is the graph swept for stale channels.
	Store *graph.Store

	// PruneTimeout is the maximum age of a channel's freshest half
	// before it is pruned.
	PruneTimeout time.Duration

	// Interval is how often Sweep runs; if Ticker is set, Interval is
	// ignored.
	Interval time.Duration

	// Ticker overrides the default interval ticker, primarily for tests.
	Ticker ticker.Ticker

	// Clock supplies the current time.
	Clock clock.Clock
}

// New constructs a Pruner from cfg.
func New(cfg Config) *Pruner {
	t := cfg.Ticker
	if t == nil {
		t = ticker.New(cfg.Interval)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Pruner{
		store:        cfg.Store,
		pruneTimeout: cfg.PruneTimeout,
		clock:        clk,
		ticker:       t,
		quit:         make(chan struct{}),
	}
}

// Start runs the ticker-driven sweep loop in its own goroutine, invoking
// onTick for every tick so the caller can marshal the actual Sweep call
// onto its single-threaded event loop (spec §5).
func (p *Pruner) Start(onTick func()) {
	p.ticker.Resume()
	go func() {
		for {
			select {
			case <-p.ticker.Ticks():
				onTick()
			case <-p.quit:
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (p *Pruner) Stop() {
	close(p.quit)
	p.ticker.Stop()
}

// Sweep destroys every public channel whose both halves have gone stale
// past the configured prune timeout. Local-only channels are never
// pruned. Collection happens before any destruction, since destroying a
// channel mutates the store's channel map Sweep is iterating over.
func (p *Pruner) Sweep() {
	highwater := p.clock.Now().Unix() - int64(p.pruneTimeout/time.Second)

	var stale []*graph.Channel
	p.store.ForEachChannel(func(c *graph.Channel) error {
		if !c.Public {
			return nil
		}
		if c.Half[0].LastTimestamp < highwater &&
			c.Half[1].LastTimestamp < highwater {

			stale = append(stale, c)
		}
		return nil
	})

	for _, c := range stale {
		log.Debugf("Pruning channel %d from network view (ages %d "+
			"and %d seconds)", c.SCID,
			p.clock.Now().Unix()-c.Half[0].LastTimestamp,
			p.clock.Now().Unix()-c.Half[1].LastTimestamp)
		p.store.DestroyChannel(c)
	}
}
