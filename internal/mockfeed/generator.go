// Package mockfeed simulates live token prices with a bounded random walk
// over a fixed seed set.
package mockfeed

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"tokenscope/internal/token"
)

const (
	// DefaultInterval is the time between ticks.
	DefaultInterval = 3 * time.Second

	// MinPrice is the floor applied to every generated price.
	MinPrice = 0.0001

	maxPriceMove = 0.02
	maxChange24h = 0.2
)

// Generator emits one update per seed record on every tick.
type Generator struct {
	seed     []token.Record
	interval time.Duration
	rnd      *rand.Rand
	log      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithInterval sets the tick interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithRand replaces the random source, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a generator over a private copy of seed.
func New(seed []token.Record, opts ...Option) *Generator {
	g := &Generator{
		seed:     token.CloneAll(seed),
		interval: DefaultInterval,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Interval returns the tick interval.
func (g *Generator) Interval() time.Duration { return g.interval }

// Start runs the tick loop in a goroutine, calling emit once per record per
// tick. The loop ends when ctx is cancelled or the returned stop function is
// called; stop may be called more than once and waits for the loop to exit.
// A generator must not be started twice.
func (g *Generator) Start(ctx context.Context, emit func(token.Update)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		g.log.Info("mock feed started", "records", len(g.seed), "interval", g.interval)
		var ticks int
		for {
			select {
			case <-ctx.Done():
				g.log.Info("mock feed stopped", "ticks", ticks)
				return
			case <-ticker.C:
				ticks++
				for _, u := range Step(g.seed, g.rnd) {
					emit(u)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Step computes one tick's updates for records. Every update is derived
// from the record as given, so repeated steps over the same seed do not
// accumulate drift.
func Step(records []token.Record, rnd *rand.Rand) []token.Update {
	out := make([]token.Update, len(records))
	for i, r := range records {
		delta := r.Price * uniform(rnd, -maxPriceMove, maxPriceMove)
		price := max(MinPrice, r.Price+delta)

		hist := make([]float64, 0, len(r.History))
		if len(r.History) > 0 {
			hist = append(hist, r.History[1:]...)
			hist = append(hist, price)
		}

		out[i] = token.Update{
			ID:        r.ID,
			Price:     price,
			Change24h: uniform(rnd, -maxChange24h, maxChange24h),
			History:   hist,
		}
	}
	return out
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}
