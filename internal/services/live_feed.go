package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrFeedRunning = errors.New("live feed already running")
	ErrFeedStopped = errors.New("live feed stopped")
)

// DeltaSource supplies the synthetic changes applied on every tick.
// CountDelta returns -1, 0 or +1; RateDelta returns a value in [-3, 3).
type DeltaSource interface {
	CountDelta() int
	RateDelta() float64
}

type FeedTarget interface {
	Perturb(source DeltaSource)
}

type RandomDeltaSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomDeltaSource(seed int64) *RandomDeltaSource {
	return &RandomDeltaSource{rng: rand.New(rand.NewSource(seed))}
}

func (source *RandomDeltaSource) CountDelta() int {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.rng.Intn(3) - 1
}

func (source *RandomDeltaSource) RateDelta() float64 {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.rng.Float64()*6 - 3
}

type LiveMetricFeed struct {
	name     string
	interval time.Duration
	source   DeltaSource
	target   FeedTarget
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopped bool
	runCtx  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLiveMetricFeed(name string, interval time.Duration, source DeltaSource, target FeedTarget, logger zerolog.Logger) *LiveMetricFeed {
	return &LiveMetricFeed{
		name:     name,
		interval: interval,
		source:   source,
		target:   target,
		logger:   logger.With().Str("component", "feed").Str("feed", name).Logger(),
	}
}

func (feed *LiveMetricFeed) Start(ctx context.Context) error {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	if feed.stopped {
		return ErrFeedStopped
	}
	if feed.running {
		return ErrFeedRunning
	}
	if feed.interval <= 0 {
		return errors.New("live feed interval must be positive")
	}

	runCtx, cancel := context.WithCancel(ctx)
	feed.runCtx = runCtx
	feed.cancel = cancel
	feed.done = make(chan struct{})
	feed.running = true

	ticker := time.NewTicker(feed.interval)
	go func() {
		defer close(feed.done)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				feed.markStopped()
				return
			case <-ticker.C:
				feed.Tick()
			}
		}
	}()

	feed.logger.Debug().Dur("interval", feed.interval).Msg("live feed started")
	return nil
}

// Tick applies one perturbation. It is a no-op once the feed is stopped or
// the context passed to Start is done.
func (feed *LiveMetricFeed) Tick() {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	if feed.stopped || (feed.runCtx != nil && feed.runCtx.Err() != nil) {
		return
	}
	feed.target.Perturb(feed.source)
}

// Stop cancels the ticker and waits for the ticking goroutine to exit.
func (feed *LiveMetricFeed) Stop() {
	feed.mu.Lock()
	feed.stopped = true
	cancel := feed.cancel
	done := feed.done
	feed.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (feed *LiveMetricFeed) Stopped() bool {
	feed.mu.Lock()
	defer feed.mu.Unlock()
	return feed.stopped
}

func (feed *LiveMetricFeed) markStopped() {
	feed.mu.Lock()
	feed.stopped = true
	feed.mu.Unlock()
	feed.logger.Debug().Msg("live feed stopped")
}
