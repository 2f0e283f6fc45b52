// Package host runs the game-side loop that owns all console dispatch and
// world mutation. Other goroutines (the readline reader, remote sessions)
// hand work to it instead of touching game state directly.
package host

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// ErrStopped is returned for work handed to a loop that has stopped.
var ErrStopped = errors.New("host loop stopped")

// DefaultQueue is the number of jobs that may wait for the loop.
const DefaultQueue = 64

// Loop serializes console dispatch and periodic ticks on one goroutine.
type Loop struct {
	console  *console.Console
	interval time.Duration
	jobs     chan func()
	done     chan struct{}

	mu      sync.Mutex
	tickers []func(dt time.Duration)
	started bool
}

// New creates a loop for c ticking every interval.
func New(c *console.Console, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Loop{
		console:  c,
		interval: interval,
		jobs:     make(chan func(), DefaultQueue),
		done:     make(chan struct{}),
	}
}

// Console returns the console driven by the loop.
func (l *Loop) Console() *console.Console { return l.console }

// OnTick registers fn to run on the loop every tick with the elapsed time
// since the previous tick. It must be called before Run.
func (l *Loop) OnTick(fn func(dt time.Duration)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		panic("host: OnTick after Run")
	}
	l.tickers = append(l.tickers, fn)
}

// Run processes jobs and ticks until ctx is cancelled. Jobs still queued
// when it returns are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return errors.New("host: loop already running")
	}
	l.started = true
	tickers := slices.Clone(l.tickers)
	l.mu.Unlock()

	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	logger.Debug("Host loop started", "interval", l.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Host loop stopped")
			return nil
		case job := <-l.jobs:
			l.safely("job", job)
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			for _, fn := range tickers {
				l.safely("tick", func() { fn(dt) })
			}
		}
	}
}

// Post queues fn without waiting for it to run.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.jobs <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// Run may have picked the job up just before stopping.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit feeds line to the console on the loop and returns its outcomes.
func (l *Loop) Submit(ctx context.Context, source, line string) ([]console.Outcome, error) {
	result := make(chan []console.Outcome, 1)
	if err := l.Do(ctx, func() {
		result <- l.console.Submit(source, line)
	}); err != nil {
		return nil, err
	}
	return <-result, nil
}

func (l *Loop) safely(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Host loop recovered from panic", "kind", kind, "panic", rec)
		}
	}()
	fn()
}
