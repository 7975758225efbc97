package clock

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// StepFunc is called once per loop iteration with the elapsed time since the
// previous iteration.
type StepFunc func(ctx context.Context, delta time.Duration, isFixedStep bool)

// Loop drives a StepFunc at a fixed rate. Large gaps (debugger stops, GC
// pauses, suspended laptops) are clamped so a single step never reports more
// than MaxDelta.
type Loop struct {
	rate     time.Duration
	maxDelta time.Duration
	fixed    bool
	step     StepFunc
	logger   *slog.Logger
	now      func() time.Time

	ticks atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithMaxDelta caps the delta passed to a single step.
func WithMaxDelta(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.maxDelta = d
		}
	}
}

// WithFixedStep marks every step as a fixed-rate step.
func WithFixedStep() LoopOption {
	return func(l *Loop) {
		l.fixed = true
	}
}

// WithLoopLogger sets the logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop builds a loop ticking every rate.
func NewLoop(rate time.Duration, step StepFunc, opts ...LoopOption) *Loop {
	if rate <= 0 {
		rate = time.Second / 60
	}
	l := &Loop{
		rate:     rate,
		maxDelta: time.Second,
		step:     step,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ticks returns how many steps have run.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := l.now()
			delta := now.Sub(last)
			last = now
			if delta > l.maxDelta {
				if l.logger != nil {
					l.logger.DebugContext(ctx, "clamping tick delta", "delta", delta, "max", l.maxDelta)
				}
				delta = l.maxDelta
			}
			if delta < 0 {
				delta = 0
			}
			l.ticks.Add(1)
			l.step(ctx, delta, l.fixed)
		}
	}
}
