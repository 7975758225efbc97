// Package drift detects clock manipulation.
//
// Detector compares a wall clock against a monotonic clock over fixed
// intervals; speed-hack tools that scale one of them make the two diverge.
// TimeDetector watches the wall clock itself, optionally against a network
// time reference, to catch users changing the system time.
package drift

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pixelguard/internal/clock"
	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

const (
	// DefaultThreshold is the divergence that counts as a false positive.
	DefaultThreshold = 500 * time.Millisecond
	// maxTickGap is the largest wall clock step treated as normal. Anything
	// larger, or negative, is a system clock change or a long stall.
	maxTickGap = time.Second
)

// Detector flags wall clock vs monotonic clock divergence.
//
// Each interval the two elapsed times are compared. A divergence above the
// threshold counts as a false positive; more than maxFalsePositives in one
// episode emits SPEEDHACK_DETECTED. Clean intervals count toward a cooldown
// that forgives earlier false positives.
//
// OnTick, PauseDetection and Stats may be called from different goroutines.
type Detector struct {
	emitter warning.Emitter
	clock   clock.Source
	logger  *slog.Logger
	metrics *Metrics

	interval          time.Duration
	threshold         time.Duration
	maxFalsePositives int
	cooldown          int

	mu               sync.Mutex
	paused           bool
	falsePositives   int
	cooldownProgress int
	wallStart        time.Duration
	monotonicStart   time.Duration
	prevWall         time.Duration
	accumulated      time.Duration
}

// Option configures the Detector.
type Option func(*Detector)

// WithClock overrides the clock source.
func WithClock(src clock.Source) Option {
	return func(d *Detector) {
		d.clock = src
	}
}

// WithInterval sets how much host time passes between comparisons.
func WithInterval(interval time.Duration) Option {
	return func(d *Detector) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithThreshold sets the tolerated divergence per interval.
func WithThreshold(threshold time.Duration) Option {
	return func(d *Detector) {
		if threshold > 0 {
			d.threshold = threshold
		}
	}
}

// WithMaxFalsePositives sets how many divergent intervals are tolerated.
func WithMaxFalsePositives(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.maxFalsePositives = n
		}
	}
}

// WithCooldown sets how many clean intervals forgive earlier false
// positives. Zero disables forgiveness.
func WithCooldown(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.cooldown = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// New creates a detector and takes its first baseline.
func New(emitter warning.Emitter, opts ...Option) (*Detector, error) {
	if emitter == nil {
		return nil, errors.New("warning emitter is required")
	}
	d := &Detector{
		emitter:           emitter,
		clock:             clock.System(),
		interval:          time.Second,
		threshold:         DefaultThreshold,
		maxFalsePositives: 3,
		cooldown:          30,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.rebaseline()
	return d, nil
}

// Kind implements guard.Module.
func (d *Detector) Kind() domain.ModuleKind {
	return domain.ModuleSpeedhack
}

// Stats is a snapshot of the detector counters.
type Stats struct {
	FalsePositives   int
	CooldownProgress int
	Paused           bool
}

// Stats returns the current counters.
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		FalsePositives:   d.falsePositives,
		CooldownProgress: d.cooldownProgress,
		Paused:           d.paused,
	}
}

// PauseDetection suspends checks. Resuming takes a fresh baseline so the
// paused period is not mistaken for drift.
func (d *Detector) PauseDetection(paused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused && !paused {
		d.rebaseline()
	}
	d.paused = paused
}

// OnTick implements guard.Ticker.
func (d *Detector) OnTick(ctx context.Context, delta time.Duration) {
	d.mu.Lock()
	w, detected := d.tick(ctx, delta)
	d.mu.Unlock()

	if detected {
		d.emitter.Emit(ctx, w)
	}
}

func (d *Detector) tick(ctx context.Context, delta time.Duration) (warning.Warning, bool) {
	if d.paused {
		return warning.Warning{}, false
	}

	now := d.clock.Wall()
	step := now - d.prevWall
	if step < 0 || step > maxTickGap {
		if d.metrics != nil {
			d.metrics.IncDiscontinuities()
		}
		if d.logger != nil {
			d.logger.DebugContext(ctx, "system time change or long stall, rebaselining", "step", step)
		}
		d.rebaseline()
		return warning.Warning{}, false
	}
	d.prevWall = now

	d.accumulated += delta
	if d.accumulated < d.interval {
		return warning.Warning{}, false
	}
	d.accumulated = 0
	return d.compare(ctx, now)
}

// compare runs with d.mu held and returns the warning to emit, if any.
func (d *Detector) compare(ctx context.Context, wallNow time.Duration) (warning.Warning, bool) {
	if d.metrics != nil {
		d.metrics.IncIntervals()
	}
	wallElapsed := wallNow - d.wallStart
	monotonicElapsed := d.clock.Monotonic() - d.monotonicStart
	divergence := wallElapsed - monotonicElapsed
	if divergence < 0 {
		divergence = -divergence
	}

	var (
		w        warning.Warning
		detected bool
	)
	if divergence > d.threshold {
		d.falsePositives++
		d.cooldownProgress = 0
		if d.metrics != nil {
			d.metrics.IncFalsePositives()
		}
		if d.falsePositives > d.maxFalsePositives {
			if d.metrics != nil {
				d.metrics.IncDetections()
			}
			if d.logger != nil {
				d.logger.WarnContext(ctx, "speed hack detected", "divergence", divergence)
			}
			w = warning.New(domain.WarningSpeedhackDetected, d.Kind()).
				WithAttr("divergence", divergence.String())
			detected = true
			d.falsePositives = 0
		} else if d.logger != nil {
			d.logger.DebugContext(ctx, "clock divergence",
				"divergence", divergence,
				"false_positives_left", d.maxFalsePositives-d.falsePositives,
			)
		}
		d.rebaseline()
		return w, detected
	}

	if d.falsePositives > 0 && d.cooldown > 0 {
		d.cooldownProgress++
		if d.cooldownProgress >= d.cooldown {
			if d.logger != nil {
				d.logger.DebugContext(ctx, "clock divergence forgiven", "false_positives", d.falsePositives)
			}
			d.falsePositives = 0
			d.cooldownProgress = 0
		}
	}
	return w, detected
}

func (d *Detector) rebaseline() {
	d.wallStart = d.clock.Wall()
	d.monotonicStart = d.clock.Monotonic()
	d.prevWall = d.wallStart
	d.accumulated = 0
}
