// Package spatial flags tracked entities that move faster than allowed.
package spatial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

// DefaultMaxDistancePerSecond applies to targets added without a limit.
const DefaultMaxDistancePerSecond = 3.0

// Target is an entity whose displacement is checked.
type Target struct {
	ID       string
	Position func() domain.Vector3
	// MaxDistancePerSecond defaults to the detector default when zero.
	MaxDistancePerSecond float64
}

type tracked struct {
	Target
	last domain.Vector3
}

// Detector checks every tracked target once per cadence. Exceeding the limit
// is reported as suspicious; the host decides what to do about it.
type Detector struct {
	emitter    warning.Emitter
	logger     *slog.Logger
	metrics    *Metrics
	cadence    time.Duration
	defaultMax float64

	mu      sync.Mutex
	targets []*tracked
	timer   time.Duration
	seeking bool
}

// Option configures the Detector.
type Option func(*Detector)

// WithCadence sets how often targets are checked. Limits are scaled to it.
func WithCadence(cadence time.Duration) Option {
	return func(d *Detector) {
		if cadence > 0 {
			d.cadence = cadence
		}
	}
}

// WithDefaultMaxDistance sets the limit for targets added without one.
func WithDefaultMaxDistance(perSecond float64) Option {
	return func(d *Detector) {
		if perSecond > 0 {
			d.defaultMax = perSecond
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

// New creates a detector that starts seeking immediately.
func New(emitter warning.Emitter, opts ...Option) (*Detector, error) {
	if emitter == nil {
		return nil, errors.New("warning emitter is required")
	}
	d := &Detector{
		emitter:    emitter,
		cadence:    time.Second,
		defaultMax: DefaultMaxDistancePerSecond,
		seeking:    true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.timer = d.cadence
	return d, nil
}

// Kind implements guard.Module.
func (d *Detector) Kind() domain.ModuleKind {
	return domain.ModuleTeleport
}

// AddTarget starts tracking t from its current position. A target with an
// existing ID is replaced.
func (d *Detector) AddTarget(t Target) error {
	if t.ID == "" {
		return fmt.Errorf("target id: %w", sentinel.ErrConfigurationMissing)
	}
	if t.Position == nil {
		return fmt.Errorf("target %q position: %w", t.ID, sentinel.ErrConfigurationMissing)
	}
	if t.MaxDistancePerSecond <= 0 {
		t.MaxDistancePerSecond = d.defaultMax
	}
	entry := &tracked{Target: t, last: t.Position()}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.targets {
		if existing.ID == t.ID {
			d.targets[i] = entry
			return nil
		}
	}
	d.targets = append(d.targets, entry)
	d.observeTargets()
	return nil
}

// RemoveTarget stops tracking id. It reports whether the target was tracked.
func (d *Detector) RemoveTarget(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, t := range d.targets {
		if t.ID == id {
			d.targets = append(d.targets[:i], d.targets[i+1:]...)
			d.observeTargets()
			return true
		}
	}
	return false
}

// ClearTargets stops tracking everything.
func (d *Detector) ClearTargets() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets = nil
	d.observeTargets()
}

// Targets returns the tracked IDs in insertion order.
func (d *Detector) Targets() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, len(d.targets))
	for i, t := range d.targets {
		ids[i] = t.ID
	}
	return ids
}

// PauseSeeking suspends checks. Resuming re-baselines every target so
// movement during the pause is not reported.
func (d *Detector) PauseSeeking(paused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !paused && !d.seeking {
		for _, t := range d.targets {
			t.last = t.Position()
		}
	}
	d.seeking = !paused
}

// Seeking reports whether checks are active.
func (d *Detector) Seeking() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seeking
}

type violation struct {
	target   Target
	distance float64
}

// OnTick implements guard.Ticker.
func (d *Detector) OnTick(ctx context.Context, delta time.Duration) {
	d.mu.Lock()
	d.timer -= delta
	if d.timer > 0 {
		d.mu.Unlock()
		return
	}
	d.timer = d.cadence
	if !d.seeking {
		d.mu.Unlock()
		return
	}
	found := d.check()
	d.mu.Unlock()

	// emit outside the lock so subscribers may edit targets
	for _, v := range found {
		d.report(ctx, v)
	}
}

func (d *Detector) check() []violation {
	scale := d.cadence.Seconds()
	var found []violation
	for _, t := range d.targets {
		if d.metrics != nil {
			d.metrics.IncChecks()
		}
		pos := t.Position()
		dist := pos.Distance(t.last)
		if dist > t.MaxDistancePerSecond*scale {
			found = append(found, violation{target: t.Target, distance: dist})
			continue
		}
		t.last = pos
	}
	return found
}

func (d *Detector) report(ctx context.Context, v violation) {
	if d.metrics != nil {
		d.metrics.IncDetections()
	}
	if d.logger != nil {
		d.logger.WarnContext(ctx, "teleport detected",
			"target", v.target.ID,
			"distance", v.distance,
			"limit", v.target.MaxDistancePerSecond,
		)
	}
	d.emitter.Emit(ctx, warning.New(domain.WarningTeleportDetected, d.Kind()).
		WithMessage(domain.TeleportMessage(v.target.ID, v.target.MaxDistancePerSecond)).
		WithAttr("target", v.target.ID).
		WithAttr("distance", strconv.FormatFloat(v.distance, 'f', 2, 64)))
}

func (d *Detector) observeTargets() {
	if d.metrics != nil {
		d.metrics.SetTargets(len(d.targets))
	}
}
