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
	DefaultTimeInterval  = 10 * time.Second
	DefaultTimeTolerance = 60 * time.Second
)

// TimeDetector catches changes to the system time.
//
// In local mode it checks that the wall clock advanced by roughly the host
// time between checks. In network mode it compares wall clock progress with
// the progress of a NetworkClock. Network results are delivered back on the
// tick goroutine, so detector state is never touched concurrently.
type TimeDetector struct {
	emitter   warning.Emitter
	clock     clock.Source
	network   NetworkClock
	logger    *slog.Logger
	metrics   *Metrics
	interval  time.Duration
	tolerance time.Duration

	timer       time.Duration
	hasBaseline bool
	lastWall    time.Duration
	lastNetwork time.Time
	inflight    bool

	results chan fetchResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type fetchResult struct {
	network time.Time
	err     error
}

// TimeOption configures the TimeDetector.
type TimeOption func(*TimeDetector)

// WithTimeClock overrides the clock source.
func WithTimeClock(src clock.Source) TimeOption {
	return func(d *TimeDetector) {
		d.clock = src
	}
}

// WithNetworkClock switches to network comparison mode.
func WithNetworkClock(nc NetworkClock) TimeOption {
	return func(d *TimeDetector) {
		d.network = nc
	}
}

// WithCheckInterval sets how much host time passes between checks.
func WithCheckInterval(interval time.Duration) TimeOption {
	return func(d *TimeDetector) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithTolerance sets the accepted deviation per check.
func WithTolerance(tolerance time.Duration) TimeOption {
	return func(d *TimeDetector) {
		if tolerance > 0 {
			d.tolerance = tolerance
		}
	}
}

// WithTimeLogger sets the logger.
func WithTimeLogger(logger *slog.Logger) TimeOption {
	return func(d *TimeDetector) {
		d.logger = logger
	}
}

// WithTimeMetrics sets the metrics collector.
func WithTimeMetrics(m *Metrics) TimeOption {
	return func(d *TimeDetector) {
		d.metrics = m
	}
}

// NewTimeDetector creates a system time change detector.
func NewTimeDetector(emitter warning.Emitter, opts ...TimeOption) (*TimeDetector, error) {
	if emitter == nil {
		return nil, errors.New("warning emitter is required")
	}
	d := &TimeDetector{
		emitter:   emitter,
		clock:     clock.System(),
		interval:  DefaultTimeInterval,
		tolerance: DefaultTimeTolerance,
		results:   make(chan fetchResult, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Kind implements guard.Module.
func (d *TimeDetector) Kind() domain.ModuleKind {
	return domain.ModuleSecuredTime
}

// NetworkMode reports whether a NetworkClock is configured.
func (d *TimeDetector) NetworkMode() bool {
	return d.network != nil
}

// Degraded reports whether the network clock has tripped its circuit breaker,
// in which case checks run on the local fallback. Clocks without a breaker are
// never degraded.
func (d *TimeDetector) Degraded() bool {
	dc, ok := d.network.(interface{ Degraded() bool })
	return ok && dc.Degraded()
}

// OnTick implements guard.Ticker.
func (d *TimeDetector) OnTick(ctx context.Context, delta time.Duration) {
	select {
	case res := <-d.results:
		d.inflight = false
		d.handleResult(ctx, res)
	default:
	}

	if d.timer > 0 {
		d.timer -= delta
		return
	}
	d.timer = d.interval
	d.check(ctx)
}

// Close drops any in-flight network request. Results arriving afterwards
// are discarded.
func (d *TimeDetector) Close() error {
	d.cancel()
	d.wg.Wait()
	return nil
}

func (d *TimeDetector) check(ctx context.Context) {
	if d.network == nil {
		d.checkLocal(ctx)
		return
	}
	if d.inflight {
		return
	}
	if d.ctx.Err() != nil {
		return
	}
	d.inflight = true
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		t, err := d.network.Now(d.ctx)
		if d.ctx.Err() != nil {
			return
		}
		select {
		case d.results <- fetchResult{network: t, err: err}:
		default:
		}
	}()
}

func (d *TimeDetector) checkLocal(ctx context.Context) {
	now := d.clock.Wall()
	if !d.hasBaseline {
		d.lastWall = now
		d.hasBaseline = true
		return
	}
	elapsed := now - d.lastWall
	d.lastWall = now
	deviation := elapsed - d.interval
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > d.tolerance {
		d.report(ctx, "local", deviation)
	}
}

func (d *TimeDetector) handleResult(ctx context.Context, res fetchResult) {
	if res.err != nil {
		if d.metrics != nil {
			d.metrics.IncNetworkFailures()
		}
		if d.logger != nil {
			d.logger.WarnContext(ctx, "network time unavailable, falling back to local check", "error", res.err)
		}
		d.lastNetwork = time.Time{}
		d.checkLocal(ctx)
		return
	}

	now := d.clock.Wall()
	if !d.hasBaseline || d.lastNetwork.IsZero() {
		d.lastWall = now
		d.lastNetwork = res.network
		d.hasBaseline = true
		return
	}
	localDiff := now - d.lastWall
	networkDiff := res.network.Sub(d.lastNetwork)
	d.lastWall = now
	d.lastNetwork = res.network

	deviation := localDiff - networkDiff
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > d.tolerance {
		d.report(ctx, "network", deviation)
	}
}

func (d *TimeDetector) report(ctx context.Context, mode string, deviation time.Duration) {
	if d.metrics != nil {
		d.metrics.IncTimeChanges()
	}
	if d.logger != nil {
		d.logger.WarnContext(ctx, "system time change detected", "mode", mode, "deviation", deviation)
	}
	d.emitter.Emit(ctx, warning.New(domain.WarningTimeChanged, d.Kind()).
		WithAttr("mode", mode).
		WithAttr("deviation", deviation.String()))
}
