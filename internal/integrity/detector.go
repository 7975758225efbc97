package integrity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

// State is the detector lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateScanning      State = "scanning"
	StateClean         State = "clean"
	StateFlagged       State = "flagged"
	// StateDisabled means module enumeration is unavailable on this platform.
	StateDisabled State = "disabled"
)

// Anomaly reasons, used as attribute and metric label values.
const (
	ReasonWhitelistUnavailable = "whitelist_unavailable"
	ReasonNoModules            = "no_modules"
	ReasonUnknownModule        = "unknown_module"
	ReasonUnknownHash          = "unknown_hash"
	ReasonEnumerationFailed    = "enumeration_failed"
)

// Detector compares loaded code modules against a whitelist.
//
// The whitelist is loaded once at construction. A missing or malformed
// whitelist leaves the detector flagged: every check reports an anomaly.
type Detector struct {
	emitter warning.Emitter
	source  Source
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu        sync.Mutex
	state     State
	whitelist *Whitelist
	genuine   bool
	reason    string
	offender  string
}

// Option configures the Detector.
type Option func(*Detector)

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

// New loads the whitelist and runs the initial scan, emitting
// INJECTION_DETECTED if it finds an anomaly. On platforms where source
// cannot enumerate modules the detector is returned disabled.
func New(ctx context.Context, emitter warning.Emitter, loader Loader, source Source, opts ...Option) (*Detector, error) {
	if emitter == nil {
		return nil, errors.New("warning emitter is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("whitelist loader: %w", sentinel.ErrConfigurationMissing)
	}
	if source == nil {
		return nil, fmt.Errorf("module source: %w", sentinel.ErrConfigurationMissing)
	}
	d := &Detector{
		emitter: emitter,
		source:  source,
		state:   StateUninitialized,
		tracer:  otel.Tracer("pixelguard/integrity"),
	}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := source.Modules(ctx); errors.Is(err, sentinel.ErrPlatformUnsupported) {
		d.state = StateDisabled
		if d.logger != nil {
			d.logger.WarnContext(ctx, "module enumeration unsupported, integrity detector disabled")
		}
		return d, nil
	}

	d.loadWhitelist(ctx, loader)
	if !d.genuine {
		d.mu.Lock()
		d.state = StateFlagged
		d.mu.Unlock()
		d.report(ctx, ReasonWhitelistUnavailable, "")
		return d, nil
	}

	if d.ScanLoadedModules(ctx) {
		d.report(ctx, d.lastReason(), d.Offender())
	}
	return d, nil
}

// Kind implements guard.Module.
func (d *Detector) Kind() domain.ModuleKind {
	return domain.ModuleIntegrity
}

// State returns the current state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Offender returns the name of the last module found not allowed.
func (d *Detector) Offender() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offender
}

// Whitelist returns the loaded whitelist, nil when it failed to load.
func (d *Detector) Whitelist() *Whitelist {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.whitelist
}

func (d *Detector) loadWhitelist(ctx context.Context, loader Loader) {
	data, err := loader.Load(ctx)
	if err == nil {
		var wl *Whitelist
		wl, err = DecodeWhitelist(bytes.NewReader(data))
		if err == nil {
			d.whitelist = wl
			d.genuine = true
			return
		}
	}
	if d.logger != nil {
		d.logger.ErrorContext(ctx, "whitelist unavailable, failing closed", "error", err)
	}
}

// ScanLoadedModules checks every loaded module and reports whether an
// anomaly was found. It updates state and metrics but does not emit.
func (d *Detector) ScanLoadedModules(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateDisabled {
		return false
	}
	if !d.genuine {
		d.state = StateFlagged
		d.reason = ReasonWhitelistUnavailable
		return true
	}

	ctx, span := d.tracer.Start(ctx, "integrity.ScanLoadedModules")
	defer span.End()
	start := time.Now()
	d.state = StateScanning
	if d.metrics != nil {
		d.metrics.IncScans()
	}

	mods, err := d.source.Modules(ctx)
	if d.metrics != nil {
		d.metrics.ObserveScanDuration(time.Since(start).Seconds())
		d.metrics.SetModules(len(mods))
	}
	span.SetAttributes(attribute.Int("modules", len(mods)))

	reason := ""
	switch {
	case errors.Is(err, sentinel.ErrPlatformUnsupported):
		d.state = StateDisabled
		return false
	case err != nil:
		reason = ReasonEnumerationFailed
		if d.logger != nil {
			d.logger.ErrorContext(ctx, "module enumeration failed", "error", err)
		}
	case len(mods) == 0:
		reason = ReasonNoModules
	default:
		for _, m := range mods {
			if r := d.check(m); r != "" {
				reason = r
				d.offender = m.Name
				if d.logger != nil {
					d.logger.DebugContext(ctx, "module not allowed",
						"module", m.Name,
						"path", m.Path,
						"hash", Hash(m.Name, m.Token),
					)
				}
				break
			}
		}
	}

	if reason == "" {
		d.state = StateClean
		return false
	}
	d.state = StateFlagged
	d.reason = reason
	span.RecordError(sentinel.ErrTamperDetected)
	span.SetStatus(codes.Error, reason)
	return true
}

// OnModuleLoaded implements guard.LoadListener: it checks one newly loaded
// module and emits INJECTION_DETECTED when it is not allowed.
func (d *Detector) OnModuleLoaded(ctx context.Context, m domain.CodeModule) {
	d.mu.Lock()
	if d.state == StateDisabled {
		d.mu.Unlock()
		return
	}
	d.state = StateScanning
	reason := ReasonWhitelistUnavailable
	if d.genuine {
		reason = d.check(m)
	}
	if reason == "" {
		d.state = StateClean
		d.mu.Unlock()
		return
	}
	d.state = StateFlagged
	d.reason = reason
	d.offender = m.Name
	d.mu.Unlock()

	d.report(ctx, reason, m.Name)
}

// check returns the anomaly reason for m, or "" when it is allowed.
func (d *Detector) check(m domain.CodeModule) string {
	if !d.whitelist.Knows(m.Name) {
		return ReasonUnknownModule
	}
	if !d.whitelist.Allowed(m.Name, Hash(m.Name, m.Token)) {
		return ReasonUnknownHash
	}
	return ""
}

func (d *Detector) lastReason() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reason
}

func (d *Detector) report(ctx context.Context, reason, module string) {
	if d.metrics != nil {
		d.metrics.IncAnomaly(reason)
	}
	if d.logger != nil {
		d.logger.WarnContext(ctx, "injection detected", "reason", reason, "module", module)
	}
	w := warning.New(domain.WarningInjectionDetected, d.Kind()).WithAttr("reason", reason)
	if module != "" {
		w = w.WithAttr("module", module)
	}
	d.emitter.Emit(ctx, w)
}
