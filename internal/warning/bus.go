// Package warning is the single channel detectors use to report findings.
//
// Emission is synchronous and runs every subscriber in subscription order.
// A subscriber that returns an error or panics is logged and skipped; the
// remaining subscribers still run. The subscriber list is snapshotted before
// each emission, so subscribing or closing a subscription from inside a
// subscriber is safe and takes effect on the next emission.
package warning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscriber receives warnings.
type Subscriber func(ctx context.Context, w Warning) error

// Emitter is what detectors depend on.
type Emitter interface {
	Emit(ctx context.Context, w Warning)
}

// Bus fans warnings out to subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	nextID uint64

	logger  *slog.Logger
	metrics *Metrics
	clock   func() time.Time
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger sets a logger for subscriber failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(b *Bus) {
		b.clock = clock
	}
}

// NewBus creates an empty bus. Emitting with no subscribers is allowed.
func NewBus(opts ...Option) *Bus {
	b := &Bus{clock: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the handle returned by Subscribe. Closing it unsubscribes.
type Subscription struct {
	bus  *Bus
	id   uint64
	name string
	fn   Subscriber
	once sync.Once
}

// Name returns the subscriber name used in logs and metrics.
func (s *Subscription) Name() string {
	return s.name
}

// Close removes the subscriber. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
	return nil
}

// Subscribe appends fn to the subscriber list.
func (b *Bus) Subscribe(name string, fn Subscriber) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{bus: b, id: b.nextID, name: name, fn: fn}
	b.subs = append(b.subs, sub)
	return sub
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Emit stamps the warning and delivers it to every subscriber.
func (b *Bus) Emit(ctx context.Context, w Warning) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Timestamp.IsZero() {
		w.Timestamp = b.clock()
	}
	if w.Severity == "" {
		w.Severity = SeverityFor(w.Code)
	}
	if w.Message == "" {
		w.Message = w.Code.DefaultMessage()
	}
	if b.metrics != nil {
		b.metrics.IncEmitted(w.Code)
	}

	for _, sub := range b.snapshot() {
		b.deliver(ctx, sub, w)
	}
}

func (b *Bus) deliver(ctx context.Context, sub *Subscription, w Warning) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.IncSubscriberPanics(sub.name)
			}
			if b.logger != nil {
				b.logger.ErrorContext(ctx, "warning subscriber panicked",
					"subscriber", sub.name,
					"panic", fmt.Sprint(r),
					"code", string(w.Code),
				)
			}
		}
	}()

	if err := sub.fn(ctx, w); err != nil {
		if b.metrics != nil {
			b.metrics.IncSubscriberFailures(sub.name)
		}
		if b.logger != nil {
			b.logger.WarnContext(ctx, "warning subscriber failed",
				"subscriber", sub.name,
				"code", string(w.Code),
				"error", err,
			)
		}
	}
}

func (b *Bus) snapshot() []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Subscription, len(b.subs))
	copy(out, b.subs)
	return out
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
