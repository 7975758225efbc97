// Package kafka publishes warnings to a Kafka topic for backend telemetry.
//
// Record never blocks the emitting detector: warnings are queued in a ring
// buffer and a background Run loop publishes them in batches. When the
// broker keeps failing the circuit breaker opens and batches stay buffered
// until a probe succeeds.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"pixelguard/internal/warning"
	"pixelguard/pkg/platform/circuit"
	"pixelguard/pkg/platform/sentinel"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	defaultBufferSize    = 4096
)

// Producer is the slice of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// ReportSigner attaches a signed report to each record.
type ReportSigner interface {
	Sign(w warning.Warning) (string, error)
}

// Sink buffers warnings and publishes them.
type Sink struct {
	producer  Producer
	topic     string
	buffer    *warning.RingBuffer
	breaker   *circuit.Breaker
	signer    ReportSigner
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Sink)

func WithBatchSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithBuffer replaces the default ring buffer.
func WithBuffer(b *warning.RingBuffer) Option {
	return func(s *Sink) {
		s.buffer = b
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) {
		s.breaker = b
	}
}

// WithSigner adds a "report" header holding a signed detection report.
func WithSigner(signer ReportSigner) Option {
	return func(s *Sink) {
		s.signer = signer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Sink) {
		s.metrics = m
	}
}

func New(producer Producer, topic string, opts ...Option) (*Sink, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer: %w", sentinel.ErrConfigurationMissing)
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic: %w", sentinel.ErrConfigurationMissing)
	}
	s := &Sink{
		producer:  producer,
		topic:     topic,
		batchSize: defaultBatchSize,
		interval:  defaultFlushInterval,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.buffer == nil {
		s.buffer = warning.NewRingBuffer(defaultBufferSize, nil)
	}
	if s.breaker == nil {
		s.breaker = circuit.New("kafka-warnings")
	}
	return s, nil
}

// Record implements warning.Subscriber.
func (s *Sink) Record(ctx context.Context, w warning.Warning) error {
	return s.buffer.Record(ctx, w)
}

// Pending returns the number of buffered warnings.
func (s *Sink) Pending() int { return s.buffer.Len() }

// Run publishes buffered warnings until ctx is done, then makes one last
// attempt with a short deadline.
func (s *Sink) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.Flush(drainCtx); err != nil {
				s.logger.WarnContext(ctx, "final warning flush failed", "error", err, "pending", s.Pending())
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "warning publish failed", "error", err, "pending", s.Pending())
			}
		}
	}
}

// Flush publishes everything currently buffered, one batch at a time. A
// failed batch is put back at the front of the buffer.
func (s *Sink) Flush(ctx context.Context) error {
	for {
		batch := s.buffer.DequeueBatch(s.batchSize)
		if len(batch) == 0 {
			return nil
		}
		if err := s.publish(ctx, batch); err != nil {
			s.buffer.Requeue(batch)
			return err
		}
	}
}

func (s *Sink) publish(ctx context.Context, batch []warning.Warning) error {
	records := make([]*kgo.Record, 0, len(batch))
	for _, w := range batch {
		rec, err := s.record(w)
		if err != nil {
			// unencodable warnings are dropped rather than retried forever
			s.logger.ErrorContext(ctx, "drop unencodable warning", "warning_id", w.ID.String(), "error", err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	err := s.producer.ProduceSync(ctx, records...).FirstErr()
	if err != nil {
		_, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "kafka circuit opened", "breaker", s.breaker.Name())
		}
		if s.metrics != nil {
			s.metrics.IncFailures()
		}
		return fmt.Errorf("produce %d warnings: %w", len(records), err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "kafka circuit closed", "breaker", s.breaker.Name())
	}
	if s.metrics != nil {
		s.metrics.AddPublished(len(records))
	}
	return nil
}

// payload is the JSON value of each record.
type payload struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Source    string            `json:"source"`
	Severity  string            `json:"severity"`
	Timestamp string            `json:"timestamp"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func (s *Sink) record(w warning.Warning) (*kgo.Record, error) {
	value, err := json.Marshal(payload{
		ID:        w.ID.String(),
		Code:      string(w.Code),
		Message:   w.Message,
		Source:    string(w.Source),
		Severity:  string(w.Severity),
		Timestamp: w.Timestamp.UTC().Format(time.RFC3339Nano),
		Attrs:     w.Attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal warning: %w", err)
	}
	rec := &kgo.Record{
		Topic:     s.topic,
		Key:       []byte(w.ID.String()),
		Value:     value,
		Timestamp: w.Timestamp,
		Headers: []kgo.RecordHeader{
			{Key: "code", Value: []byte(w.Code)},
			{Key: "severity", Value: []byte(w.Severity)},
		},
	}
	if s.signer != nil {
		signed, err := s.signer.Sign(w)
		if err != nil {
			return nil, err
		}
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: "report", Value: []byte(signed)})
	}
	return rec, nil
}
