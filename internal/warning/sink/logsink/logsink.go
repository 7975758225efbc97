// Package logsink writes warnings to a structured logger.
package logsink

import (
	"context"
	"log/slog"

	"pixelguard/internal/warning"
	"pixelguard/pkg/platform/sentinel"
)

// LogWarning writes one warning record. Critical warnings log at error
// level and carry sentinel.ErrTamperDetected so alerting can match on it.
func LogWarning(ctx context.Context, logger *slog.Logger, w warning.Warning, extra ...any) {
	if logger == nil {
		return
	}
	args := append(w.LogArgs(), extra...)

	switch w.Severity {
	case warning.SeverityCritical:
		args = append(args, "error", sentinel.ErrTamperDetected.Error())
		logger.ErrorContext(ctx, w.Message, args...)
	case warning.SeverityWarning:
		logger.WarnContext(ctx, w.Message, args...)
	default:
		logger.InfoContext(ctx, w.Message, args...)
	}
}

// Sink is a bus subscriber that logs warnings, optionally sampled.
type Sink struct {
	logger  *slog.Logger
	sampler *warning.Sampler
}

type Option func(*Sink)

// WithSampler drops a share of warnings before logging. Critical warnings
// are always logged.
func WithSampler(s *warning.Sampler) Option {
	return func(k *Sink) {
		k.sampler = s
	}
}

func New(logger *slog.Logger, opts ...Option) *Sink {
	s := &Sink{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle implements warning.Subscriber.
func (s *Sink) Handle(ctx context.Context, w warning.Warning) error {
	if s.sampler != nil && w.Severity != warning.SeverityCritical && !s.sampler.ShouldSample(w.Code) {
		return nil
	}
	LogWarning(ctx, s.logger, w)
	return nil
}
