package drift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"pixelguard/pkg/platform/circuit"
	"pixelguard/pkg/platform/sentinel"
)

// DefaultTimeServerURL answers with a JSON document carrying "unixtime".
const DefaultTimeServerURL = "https://worldtimeapi.org/api/timezone/Etc/UTC"

// NetworkClock reads an authoritative time reference.
type NetworkClock interface {
	Now(ctx context.Context) (time.Time, error)
}

// HTTPClock fetches Unix time from an HTTP time server. Concurrent callers
// share a single in-flight request.
type HTTPClock struct {
	url     string
	method  string
	client  *http.Client
	breaker *circuit.Breaker
	group   singleflight.Group
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// HTTPClockOption configures an HTTPClock.
type HTTPClockOption func(*HTTPClock)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPClockOption {
	return func(c *HTTPClock) {
		if client != nil {
			c.client = client
		}
	}
}

// WithMethod sets the request method. Some time servers only answer HEAD or POST.
func WithMethod(method string) HTTPClockOption {
	return func(c *HTTPClock) {
		if method != "" {
			c.method = method
		}
	}
}

// WithBreaker overrides the circuit breaker guarding the time server.
func WithBreaker(b *circuit.Breaker) HTTPClockOption {
	return func(c *HTTPClock) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithClockLogger sets the logger.
func WithClockLogger(logger *slog.Logger) HTTPClockOption {
	return func(c *HTTPClock) {
		c.logger = logger
	}
}

// WithClockMetrics sets the metrics collector.
func WithClockMetrics(m *Metrics) HTTPClockOption {
	return func(c *HTTPClock) {
		c.metrics = m
	}
}

// NewHTTPClock creates a client for the time server at url.
func NewHTTPClock(url string, opts ...HTTPClockOption) (*HTTPClock, error) {
	if url == "" {
		return nil, fmt.Errorf("time server url: %w", sentinel.ErrConfigurationMissing)
	}
	c := &HTTPClock{
		url:     url,
		method:  http.MethodGet,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: circuit.New("time-server", circuit.WithFailureThreshold(3)),
		tracer:  otel.Tracer("pixelguard/drift"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Degraded reports whether the time server has been failing.
func (c *HTTPClock) Degraded() bool {
	return c.breaker.IsOpen()
}

// Now implements NetworkClock.
func (c *HTTPClock) Now(ctx context.Context) (time.Time, error) {
	v, err, _ := c.group.Do(c.url, func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

type timeResponse struct {
	UnixTime int64 `json:"unixtime"`
}

func (c *HTTPClock) fetch(ctx context.Context) (time.Time, error) {
	ctx, span := c.tracer.Start(ctx, "drift.NetworkTime",
		trace.WithAttributes(
			attribute.String("url", c.url),
			attribute.String("method", c.method),
		),
	)
	defer span.End()

	start := time.Now()
	t, err := c.do(ctx)
	if c.metrics != nil {
		c.metrics.ObserveNetworkLatency(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "network time fetch failed")
		c.recordFailure(ctx, err)
		return time.Time{}, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "time server recovered", "breaker", c.breaker.Name())
	}
	return t, nil
}

func (c *HTTPClock) do(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, c.method, c.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("build time request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch network time: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("fetch network time: unexpected status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return time.Time{}, fmt.Errorf("read network time: %w", err)
	}
	var parsed timeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return time.Time{}, fmt.Errorf("decode network time: %w", err)
	}
	if parsed.UnixTime <= 0 {
		return time.Time{}, errors.New("decode network time: missing unixtime")
	}
	return time.Unix(parsed.UnixTime, 0), nil
}

func (c *HTTPClock) recordFailure(ctx context.Context, err error) {
	_, change := c.breaker.RecordFailure()
	if c.logger == nil {
		return
	}
	if change.Opened {
		c.logger.WarnContext(ctx, "time server unreachable, circuit opened",
			"breaker", c.breaker.Name(),
			"error", err,
		)
		return
	}
	c.logger.DebugContext(ctx, "network time fetch failed", "error", err)
}
