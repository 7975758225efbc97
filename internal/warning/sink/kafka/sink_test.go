package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/goleak"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/circuit"
	"pixelguard/pkg/platform/sentinel"
)

type fakeProducer struct {
	mu      sync.Mutex
	fail    error
	records []*kgo.Record
	calls   int
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: p.fail})
	}
	if p.fail == nil {
		p.records = append(p.records, rs...)
	}
	return results
}

func (p *fakeProducer) published() []*kgo.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kgo.Record(nil), p.records...)
}

type stubSigner struct{}

func (stubSigner) Sign(w warning.Warning) (string, error) { return "signed-" + string(w.Code), nil }

type KafkaSinkSuite struct {
	suite.Suite
	ctx      context.Context
	producer *fakeProducer
	metrics  *Metrics
	bus      *warning.Bus
}

func TestKafkaSinkSuite(t *testing.T) {
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupTest() {
	s.ctx = context.Background()
	s.producer = &fakeProducer{}
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.bus = warning.NewBus()
}

func (s *KafkaSinkSuite) newSink(opts ...Option) *Sink {
	sink, err := New(s.producer, "pixelguard.warnings", append([]Option{WithMetrics(s.metrics)}, opts...)...)
	s.Require().NoError(err)
	s.bus.Subscribe("kafka", sink.Record)
	return sink
}

// =============================================================================
// Publishing
// =============================================================================

func (s *KafkaSinkSuite) TestFlushPublishesInBatches() {
	sink := s.newSink(WithBatchSize(2))
	for i := 0; i < 5; i++ {
		s.bus.Emit(s.ctx, warning.New(domain.WarningTeleportDetected, domain.ModuleTeleport))
	}
	s.Equal(5, sink.Pending())

	s.Require().NoError(sink.Flush(s.ctx))

	s.Equal(0, sink.Pending())
	s.Equal(3, s.producer.calls)
	s.Len(s.producer.published(), 5)
	s.Equal(5.0, testutil.ToFloat64(s.metrics.Published))
}

func (s *KafkaSinkSuite) TestRecordShape() {
	sink := s.newSink(WithSigner(stubSigner{}))
	w := warning.New(domain.WarningSpeedhackDetected, domain.ModuleSpeedhack).WithAttr("divergence", "1.2s")
	s.bus.Emit(s.ctx, w)
	s.Require().NoError(sink.Flush(s.ctx))

	recs := s.producer.published()
	s.Require().Len(recs, 1)
	rec := recs[0]
	s.Equal("pixelguard.warnings", rec.Topic)

	var body payload
	s.Require().NoError(json.Unmarshal(rec.Value, &body))
	s.Equal(string(rec.Key), body.ID)
	s.Equal("SPEEDHACK_DETECTED", body.Code)
	s.Equal("critical", body.Severity)
	s.Equal("1.2s", body.Attrs["divergence"])

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal("SPEEDHACK_DETECTED", headers["code"])
	s.Equal("signed-SPEEDHACK_DETECTED", headers["report"])
}

// =============================================================================
// Failure handling
// =============================================================================

func (s *KafkaSinkSuite) TestFailedBatchIsRequeued() {
	breaker := circuit.New("test", circuit.WithFailureThreshold(2))
	sink := s.newSink(WithBreaker(breaker))
	s.bus.Emit(s.ctx, warning.New(domain.WarningTimeChanged, domain.ModuleSecuredTime))
	s.producer.fail = errors.New("broker down")

	s.Error(sink.Flush(s.ctx))
	s.Equal(1, sink.Pending())
	s.False(breaker.IsOpen())

	s.Error(sink.Flush(s.ctx))
	s.True(breaker.IsOpen())
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Failures))

	s.producer.fail = nil
	s.Require().NoError(sink.Flush(s.ctx))
	s.Equal(0, sink.Pending())
	s.Len(s.producer.published(), 1)
}

func (s *KafkaSinkSuite) TestConfiguration() {
	_, err := New(nil, "t")
	s.ErrorIs(err, sentinel.ErrConfigurationMissing)
	_, err = New(s.producer, "")
	s.ErrorIs(err, sentinel.ErrConfigurationMissing)
	_, err = NewClient(nil, "")
	s.ErrorIs(err, sentinel.ErrConfigurationMissing)
}

// =============================================================================
// Background loop
// =============================================================================

func (s *KafkaSinkSuite) TestRunDrainsOnShutdown() {
	defer goleak.VerifyNone(s.T(), goleak.IgnoreCurrent())

	sink := s.newSink(WithFlushInterval(time.Hour))
	s.bus.Emit(s.ctx, warning.New(domain.WarningMemoryTamper, domain.ModuleSecuredMemory))

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- sink.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.FailNow("run did not stop")
	}
	s.Len(s.producer.published(), 1)
}
