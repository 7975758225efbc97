package spatial

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
	tu "pixelguard/pkg/testutil"
)

type DetectorSuite struct {
	suite.Suite
	ctx      context.Context
	bus      *warning.Bus
	rec      *tu.Recorder
	metrics  *Metrics
	detector *Detector
	player   domain.Vector3
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorSuite))
}

func (s *DetectorSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = warning.NewBus()
	s.rec = tu.NewRecorder(s.bus)
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.player = domain.Vector3{}

	d, err := New(s.bus, WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.detector = d
	s.Require().NoError(d.AddTarget(Target{
		ID:       "player",
		Position: func() domain.Vector3 { return s.player },
	}))
}

func (s *DetectorSuite) second() {
	s.detector.OnTick(s.ctx, time.Second)
}

// =============================================================================
// Target management
// =============================================================================

func (s *DetectorSuite) TestAddTarget() {
	s.Run("requires an id", func() {
		err := s.detector.AddTarget(Target{Position: func() domain.Vector3 { return domain.Vector3{} }})
		s.ErrorIs(err, sentinel.ErrConfigurationMissing)
	})

	s.Run("requires a position getter", func() {
		err := s.detector.AddTarget(Target{ID: "npc"})
		s.ErrorIs(err, sentinel.ErrConfigurationMissing)
	})

	s.Run("replaces a target with the same id", func() {
		s.Require().NoError(s.detector.AddTarget(Target{
			ID:       "player",
			Position: func() domain.Vector3 { return s.player },
		}))
		s.Equal([]string{"player"}, s.detector.Targets())
	})
}

func (s *DetectorSuite) TestRemoveAndClear() {
	s.Require().NoError(s.detector.AddTarget(Target{
		ID:       "npc",
		Position: func() domain.Vector3 { return domain.Vector3{} },
	}))
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.Targets))

	s.True(s.detector.RemoveTarget("npc"))
	s.False(s.detector.RemoveTarget("npc"))
	s.Equal([]string{"player"}, s.detector.Targets())

	s.detector.ClearTargets()
	s.Empty(s.detector.Targets())
	s.Zero(testutil.ToFloat64(s.metrics.Targets))
}

// =============================================================================
// Detection
// =============================================================================

func (s *DetectorSuite) TestMovementAtLimitIsAllowed() {
	for i := 1; i <= 5; i++ {
		s.player = domain.Vector3{X: float32(3 * i)}
		s.second()
	}
	s.Zero(s.rec.Count(domain.WarningTeleportDetected))
}

func (s *DetectorSuite) TestJumpBeyondLimit() {
	s.player = domain.Vector3{X: 10}
	s.second()

	ws := s.rec.Warnings()
	s.Require().Len(ws, 1)
	s.Equal(domain.WarningTeleportDetected, ws[0].Code)
	s.Equal(domain.ModuleTeleport, ws[0].Source)
	s.Equal(domain.TeleportMessage("player", DefaultMaxDistancePerSecond), ws[0].Message)
	s.Equal("player", ws[0].Attrs["target"])
	s.Equal("10.00", ws[0].Attrs["distance"])

	s.Run("flagged position is not adopted as the baseline", func() {
		s.second()
		s.Equal(2, s.rec.Count(domain.WarningTeleportDetected))
	})
}

func (s *DetectorSuite) TestChecksRunOncePerCadence() {
	s.player = domain.Vector3{X: 10}
	s.detector.OnTick(s.ctx, 500*time.Millisecond)
	s.Zero(s.rec.Count(domain.WarningTeleportDetected))

	s.detector.OnTick(s.ctx, 500*time.Millisecond)
	s.Equal(1, s.rec.Count(domain.WarningTeleportDetected))
}

func (s *DetectorSuite) TestCadenceScalesLimit() {
	d, err := New(s.bus, WithCadence(2*time.Second))
	s.Require().NoError(err)
	pos := domain.Vector3{}
	s.Require().NoError(d.AddTarget(Target{
		ID:                   "car",
		Position:             func() domain.Vector3 { return pos },
		MaxDistancePerSecond: 5,
	}))

	pos = domain.Vector3{Z: 9}
	d.OnTick(s.ctx, 2*time.Second)
	s.Zero(s.rec.Count(domain.WarningTeleportDetected))
}

func (s *DetectorSuite) TestPauseSeeking() {
	s.detector.PauseSeeking(true)
	s.False(s.detector.Seeking())

	s.player = domain.Vector3{Y: 100}
	s.second()
	s.Zero(s.rec.Count(domain.WarningTeleportDetected))

	s.detector.PauseSeeking(false)
	s.second()
	s.Zero(s.rec.Count(domain.WarningTeleportDetected), "resume re-baselines")
}

func (s *DetectorSuite) TestSubscriberMayEditTargets() {
	s.bus.Subscribe("remover", func(_ context.Context, w warning.Warning) error {
		s.detector.RemoveTarget(w.Attrs["target"])
		return nil
	})
	s.player = domain.Vector3{X: 10}
	s.second()
	s.Empty(s.detector.Targets())
}
