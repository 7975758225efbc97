package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

type fakeModule struct {
	kind       domain.ModuleKind
	ticks      []time.Duration
	fixedTicks []time.Duration
	loaded     []domain.CodeModule
	closed     int
	closeErr   error
	panicOn    bool
}

func (f *fakeModule) Kind() domain.ModuleKind { return f.kind }

func (f *fakeModule) OnTick(_ context.Context, d time.Duration) {
	if f.panicOn {
		panic("tick failure")
	}
	f.ticks = append(f.ticks, d)
}

func (f *fakeModule) OnFixedTick(_ context.Context, d time.Duration) {
	f.fixedTicks = append(f.fixedTicks, d)
}

func (f *fakeModule) OnModuleLoaded(_ context.Context, m domain.CodeModule) {
	f.loaded = append(f.loaded, m)
}

func (f *fakeModule) Close() error {
	f.closed++
	return f.closeErr
}

// passiveModule implements no optional hooks.
type passiveModule struct{ kind domain.ModuleKind }

func (p passiveModule) Kind() domain.ModuleKind { return p.kind }

type GuardSuite struct {
	suite.Suite
	guard   *Guard
	metrics *Metrics
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.metrics = NewMetrics(prometheus.NewRegistry())
	g, err := New(warning.NewBus(), WithMetrics(s.metrics))
	s.Require().NoError(err)
	s.guard = g
}

func (s *GuardSuite) TestNewRequiresBus() {
	_, err := New(nil)
	s.Error(err)
}

// =============================================================================
// Registry
// =============================================================================

func (s *GuardSuite) TestRegisterIsFirstWins() {
	first := &fakeModule{kind: domain.ModuleSpeedhack}
	second := &fakeModule{kind: domain.ModuleSpeedhack}

	got, added := s.guard.Register(first)
	s.True(added)
	s.Same(first, got)

	got, added = s.guard.Register(second)
	s.False(added)
	s.Same(first, got, "existing instance is returned")
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Modules))
}

func (s *GuardSuite) TestGetHasRemove() {
	m := &fakeModule{kind: domain.ModuleTeleport}
	s.guard.Register(m)

	s.True(s.guard.Has(domain.ModuleTeleport))
	got, ok := s.guard.Get(domain.ModuleTeleport)
	s.True(ok)
	s.Same(m, got)

	s.NoError(s.guard.Remove(domain.ModuleTeleport))
	s.False(s.guard.Has(domain.ModuleTeleport))
	s.Equal(1, m.closed)

	_, ok = s.guard.Get(domain.ModuleTeleport)
	s.False(ok)
	s.NoError(s.guard.Remove(domain.ModuleTeleport), "removing an absent kind is a no-op")
}

func (s *GuardSuite) TestRemoveReportsCloseError() {
	s.guard.Register(&fakeModule{kind: domain.ModuleIntegrity, closeErr: errors.New("busy")})
	err := s.guard.Remove(domain.ModuleIntegrity)
	s.Error(err)
	s.False(s.guard.Has(domain.ModuleIntegrity))
}

func (s *GuardSuite) TestLookupByType() {
	s.guard.Register(passiveModule{kind: "custom"})
	fm := &fakeModule{kind: domain.ModuleSpeedhack}
	s.guard.Register(fm)

	got, ok := Lookup[*fakeModule](s.guard.Registry())
	s.True(ok)
	s.Same(fm, got)

	_, ok = Lookup[passiveModule](NewRegistry())
	s.False(ok)
}

func (s *GuardSuite) TestModulesKeepRegistrationOrder() {
	s.guard.Register(passiveModule{kind: "a"})
	s.guard.Register(passiveModule{kind: "b"})
	s.guard.Register(passiveModule{kind: "c"})
	s.Require().NoError(s.guard.Remove("b"))
	s.guard.Register(passiveModule{kind: "d"})

	var kinds []domain.ModuleKind
	for _, m := range s.guard.Registry().Modules() {
		kinds = append(kinds, m.Kind())
	}
	s.Equal([]domain.ModuleKind{"a", "c", "d"}, kinds)
}

// =============================================================================
// Tick and load fan-out
// =============================================================================

func (s *GuardSuite) TestTickGroups() {
	m := &fakeModule{kind: domain.ModuleSpeedhack}
	s.guard.Register(m)
	s.guard.Register(passiveModule{kind: "passive"})

	s.guard.OnTick(context.Background(), 16*time.Millisecond, false)
	s.guard.OnTick(context.Background(), 20*time.Millisecond, true)
	s.guard.OnTick(context.Background(), 17*time.Millisecond, false)

	s.Equal([]time.Duration{16 * time.Millisecond, 17 * time.Millisecond}, m.ticks)
	s.Equal([]time.Duration{20 * time.Millisecond}, m.fixedTicks)
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.Ticks.WithLabelValues("variable")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Ticks.WithLabelValues("fixed")))
}

func (s *GuardSuite) TestPanickingModuleDoesNotStopOthers() {
	bad := &fakeModule{kind: "bad", panicOn: true}
	good := &fakeModule{kind: "good"}
	s.guard.Register(bad)
	s.guard.Register(good)

	s.NotPanics(func() {
		s.guard.OnTick(context.Background(), time.Millisecond, false)
	})
	s.Len(good.ticks, 1)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ModulePanics.WithLabelValues("bad")))
}

func (s *GuardSuite) TestModuleLoadedFanOut() {
	m := &fakeModule{kind: domain.ModuleIntegrity}
	s.guard.Register(m)

	cm := domain.CodeModule{Name: "plugin.so"}
	s.guard.OnModuleLoaded(context.Background(), cm)
	s.Equal([]domain.CodeModule{cm}, m.loaded)
}

func (s *GuardSuite) TestRemovedModuleStopsTicking() {
	m := &fakeModule{kind: domain.ModuleSpeedhack}
	s.guard.Register(m)
	s.guard.OnTick(context.Background(), time.Millisecond, false)
	s.Require().NoError(s.guard.Remove(domain.ModuleSpeedhack))
	s.guard.OnTick(context.Background(), time.Millisecond, false)

	s.Len(m.ticks, 1)
}

func (s *GuardSuite) TestCloseRemovesEverything() {
	a := &fakeModule{kind: "a"}
	b := &fakeModule{kind: "b", closeErr: errors.New("boom")}
	s.guard.Register(a)
	s.guard.Register(b)

	err := s.guard.Close()
	s.Error(err)
	s.Equal(0, s.guard.Registry().Len())
	s.Equal(1, a.closed)
	s.Equal(1, b.closed)
}
