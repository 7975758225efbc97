package warning

import (
	"math/rand"
	"sync"

	"pixelguard/pkg/domain"
)

// Sampler thins out high-volume warning codes before they reach expensive
// sinks. Rates are between 0.0 (drop everything) and 1.0 (keep everything).
type Sampler struct {
	mu          sync.RWMutex
	defaultRate float64
	rateByCode  map[domain.WarningCode]float64
	rand        func() float64
}

// NewSampler creates a sampler with the given default rate.
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate: clampRate(defaultRate),
		rateByCode:  make(map[domain.WarningCode]float64),
		rand:        rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
}

// ShouldSample returns true if the warning should be kept.
func (s *Sampler) ShouldSample(code domain.WarningCode) bool {
	rate := s.rateFor(code)
	if rate >= 1 {
		return true
	}
	return s.rand() < rate
}

// SetRate overrides the rate for one code.
func (s *Sampler) SetRate(code domain.WarningCode, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByCode[code] = clampRate(rate)
}

func (s *Sampler) rateFor(code domain.WarningCode) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rateByCode[code]; ok {
		return rate
	}
	return s.defaultRate
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
