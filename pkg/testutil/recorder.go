package testutil

import (
	"context"
	"sync"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

// Recorder is a warning subscriber that keeps every delivery for assertions.
type Recorder struct {
	mu       sync.Mutex
	warnings []warning.Warning
}

// NewRecorder subscribes a fresh recorder to bus.
func NewRecorder(bus *warning.Bus) *Recorder {
	r := &Recorder{}
	bus.Subscribe("test-recorder", r.Record)
	return r
}

// Record implements warning.Subscriber.
func (r *Recorder) Record(_ context.Context, w warning.Warning) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
	return nil
}

// Warnings returns a copy of everything recorded so far.
func (r *Recorder) Warnings() []warning.Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]warning.Warning(nil), r.warnings...)
}

// Count returns how many warnings with code were recorded.
func (r *Recorder) Count(code domain.WarningCode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

// Reset forgets recorded warnings.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = nil
}
