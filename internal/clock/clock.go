// Package clock supplies the two independent time signals detectors compare,
// and a reference fixed-rate loop hosts can use to drive per-tick callbacks.
package clock

import "time"

// Source exposes a wall clock and a monotonic clock as offsets.
//
// Wall follows the system time and jumps when the user changes it. Monotonic
// only moves forward with real elapsed time. Speed manipulation tools usually
// hook one of them but not both.
type Source interface {
	Wall() time.Duration
	Monotonic() time.Duration
}

type systemSource struct {
	start time.Time
}

// System returns a Source backed by the OS clocks. Wall is Unix time with the
// monotonic reading stripped; Monotonic is elapsed time since System was called.
func System() Source {
	return systemSource{start: time.Now()}
}

func (s systemSource) Wall() time.Duration {
	return time.Duration(time.Now().Round(0).UnixNano())
}

func (s systemSource) Monotonic() time.Duration {
	return time.Since(s.start)
}
