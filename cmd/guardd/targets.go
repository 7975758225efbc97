package main

import (
	"sync"

	"pixelguard/pkg/domain"
)

// positions holds the last position the game client reported for each
// tracked entity. The spatial detector reads it through Getter.
type positions struct {
	mu  sync.RWMutex
	pos map[string]domain.Vector3
}

func newPositions() *positions {
	return &positions{pos: make(map[string]domain.Vector3)}
}

// Report stores p and reports whether id was already known.
func (p *positions) Report(id string, v domain.Vector3) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pos[id]
	p.pos[id] = v
	return ok
}

func (p *positions) Forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pos, id)
}

// Getter returns a position func for id. Once id is forgotten the func keeps
// returning the last position it saw, never the zero vector.
func (p *positions) Getter(id string) func() domain.Vector3 {
	var last domain.Vector3
	return func() domain.Vector3 {
		p.mu.Lock()
		defer p.mu.Unlock()
		if v, ok := p.pos[id]; ok {
			last = v
		}
		return last
	}
}
