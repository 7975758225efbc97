package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pixelguard/internal/memory"
	"pixelguard/internal/persist"
	"pixelguard/internal/secured"
	"pixelguard/pkg/platform/sentinel"
)

const sessionKey = "guardd.session"

// sessionRecord is the persisted form. Starts is stored encoded.
type sessionRecord struct {
	Starts    *secured.Cell[int64] `json:"starts"`
	LastStart time.Time            `json:"last_start"`
}

// session counts host starts in a secured cell and persists it between runs.
type session struct {
	mu     sync.Mutex
	ser    persist.Serializer
	record sessionRecord
}

// SessionStatus is the /session response body.
type SessionStatus struct {
	Starts    int64     `json:"starts"`
	LastStart time.Time `json:"last_start"`
}

func restoreSession(ctx context.Context, ser persist.Serializer, mem *memory.Module, log *slog.Logger) (*session, error) {
	s := &session{
		ser: ser,
		record: sessionRecord{
			Starts: secured.NewInt64(mem.CellOptions("session.starts")...),
		},
	}
	if err := ser.Load(ctx, &s.record); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	s.record.Starts.ApplyNewKey()
	starts := secured.Increment(s.record.Starts)
	s.record.LastStart = time.Now().UTC()
	if err := ser.Save(ctx, &s.record); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "session restored", "starts", starts)
	return s, nil
}

func (s *session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStatus{
		Starts:    s.record.Starts.Get(),
		LastStart: s.record.LastStart,
	}
}
