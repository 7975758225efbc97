package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	consenthandler "pixelguard/internal/consent/handler"
	"pixelguard/internal/drift"
	"pixelguard/internal/guard"
	"pixelguard/internal/integrity"
	"pixelguard/internal/platform/metrics"
	"pixelguard/internal/spatial"
	"pixelguard/internal/warning"
	pgsink "pixelguard/internal/warning/sink/postgres"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/httputil"
	"pixelguard/pkg/platform/middleware/admin"
	"pixelguard/pkg/platform/middleware/metadata"
	"pixelguard/pkg/platform/sentinel"
)

const defaultWarningLimit = 50

type healthCheck struct {
	name string
	fn   func(ctx context.Context) error
}

// server is the diagnostics API over a running guard.
type server struct {
	logger     *slog.Logger
	guard      *guard.Guard
	history    *warning.RingBuffer
	archive    *pgsink.Archive
	spatial    *spatial.Detector
	positions  *positions
	session    *session
	accepters  []consenthandler.Accepter
	checks     []healthCheck
	adminToken string
	registry   *prometheus.Registry
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(metadata.ClientIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", metrics.Handler(s.registry))
	}
	r.Get("/warnings", s.handleWarnings)
	if s.archive != nil {
		r.Get("/warnings/archive", s.handleArchive)
	}
	r.Get("/modules", s.handleModules)
	r.Get("/session", s.handleSession)

	requireAdmin := admin.RequireAdminToken(s.adminToken, s.logger)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/modules/loaded", s.handleModuleLoaded)
		r.Put("/targets/{id}", s.handlePutTarget)
		r.Delete("/targets/{id}", s.handleDeleteTarget)
	})
	consenthandler.New(s.logger, requireAdmin, s.accepters...).Register(r)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, c := range s.checks {
		if err := c.fn(ctx); err != nil {
			s.logger.WarnContext(ctx, "health check failed", "check", c.name, "error", err)
			httputil.WriteError(w, fmt.Errorf("%s: %w", c.name, sentinel.ErrUnavailable))
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WarningView is the JSON form of a warning.
type WarningView struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Source    string            `json:"source"`
	Severity  string            `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func (s *server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views(s.history.Snapshot(limit)))
}

// handleArchive reads from the durable archive. ?code= may repeat.
func (s *server) handleArchive(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var codes []domain.WarningCode
	for _, raw := range r.URL.Query()["code"] {
		code, err := domain.ParseWarningCode(raw)
		if err != nil {
			httputil.WriteError(w, fmt.Errorf("%w: %w", err, sentinel.ErrConfigurationMissing))
			return
		}
		codes = append(codes, code)
	}
	recent, err := s.archive.Recent(r.Context(), limit, codes...)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "archive query failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views(recent))
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultWarningLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer: %w", sentinel.ErrConfigurationMissing)
	}
	return n, nil
}

func views(ws []warning.Warning) []WarningView {
	out := make([]WarningView, 0, len(ws))
	for _, wn := range ws {
		out = append(out, WarningView{
			ID:        wn.ID.String(),
			Code:      string(wn.Code),
			Message:   wn.Message,
			Source:    string(wn.Source),
			Severity:  string(wn.Severity),
			Timestamp: wn.Timestamp,
			Attrs:     wn.Attrs,
		})
	}
	return out
}

// ModuleView describes an installed protection module.
type ModuleView struct {
	Kind    string   `json:"kind"`
	State   string   `json:"state,omitempty"`
	Targets []string `json:"targets,omitempty"`
	// FalsePositives is set for the speed detector.
	FalsePositives *int `json:"false_positives,omitempty"`
	// Degraded is set for the time detector in network mode.
	Degraded *bool `json:"degraded,omitempty"`
}

func (s *server) handleModules(w http.ResponseWriter, _ *http.Request) {
	mods := s.guard.Registry().Modules()
	out := make([]ModuleView, 0, len(mods))
	for _, m := range mods {
		v := ModuleView{Kind: string(m.Kind())}
		switch mod := m.(type) {
		case *integrity.Detector:
			v.State = string(mod.State())
		case *spatial.Detector:
			v.Targets = mod.Targets()
		case *drift.Detector:
			fp := mod.Stats().FalsePositives
			v.FalsePositives = &fp
		case *drift.TimeDetector:
			if mod.NetworkMode() {
				degraded := mod.Degraded()
				v.Degraded = &degraded
			}
		}
		out = append(out, v)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *server) handleSession(w http.ResponseWriter, _ *http.Request) {
	if s.session == nil {
		httputil.WriteError(w, fmt.Errorf("session: %w", sentinel.ErrNotFound))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.session.Status())
}

// ModuleLoadedRequest reports code brought in at runtime.
type ModuleLoadedRequest struct {
	Name string `json:"name"`
	// Token is hex encoded.
	Token string `json:"token,omitempty"`
	Path  string `json:"path,omitempty"`
}

func (s *server) handleModuleLoaded(w http.ResponseWriter, r *http.Request) {
	var req ModuleLoadedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, fmt.Errorf("decode request: %v: %w", err, sentinel.ErrConfigurationMissing))
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, fmt.Errorf("module name: %w", sentinel.ErrConfigurationMissing))
		return
	}
	token, err := hex.DecodeString(req.Token)
	if err != nil {
		httputil.WriteError(w, fmt.Errorf("token must be hex: %w", sentinel.ErrConfigurationMissing))
		return
	}
	s.logger.InfoContext(r.Context(), "module load reported",
		"module", req.Name,
		"client_ip", metadata.GetClientIP(r.Context()),
	)
	s.guard.OnModuleLoaded(r.Context(), domain.CodeModule{Name: req.Name, Token: token, Path: req.Path})
	w.WriteHeader(http.StatusAccepted)
}

// TargetRequest reports the position of a tracked entity.
type TargetRequest struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	// MaxDistancePerSecond only applies to the first report of a target.
	MaxDistancePerSecond float64 `json:"max_distance_per_second,omitempty"`
}

func (s *server) handlePutTarget(w http.ResponseWriter, r *http.Request) {
	if s.spatial == nil {
		httputil.WriteError(w, fmt.Errorf("teleport detection disabled: %w", sentinel.ErrUnavailable))
		return
	}
	id := chi.URLParam(r, "id")
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, fmt.Errorf("decode request: %v: %w", err, sentinel.ErrConfigurationMissing))
		return
	}

	// Re-adding a known target would re-baseline it and hide a jump.
	if known := s.positions.Report(id, domain.Vector3{X: req.X, Y: req.Y, Z: req.Z}); known {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	err := s.spatial.AddTarget(spatial.Target{
		ID:                   id,
		Position:             s.positions.Getter(id),
		MaxDistancePerSecond: req.MaxDistancePerSecond,
	})
	if err != nil {
		s.positions.Forget(id)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	if s.spatial == nil {
		httputil.WriteError(w, fmt.Errorf("teleport detection disabled: %w", sentinel.ErrUnavailable))
		return
	}
	id := chi.URLParam(r, "id")
	// the detector must stop reading the getter before the position goes away
	removed := s.spatial.RemoveTarget(id)
	s.positions.Forget(id)
	if !removed {
		httputil.WriteError(w, fmt.Errorf("target %q: %w", id, sentinel.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
