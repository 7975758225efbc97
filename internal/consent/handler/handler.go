package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pixelguard/internal/consent"
	"pixelguard/pkg/platform/httputil"
	"pixelguard/pkg/platform/sentinel"
)

// Accepter is the consent module surface the handler needs.
type Accepter interface {
	Document() consent.Document
	Accepted(ctx context.Context) (bool, error)
	NeedsPrompt(ctx context.Context) (bool, error)
	PromptContent() consent.Prompt
	Accept(ctx context.Context) error
	Revoke(ctx context.Context) error
}

// Status is the response body for a consent document.
type Status struct {
	Document    consent.Document `json:"document"`
	Accepted    bool             `json:"accepted"`
	NeedsPrompt bool             `json:"needs_prompt"`
	Prompt      consent.Prompt   `json:"prompt"`
}

// Handler exposes consent state to support tooling.
type Handler struct {
	logger    *slog.Logger
	accepters map[consent.Document]Accepter
	guard     func(http.Handler) http.Handler
}

// New creates a consent Handler. guard wraps the mutating routes and may be
// nil.
func New(logger *slog.Logger, guard func(http.Handler) http.Handler, accepters ...Accepter) *Handler {
	h := &Handler{
		logger:    logger,
		accepters: make(map[consent.Document]Accepter, len(accepters)),
		guard:     guard,
	}
	for _, a := range accepters {
		h.accepters[a.Document()] = a
	}
	return h
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/consent", func(r chi.Router) {
		r.Get("/{document}", h.handleGetConsent)
		r.Group(func(r chi.Router) {
			if h.guard != nil {
				r.Use(h.guard)
			}
			r.Post("/{document}/accept", h.handleAcceptConsent)
			r.Delete("/{document}", h.handleRevokeConsent)
		})
	})
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.accepter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	accepted, err := a.Accepted(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to read consent", err)
		return
	}
	needs, err := a.NeedsPrompt(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to read consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Status{
		Document:    a.Document(),
		Accepted:    accepted,
		NeedsPrompt: needs,
		Prompt:      a.PromptContent(),
	})
}

func (h *Handler) handleAcceptConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.accepter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := a.Accept(ctx); err != nil {
		h.fail(ctx, w, "failed to accept consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.accepter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := a.Revoke(ctx); err != nil {
		h.fail(ctx, w, "failed to revoke consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accepter(r *http.Request) (Accepter, error) {
	doc := consent.Document(chi.URLParam(r, "document"))
	a, ok := h.accepters[doc]
	if !ok {
		return nil, fmt.Errorf("consent document %q: %w", doc, sentinel.ErrNotFound)
	}
	return a, nil
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", chimw.GetReqID(ctx),
		"error", err.Error(),
	)
	httputil.WriteError(w, err)
}
