// Package consent tracks whether the player accepted the privacy policy and
// the terms of use. Acceptance is persisted in a preference store so the
// prompt is shown once per install.
package consent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pixelguard/internal/persist/prefs"
	"pixelguard/pkg/domain"
	"pixelguard/pkg/platform/sentinel"
)

// Document names a consent document.
type Document string

const (
	DocumentPrivacy Document = "privacy"
	DocumentTerms   Document = "terms"
)

// Preference keys holding the accepted flags.
const (
	PrivacyAcceptedKey = "IsPrivacyAccepted"
	TermsAcceptedKey   = "IsTermsAccepted"
)

// Prompt is what the host UI renders.
type Prompt struct {
	Document    Document `json:"document"`
	Headline    string   `json:"headline,omitempty"`
	Text        string   `json:"text,omitempty"`
	URL         string   `json:"url,omitempty"`
	ReadLabel   string   `json:"read_label,omitempty"`
	AcceptLabel string   `json:"accept_label,omitempty"`
}

// Presenter shows a consent prompt. The host calls Accepter.Accept once the
// player confirms.
type Presenter interface {
	Present(ctx context.Context, p Prompt) error
}

// Accepter is the consent module for one document.
type Accepter struct {
	kind      domain.ModuleKind
	key       string
	store     prefs.Store
	presenter Presenter
	prompt    Prompt
	showOnce  bool
	logger    *slog.Logger

	mu         sync.Mutex
	onAccepted []func(ctx context.Context)
}

// Option configures an Accepter.
type Option func(*Accepter)

// WithShowOnce controls whether an accepted document is prompted again.
// Defaults to true.
func WithShowOnce(once bool) Option {
	return func(a *Accepter) {
		a.showOnce = once
	}
}

func WithPresenter(p Presenter) Option {
	return func(a *Accepter) {
		a.presenter = p
	}
}

// WithText sets the headline and body shown to the player.
func WithText(headline, text string) Option {
	return func(a *Accepter) {
		a.prompt.Headline = headline
		a.prompt.Text = text
	}
}

// WithURL links the full document.
func WithURL(url string) Option {
	return func(a *Accepter) {
		a.prompt.URL = url
	}
}

// WithLabels sets the read and accept button labels.
func WithLabels(read, accept string) Option {
	return func(a *Accepter) {
		a.prompt.ReadLabel = read
		a.prompt.AcceptLabel = accept
	}
}

// WithOnAccepted registers a callback fired after acceptance is stored.
func WithOnAccepted(fn func(ctx context.Context)) Option {
	return func(a *Accepter) {
		if fn != nil {
			a.onAccepted = append(a.onAccepted, fn)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Accepter) {
		a.logger = logger
	}
}

// NewPrivacy returns the privacy policy accepter.
func NewPrivacy(store prefs.Store, opts ...Option) (*Accepter, error) {
	return newAccepter(domain.ModulePrivacy, DocumentPrivacy, PrivacyAcceptedKey, store, opts)
}

// NewTerms returns the terms of use accepter.
func NewTerms(store prefs.Store, opts ...Option) (*Accepter, error) {
	return newAccepter(domain.ModuleTerms, DocumentTerms, TermsAcceptedKey, store, opts)
}

func newAccepter(kind domain.ModuleKind, doc Document, key string, store prefs.Store, opts []Option) (*Accepter, error) {
	if store == nil {
		return nil, fmt.Errorf("consent store: %w", sentinel.ErrConfigurationMissing)
	}
	a := &Accepter{
		kind:     kind,
		key:      key,
		store:    store,
		prompt:   Prompt{Document: doc},
		showOnce: true,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Accepter) Kind() domain.ModuleKind { return a.kind }

func (a *Accepter) Document() Document { return a.prompt.Document }

// Accepted reports whether acceptance has been stored.
func (a *Accepter) Accepted(ctx context.Context) (bool, error) {
	return prefs.GetBool(ctx, a.store, a.key)
}

// NeedsPrompt reports whether Prompt would show the document.
func (a *Accepter) NeedsPrompt(ctx context.Context) (bool, error) {
	if !a.showOnce {
		return true, nil
	}
	accepted, err := a.Accepted(ctx)
	if err != nil {
		return false, err
	}
	return !accepted, nil
}

// Prompt presents the document when needed and reports whether it did.
func (a *Accepter) Prompt(ctx context.Context) (bool, error) {
	need, err := a.NeedsPrompt(ctx)
	if err != nil || !need {
		return false, err
	}
	if a.presenter == nil {
		return false, fmt.Errorf("%s presenter: %w", a.kind, sentinel.ErrConfigurationMissing)
	}
	if err := a.presenter.Present(ctx, a.prompt); err != nil {
		return false, fmt.Errorf("present %s: %w", a.prompt.Document, err)
	}
	return true, nil
}

// PromptContent returns what the presenter would render.
func (a *Accepter) PromptContent() Prompt { return a.prompt }

// Accept stores acceptance and fires the accepted callbacks.
func (a *Accepter) Accept(ctx context.Context) error {
	if err := prefs.SetBool(ctx, a.store, a.key, true); err != nil {
		return fmt.Errorf("store %s acceptance: %w", a.prompt.Document, err)
	}
	a.logger.InfoContext(ctx, "consent accepted", "document", a.prompt.Document)

	a.mu.Lock()
	callbacks := append([]func(context.Context){}, a.onAccepted...)
	a.mu.Unlock()
	for _, fn := range callbacks {
		fn(ctx)
	}
	return nil
}

// OnAccepted registers a callback after construction.
func (a *Accepter) OnAccepted(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onAccepted = append(a.onAccepted, fn)
}

// Revoke clears stored acceptance so the next Prompt shows the document.
func (a *Accepter) Revoke(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.key); err != nil {
		return fmt.Errorf("revoke %s: %w", a.prompt.Document, err)
	}
	a.logger.InfoContext(ctx, "consent revoked", "document", a.prompt.Document)
	return nil
}
