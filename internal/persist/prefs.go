package persist

import (
	"context"
	"fmt"

	"pixelguard/internal/persist/prefs"
	"pixelguard/pkg/platform/sentinel"
)

// Prefs stores one value as JSON under a preference key.
type Prefs struct {
	store prefs.Store
	key   string
	codec
}

func NewPrefs(store prefs.Store, key string, opts ...Option) (*Prefs, error) {
	if store == nil {
		return nil, fmt.Errorf("preference store: %w", sentinel.ErrConfigurationMissing)
	}
	if key == "" {
		return nil, fmt.Errorf("serializer key: %w", sentinel.ErrConfigurationMissing)
	}
	return &Prefs{store: store, key: key, codec: newCodec(FormatJSON, opts)}, nil
}

func (p *Prefs) Save(ctx context.Context, v any) error {
	data, err := p.encode(v)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, p.key, data)
}

func (p *Prefs) Load(ctx context.Context, v any) error {
	data, err := p.store.Get(ctx, p.key)
	if err != nil {
		return err
	}
	return p.decode(data, v)
}

func (p *Prefs) Delete(ctx context.Context) error {
	return p.store.Delete(ctx, p.key)
}
