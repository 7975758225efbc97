// Package prefs stores small named values that survive restarts, such as
// consent flags and serialized game state.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pixelguard/pkg/platform/sentinel"
)

// Store is a flat key/value preference store. Get returns
// sentinel.ErrNotFound for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("preference key: %w", sentinel.ErrConfigurationMissing)
	}
	return nil
}

// GetBool reads a flag written by SetBool. Missing keys read as false.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return false, fmt.Errorf("preference %s is not a flag: %w", key, err)
	}
	return n != 0, nil
}

// SetBool stores a flag as "1" or "0".
func SetBool(ctx context.Context, s Store, key string, v bool) error {
	raw := "0"
	if v {
		raw = "1"
	}
	return s.Set(ctx, key, []byte(raw))
}

// GetString reads a string value. Missing keys return def.
func GetString(ctx context.Context, s Store, key, def string) (string, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
