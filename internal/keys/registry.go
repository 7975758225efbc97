// Package keys holds the process-wide obfuscation keys used by secured cells.
//
// Keys are grouped by value category. Each change to a category key advances
// that category's epoch; cells remember the epoch they were encoded under and
// keep decoding with that key until they are explicitly re-keyed.
package keys

import (
	"fmt"
	"sync"

	"pixelguard/pkg/platform/sentinel"
)

// Category groups value types that share one key.
type Category string

const (
	Bool       Category = "bool"
	Uint8      Category = "uint8"
	Int8       Category = "int8"
	Int16      Category = "int16"
	Uint16     Category = "uint16"
	Int32      Category = "int32"
	Uint32     Category = "uint32"
	Int64      Category = "int64"
	Uint64     Category = "uint64"
	Float32    Category = "float32"
	Float64    Category = "float64"
	Rune       Category = "rune"
	String     Category = "string"
	Vector3    Category = "vector3"
	Vector4    Category = "vector4"
	Quaternion Category = "quaternion"
	Color      Category = "color"
)

// Epoch is the version of a category key. The first key of every category has
// epoch 1; zero means "never encoded".
type Epoch uint64

// Key is one version of a category key. Numeric categories use Numeric, the
// string category uses Text.
type Key struct {
	Epoch   Epoch
	Numeric int64
	Text    string
}

// Bytes returns the key material used by byte-wise codecs.
func (k Key) Bytes() []byte {
	return []byte(k.Text)
}

// Defaults returns the factory keys for every category.
func Defaults() map[Category]Key {
	return map[Category]Key{
		Bool:       {Numeric: 215},
		Uint8:      {Numeric: 244},
		Int8:       {Numeric: 112},
		Int16:      {Numeric: 214},
		Uint16:     {Numeric: 224},
		Int32:      {Numeric: 444444},
		Uint32:     {Numeric: 240513},
		Int64:      {Numeric: 209208},
		Uint64:     {Numeric: 240513},
		Float32:    {Numeric: 230887},
		Float64:    {Numeric: 210987},
		Rune:       {Numeric: 0x2014},
		String:     {Text: "4441"},
		Vector3:    {Numeric: 120207},
		Vector4:    {Numeric: 120207},
		Quaternion: {Numeric: 120205},
		Color:      {Numeric: 120222},
	}
}

// Registry stores the current key and the key history per category.
// It is read-mostly: rotations are rare and explicit.
type Registry struct {
	mu      sync.RWMutex
	history map[Category][]Key
}

// Option configures a Registry at construction.
type Option func(*Registry) error

// WithNumeric overrides the initial numeric key of a category.
func WithNumeric(cat Category, key int64) Option {
	return func(r *Registry) error {
		return r.setLocked(cat, Key{Numeric: key})
	}
}

// WithText overrides the initial text key of a category.
func WithText(cat Category, key string) Option {
	return func(r *Registry) error {
		return r.setLocked(cat, Key{Text: key})
	}
}

// New builds a registry seeded with Defaults. Options that set a key replace
// the default as the first epoch instead of adding a second one.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{history: make(map[Category][]Key)}
	for cat, k := range Defaults() {
		k.Epoch = 1
		r.history[cat] = []Key{k}
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry used by cells that were not given
// one explicitly. It is created with factory keys on first use and is never
// reset; rotate it with SetNumeric/SetText.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := New()
		if err != nil {
			panic(fmt.Sprintf("keys: default registry: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Current returns the current key of a category. Unknown categories get a zero
// key at epoch 0, which codecs treat as identity.
func (r *Registry) Current(cat Category) Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h := r.history[cat]
	if len(h) == 0 {
		return Key{}
	}
	return h[len(h)-1]
}

// At returns the key a category had at the given epoch.
func (r *Registry) At(cat Category, epoch Epoch) (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h := r.history[cat]
	if epoch == 0 || int(epoch) > len(h) {
		return Key{}, false
	}
	return h[epoch-1], true
}

// SetNumeric rotates a numeric category key. Existing cells keep their bytes
// until ApplyNewKey is called on them.
func (r *Registry) SetNumeric(cat Category, key int64) (Epoch, error) {
	if cat == String {
		return 0, fmt.Errorf("category %s requires a text key: %w", cat, sentinel.ErrUnsupportedOperation)
	}
	return r.rotate(cat, Key{Numeric: key})
}

// SetText rotates the string category key.
func (r *Registry) SetText(cat Category, key string) (Epoch, error) {
	if cat != String {
		return 0, fmt.Errorf("category %s requires a numeric key: %w", cat, sentinel.ErrUnsupportedOperation)
	}
	return r.rotate(cat, Key{Text: key})
}

func (r *Registry) rotate(cat Category, k Key) (Epoch, error) {
	if err := validate(cat, k); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k.Epoch = Epoch(len(r.history[cat]) + 1)
	r.history[cat] = append(r.history[cat], k)
	return k.Epoch, nil
}

// setLocked replaces the initial key; only used during New.
func (r *Registry) setLocked(cat Category, k Key) error {
	if err := validate(cat, k); err != nil {
		return err
	}
	k.Epoch = 1
	r.history[cat] = []Key{k}
	return nil
}

func validate(cat Category, k Key) error {
	if cat == "" {
		return fmt.Errorf("key category: %w", sentinel.ErrConfigurationMissing)
	}
	if cat == String {
		if k.Text == "" {
			return fmt.Errorf("empty key for %s: %w", cat, sentinel.ErrConfigurationMissing)
		}
		return nil
	}
	if k.Numeric == 0 {
		return fmt.Errorf("zero key for %s: %w", cat, sentinel.ErrConfigurationMissing)
	}
	return nil
}
