// Package secured stores sensitive values in an obfuscated form that defeats
// simple memory scanners, and detects when the stored bytes are edited from
// outside the program.
//
// A Cell keeps only the encoded bytes plus, when a Monitor enables shadowing,
// a plaintext mirror. Every read decodes the bytes and compares them with the
// mirror; a mismatch is reported to the Monitor and the decoded value is
// returned anyway.
//
// Cells are not safe for concurrent use.
package secured

import (
	"bytes"
	"encoding/json"
	"fmt"

	"pixelguard/internal/keys"
	"pixelguard/pkg/platform/sentinel"
)

// Monitor decides whether cells keep a shadow copy and receives tamper reports.
type Monitor interface {
	ShadowEnabled() bool
	Epsilon(cat keys.Category) float64
	ReportTamper(cat keys.Category, label string)
}

// Option configures a cell.
type Option func(*settings)

type settings struct {
	keys    *keys.Registry
	monitor Monitor
	label   string
}

// WithKeys sets the key registry. Cells without one use keys.Default().
func WithKeys(r *keys.Registry) Option {
	return func(s *settings) {
		s.keys = r
	}
}

// WithMonitor enables tamper checks against the given monitor.
func WithMonitor(m Monitor) Option {
	return func(s *settings) {
		s.monitor = m
	}
}

// WithLabel names the cell in tamper reports.
func WithLabel(label string) Option {
	return func(s *settings) {
		s.label = label
	}
}

// Cell is a tamper-evident holder for one value of type T.
type Cell[T any] struct {
	codec Codec[T]
	settings

	encoded     []byte
	epoch       keys.Epoch
	shadow      T
	hasShadow   bool
	initialized bool
}

// NewCell builds an empty cell for the given codec. The cell materializes the
// zero value of T on first read.
func NewCell[T any](codec Codec[T], opts ...Option) *Cell[T] {
	c := &Cell[T]{codec: codec}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.keys == nil {
		c.keys = keys.Default()
	}
	return c
}

// Set encodes v under the current category key.
func (c *Cell[T]) Set(v T) {
	k := c.keys.Current(c.codec.Category())
	c.encoded = c.codec.Encode(v, k)
	c.epoch = k.Epoch
	c.initialized = true
	c.remember(v)
}

// Get decodes the stored value and checks it against the shadow copy.
func (c *Cell[T]) Get() T {
	if !c.initialized {
		var zero T
		c.Set(zero)
	}
	v := c.codec.Decode(c.encoded, c.keyForEpoch())
	c.verify(v)
	return v
}

// ApplyNewKey re-encodes the value if the category key has rotated since the
// cell was last written. Calling it again without a rotation is a no-op.
func (c *Cell[T]) ApplyNewKey() {
	if !c.initialized {
		return
	}
	cur := c.keys.Current(c.codec.Category())
	if cur.Epoch == c.epoch {
		return
	}
	v := c.codec.Decode(c.encoded, c.keyForEpoch())
	c.verify(v)
	c.encoded = c.codec.Encode(v, cur)
	c.epoch = cur.Epoch
}

// Update applies fn to the current value and stores the result. The read half
// goes through Get so tamper checks still run.
func (c *Cell[T]) Update(fn func(T) T) T {
	v := fn(c.Get())
	c.Set(v)
	return v
}

// Equal compares the encoded bytes of two cells without decoding them. Cells
// encoded under different key epochs are unequal until both are re-keyed.
func (c *Cell[T]) Equal(o *Cell[T]) bool {
	if c == o {
		return true
	}
	if o == nil {
		return false
	}
	c.ensure()
	o.ensure()
	return c.epoch == o.epoch && bytes.Equal(c.encoded, o.encoded)
}

// Encoded returns a copy of the stored bytes.
func (c *Cell[T]) Encoded() []byte {
	c.ensure()
	out := make([]byte, len(c.encoded))
	copy(out, c.encoded)
	return out
}

// Epoch returns the key epoch the stored bytes were encoded under.
func (c *Cell[T]) Epoch() keys.Epoch {
	c.ensure()
	return c.epoch
}

// SetEncoded restores a previously persisted encoded form. The shadow copy is
// rebuilt from the restored bytes. An epoch the registry has no key for is
// rejected with ErrInvalidState and leaves the cell unchanged.
func (c *Cell[T]) SetEncoded(enc []byte, epoch keys.Epoch) error {
	k, ok := c.lookupKey(epoch)
	if !ok {
		return fmt.Errorf("secured cell: no %s key at epoch %d: %w", c.codec.Category(), epoch, sentinel.ErrInvalidState)
	}
	c.encoded = append([]byte(nil), enc...)
	c.epoch = epoch
	c.initialized = true
	c.remember(c.codec.Decode(c.encoded, k))
	return nil
}

// String never reveals the plain value.
func (c *Cell[T]) String() string {
	return fmt.Sprintf("secured.Cell[%s]", c.codec.Category())
}

type encodedForm struct {
	Value []byte     `json:"value"`
	Epoch keys.Epoch `json:"epoch"`
}

// MarshalJSON writes only the encoded form.
func (c *Cell[T]) MarshalJSON() ([]byte, error) {
	c.ensure()
	return json.Marshal(encodedForm{Value: c.encoded, Epoch: c.epoch})
}

// UnmarshalJSON restores the encoded form. The cell must have been built with
// a constructor so that its codec is known.
func (c *Cell[T]) UnmarshalJSON(data []byte) error {
	if c.codec == nil {
		return fmt.Errorf("secured cell without codec: %w", sentinel.ErrInvalidState)
	}
	var f encodedForm
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode secured cell: %w", err)
	}
	return c.SetEncoded(f.Value, f.Epoch)
}

func (c *Cell[T]) ensure() {
	if !c.initialized {
		var zero T
		c.Set(zero)
	}
}

// keyForEpoch returns the key the stored bytes were encoded under. Set,
// ApplyNewKey and SetEncoded only ever record epochs lookupKey resolves.
func (c *Cell[T]) keyForEpoch() keys.Key {
	k, _ := c.lookupKey(c.epoch)
	return k
}

// lookupKey resolves an epoch from the registry history. The current key is
// used only when its epoch matches, which covers unseeded categories at
// epoch 0.
func (c *Cell[T]) lookupKey(epoch keys.Epoch) (keys.Key, bool) {
	if k, ok := c.keys.At(c.codec.Category(), epoch); ok {
		return k, true
	}
	if cur := c.keys.Current(c.codec.Category()); cur.Epoch == epoch {
		return cur, true
	}
	return keys.Key{}, false
}

func (c *Cell[T]) remember(v T) {
	if c.monitor != nil && c.monitor.ShadowEnabled() {
		c.shadow = v
		c.hasShadow = true
		return
	}
	var zero T
	c.shadow = zero
	c.hasShadow = false
}

func (c *Cell[T]) verify(decoded T) {
	if c.monitor == nil || !c.hasShadow || !c.monitor.ShadowEnabled() {
		return
	}
	cat := c.codec.Category()
	if !c.codec.Equal(decoded, c.shadow, c.monitor.Epsilon(cat)) {
		c.monitor.ReportTamper(cat, c.label)
	}
}
