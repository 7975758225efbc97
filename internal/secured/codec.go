package secured

import (
	"math"

	"pixelguard/internal/keys"
	"pixelguard/pkg/domain"
)

// Codec turns a plain value into its obfuscated byte form and back. Decode must
// never fail: malformed input decodes to whatever the bytes say.
type Codec[T any] interface {
	Category() keys.Category
	Encode(v T, k keys.Key) []byte
	Decode(enc []byte, k keys.Key) T
	// Equal reports whether two plain values match within epsilon. Discrete
	// types ignore epsilon.
	Equal(a, b T, epsilon float64) bool
}

// Integer is the set of integer types a cell can hold.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~uint
}

// Number is the set of types supported by the arithmetic helpers.
type Number interface {
	Integer | ~float32 | ~float64
}

type integerCodec[T Integer] struct {
	cat   keys.Category
	width int
}

func (c integerCodec[T]) Category() keys.Category { return c.cat }

func (c integerCodec[T]) Encode(v T, k keys.Key) []byte {
	b := make([]byte, c.width)
	putUint(b, uint64(v)^uint64(k.Numeric))
	return b
}

func (c integerCodec[T]) Decode(enc []byte, k keys.Key) T {
	return T(readUint(enc, c.width) ^ uint64(k.Numeric))
}

func (integerCodec[T]) Equal(a, b T, _ float64) bool { return a == b }

type float32Codec struct{}

func (float32Codec) Category() keys.Category { return keys.Float32 }

func (float32Codec) Encode(v float32, k keys.Key) []byte {
	b := make([]byte, 4)
	putUint(b, uint64(encodeFloat32(v, k)))
	return b
}

func (float32Codec) Decode(enc []byte, k keys.Key) float32 {
	return decodeFloat32(uint32(readUint(enc, 4)), k)
}

func (float32Codec) Equal(a, b float32, eps float64) bool {
	return floatsMatch(float64(a), float64(b), math.Float32bits(a) == math.Float32bits(b), eps)
}

type float64Codec struct{}

func (float64Codec) Category() keys.Category { return keys.Float64 }

func (float64Codec) Encode(v float64, k keys.Key) []byte {
	b := make([]byte, 8)
	putUint(b, math.Float64bits(v)^uint64(k.Numeric))
	return b
}

func (float64Codec) Decode(enc []byte, k keys.Key) float64 {
	return math.Float64frombits(readUint(enc, 8) ^ uint64(k.Numeric))
}

func (float64Codec) Equal(a, b float64, eps float64) bool {
	return floatsMatch(a, b, math.Float64bits(a) == math.Float64bits(b), eps)
}

// Booleans are stored as one of two marker bytes so that a flipped bit does not
// silently turn false into true.
const (
	boolTrueMarker  byte = 213
	boolFalseMarker byte = 181
)

type boolCodec struct{}

func (boolCodec) Category() keys.Category { return keys.Bool }

func (boolCodec) Encode(v bool, k keys.Key) []byte {
	m := boolFalseMarker
	if v {
		m = boolTrueMarker
	}
	return []byte{m ^ byte(k.Numeric)}
}

func (boolCodec) Decode(enc []byte, k keys.Key) bool {
	if len(enc) == 0 {
		return false
	}
	return enc[0]^byte(k.Numeric) != boolFalseMarker
}

func (boolCodec) Equal(a, b bool, _ float64) bool { return a == b }

type stringCodec struct{}

func (stringCodec) Category() keys.Category { return keys.String }

func (stringCodec) Encode(v string, k keys.Key) []byte {
	return xorBytes([]byte(v), k.Bytes())
}

func (stringCodec) Decode(enc []byte, k keys.Key) string {
	return string(xorBytes(enc, k.Bytes()))
}

func (stringCodec) Equal(a, b string, _ float64) bool { return a == b }

// vectorCodec obfuscates every float32 component with the category key.
type vectorCodec[T any] struct {
	cat    keys.Category
	fields func(T) []float32
	build  func([]float32) T
	size   int
}

func (c vectorCodec[T]) Category() keys.Category { return c.cat }

func (c vectorCodec[T]) Encode(v T, k keys.Key) []byte {
	fs := c.fields(v)
	b := make([]byte, 4*len(fs))
	for i, f := range fs {
		putUint(b[i*4:i*4+4], uint64(encodeFloat32(f, k)))
	}
	return b
}

func (c vectorCodec[T]) Decode(enc []byte, k keys.Key) T {
	fs := make([]float32, c.size)
	for i := range fs {
		var word []byte
		if len(enc) >= i*4+4 {
			word = enc[i*4 : i*4+4]
		}
		fs[i] = decodeFloat32(uint32(readUint(word, 4)), k)
	}
	return c.build(fs)
}

func (c vectorCodec[T]) Equal(a, b T, eps float64) bool {
	fa, fb := c.fields(a), c.fields(b)
	for i := range fa {
		if !floatsMatch(float64(fa[i]), float64(fb[i]), math.Float32bits(fa[i]) == math.Float32bits(fb[i]), eps) {
			return false
		}
	}
	return true
}

// Codecs for every supported type.
var (
	BoolCodec    Codec[bool]    = boolCodec{}
	Uint8Codec   Codec[uint8]   = integerCodec[uint8]{cat: keys.Uint8, width: 1}
	Int8Codec    Codec[int8]    = integerCodec[int8]{cat: keys.Int8, width: 1}
	Int16Codec   Codec[int16]   = integerCodec[int16]{cat: keys.Int16, width: 2}
	Uint16Codec  Codec[uint16]  = integerCodec[uint16]{cat: keys.Uint16, width: 2}
	Int32Codec   Codec[int32]   = integerCodec[int32]{cat: keys.Int32, width: 4}
	Uint32Codec  Codec[uint32]  = integerCodec[uint32]{cat: keys.Uint32, width: 4}
	Int64Codec   Codec[int64]   = integerCodec[int64]{cat: keys.Int64, width: 8}
	Uint64Codec  Codec[uint64]  = integerCodec[uint64]{cat: keys.Uint64, width: 8}
	RuneCodec    Codec[rune]    = integerCodec[rune]{cat: keys.Rune, width: 4}
	Float32Codec Codec[float32] = float32Codec{}
	Float64Codec Codec[float64] = float64Codec{}
	StringCodec  Codec[string]  = stringCodec{}

	Vector3Codec Codec[domain.Vector3] = vectorCodec[domain.Vector3]{
		cat:    keys.Vector3,
		size:   3,
		fields: func(v domain.Vector3) []float32 { return []float32{v.X, v.Y, v.Z} },
		build:  func(f []float32) domain.Vector3 { return domain.Vector3{X: f[0], Y: f[1], Z: f[2]} },
	}
	Vector4Codec Codec[domain.Vector4] = vectorCodec[domain.Vector4]{
		cat:    keys.Vector4,
		size:   4,
		fields: func(v domain.Vector4) []float32 { return []float32{v.X, v.Y, v.Z, v.W} },
		build:  func(f []float32) domain.Vector4 { return domain.Vector4{X: f[0], Y: f[1], Z: f[2], W: f[3]} },
	}
	QuaternionCodec Codec[domain.Quaternion] = vectorCodec[domain.Quaternion]{
		cat:    keys.Quaternion,
		size:   4,
		fields: func(q domain.Quaternion) []float32 { return []float32{q.X, q.Y, q.Z, q.W} },
		build:  func(f []float32) domain.Quaternion { return domain.Quaternion{X: f[0], Y: f[1], Z: f[2], W: f[3]} },
	}
	ColorCodec Codec[domain.Color] = vectorCodec[domain.Color]{
		cat:    keys.Color,
		size:   4,
		fields: func(c domain.Color) []float32 { return []float32{c.R, c.G, c.B, c.A} },
		build:  func(f []float32) domain.Color { return domain.Color{R: f[0], G: f[1], B: f[2], A: f[3]} },
	}
)

func encodeFloat32(v float32, k keys.Key) uint32 {
	return math.Float32bits(v) ^ uint32(k.Numeric)
}

func decodeFloat32(bits uint32, k keys.Key) float32 {
	return math.Float32frombits(bits ^ uint32(k.Numeric))
}

// floatsMatch treats identical bit patterns as equal (covers NaN and signed
// zero) and otherwise requires both values to be finite-comparable within eps.
func floatsMatch(a, b float64, sameBits bool, eps float64) bool {
	if sameBits {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= eps
}

func putUint(b []byte, x uint64) {
	for i := range b {
		b[i] = byte(x >> (8 * i))
	}
}

func readUint(b []byte, width int) uint64 {
	var x uint64
	for i := 0; i < width && i < len(b); i++ {
		x |= uint64(b[i]) << (8 * i)
	}
	return x
}

func xorBytes(src, key []byte) []byte {
	out := make([]byte, len(src))
	if len(key) == 0 {
		copy(out, src)
		return out
	}
	for i := range src {
		out[i] = src[i] ^ key[i%len(key)]
	}
	return out
}
