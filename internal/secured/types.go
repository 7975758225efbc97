package secured

import "pixelguard/pkg/domain"

// NewBool returns a cell holding a bool.
func NewBool(opts ...Option) *Cell[bool] { return NewCell(BoolCodec, opts...) }

// NewUint8 returns a cell holding a byte.
func NewUint8(opts ...Option) *Cell[uint8] { return NewCell(Uint8Codec, opts...) }

func NewInt8(opts ...Option) *Cell[int8] { return NewCell(Int8Codec, opts...) }

func NewInt16(opts ...Option) *Cell[int16] { return NewCell(Int16Codec, opts...) }

func NewUint16(opts ...Option) *Cell[uint16] { return NewCell(Uint16Codec, opts...) }

// NewInt32 returns a cell holding an int32, the usual choice for scores,
// currency and counters.
func NewInt32(opts ...Option) *Cell[int32] { return NewCell(Int32Codec, opts...) }

func NewUint32(opts ...Option) *Cell[uint32] { return NewCell(Uint32Codec, opts...) }

func NewInt64(opts ...Option) *Cell[int64] { return NewCell(Int64Codec, opts...) }

func NewUint64(opts ...Option) *Cell[uint64] { return NewCell(Uint64Codec, opts...) }

func NewRune(opts ...Option) *Cell[rune] { return NewCell(RuneCodec, opts...) }

func NewFloat32(opts ...Option) *Cell[float32] { return NewCell(Float32Codec, opts...) }

func NewFloat64(opts ...Option) *Cell[float64] { return NewCell(Float64Codec, opts...) }

// NewString returns a cell holding a string.
func NewString(opts ...Option) *Cell[string] { return NewCell(StringCodec, opts...) }

func NewVector3(opts ...Option) *Cell[domain.Vector3] { return NewCell(Vector3Codec, opts...) }

func NewVector4(opts ...Option) *Cell[domain.Vector4] { return NewCell(Vector4Codec, opts...) }

func NewQuaternion(opts ...Option) *Cell[domain.Quaternion] {
	return NewCell(QuaternionCodec, opts...)
}

func NewColor(opts ...Option) *Cell[domain.Color] { return NewCell(ColorCodec, opts...) }

// Add adds delta to a numeric cell and returns the new value.
func Add[T Number](c *Cell[T], delta T) T {
	return c.Update(func(v T) T { return v + delta })
}

// Increment adds one to a numeric cell.
func Increment[T Number](c *Cell[T]) T {
	return c.Update(func(v T) T { return v + 1 })
}

// Decrement subtracts one from a numeric cell.
func Decrement[T Number](c *Cell[T]) T {
	return c.Update(func(v T) T { return v - 1 })
}

// Toggle flips a bool cell.
func Toggle(c *Cell[bool]) bool {
	return c.Update(func(v bool) bool { return !v })
}

// Append concatenates s to a string cell.
func Append(c *Cell[string], s string) string {
	return c.Update(func(v string) string { return v + s })
}
