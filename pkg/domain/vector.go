package domain

import "math"

// Vector3 is a position or direction in world units.
type Vector3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Distance returns the Euclidean distance between v and o, computed in
// float64 so that limits compared against it are not skewed by float32 rounding.
func (v Vector3) Distance(o Vector3) float64 {
	dx := float64(v.X) - float64(o.X)
	dy := float64(v.Y) - float64(o.Y)
	dz := float64(v.Z) - float64(o.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Vector4 is a four component vector.
type Vector4 struct {
	X, Y, Z, W float32
}

// Quaternion is a rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}
