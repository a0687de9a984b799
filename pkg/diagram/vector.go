// Geometric primitives for diagram rendering.
// Vectors are in render coordinates, where Y grows downward.

package diagram

import "math"

// Vec is a 2D vector or point.
type Vec struct {
	X, Y float64
}

// Add returns v + w.
func (v Vec) Add(w Vec) Vec { return Vec{v.X + w.X, v.Y + w.Y} }

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec { return Vec{v.X - w.X, v.Y - w.Y} }

// Neg returns -v.
func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y} }

// Scale returns s·v.
func (v Vec) Scale(s float64) Vec { return Vec{s * v.X, s * v.Y} }

// NormSq returns the squared length.
func (v Vec) NormSq() float64 { return v.X*v.X + v.Y*v.Y }

// Norm returns the length.
func (v Vec) Norm() float64 { return math.Sqrt(v.NormSq()) }

// Unit returns v rescaled to length 1.
// The zero vector yields NaN components; callers that can see coincident
// points must check for that themselves.
func (v Vec) Unit() Vec {
	n := v.Norm()
	return Vec{v.X / n, v.Y / n}
}

// Angle returns atan2(y, x). Because Y grows downward, the result is the
// negation of the angle in standard mathematical orientation.
func (v Vec) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Polar returns the vector with the given length and angle.
func Polar(length, angle float64) Vec {
	return Vec{math.Cos(angle) * length, math.Sin(angle) * length}
}

// IsZero reports whether both components are exactly zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

func limitRange(min, max, value float64) float64 {
	return math.Max(min, math.Min(value, max))
}

func deg(d float64) float64 { return d * math.Pi / 180 }
