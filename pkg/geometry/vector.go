package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon Precision constant used by Eq for float64 comparisons.
const (
	Epsilon = 1e-9
)

var (
	// ErrZeroLength is returned when a zero vector is asked for its direction.
	ErrZeroLength = errors.New("vector has zero length")
	// ErrDivideByZero is returned by Div for a zero scalar.
	ErrDivideByZero = errors.New("vector cannot be divided by zero")
)

// Vector is a point or direction in cartesian space.
// Planar worlds keep Z at 0, every operation preserves that.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Zero is the zero vector.
var Zero = Vector{}

// NewVector creates a planar Vector (Z = 0).
func NewVector(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// NewVector3 creates a Vector with all three components.
func NewVector3(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// NewVectorPolar creates a planar Vector from polar coordinates.
// theta is in radians.
func NewVectorPolar(radius, theta float64) Vector {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// Handle standard floating point precision issues near zero
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}

	return Vector{X: x, Y: y}
}

// String implements the fmt.Stringer interface.
func (v Vector) String() string {
	if v.Z == 0 {
		return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
	}
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers, every method returns a new Vector.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector) Add(other Vector) Vector {
	return Vector{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector) Sub(other Vector) Vector {
	return Vector{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector) Mul(scalar float64) Vector {
	return Vector{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar returns an Inf vector together with ErrDivideByZero.
func (v Vector) Div(scalar float64) (Vector, error) {
	if scalar == 0 {
		return Vector{math.Inf(1), math.Inf(1), math.Inf(1)}, ErrDivideByZero
	}
	return Vector{v.X / scalar, v.Y / scalar, v.Z / scalar}, nil
}

// Dot calculates the dot product of two vectors.
func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross calculates the cross product. For two planar vectors only Z is non-zero
// and holds the signed area (winding order).
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Use it for comparisons, it avoids the square root.
func (v Vector) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// IsZero reports whether every component is exactly zero.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Normalize returns a unit vector in the same direction.
// A zero vector has no direction: the result is Zero and ErrZeroLength.
func (v Vector) Normalize() (Vector, error) {
	l := v.Len()
	if l == 0 {
		return Zero, ErrZeroLength
	}
	return Vector{v.X / l, v.Y / l, v.Z / l}, nil
}

// NormalizeOr returns the unit vector of v, or fallback when v has zero length.
func (v Vector) NormalizeOr(fallback Vector) Vector {
	n, err := v.Normalize()
	if err != nil {
		return fallback
	}
	return n
}

// WithLen returns a vector in the direction of v with the given length.
// Fails like Normalize on a zero vector.
func (v Vector) WithLen(length float64) (Vector, error) {
	n, err := v.Normalize()
	if err != nil {
		return Zero, err
	}
	return n.Mul(length), nil
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector) DistanceTo(other Vector) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector) DistanceSquaredTo(other Vector) float64 {
	return v.Sub(other).LenSqr()
}

// Heading returns the planar angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector) Lerp(target Vector, t float64) Vector {
	return v.Add(target.Sub(v).Mul(t))
}

// Component returns the value on axis 0 (X), 1 (Y) or 2 (Z).
func (v Vector) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("geometry: axis %d out of range", axis))
}

// SetComponent sets the value on axis 0 (X), 1 (Y) or 2 (Z).
func (v *Vector) SetComponent(axis int, value float64) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	case 2:
		v.Z = value
	default:
		panic(fmt.Sprintf("geometry: axis %d out of range", axis))
	}
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector) Eq(other Vector) bool {
	return math.Abs(v.X-other.X) <= Epsilon &&
		math.Abs(v.Y-other.Y) <= Epsilon &&
		math.Abs(v.Z-other.Z) <= Epsilon
}

// IsParallel reports whether v and other point in the same direction.
// Zero vectors are never parallel to anything.
func (v Vector) IsParallel(other Vector) bool {
	a, errA := v.Normalize()
	b, errB := other.Normalize()
	if errA != nil || errB != nil {
		return false
	}
	return a.Eq(b)
}
