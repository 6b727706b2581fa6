package behavior

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Boundary policy names as they appear in configuration files.
const (
	PolicySoftPush   = "soft-push"
	PolicyWrap       = "wrap"
	PolicyWrapModulo = "wrap-modulo"
)

// ErrUnknownPolicy is returned by NewBoundary for an unrecognized policy name.
var ErrUnknownPolicy = errors.New("unknown boundary policy")

// Bounds is the axis-aligned box the flock lives in.
// An axis whose Max is not above its Min is inactive: boids never move
// along it and boundary policies ignore it (Z in a planar world).
type Bounds struct {
	Min geometry.Vector `json:"min"`
	Max geometry.Vector `json:"max"`
}

// NewPlanarBounds returns [0, width] x [0, height] with Z inactive.
func NewPlanarBounds(width, height float64) Bounds {
	return Bounds{Max: geometry.NewVector(width, height)}
}

// NewCubeBounds returns [-half, half] on every axis.
func NewCubeBounds(half float64) Bounds {
	return Bounds{
		Min: geometry.NewVector3(-half, -half, -half),
		Max: geometry.NewVector3(half, half, half),
	}
}

// Active reports whether the flock moves along axis.
func (b Bounds) Active(axis int) bool {
	return b.Span(axis) > 0
}

// Span is the extent of the box along axis.
func (b Bounds) Span(axis int) float64 {
	return b.Max.Component(axis) - b.Min.Component(axis)
}

// Dimensions counts the active axes.
func (b Bounds) Dimensions() int {
	n := 0
	for axis := 0; axis < 3; axis++ {
		if b.Active(axis) {
			n++
		}
	}
	return n
}

// Contains reports whether p lies inside the closed box.
func (b Bounds) Contains(p geometry.Vector) bool {
	for axis := 0; axis < 3; axis++ {
		c := p.Component(axis)
		if c < b.Min.Component(axis) || c > b.Max.Component(axis) {
			return false
		}
	}
	return true
}

// RandomPoint draws a point uniformly inside the box.
func (b Bounds) RandomPoint(rng *rand.Rand) geometry.Vector {
	p := b.Min
	for axis := 0; axis < 3; axis++ {
		if b.Active(axis) {
			p.SetComponent(axis, b.Min.Component(axis)+rng.Float64()*b.Span(axis))
		}
	}
	return p
}

// Boundary moves a boid by its velocity and keeps it around the world.
type Boundary interface {
	Advance(b *Boid)
	Name() string
}

// NewBoundary builds the policy registered under name.
func NewBoundary(name string, bounds Bounds, margin, nudge float64) (Boundary, error) {
	switch name {
	case PolicySoftPush:
		return SoftPush{Bounds: bounds, Margin: margin, Nudge: nudge}, nil
	case PolicyWrap:
		return Wrap{Bounds: bounds}, nil
	case PolicyWrapModulo:
		return WrapModulo{Bounds: bounds}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// SoftPush looks at the prospective position and, when it falls within
// Margin of an edge, nudges the matching velocity component by a fixed
// Nudge toward the inside before moving. It never teleports, boids may
// overshoot the margin band.
type SoftPush struct {
	Bounds Bounds
	Margin float64
	Nudge  float64
}

func (p SoftPush) Name() string { return PolicySoftPush }

func (p SoftPush) Advance(b *Boid) {
	next := b.Position.Add(b.Velocity)
	for axis := 0; axis < 3; axis++ {
		if !p.Bounds.Active(axis) {
			continue
		}
		c := next.Component(axis)
		v := b.Velocity.Component(axis)
		if c < p.Bounds.Min.Component(axis)+p.Margin {
			v += p.Nudge
		} else if c > p.Bounds.Max.Component(axis)-p.Margin {
			v -= p.Nudge
		}
		b.Velocity.SetComponent(axis, v)
	}
	b.Position = b.Position.Add(b.Velocity)
}

// Wrap moves the boid, then resets a coordinate past the upper bound to
// the lower bound and one below the lower bound to the upper bound.
type Wrap struct {
	Bounds Bounds
}

func (p Wrap) Name() string { return PolicyWrap }

func (p Wrap) Advance(b *Boid) {
	b.Position = b.Position.Add(b.Velocity)
	for axis := 0; axis < 3; axis++ {
		if !p.Bounds.Active(axis) {
			continue
		}
		lo, hi := p.Bounds.Min.Component(axis), p.Bounds.Max.Component(axis)
		c := b.Position.Component(axis)
		if c > hi {
			b.Position.SetComponent(axis, lo)
		} else if c < lo {
			b.Position.SetComponent(axis, hi)
		}
	}
}

// WrapModulo moves the boid, then folds every coordinate back into the
// half-open range [lower, upper) with a floored modulo: upper maps to
// lower and upper+d to lower+d.
type WrapModulo struct {
	Bounds Bounds
}

func (p WrapModulo) Name() string { return PolicyWrapModulo }

func (p WrapModulo) Advance(b *Boid) {
	b.Position = b.Position.Add(b.Velocity)
	for axis := 0; axis < 3; axis++ {
		if !p.Bounds.Active(axis) {
			continue
		}
		lo := p.Bounds.Min.Component(axis)
		c := b.Position.Component(axis)
		b.Position.SetComponent(axis, lo+floorMod(c-lo, p.Bounds.Span(axis)))
	}
}

// floorMod is the modulo with the sign of m, result in [0, m).
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	// r+m may round up to m for tiny negative r
	if r >= m {
		r = 0
	}
	return r
}
