package behavior

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
type Boid struct {
	Position geometry.Vector `json:"position"`
	Velocity geometry.Vector `json:"velocity"`
}

// Settings controls the physics constants of the rule engine and the updater.
type Settings struct {
	MaxSpeed float64

	SeparationRadius float64 // Personal space radius
	AlignmentRadius  float64 // Heading matching range
	CohesionRadius   float64 // Centering range
	VisionRadius     float64 // Threat detection range

	SeparationWeight float64
	AlignmentWeight  float64
	CohesionWeight   float64
	AvoidanceWeight  float64
}

// New creates a boid at a random position inside bounds, moving at maxSpeed
// in a random direction. Only the active axes of bounds are randomized.
func New(rng *rand.Rand, bounds Bounds, maxSpeed float64) Boid {
	heading := RandomDirection(rng, bounds)
	return Boid{
		Position: bounds.RandomPoint(rng),
		Velocity: heading.Mul(maxSpeed),
	}
}

// RandomDirection draws components uniformly in [-1, 1) on the active axes of
// bounds until the draw is non-zero, and returns it normalized.
func RandomDirection(rng *rand.Rand, bounds Bounds) geometry.Vector {
	for {
		var v geometry.Vector
		for axis := 0; axis < 3; axis++ {
			if bounds.Active(axis) {
				v.SetComponent(axis, rng.Float64()*2-1)
			}
		}
		if dir, err := v.Normalize(); err == nil {
			return dir
		}
	}
}

// Apply combines the weighted steering directions into the boid velocity,
// clamps it to MaxSpeed and lets the boundary policy move the boid.
// When the combined vector is zero the previous velocity is kept as is and
// Apply reports true.
func (b *Boid) Apply(st Steering, s Settings, boundary Boundary) (degenerate bool) {
	combined := b.Velocity.
		Add(st.Separation.Mul(s.SeparationWeight)).
		Add(st.Alignment.Mul(s.AlignmentWeight)).
		Add(st.Cohesion.Mul(s.CohesionWeight)).
		Add(st.Avoidance.Mul(s.AvoidanceWeight))

	if clamped, err := combined.WithLen(s.MaxSpeed); err == nil {
		b.Velocity = clamped
	} else {
		degenerate = true
	}

	boundary.Advance(b)
	return degenerate
}

// Speed returns the magnitude of the boid velocity.
func (b *Boid) Speed() float64 {
	return b.Velocity.Len()
}
