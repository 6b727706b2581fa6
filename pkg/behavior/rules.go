package behavior

import "github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"

// JitterFunc returns a small random vector used to break a perfectly
// symmetric separation. A nil JitterFunc disables jitter.
type JitterFunc func() geometry.Vector

// Steering holds the unit steering directions of one boid for one tick.
// A rule without neighbors contributes the zero vector.
type Steering struct {
	Separation geometry.Vector
	Alignment  geometry.Vector
	Cohesion   geometry.Vector
	Avoidance  geometry.Vector

	// Jittered is set when the separation accumulator was zero and the
	// jitter source replaced it.
	Jittered bool
}

// neighborhood accumulates what the three flocking rules need from one
// scan over the flock.
type neighborhood struct {
	push       geometry.Vector
	pushCount  int
	velSum     geometry.Vector
	alignCount int
	posSum     geometry.Vector
	cohCount   int
}

// scan visits every other boid once. Self (index i) and boids sitting
// exactly on top of flock[i] are never neighbors.
func scan(flock []Boid, i int, s Settings) neighborhood {
	var n neighborhood
	me := flock[i]

	for j := range flock {
		if j == i {
			continue
		}
		other := flock[j]

		diff := me.Position.Sub(other.Position)
		dist := diff.Len()
		if dist == 0 {
			continue
		}

		// 1. Separation: inverse-distance weighted push away
		if dist < s.SeparationRadius {
			unit, _ := diff.Div(dist) // dist > 0
			push, _ := unit.Div(dist)
			n.push = n.push.Add(push)
			n.pushCount++
		}

		// 2. Alignment
		if dist < s.AlignmentRadius {
			n.velSum = n.velSum.Add(other.Velocity)
			n.alignCount++
		}

		// 3. Cohesion
		if dist < s.CohesionRadius {
			n.posSum = n.posSum.Add(other.Position)
			n.cohCount++
		}
	}
	return n
}

// steer turns a desired heading into a steering direction: the desired
// heading at full speed minus the current velocity, normalized.
// Zero vectors at either stage give no steering.
func steer(desired, velocity geometry.Vector, maxSpeed float64) geometry.Vector {
	want, err := desired.WithLen(maxSpeed)
	if err != nil {
		return geometry.Zero
	}
	return want.Sub(velocity).NormalizeOr(geometry.Zero)
}

func (n neighborhood) separation(me Boid, s Settings, jitter JitterFunc) (geometry.Vector, bool) {
	if n.pushCount == 0 {
		return geometry.Zero, false
	}
	avg, _ := n.push.Div(float64(n.pushCount))

	jittered := false
	if avg.IsZero() && jitter != nil {
		avg = jitter()
		jittered = true
	}
	return steer(avg, me.Velocity, s.MaxSpeed), jittered
}

func (n neighborhood) alignment(me Boid, s Settings) geometry.Vector {
	if n.alignCount == 0 {
		return geometry.Zero
	}
	avg, _ := n.velSum.Div(float64(n.alignCount))
	return steer(avg, me.Velocity, s.MaxSpeed)
}

func (n neighborhood) cohesion(me Boid, s Settings) geometry.Vector {
	if n.cohCount == 0 {
		return geometry.Zero
	}
	centroid, _ := n.posSum.Div(float64(n.cohCount))
	return steer(centroid.Sub(me.Position), me.Velocity, s.MaxSpeed)
}

// Separation returns the direction that steers flock[i] away from the
// neighbors inside SeparationRadius, closer neighbors weighing more.
// The boolean reports whether jitter replaced a zero accumulator.
func Separation(flock []Boid, i int, s Settings, jitter JitterFunc) (geometry.Vector, bool) {
	return scan(flock, i, s).separation(flock[i], s, jitter)
}

// Alignment returns the direction that turns flock[i] toward the mean
// heading of the neighbors inside AlignmentRadius.
func Alignment(flock []Boid, i int, s Settings) geometry.Vector {
	return scan(flock, i, s).alignment(flock[i], s)
}

// Cohesion returns the direction that turns flock[i] toward the centroid
// of the neighbors inside CohesionRadius.
func Cohesion(flock []Boid, i int, s Settings) geometry.Vector {
	return scan(flock, i, s).cohesion(flock[i], s)
}

// Avoidance returns the unit vector pointing from the threat to me when the
// threat is closer than VisionRadius, zero otherwise or without a threat.
func Avoidance(me Boid, threat *geometry.Vector, s Settings) geometry.Vector {
	if threat == nil {
		return geometry.Zero
	}
	away := me.Position.Sub(*threat)
	if away.Len() >= s.VisionRadius {
		return geometry.Zero
	}
	return away.NormalizeOr(geometry.Zero)
}

// Compute runs every rule for flock[i] with a single scan of the flock.
// flock is only read.
func Compute(flock []Boid, i int, threat *geometry.Vector, s Settings, jitter JitterFunc) Steering {
	me := flock[i]
	n := scan(flock, i, s)

	var st Steering
	st.Separation, st.Jittered = n.separation(me, s, jitter)
	st.Alignment = n.alignment(me, s)
	st.Cohesion = n.cohesion(me, s)
	st.Avoidance = Avoidance(me, threat, s)
	return st
}
