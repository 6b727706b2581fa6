package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

const delta = 1e-9

func testSettings() Settings {
	return Settings{
		MaxSpeed:         3,
		SeparationRadius: 50,
		AlignmentRadius:  100,
		CohesionRadius:   100,
		VisionRadius:     100,
		SeparationWeight: 0.1,
		AlignmentWeight:  0.1,
		CohesionWeight:   0.1,
		AvoidanceWeight:  1,
	}
}

func assertVector(t *testing.T, want, got geometry.Vector, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

func TestSeparation_PairIsAntiParallel(t *testing.T) {
	s := testSettings()

	tests := []struct {
		name string
		a, b Boid
	}{
		{
			name: "at rest",
			a:    Boid{Position: geometry.NewVector(0, 0)},
			b:    Boid{Position: geometry.NewVector(10, 0)},
		},
		{
			name: "mirrored velocities",
			a:    Boid{Position: geometry.NewVector(0, 0), Velocity: geometry.NewVector(0, 3)},
			b:    Boid{Position: geometry.NewVector(10, 0), Velocity: geometry.NewVector(0, -3)},
		},
		{
			name: "volumetric",
			a:    Boid{Position: geometry.NewVector3(1, 2, 3)},
			b:    Boid{Position: geometry.NewVector3(4, -2, 8)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flock := []Boid{tt.a, tt.b}
			sepA, jitteredA := Separation(flock, 0, s, nil)
			sepB, jitteredB := Separation(flock, 1, s, nil)

			assert.False(t, jitteredA)
			assert.False(t, jitteredB)
			assert.InDelta(t, 1, sepA.Len(), delta)
			assert.InDelta(t, 1, sepB.Len(), delta)
			assert.InDelta(t, -1, sepA.Dot(sepB), delta, "separation directions should be anti-parallel")

			// A is pushed away from B
			away := tt.a.Position.Sub(tt.b.Position)
			assert.Greater(t, sepA.Dot(away), 0.0)
		})
	}
}

func TestSeparation_AtRestPointsStraightAway(t *testing.T) {
	flock := []Boid{
		{Position: geometry.NewVector(0, 0)},
		{Position: geometry.NewVector(10, 0)},
	}
	sep, _ := Separation(flock, 0, testSettings(), nil)
	assertVector(t, geometry.NewVector(-1, 0), sep)
}

func TestSeparation_CloserNeighborWeighsMore(t *testing.T) {
	// Neighbor on the right is 5 away, the one above is 20 away:
	// inverse-distance weighting pushes mostly to the left.
	flock := []Boid{
		{Position: geometry.NewVector(0, 0)},
		{Position: geometry.NewVector(5, 0)},
		{Position: geometry.NewVector(0, 20)},
	}
	sep, _ := Separation(flock, 0, testSettings(), nil)

	// accumulator = ((-1/5, 0) + (0, -1/20)) / 2, direction (-4, -1)
	want, err := geometry.NewVector(-4, -1).Normalize()
	require.NoError(t, err)
	assertVector(t, want, sep)
}

func TestSeparation_Exclusions(t *testing.T) {
	s := testSettings()

	t.Run("self only", func(t *testing.T) {
		flock := []Boid{{Position: geometry.NewVector(1, 1), Velocity: geometry.NewVector(3, 0)}}
		sep, _ := Separation(flock, 0, s, nil)
		assert.True(t, sep.IsZero())
	})

	t.Run("co-located agent is not a neighbor", func(t *testing.T) {
		flock := []Boid{
			{Position: geometry.NewVector(1, 1)},
			{Position: geometry.NewVector(1, 1)},
		}
		sep, jittered := Separation(flock, 0, s, func() geometry.Vector { return geometry.NewVector(1, 0) })
		assert.True(t, sep.IsZero())
		assert.False(t, jittered, "no neighbors means no jitter")
	})

	t.Run("outside radius", func(t *testing.T) {
		flock := []Boid{
			{Position: geometry.NewVector(0, 0), Velocity: geometry.NewVector(3, 0)},
			{Position: geometry.NewVector(50, 0)},
		}
		sep, _ := Separation(flock, 0, s, nil)
		assert.True(t, sep.IsZero(), "a neighbor exactly at the radius is excluded")
	})
}

func TestSeparation_SymmetricNeighborsUseJitter(t *testing.T) {
	s := testSettings()
	flock := []Boid{
		{Position: geometry.NewVector(0, 0)},
		{Position: geometry.NewVector(-1, 0)},
		{Position: geometry.NewVector(1, 0)},
	}

	t.Run("without jitter", func(t *testing.T) {
		sep, jittered := Separation(flock, 0, s, nil)
		assert.True(t, sep.IsZero())
		assert.False(t, jittered)
	})

	t.Run("with jitter", func(t *testing.T) {
		calls := 0
		jitter := func() geometry.Vector {
			calls++
			return geometry.NewVector(0, 0.05)
		}
		sep, jittered := Separation(flock, 0, s, jitter)
		assert.True(t, jittered)
		assert.Equal(t, 1, calls)
		assertVector(t, geometry.NewVector(0, 1), sep)
	})

	t.Run("jitter is not used when the push is non-zero", func(t *testing.T) {
		lopsided := []Boid{flock[0], flock[1]}
		_, jittered := Separation(lopsided, 0, s, func() geometry.Vector {
			t.Fatal("jitter should not be drawn")
			return geometry.Zero
		})
		assert.False(t, jittered)
	})
}

func TestAlignment_SingleNeighbor(t *testing.T) {
	s := testSettings()
	me := Boid{Position: geometry.NewVector(0, 0), Velocity: geometry.NewVector(3, 0)}
	other := Boid{Position: geometry.NewVector(5, 0), Velocity: geometry.NewVector(0, 2)}

	got := Alignment([]Boid{me, other}, 0, s)

	// desired = heading of the neighbor at full speed, minus my velocity
	want := geometry.NewVector(-1, 1).Mul(1 / math.Sqrt2)
	assertVector(t, want, got)

	t.Run("at rest steers along the neighbor heading", func(t *testing.T) {
		me := Boid{Position: geometry.NewVector(0, 0)}
		got := Alignment([]Boid{me, other}, 0, s)
		assertVector(t, geometry.NewVector(0, 1), got)
	})

	t.Run("already aligned gives no steering", func(t *testing.T) {
		same := Boid{Position: geometry.NewVector(5, 0), Velocity: geometry.NewVector(1.5, 0)}
		got := Alignment([]Boid{me, same}, 0, s)
		assert.True(t, got.IsZero())
	})

	t.Run("neighbors cancelling out give no steering", func(t *testing.T) {
		left := Boid{Position: geometry.NewVector(5, 0), Velocity: geometry.NewVector(-1, 0)}
		right := Boid{Position: geometry.NewVector(-5, 0), Velocity: geometry.NewVector(1, 0)}
		got := Alignment([]Boid{me, left, right}, 0, s)
		assert.True(t, got.IsZero())
	})
}

func TestCohesion_SingleNeighbor(t *testing.T) {
	s := testSettings()
	other := Boid{Position: geometry.NewVector(10, 0)}

	t.Run("at rest steers toward the neighbor", func(t *testing.T) {
		me := Boid{Position: geometry.NewVector(0, 0)}
		got := Cohesion([]Boid{me, other}, 0, s)
		assertVector(t, geometry.NewVector(1, 0), got)
	})

	t.Run("moving", func(t *testing.T) {
		me := Boid{Position: geometry.NewVector(0, 0), Velocity: geometry.NewVector(0, 3)}
		got := Cohesion([]Boid{me, other}, 0, s)
		assertVector(t, geometry.NewVector(1, -1).Mul(1/math.Sqrt2), got)
	})

	t.Run("volumetric", func(t *testing.T) {
		me := Boid{Position: geometry.NewVector3(0, 0, 0)}
		above := Boid{Position: geometry.NewVector3(0, 0, 10)}
		got := Cohesion([]Boid{me, above}, 0, s)
		assertVector(t, geometry.NewVector3(0, 0, 1), got)
	})
}

func TestCompute_IsolatedBoid(t *testing.T) {
	s := testSettings()
	flock := []Boid{
		{Position: geometry.NewVector(0, 0), Velocity: geometry.NewVector(3, 0)},
		{Position: geometry.NewVector(500, 500), Velocity: geometry.NewVector(0, 3)},
	}

	st := Compute(flock, 0, nil, s, nil)
	assert.Equal(t, Steering{}, st)
}

func TestCompute_UsesPerRuleRadii(t *testing.T) {
	s := testSettings()
	s.SeparationRadius = 5
	s.AlignmentRadius = 5
	s.CohesionRadius = 20

	flock := []Boid{
		{Position: geometry.NewVector(0, 0)},
		{Position: geometry.NewVector(10, 0), Velocity: geometry.NewVector(0, 3)},
	}
	st := Compute(flock, 0, nil, s, nil)

	assert.True(t, st.Separation.IsZero())
	assert.True(t, st.Alignment.IsZero())
	assertVector(t, geometry.NewVector(1, 0), st.Cohesion)
}

func TestAvoidance(t *testing.T) {
	s := testSettings()
	me := Boid{Position: geometry.NewVector3(0, 0, 0), Velocity: geometry.NewVector3(5, 0, 0)}

	tests := []struct {
		name   string
		threat *geometry.Vector
		want   geometry.Vector
	}{
		{"no threat", nil, geometry.Zero},
		{"inside vision", &geometry.Vector{X: 10}, geometry.NewVector3(-1, 0, 0)},
		{"diagonal", &geometry.Vector{Y: -3, Z: -4}, geometry.NewVector3(0, 0.6, 0.8)},
		{"at vision radius", &geometry.Vector{X: 100}, geometry.Zero},
		{"far away", &geometry.Vector{X: 200, Y: 200}, geometry.Zero},
		{"on top of the threat", &geometry.Vector{}, geometry.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Avoidance(me, tt.threat, s)
			assertVector(t, tt.want, got)
		})
	}

	st := Compute([]Boid{me}, 0, &geometry.Vector{X: 10}, s, nil)
	assertVector(t, geometry.NewVector3(-1, 0, 0), st.Avoidance)
}
