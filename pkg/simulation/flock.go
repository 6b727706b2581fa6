package simulation

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Independent PCG streams drawn from the same seed.
const (
	spawnStream  = 0x5eed_b01d
	jitterStream = 0x71_77e2
)

// TickStats counts the numerical fallbacks of the last Step.
type TickStats struct {
	Tick uint64
	// Degenerate boids kept their previous velocity because the combined
	// steering vector was zero.
	Degenerate int
	// Jittered boids had a zero separation accumulator replaced by jitter.
	Jittered int
}

// Snapshot is a copy of the flock state handed to rendering harnesses.
type Snapshot struct {
	Tick       uint64
	Positions  []geometry.Vector
	Velocities []geometry.Vector
	Threat     *geometry.Vector
	Bounds     behavior.Bounds
	Stats      TickStats
}

// Flock owns the boids and the optional threat, and advances them one
// tick at a time. A Flock is not safe for concurrent use.
type Flock struct {
	cfg      Config
	settings behavior.Settings
	boundary behavior.Boundary
	logger   *zap.Logger

	boids   []behavior.Boid
	threat  *geometry.Vector
	initial []behavior.Boid
	tick    uint64
	stats   TickStats
}

type flockOptions struct {
	logger *zap.Logger
	boids  []behavior.Boid
	threat *geometry.Vector
}

// Option customizes NewFlock.
type Option func(*flockOptions)

// WithLogger sets the logger, zap.NewNop() by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *flockOptions) {
		o.logger = logger
	}
}

// WithBoids replaces the random initial population. NumBoids is ignored.
func WithBoids(boids []behavior.Boid) Option {
	return func(o *flockOptions) {
		o.boids = slices.Clone(boids)
	}
}

// WithThreat places a stationary threat at p, overriding the configured
// predator position. The configuration still needs a Predator section for
// its vision radius and weight.
func WithThreat(p geometry.Vector) Option {
	return func(o *flockOptions) {
		o.threat = &p
	}
}

// NewFlock validates cfg and builds the initial population: random
// positions inside the world and random headings at MaxSpeed, drawn from a
// generator seeded with cfg.Seed.
func NewFlock(cfg *Config, opts ...Option) (*Flock, error) {
	if cfg == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("nil config"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := flockOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threat != nil && cfg.Predator == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("a threat needs a predator section"))
	}

	boundary, err := cfg.Boundary()
	if err != nil {
		return nil, err
	}

	f := &Flock{
		cfg:      *cfg,
		settings: cfg.Settings(),
		boundary: boundary,
		logger:   o.logger,
	}
	if f.cfg.UpdateMode == "" {
		f.cfg.UpdateMode = UpdateSequential
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, spawnStream))
	if o.boids != nil {
		f.boids = o.boids
	} else {
		f.boids = make([]behavior.Boid, cfg.NumBoids)
		for i := range f.boids {
			f.boids[i] = behavior.New(rng, cfg.World, cfg.MaxSpeed)
		}
	}

	if cfg.Predator != nil {
		var p geometry.Vector
		switch {
		case o.threat != nil:
			p = *o.threat
		case cfg.Predator.Position != nil:
			p = *cfg.Predator.Position
		default:
			p = cfg.World.RandomPoint(rng)
		}
		f.threat = &p
	}

	f.initial = slices.Clone(f.boids)

	f.logger.Info("flock initialized",
		zap.Int("boids", len(f.boids)),
		zap.Int("dimensions", cfg.Dimensions),
		zap.String("boundary", boundary.Name()),
		zap.String("mode", f.cfg.UpdateMode),
		zap.Bool("predator", f.threat != nil),
		zap.Uint64("seed", cfg.Seed),
	)
	return f, nil
}

// Step advances every boid by one tick.
func (f *Flock) Step() {
	f.stats = TickStats{Tick: f.tick + 1}

	if f.cfg.UpdateMode == UpdateSimultaneous {
		f.stepSimultaneous()
	} else {
		f.stepSequential()
	}
	f.tick++

	if f.stats.Degenerate > 0 || f.stats.Jittered > 0 {
		f.logger.Debug("numerical fallback",
			zap.Uint64("tick", f.tick),
			zap.Int("degenerate", f.stats.Degenerate),
			zap.Int("jittered", f.stats.Jittered),
		)
	}
}

// stepSequential mutates boids in place in collection order, each boid sees
// the boids before it at their already updated state.
func (f *Flock) stepSequential() {
	for i := range f.boids {
		st := behavior.Compute(f.boids, i, f.threat, f.settings, f.jitterFor(i))
		f.record(st, f.boids[i].Apply(st, f.settings, f.boundary))
	}
}

// stepSimultaneous scans a read-only copy of the tick's starting state in
// parallel, then applies the writes in collection order.
func (f *Flock) stepSimultaneous() {
	snapshot := slices.Clone(f.boids)
	steering := make([]behavior.Steering, len(snapshot))

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(snapshot) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(snapshot); start += chunk {
		end := min(start+chunk, len(snapshot))
		g.Go(func() error {
			for i := start; i < end; i++ {
				steering[i] = behavior.Compute(snapshot, i, f.threat, f.settings, f.jitterFor(i))
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	for i := range f.boids {
		f.record(steering[i], f.boids[i].Apply(steering[i], f.settings, f.boundary))
	}
}

func (f *Flock) record(st behavior.Steering, degenerate bool) {
	if st.Jittered {
		f.stats.Jittered++
	}
	if degenerate {
		f.stats.Degenerate++
	}
}

// jitterFor returns the jitter source of boid i for the current tick. Each
// (seed, tick, boid) triple has its own generator so the draws do not
// depend on the update mode or on scheduling.
func (f *Flock) jitterFor(i int) behavior.JitterFunc {
	amplitude := f.cfg.SeparationJitter
	if amplitude == 0 {
		return nil
	}
	tick := f.tick
	return func() geometry.Vector {
		rng := rand.New(rand.NewPCG(f.cfg.Seed^jitterStream, tick<<32|uint64(i)))
		var v geometry.Vector
		for axis := 0; axis < 3; axis++ {
			if f.cfg.World.Active(axis) {
				v.SetComponent(axis, (rng.Float64()*2-1)*amplitude)
			}
		}
		return v
	}
}

// Reset restores the initial population and rewinds the tick counter.
func (f *Flock) Reset() {
	f.boids = slices.Clone(f.initial)
	f.tick = 0
	f.stats = TickStats{}
	f.logger.Info("flock reset", zap.Int("boids", len(f.boids)))
}

// Positions returns a copy of the boid positions in collection order.
func (f *Flock) Positions() []geometry.Vector {
	out := make([]geometry.Vector, len(f.boids))
	for i, b := range f.boids {
		out[i] = b.Position
	}
	return out
}

// Threat returns the threat position, if the flock has one.
func (f *Flock) Threat() (geometry.Vector, bool) {
	if f.threat == nil {
		return geometry.Zero, false
	}
	return *f.threat, true
}

// Boids returns a copy of the boids in collection order.
func (f *Flock) Boids() []behavior.Boid {
	return slices.Clone(f.boids)
}

// Len is the number of boids.
func (f *Flock) Len() int { return len(f.boids) }

// Tick is the number of completed steps since creation or the last Reset.
func (f *Flock) Tick() uint64 { return f.tick }

// Stats describes the last Step.
func (f *Flock) Stats() TickStats { return f.stats }

// Config returns a copy of the configuration the flock runs with.
func (f *Flock) Config() Config { return f.cfg }

// Snapshot copies the state a renderer needs.
func (f *Flock) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:       f.tick,
		Positions:  make([]geometry.Vector, len(f.boids)),
		Velocities: make([]geometry.Vector, len(f.boids)),
		Bounds:     f.cfg.World,
		Stats:      f.stats,
	}
	for i, b := range f.boids {
		s.Positions[i] = b.Position
		s.Velocities[i] = b.Velocity
	}
	if p, ok := f.Threat(); ok {
		s.Threat = &p
	}
	return s
}

// Digest fingerprints the exact bits of every position and velocity, and
// of the threat. Two runs with the same seed and tick count share a digest.
func (f *Flock) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(v geometry.Vector) {
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
			_, _ = h.Write(buf[:])
		}
	}
	for _, b := range f.boids {
		write(b.Position)
		write(b.Velocity)
	}
	if f.threat != nil {
		write(*f.threat)
	}
	return h.Sum64()
}
