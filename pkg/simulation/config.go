package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// Preset names.
const (
	PresetPlanar     = "planar"
	PresetPlanarWrap = "planar-wrap"
	PresetVolumetric = "volumetric"
)

// Update modes.
const (
	// UpdateSequential mutates boids in place, in collection order: a boid
	// updated later in a tick sees the neighbors already moved this tick.
	UpdateSequential = "sequential"
	// UpdateSimultaneous computes every boid's rules in parallel against the
	// state at the start of the tick, then applies all writes.
	UpdateSimultaneous = "simultaneous"
)

// ErrInvalidConfig wraps every configuration problem found by Validate.
var ErrInvalidConfig = errors.New("invalid flock configuration")

//go:embed config.schema.json
var configSchema string

// PredatorConfig describes the single stationary threat of a flock.
type PredatorConfig struct {
	// Position of the threat, drawn at random inside the world when nil.
	Position        *geometry.Vector `json:"position,omitempty"`
	VisionRadius    float64          `json:"visionRadius"`
	AvoidanceWeight float64          `json:"avoidanceWeight"`
}

type Config struct {
	Preset string `json:"preset,omitempty"`

	// World
	Dimensions int             `json:"dimensions"`
	World      behavior.Bounds `json:"world"`

	// Population
	NumBoids int    `json:"numBoids"`
	Seed     uint64 `json:"seed"`

	// Physics
	MaxSpeed float64 `json:"maxSpeed"`

	// Interaction Radii
	SeparationRadius float64 `json:"separationRadius"`
	AlignmentRadius  float64 `json:"alignmentRadius"`
	CohesionRadius   float64 `json:"cohesionRadius"`

	// Rule weights
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	Predator *PredatorConfig `json:"predator,omitempty"`

	// Boundary handling
	BoundaryPolicy string  `json:"boundaryPolicy"`
	BorderMargin   float64 `json:"borderMargin"` // soft-push only
	BorderNudge    float64 `json:"borderNudge"`  // soft-push only

	// SeparationJitter is the half-width of the random vector that replaces
	// a zero separation accumulator. 0 disables it.
	SeparationJitter float64 `json:"separationJitter"`

	UpdateMode string `json:"updateMode"`
}

// DefaultPlanarConfig is the planar flock pushed back softly from the
// window edges.
func DefaultPlanarConfig() *Config {
	return &Config{
		Preset:           PresetPlanar,
		Dimensions:       2,
		World:            behavior.NewPlanarBounds(1000, 600),
		NumBoids:         200,
		Seed:             1,
		MaxSpeed:         3,
		SeparationRadius: 50,
		AlignmentRadius:  100,
		CohesionRadius:   100,
		SeparationWeight: 0.1,
		AlignmentWeight:  0.1,
		CohesionWeight:   0.1,
		BoundaryPolicy:   behavior.PolicySoftPush,
		BorderMargin:     50,
		BorderNudge:      1.0,
		UpdateMode:       UpdateSequential,
	}
}

// DefaultWrappedPlanarConfig is the planar flock on a wrap-around plane.
func DefaultWrappedPlanarConfig() *Config {
	cfg := DefaultPlanarConfig()
	cfg.Preset = PresetPlanarWrap
	cfg.BoundaryPolicy = behavior.PolicyWrap
	return cfg
}

// DefaultVolumetricConfig is the 3-D flock on a toroidal cube with a
// stationary predator.
func DefaultVolumetricConfig() *Config {
	return &Config{
		Preset:           PresetVolumetric,
		Dimensions:       3,
		World:            behavior.NewCubeBounds(100),
		NumBoids:         50,
		Seed:             1,
		MaxSpeed:         5,
		SeparationRadius: 100,
		AlignmentRadius:  100,
		CohesionRadius:   100,
		SeparationWeight: 0.5,
		AlignmentWeight:  0.1,
		CohesionWeight:   0.1,
		Predator: &PredatorConfig{
			VisionRadius:    100,
			AvoidanceWeight: 1.0,
		},
		BoundaryPolicy:   behavior.PolicyWrapModulo,
		SeparationJitter: 0.1,
		UpdateMode:       UpdateSequential,
	}
}

// PresetConfig returns a fresh copy of the named preset.
func PresetConfig(name string) (*Config, error) {
	switch name {
	case "", PresetPlanar:
		return DefaultPlanarConfig(), nil
	case PresetPlanarWrap:
		return DefaultWrappedPlanarConfig(), nil
	case PresetVolumetric:
		return DefaultVolumetricConfig(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}

// Settings extracts the rule engine parameters.
func (c *Config) Settings() behavior.Settings {
	s := behavior.Settings{
		MaxSpeed:         c.MaxSpeed,
		SeparationRadius: c.SeparationRadius,
		AlignmentRadius:  c.AlignmentRadius,
		CohesionRadius:   c.CohesionRadius,
		SeparationWeight: c.SeparationWeight,
		AlignmentWeight:  c.AlignmentWeight,
		CohesionWeight:   c.CohesionWeight,
	}
	if c.Predator != nil {
		s.VisionRadius = c.Predator.VisionRadius
		s.AvoidanceWeight = c.Predator.AvoidanceWeight
	}
	return s
}

// Boundary builds the configured boundary policy.
func (c *Config) Boundary() (behavior.Boundary, error) {
	return behavior.NewBoundary(c.BoundaryPolicy, c.World, c.BorderMargin, c.BorderNudge)
}

// Validate reports every precondition violation at once. The returned
// error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if c.NumBoids <= 0 {
		add("numBoids must be positive, got %d", c.NumBoids)
	}
	if !(c.MaxSpeed > 0) || math.IsInf(c.MaxSpeed, 0) {
		add("maxSpeed must be a positive number, got %v", c.MaxSpeed)
	}

	nonNegative := map[string]float64{
		"separationRadius": c.SeparationRadius,
		"alignmentRadius":  c.AlignmentRadius,
		"cohesionRadius":   c.CohesionRadius,
		"separationWeight": c.SeparationWeight,
		"alignmentWeight":  c.AlignmentWeight,
		"cohesionWeight":   c.CohesionWeight,
		"borderMargin":     c.BorderMargin,
		"borderNudge":      c.BorderNudge,
		"separationJitter": c.SeparationJitter,
	}
	if c.Predator != nil {
		nonNegative["predator.visionRadius"] = c.Predator.VisionRadius
		nonNegative["predator.avoidanceWeight"] = c.Predator.AvoidanceWeight
	}
	for _, name := range sortedKeys(nonNegative) {
		if v := nonNegative[name]; !(v >= 0) || math.IsInf(v, 0) {
			add("%s must be a non-negative number, got %v", name, v)
		}
	}

	switch c.Dimensions {
	case 2:
		if c.World.Min.Z != 0 || c.World.Max.Z != 0 {
			add("a planar world must have z bounds of 0, got [%v, %v]", c.World.Min.Z, c.World.Max.Z)
		}
	case 3:
	default:
		add("dimensions must be 2 or 3, got %d", c.Dimensions)
	}
	for axis := 0; axis < c.Dimensions && axis < 3; axis++ {
		if !c.World.Active(axis) {
			add("world must have a positive extent on axis %d, got [%v, %v]",
				axis, c.World.Min.Component(axis), c.World.Max.Component(axis))
		}
	}

	if c.Predator != nil && c.Predator.Position != nil && !c.World.Contains(*c.Predator.Position) {
		add("predator position %s lies outside the world", c.Predator.Position)
	}

	if _, err := c.Boundary(); err != nil {
		errs = multierr.Append(errs, err)
	}
	switch c.UpdateMode {
	case "", UpdateSequential, UpdateSimultaneous:
	default:
		add("unknown update mode %q", c.UpdateMode)
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// LoadConfig loads a JSON or YAML (by extension) configuration file,
// validates it against the embedded schema, lays it over the preset it
// names (planar by default) and checks the result with Validate.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Read Config File
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 2. YAML is converted to JSON so both share the schema and the struct tags
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if raw, err = yamlToJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	return ParseConfig(raw)
}

// ParseConfig is LoadConfig for an in-memory JSON document.
func ParseConfig(raw []byte) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Validate
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 3. Start from the named preset
	var head struct {
		Preset string `json:"preset"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg, err := PresetConfig(head.Preset)
	if err != nil {
		return nil, err
	}

	// 4. Unmarshal into Struct
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
