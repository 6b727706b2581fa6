package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-flocking/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPresets_AreValid(t *testing.T) {
	for _, name := range []string{PresetPlanar, PresetPlanarWrap, PresetVolumetric} {
		t.Run(name, func(t *testing.T) {
			cfg, err := PresetConfig(name)
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Preset)
			assert.NoError(t, cfg.Validate())
			assert.Equal(t, cfg.Dimensions, cfg.World.Dimensions())
		})
	}

	_, err := PresetConfig("hexagonal")
	assert.Error(t, err)
}

func TestPresets_AreIndependentCopies(t *testing.T) {
	a := DefaultVolumetricConfig()
	a.Predator.VisionRadius = 1
	b := DefaultVolumetricConfig()
	assert.Equal(t, 100.0, b.Predator.VisionRadius)
}

func TestConfig_Settings(t *testing.T) {
	s := DefaultVolumetricConfig().Settings()
	assert.Equal(t, behavior.Settings{
		MaxSpeed:         5,
		SeparationRadius: 100,
		AlignmentRadius:  100,
		CohesionRadius:   100,
		VisionRadius:     100,
		SeparationWeight: 0.5,
		AlignmentWeight:  0.1,
		CohesionWeight:   0.1,
		AvoidanceWeight:  1,
	}, s)

	planar := DefaultPlanarConfig().Settings()
	assert.Zero(t, planar.VisionRadius)
	assert.Zero(t, planar.AvoidanceWeight)
}

func TestConfig_ValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultPlanarConfig()
	cfg.NumBoids = 0
	cfg.MaxSpeed = 0
	cfg.SeparationRadius = -1
	cfg.CohesionWeight = -0.5
	cfg.BoundaryPolicy = "bounce"
	cfg.UpdateMode = "eventually"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, behavior.ErrUnknownPolicy)
	for _, part := range []string{"numBoids", "maxSpeed", "separationRadius", "cohesionWeight", "bounce", "eventually"} {
		assert.Contains(t, err.Error(), part)
	}
}

func TestConfig_ValidateWorld(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad dimensions", func(c *Config) { c.Dimensions = 4 }, "dimensions must be 2 or 3"},
		{"planar world with depth", func(c *Config) { c.World.Max.Z = 10 }, "z bounds"},
		{"empty width", func(c *Config) { c.World.Max.X = 0 }, "axis 0"},
		{"volumetric without depth", func(c *Config) { c.Dimensions = 3 }, "axis 2"},
		{"predator outside", func(c *Config) {
			c.Predator = &PredatorConfig{Position: &geometry.Vector{X: -5, Y: 5}, VisionRadius: 10}
		}, "predator position"},
		{"negative vision", func(c *Config) {
			c.Predator = &PredatorConfig{VisionRadius: -10}
		}, "predator.visionRadius"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPlanarConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "flock.json", `{
		"preset": "volumetric",
		"numBoids": 12,
		"seed": 42,
		"predator": {"position": {"x": 1, "y": 2, "z": 3}, "visionRadius": 50, "avoidanceWeight": 2},
		"updateMode": "simultaneous"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, PresetVolumetric, cfg.Preset)
	assert.Equal(t, 3, cfg.Dimensions)
	assert.Equal(t, 12, cfg.NumBoids)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 5.0, cfg.MaxSpeed, "unset fields keep the preset value")
	assert.Equal(t, behavior.PolicyWrapModulo, cfg.BoundaryPolicy)
	assert.Equal(t, UpdateSimultaneous, cfg.UpdateMode)
	require.NotNil(t, cfg.Predator)
	assert.Equal(t, &geometry.Vector{X: 1, Y: 2, Z: 3}, cfg.Predator.Position)
	assert.Equal(t, 50.0, cfg.Predator.VisionRadius)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "flock.yaml", `
preset: planar-wrap
numBoids: 30
maxSpeed: 4.5
world:
  min: {x: -100, y: -100}
  max: {x: 100, y: 100}
separationWeight: 0.2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, behavior.PolicyWrap, cfg.BoundaryPolicy)
	assert.Equal(t, 30, cfg.NumBoids)
	assert.Equal(t, 4.5, cfg.MaxSpeed)
	assert.Equal(t, 0.2, cfg.SeparationWeight)
	assert.Equal(t, geometry.NewVector(-100, -100), cfg.World.Min)
	assert.Equal(t, geometry.NewVector(100, 100), cfg.World.Max)
	assert.Nil(t, cfg.Predator)
}

func TestLoadConfig_PredatorCanBeDisabled(t *testing.T) {
	path := writeFile(t, "calm.yml", "preset: volumetric\npredator: null\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Predator)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"schema: unknown policy", "a.json", `{"boundaryPolicy": "bounce"}`},
		{"schema: wrong type", "b.json", `{"numBoids": "ten"}`},
		{"schema: zero speed", "c.json", `{"maxSpeed": 0}`},
		{"schema: negative radius", "d.yaml", "cohesionRadius: -1\n"},
		{"schema: unknown field", "e.json", `{"gravity": 9.81}`},
		{"validate: planar world with depth", "f.json", `{"world": {"min": {"x": 0, "y": 0, "z": 0}, "max": {"x": 10, "y": 10, "z": 10}}}`},
		{"malformed json", "g.json", `{"numBoids": `},
		{"malformed yaml", "h.yaml", "numBoids: [1,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_SampleFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "configs", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			cfg, err := LoadConfig(path)
			require.NoError(t, err)

			_, err = NewFlock(cfg)
			assert.NoError(t, err)
		})
	}
}
