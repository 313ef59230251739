package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 800.0, cfg.Arena.Width)
	assert.Equal(t, 600.0, cfg.Arena.Height)
	assert.Equal(t, 40.0, cfg.Arena.CellSize)
	assert.Equal(t, 200, cfg.Filter.Particles)
	assert.Equal(t, 9, cfg.Lidar.Beams)
	assert.Equal(t, 50*time.Millisecond, cfg.Motion.TickInterval)
	assert.Len(t, cfg.Obstacles, 14)
	assert.Equal(t, 100.0, cfg.Robot.X)
	assert.Equal(t, 20.0, cfg.Robot.Y)
}

func TestDefault_RobotStartsInFreeCell(t *testing.T) {
	cfg := Default()
	sc, err := cfg.BuildScene()
	require.NoError(t, err)
	for _, o := range sc.Obstacles() {
		c := o.Bound
		inside := cfg.Robot.X > c.Min[0] && cfg.Robot.X < c.Max[0] && cfg.Robot.Y > c.Min[1] && cfg.Robot.Y < c.Max[1]
		assert.False(t, inside, "robot starts inside %s", o)
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
filter:
  particles: 50
motion:
  tick_interval: 20ms
seed: 42
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Filter.Particles)
	assert.Equal(t, 20.0, cfg.Filter.InitialNoise, "unspecified field keeps default")
	assert.Equal(t, 20*time.Millisecond, cfg.Motion.TickInterval)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Len(t, cfg.Obstacles, 14)
}

func TestLoadConfig_ReplacesObstacles(t *testing.T) {
	path := writeConfig(t, `
arena:
  width: 400
  height: 400
  cell_size: 40
robot:
  x: 220
  y: 220
obstacles:
  - {x1: 0, y1: 0, x2: 40, y2: 40}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Obstacles, 1)
	assert.Equal(t, RectConfig{X1: 0, Y1: 0, X2: 40, Y2: 40}, cfg.Obstacles[0])

	sc, err := cfg.BuildScene()
	require.NoError(t, err)
	assert.Equal(t, 400.0, sc.Width())
	assert.Len(t, sc.Obstacles(), 1)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")

	_, err = LoadConfig(writeConfig(t, "arena: [not, a, map]"))
	assert.ErrorContains(t, err, "parsing config YAML")

	_, err = LoadConfig(writeConfig(t, "filter:\n  particles: 0\n"))
	assert.ErrorContains(t, err, "filter.particles")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Arena.Width = 0 }, "arena size"},
		{"zero cell", func(c *Config) { c.Arena.CellSize = 0 }, "cell_size"},
		{"robot outside", func(c *Config) { c.Robot.X = -5 }, "inside the arena"},
		{"negative turn noise", func(c *Config) { c.Noise.Turn = -1 }, "motion noise"},
		{"zero sensor noise", func(c *Config) { c.Noise.Sensor = 0 }, "noise.sensor"},
		{"no beams", func(c *Config) { c.Lidar.Beams = 0 }, "lidar.beams"},
		{"no step", func(c *Config) { c.Motion.Step = 0 }, "motion.step"},
		{"no tick", func(c *Config) { c.Motion.TickInterval = 0 }, "tick_interval"},
		{"flat obstacle", func(c *Config) { c.Obstacles = []RectConfig{{0, 0, 0, 40}} }, "zero area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Seed = 7
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_ExampleArena(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "arena.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 400.0, cfg.Arena.Width)
	assert.Equal(t, 12, cfg.Lidar.Beams)
	assert.Equal(t, 300, cfg.Filter.Particles)
	assert.Equal(t, 40*time.Millisecond, cfg.Motion.TickInterval)
	assert.Equal(t, 0.00001, cfg.Lidar.MinRange, "omitted keys keep defaults")
	assert.Equal(t, uint64(7), cfg.Seed)
	require.Len(t, cfg.Obstacles, 2)
	assert.Equal(t, RectConfig{X1: 160, Y1: 0, X2: 200, Y2: 320}, cfg.Obstacles[0])

	sc, err := cfg.BuildScene()
	require.NoError(t, err)
	assert.Len(t, sc.Obstacles(), 2)
}
