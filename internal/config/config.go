package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"mcl-sim/internal/scene"

	"gopkg.in/yaml.v3"
)

// Config is the scene description plus every tuning knob of a run.
type Config struct {
	Arena     ArenaConfig  `yaml:"arena"`
	Robot     PoseConfig   `yaml:"robot"`
	Noise     NoiseConfig  `yaml:"noise"`
	Filter    FilterConfig `yaml:"filter"`
	Lidar     LidarConfig  `yaml:"lidar"`
	Motion    MotionConfig `yaml:"motion"`
	Obstacles []RectConfig `yaml:"obstacles"`
	Seed      uint64       `yaml:"seed"` // 0 picks a time-based seed
}

// ArenaConfig sizes the arena and its occupancy grid.
type ArenaConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// PoseConfig is the robot's initial pose. Orientation is in radians.
type PoseConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Orientation float64 `yaml:"orientation"`
}

// NoiseConfig holds the standard deviations shared by the robot and particles.
type NoiseConfig struct {
	Turn   float64 `yaml:"turn"`
	Move   float64 `yaml:"move"`
	Sensor float64 `yaml:"sensor"`
}

// FilterConfig sizes and seeds the particle population.
type FilterConfig struct {
	Particles    int     `yaml:"particles"`
	InitialNoise float64 `yaml:"initial_noise"`
}

// LidarConfig configures the simulated range finder.
type LidarConfig struct {
	Beams    int     `yaml:"beams"`
	MinRange float64 `yaml:"min_range"`
}

// MotionConfig configures per-tick motion.
type MotionConfig struct {
	Step         float64       `yaml:"step"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// RectConfig is an obstacle rectangle given by two opposite corners.
type RectConfig struct {
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
	X2 float64 `yaml:"x2"`
	Y2 float64 `yaml:"y2"`
}

// Default returns the built-in 800x600 maze with 40 unit cells.
func Default() *Config {
	const gw = 40.0
	const width, height = 800.0, 600.0

	return &Config{
		Arena: ArenaConfig{Width: width, Height: height, CellSize: gw},
		Robot: PoseConfig{X: 2*gw + gw/2, Y: gw / 2, Orientation: math.Pi / 2},
		Noise: NoiseConfig{Turn: 0.025, Move: 0.05, Sensor: 1.0},
		Filter: FilterConfig{
			Particles:    200,
			InitialNoise: 20,
		},
		Lidar: LidarConfig{Beams: 9, MinRange: 0.00001},
		Motion: MotionConfig{
			Step:         5,
			TickInterval: 50 * time.Millisecond,
		},
		Obstacles: []RectConfig{
			// Col 1
			{0, 0, 2 * gw, height},
			// Col 2
			{3 * gw, 0, 5 * gw, gw},
			{3 * gw, 2 * gw, 5 * gw, 6 * gw},
			{3 * gw, 7 * gw, 5 * gw, height},
			// Col 3
			{6 * gw, gw, 8 * gw, height - gw},
			// Col 4
			{9 * gw, 0, 11 * gw, 2 * gw},
			{9 * gw, 3 * gw, 11 * gw, 10 * gw},
			{9 * gw, 11 * gw, 11 * gw, height},
			// Col 5
			{12 * gw, gw, 14 * gw, 5 * gw},
			{12 * gw, 6 * gw, 14 * gw, 8 * gw},
			{12 * gw, 9 * gw, 14 * gw, height},
			// Col 6
			{15 * gw, gw, 17 * gw, 4 * gw},
			{15 * gw, 5 * gw, 17 * gw, height},
			// Col 7
			{18 * gw, gw, width, height - gw},
		},
	}
}

// LoadConfig reads a YAML file on top of Default, so partial files keep the
// built-in values for anything they omit.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a runnable simulation.
func (c *Config) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("arena size must be positive, got %gx%g", c.Arena.Width, c.Arena.Height)
	}
	if c.Arena.CellSize <= 0 {
		return fmt.Errorf("arena.cell_size must be positive, got %g", c.Arena.CellSize)
	}
	if c.Arena.CellSize > c.Arena.Width || c.Arena.CellSize > c.Arena.Height {
		return fmt.Errorf("arena.cell_size %g exceeds arena %gx%g", c.Arena.CellSize, c.Arena.Width, c.Arena.Height)
	}
	if c.Robot.X <= 0 || c.Robot.X >= c.Arena.Width || c.Robot.Y <= 0 || c.Robot.Y >= c.Arena.Height {
		return fmt.Errorf("robot (%g, %g) must be inside the arena", c.Robot.X, c.Robot.Y)
	}
	if c.Noise.Turn < 0 || c.Noise.Move < 0 {
		return fmt.Errorf("motion noise must be non-negative, got turn=%g move=%g", c.Noise.Turn, c.Noise.Move)
	}
	if c.Noise.Sensor <= 0 {
		return fmt.Errorf("noise.sensor must be positive, got %g", c.Noise.Sensor)
	}
	if c.Filter.Particles <= 0 {
		return fmt.Errorf("filter.particles must be positive, got %d", c.Filter.Particles)
	}
	if c.Filter.InitialNoise < 0 {
		return fmt.Errorf("filter.initial_noise must be non-negative, got %g", c.Filter.InitialNoise)
	}
	if c.Lidar.Beams <= 0 {
		return fmt.Errorf("lidar.beams must be positive, got %d", c.Lidar.Beams)
	}
	if c.Lidar.MinRange <= 0 {
		return fmt.Errorf("lidar.min_range must be positive, got %g", c.Lidar.MinRange)
	}
	if c.Motion.Step <= 0 {
		return fmt.Errorf("motion.step must be positive, got %g", c.Motion.Step)
	}
	if c.Motion.TickInterval <= 0 {
		return fmt.Errorf("motion.tick_interval must be positive, got %s", c.Motion.TickInterval)
	}
	for i, r := range c.Obstacles {
		if r.X1 == r.X2 || r.Y1 == r.Y2 {
			return fmt.Errorf("obstacles[%d] has zero area", i)
		}
	}
	return nil
}

// ObstacleList converts the configured rectangles to scene obstacles.
func (c *Config) ObstacleList() []scene.Obstacle {
	obstacles := make([]scene.Obstacle, 0, len(c.Obstacles))
	for _, r := range c.Obstacles {
		obstacles = append(obstacles, scene.NewObstacle(r.X1, r.Y1, r.X2, r.Y2))
	}
	return obstacles
}

// BuildScene creates the static scene described by the configuration.
func (c *Config) BuildScene() (*scene.Scene, error) {
	return scene.NewScene(c.Arena.Width, c.Arena.Height, c.ObstacleList())
}
