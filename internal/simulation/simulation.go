package simulation

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"mcl-sim/internal/common"
	"mcl-sim/internal/config"
	"mcl-sim/internal/planner"
	"mcl-sim/internal/scene"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// ErrPathActive is returned by SetTarget while a previous path is still being followed.
var ErrPathActive = errors.New("a path is already active")

// State is the pause state of the simulation.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Params configures a simulation run.
type Params struct {
	Robot        Pose
	Noise        NoiseParams
	Particles    int
	InitialNoise float64 // positional scatter of the initial particles
	Beams        int
	MinRange     float64
	Step         float64 // distance moved per running tick
	CellSize     float64
	TickInterval time.Duration
}

// ParamsFromConfig maps a loaded configuration onto simulation parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Robot:        Pose{X: cfg.Robot.X, Y: cfg.Robot.Y, Orientation: cfg.Robot.Orientation},
		Noise:        NoiseParams{Turn: cfg.Noise.Turn, Move: cfg.Noise.Move, Sensor: cfg.Noise.Sensor},
		Particles:    cfg.Filter.Particles,
		InitialNoise: cfg.Filter.InitialNoise,
		Beams:        cfg.Lidar.Beams,
		MinRange:     cfg.Lidar.MinRange,
		Step:         cfg.Motion.Step,
		CellSize:     cfg.Arena.CellSize,
		TickInterval: cfg.Motion.TickInterval,
	}
}

// NewRand returns the generator threaded through motion, sensing and
// resampling. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Simulation holds the state of the localization run: the robot, its particle
// cloud, the static scene and the path being followed.
type Simulation struct {
	id     string
	scene  *scene.Scene
	grid   *scene.Grid
	lidar  *Lidar
	params Params
	rng    *rand.Rand

	robot     *Agent
	particles []*Agent // replaced wholesale on every resample
	route     *route   // nil when no target is set
	state     State

	tick           int
	simulationTime float64 // total elapsed simulation time in seconds
}

// NewSimulation creates a simulation over sc. It starts paused with no target.
func NewSimulation(sc *scene.Scene, params Params, rng *rand.Rand) (*Simulation, error) {
	if sc == nil {
		return nil, fmt.Errorf("simulation requires a scene")
	}
	if rng == nil {
		return nil, fmt.Errorf("simulation requires a random source")
	}
	if params.Particles <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", params.Particles)
	}
	if params.Step <= 0 {
		return nil, fmt.Errorf("move step must be positive, got %g", params.Step)
	}
	if params.Noise.Sensor <= 0 {
		return nil, fmt.Errorf("sensor noise must be positive, got %g", params.Noise.Sensor)
	}
	if !sc.InBounds(params.Robot.Point()) {
		return nil, fmt.Errorf("robot (%g, %g) must be inside the arena", params.Robot.X, params.Robot.Y)
	}

	grid, err := scene.BuildGrid(sc.Obstacles(), sc.Width(), sc.Height(), params.CellSize)
	if err != nil {
		return nil, fmt.Errorf("building occupancy grid: %w", err)
	}
	lidar, err := NewLidar(sc, params.Beams, params.MinRange)
	if err != nil {
		return nil, fmt.Errorf("creating lidar: %w", err)
	}

	robot := NewAgent(fmt.Sprintf("robot-%s", uuid.NewString()[:8]), params.Robot, params.Noise)

	return &Simulation{
		id:        fmt.Sprintf("sim-%s", uuid.NewString()[:8]),
		scene:     sc,
		grid:      grid,
		lidar:     lidar,
		params:    params,
		rng:       rng,
		robot:     robot,
		particles: SeedParticles(robot, params.Particles, params.InitialNoise, rng),
		state:     Paused,
	}, nil
}

// GetID returns the unique identifier of the run.
func (s *Simulation) GetID() string { return s.id }

// Scene returns the static scene.
func (s *Simulation) Scene() *scene.Scene { return s.scene }

// Grid returns the occupancy grid built from the scene.
func (s *Simulation) Grid() *scene.Grid { return s.grid }

// State returns the current pause state.
func (s *Simulation) State() State { return s.state }

// GetCurrentTime returns the elapsed simulation time in seconds.
func (s *Simulation) GetCurrentTime() float64 { return s.simulationTime }

// TogglePause flips between running and paused and returns the new state.
// It takes effect on the next tick.
func (s *Simulation) TogglePause() State {
	if s.state == Paused {
		s.state = Running
	} else {
		s.state = Paused
	}
	log.Printf("[Simulation] %s %s at tick %d", s.id, s.state, s.tick)
	return s.state
}

// SetTarget plans a path from the robot's cell to the cell containing (x, y).
// It returns ErrPathActive, and changes nothing, while a path is being followed.
func (s *Simulation) SetTarget(x, y float64) error {
	if s.route != nil {
		return ErrPathActive
	}
	target := orb.Point{x, y}
	if !s.scene.InBounds(target) {
		return fmt.Errorf("target (%.1f, %.1f) is outside the arena", x, y)
	}

	start := s.grid.CellAt(s.robot.GetPosition())
	goal := s.grid.CellAt(target)
	path, err := planner.FindPath(s.grid, start, goal)
	if err != nil {
		return fmt.Errorf("planning path %s -> %s: %w", start, goal, err)
	}

	s.route = newRoute(path)
	log.Printf("[Simulation] %s planned %d-cell path %s -> %s", s.id, len(path), start, goal)
	return nil
}

// Tick advances the simulation by one step. The robot senses every tick; when
// running with an active path it also steers towards the next waypoint, the
// particles replay the same motion, and the population is resampled against
// the robot's reading.
func (s *Simulation) Tick() error {
	s.tick++
	s.simulationTime += s.params.TickInterval.Seconds()

	robotReading := s.lidar.Measure(s.robot, s.rng)

	if s.route == nil || s.state != Running {
		return nil
	}

	wp, done := s.route.waypoint(s.grid, s.robot.GetPosition(), s.params.Step)
	if done {
		log.Printf("[Simulation] %s reached %s at tick %d", s.id, s.route.Target(), s.tick)
		s.route = nil
		return nil
	}

	delta := s.robot.TurnTowards(wp[0], wp[1])
	s.robot.Move(s.rng, s.params.Step)

	for _, p := range s.particles {
		p.Turn(delta)
		p.Move(s.rng, s.params.Step)
		if s.scene.InBounds(p.GetPosition()) {
			s.lidar.Measure(p, s.rng)
		}
	}

	particles, err := Resample(s.particles, robotReading, s.scene, s.params.Particles, s.rng)
	if err != nil {
		return fmt.Errorf("tick %d: resampling: %w", s.tick, err)
	}
	s.particles = particles
	return nil
}

// Snapshot is a read-only copy of everything the presentation layer draws.
type Snapshot struct {
	Tick         int
	Time         float64
	Robot        Pose
	RobotReading Reading     // nil before the first tick
	Grid         *scene.Grid // shared, immutable
	Obstacles    []scene.Obstacle
	Particles    []Pose
	Path         []scene.Cell // remaining waypoints, nil without a target
	State        State
	Estimate     Estimate
	Cloud        *Ellipse // nil when the population is too small
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() Snapshot {
	particles := make([]Pose, len(s.particles))
	for i, p := range s.particles {
		particles[i] = p.GetPose()
	}

	snap := Snapshot{
		Tick:         s.tick,
		Time:         s.simulationTime,
		Robot:        s.robot.GetPose(),
		RobotReading: s.robot.reading.Clone(),
		Grid:         s.grid,
		Obstacles:    s.scene.Obstacles(),
		Particles:    particles,
		State:        s.state,
		Estimate:     EstimatePose(s.particles),
	}
	if s.route != nil {
		snap.Path = s.route.Remaining()
	}
	if e, err := CloudEllipse(particles); err == nil {
		snap.Cloud = &e
	}
	return snap
}

// LocalizationError returns the distance between the robot's true position
// and the particle estimate.
func (snap Snapshot) LocalizationError() float64 {
	return common.Distance(snap.Robot.Point(), orb.Point{snap.Estimate.X, snap.Estimate.Y})
}

// Observer receives a snapshot after every tick of Run.
type Observer func(Snapshot)

// Run executes the simulation loop for a given number of steps, stopping
// early on the first tick error.
func (s *Simulation) Run(numSteps int, observers ...Observer) error {
	fmt.Printf("Starting simulation %s: Arena=%gx%g, Particles=%d, Beams=%d, TickDuration=%s\n",
		s.id, s.scene.Width(), s.scene.Height(), s.params.Particles, s.params.Beams, s.params.TickInterval)
	fmt.Println("Initial State:")
	s.PrintState()

	for i := 0; i < numSteps; i++ {
		if err := s.Tick(); err != nil {
			return err
		}
		snap := s.Snapshot()
		for _, obs := range observers {
			obs(snap)
		}
		fmt.Printf("  step %d (t=%.2fs) robot=(%.1f, %.1f) est=(%.1f, %.1f) err=%.2f spread=%.2f path=%d %s\n",
			snap.Tick, snap.Time, snap.Robot.X, snap.Robot.Y, snap.Estimate.X, snap.Estimate.Y,
			snap.LocalizationError(), snap.Estimate.Spread, len(snap.Path), snap.State)
	}

	fmt.Println("\n--- Simulation Finished ---")
	s.PrintState()
	return nil
}

// PrintState prints the robot, the particle estimate and the path.
func (s *Simulation) PrintState() {
	snap := s.Snapshot()
	fmt.Println("--- Current Simulation State ---")
	fmt.Printf("Tick: %d Time: %.2fs State: %s\n", snap.Tick, snap.Time, snap.State)
	fmt.Printf("  %s\n", s.robot)
	fmt.Printf("  Particles: %d Est: (%.2f, %.2f, %.3f rad) Spread: %.2f Error: %.2f\n",
		len(snap.Particles), snap.Estimate.X, snap.Estimate.Y, snap.Estimate.Orientation,
		snap.Estimate.Spread, snap.LocalizationError())
	if s.route == nil {
		fmt.Println("  Path: None")
	} else {
		fmt.Printf("  Path: %s %v\n", s.route, snap.Path)
	}
	fmt.Println("-----------------------------")
}
