package simulation

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrReadingNotComputed is returned when a lidar reading is requested from an
// agent that has not been sensed yet.
var ErrReadingNotComputed = errors.New("lidar reading not computed")

// Pose is a position and heading (radians) in arena coordinates.
type Pose struct {
	X           float64
	Y           float64
	Orientation float64
}

// Point returns the position part of the pose.
func (p Pose) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// NoiseParams are the standard deviations applied by motion and sensing.
type NoiseParams struct {
	Turn   float64 // heading noise injected on every move
	Move   float64 // distance noise injected on every move
	Sensor float64 // range noise per lidar beam
}

// Reading is one lidar sweep: a range per fixed absolute bearing.
type Reading []float64

// Clone creates a deep copy of the reading.
func (r Reading) Clone() Reading {
	if r == nil {
		return nil
	}
	clone := make(Reading, len(r))
	copy(clone, r)
	return clone
}

// Agent is anything that can move, turn and sense: the robot or one particle.
// The pose is owned by the agent and never shared.
type Agent struct {
	id      string
	pose    Pose
	noise   NoiseParams
	reading Reading // nil until the first lidar sweep
}

// NewAgent creates an agent at pose with the given noise parameters.
func NewAgent(id string, pose Pose, noise NoiseParams) *Agent {
	return &Agent{
		id:    id,
		pose:  pose,
		noise: noise,
	}
}

// GetID returns the identifier of the agent.
func (a *Agent) GetID() string {
	return a.id
}

// GetPose returns the current pose.
func (a *Agent) GetPose() Pose {
	return a.pose
}

// GetPosition returns the current position.
func (a *Agent) GetPosition() orb.Point {
	return a.pose.Point()
}

// Noise returns the agent's noise parameters.
func (a *Agent) Noise() NoiseParams {
	return a.noise
}

// Reading returns a copy of the latest lidar reading.
func (a *Agent) Reading() (Reading, error) {
	if a.reading == nil {
		return nil, ErrReadingNotComputed
	}
	return a.reading.Clone(), nil
}

// Clone returns a fresh agent with the same pose and noise. The reading is not
// carried over; it must be recomputed for the new pose holder.
func (a *Agent) Clone() *Agent {
	return NewAgent(a.id, a.pose, a.noise)
}

// String representation for logging
func (a *Agent) String() string {
	return fmt.Sprintf("Agent[%s] Pose: (%.2f, %.2f, %.3f rad)", a.id, a.pose.X, a.pose.Y, a.pose.Orientation)
}
