package simulation

import (
	"math"
	"math/rand/v2"
)

// Move drives the agent forward by distance. Heading noise is applied first and
// the displacement uses the perturbed heading; the distance itself is perturbed
// by the move noise.
func (a *Agent) Move(src rand.Source, distance float64) *Agent {
	a.pose.Orientation = GaussianNoise(a.noise.Turn, src)(a.pose.Orientation)
	distance = GaussianNoise(a.noise.Move, src)(distance)

	a.pose.X += math.Cos(a.pose.Orientation) * distance
	a.pose.Y += math.Sin(a.pose.Orientation) * distance
	return a
}

// Turn rotates the agent by delta radians exactly.
func (a *Agent) Turn(delta float64) {
	a.pose.Orientation += delta
}

// TurnTowards points the agent at (x, y) without noise and returns the
// heading change that was applied, so it can be replayed on particles.
func (a *Agent) TurnTowards(x, y float64) float64 {
	dx := x - a.pose.X
	dy := y - a.pose.Y

	var theta float64
	if dx == 0 {
		if dy > 0 {
			theta = math.Pi / 2
		} else {
			theta = 3 * math.Pi / 2
		}
	} else {
		theta = math.Atan(dy / dx)
		if dx < 0 {
			theta += math.Pi
		}
	}

	delta := theta - a.pose.Orientation
	a.pose.Orientation = theta
	return delta
}
