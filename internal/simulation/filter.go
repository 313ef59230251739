package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"mcl-sim/internal/common"
	"mcl-sim/internal/scene"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoParticlesInBounds is returned when resampling finds no particle inside
// the arena to weight.
var ErrNoParticlesInBounds = errors.New("no particles inside the arena")

// Likelihood returns the product over all beams of the Gaussian density with
// mean particle[k] and standard deviation sigma, evaluated at robot[k].
func Likelihood(particle, robot Reading, sigma float64) (float64, error) {
	if particle == nil || robot == nil {
		return 0, ErrReadingNotComputed
	}
	if len(particle) != len(robot) {
		return 0, fmt.Errorf("reading length mismatch: particle %d, robot %d", len(particle), len(robot))
	}
	p := 1.0
	for k, d := range particle {
		p *= common.Gaussian(d, sigma, robot[k])
	}
	return p, nil
}

// Weight scores the agent's reading against the robot's, using the agent's
// sensor noise as the spread.
func (a *Agent) Weight(robot Reading) (float64, error) {
	if a.reading == nil {
		return 0, fmt.Errorf("weighting %s: %w", a.id, ErrReadingNotComputed)
	}
	return Likelihood(a.reading, robot, a.noise.Sensor)
}

// SeedParticles scatters n particles around the robot's position with Gaussian
// positional noise. Every particle starts with the robot's heading.
func SeedParticles(robot *Agent, n int, scatter float64, src rand.Source) []*Agent {
	jitter := GaussianNoise(scatter, src)
	particles := make([]*Agent, n)
	for i := range particles {
		pose := Pose{
			X:           jitter(robot.pose.X),
			Y:           jitter(robot.pose.Y),
			Orientation: robot.pose.Orientation,
		}
		particles[i] = NewAgent(fmt.Sprintf("particle-%d", i), pose, robot.noise)
	}
	return particles
}

// weightedParticle keeps a candidate and its weight side by side so indices
// can never drift apart.
type weightedParticle struct {
	agent  *Agent
	weight float64
}

// Resample draws n particles with replacement using the resampling wheel.
// Only particles strictly inside the arena are weighted, so particles that
// left the arena cannot survive.
//
// The wheel starts at a random candidate; each draw advances beta by
// U[0, 2·max weight) and walks forward past every candidate whose weight is
// smaller than what remains of beta.
func Resample(particles []*Agent, robot Reading, sc *scene.Scene, n int, rng *rand.Rand) ([]*Agent, error) {
	candidates := make([]weightedParticle, 0, len(particles))
	for _, p := range particles {
		if !sc.InBounds(p.GetPosition()) {
			continue
		}
		w, err := p.Weight(robot)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, weightedParticle{agent: p, weight: w})
	}
	if len(candidates) == 0 {
		return nil, ErrNoParticlesInBounds
	}

	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		weights[i] = c.weight
	}
	mw := floats.Max(weights)

	wheel := distuv.Uniform{Min: 0, Max: 2 * mw, Src: rng}
	i := rng.IntN(len(candidates))
	beta := 0.0

	resampled := make([]*Agent, 0, n)
	for range n {
		beta += wheel.Rand()
		for beta > candidates[i].weight {
			beta -= candidates[i].weight
			i = (i + 1) % len(candidates)
		}
		resampled = append(resampled, candidates[i].agent.Clone())
	}
	return resampled, nil
}

// Estimate summarizes a particle population.
type Estimate struct {
	X           float64
	Y           float64
	Orientation float64 // circular mean, in (-π, π]
	Spread      float64 // RMS distance of particles from (X, Y)
}

// EstimatePose returns the mean pose of the particles. The zero Estimate is
// returned for an empty population.
func EstimatePose(particles []*Agent) Estimate {
	if len(particles) == 0 {
		return Estimate{}
	}
	xs := make([]float64, len(particles))
	ys := make([]float64, len(particles))
	headings := make([]float64, len(particles))
	for i, p := range particles {
		xs[i] = p.pose.X
		ys[i] = p.pose.Y
		headings[i] = p.pose.Orientation
	}

	est := Estimate{
		X:           stat.Mean(xs, nil),
		Y:           stat.Mean(ys, nil),
		Orientation: stat.CircularMean(headings, nil),
	}
	if len(particles) > 1 {
		_, vx := stat.PopMeanVariance(xs, nil)
		_, vy := stat.PopMeanVariance(ys, nil)
		est.Spread = math.Sqrt(vx + vy)
	}
	return est
}
