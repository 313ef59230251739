package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"mcl-sim/internal/common"
	"mcl-sim/internal/scene"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMinRange is the floor applied to every noisy lidar range.
const DefaultMinRange = 0.00001

// NoiseFunction defines a function signature for adding noise to a value.
// It takes the true value and returns the noisy one.
type NoiseFunction func(value float64) float64

// NoNoise is a NoiseFunction that adds no noise.
func NoNoise(value float64) float64 {
	return value
}

// GaussianNoise creates a NoiseFunction that adds zero-mean Gaussian noise
// drawn from src.
func GaussianNoise(stdDev float64, src rand.Source) NoiseFunction {
	if stdDev <= 0 {
		return NoNoise
	}
	dist := distuv.Normal{Mu: 0, Sigma: stdDev, Src: src}
	return func(value float64) float64 {
		return value + dist.Rand()
	}
}

// Lidar simulates a range finder with a fixed number of beams at absolute
// bearings k/beams * 2π.
type Lidar struct {
	scene    *scene.Scene
	beams    int
	minRange float64
}

// NewLidar creates a lidar sensing against sc.
func NewLidar(sc *scene.Scene, beams int, minRange float64) (*Lidar, error) {
	if sc == nil {
		return nil, fmt.Errorf("lidar requires a scene")
	}
	if beams <= 0 {
		return nil, fmt.Errorf("beam count must be positive, got %d", beams)
	}
	if minRange <= 0 {
		minRange = DefaultMinRange
	}
	return &Lidar{scene: sc, beams: beams, minRange: minRange}, nil
}

// Beams returns the number of ranges per reading.
func (l *Lidar) Beams() int {
	return l.beams
}

// Bearing returns the absolute angle of beam k.
func (l *Lidar) Bearing(k int) float64 {
	return common.Bearing(k, l.beams)
}

// TrueRange returns the noiseless distance from origin to the closest obstacle
// edge along theta. When no obstacle lies on the ray the arena walls are used.
// ok is false only when nothing at all is hit, which cannot happen for origins
// inside the arena.
func (l *Lidar) TrueRange(origin orb.Point, theta float64) (float64, bool) {
	best := math.Inf(1)
	found := false

	for _, o := range l.scene.ObstaclesAlong(origin, theta) {
		for _, seg := range o.Segments() {
			if d, ok := common.RayDistance(origin, theta, seg); ok && d < best {
				best, found = d, true
			}
		}
	}
	if found {
		return best, true
	}

	for _, seg := range l.scene.Boundary() {
		if d, ok := common.RayDistance(origin, theta, seg); ok && d < best {
			best, found = d, true
		}
	}
	return best, found
}

// Scan computes a noisy reading for pose using the given sensor noise.
func (l *Lidar) Scan(pose Pose, sensorNoise float64, src rand.Source) Reading {
	noise := GaussianNoise(sensorNoise, src)
	reading := make(Reading, l.beams)
	for k := range reading {
		d, ok := l.TrueRange(pose.Point(), l.Bearing(k))
		if !ok {
			d = 0
		}
		reading[k] = math.Max(l.minRange, noise(d))
	}
	return reading
}

// Measure scans from the agent's pose with its sensor noise and stores the
// result on the agent.
func (l *Lidar) Measure(a *Agent, src rand.Source) Reading {
	a.reading = l.Scan(a.pose, a.noise.Sensor, src)
	return a.reading.Clone()
}
