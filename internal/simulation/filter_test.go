package simulation

import (
	"math"
	"mcl-sim/internal/common"
	"mcl-sim/internal/scene"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sensedParticle builds a particle whose reading is already known.
func sensedParticle(id string, x, y float64, reading Reading) *Agent {
	a := NewAgent(id, Pose{X: x, Y: y}, NoiseParams{Sensor: 1})
	a.reading = reading
	return a
}

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc, err := scene.NewScene(100, 100, nil)
	require.NoError(t, err)
	return sc
}

func countIDs(agents []*Agent) map[string]int {
	counts := make(map[string]int)
	for _, a := range agents {
		counts[a.GetID()]++
	}
	return counts
}

func TestLikelihood(t *testing.T) {
	robot := Reading{10, 20, 30}

	w, err := Likelihood(Reading{10, 20, 30}, robot, 2)
	require.NoError(t, err)
	peak := common.Gaussian(0, 2, 0)
	assert.InEpsilon(t, peak*peak*peak, w, 1e-12)

	w2, err := Likelihood(Reading{11, 20, 30}, robot, 2)
	require.NoError(t, err)
	assert.Less(t, w2, w)
	assert.InEpsilon(t, common.Gaussian(11, 2, 10)*peak*peak, w2, 1e-12)
}

func TestLikelihood_IllegalState(t *testing.T) {
	_, err := Likelihood(nil, Reading{1}, 1)
	assert.ErrorIs(t, err, ErrReadingNotComputed)

	_, err = Likelihood(Reading{1}, nil, 1)
	assert.ErrorIs(t, err, ErrReadingNotComputed)

	_, err = Likelihood(Reading{1, 2}, Reading{1}, 1)
	assert.ErrorContains(t, err, "length mismatch")

	a := NewAgent("p", Pose{X: 1, Y: 1}, NoiseParams{Sensor: 1})
	_, err = a.Weight(Reading{1})
	assert.ErrorIs(t, err, ErrReadingNotComputed)
}

func TestResample_PreservesCount(t *testing.T) {
	sc := testScene(t)
	rng := NewRand(1)
	robot := Reading{5}

	for _, n := range []int{1, 3, 50, 200} {
		particles := []*Agent{
			sensedParticle("a", 10, 10, Reading{5}),
			sensedParticle("b", 20, 20, Reading{6}),
		}
		out, err := Resample(particles, robot, sc, n, rng)
		require.NoError(t, err)
		assert.Len(t, out, n)
	}
}

func TestResample_FrequencyMatchesWeightShare(t *testing.T) {
	sc := testScene(t)
	rng := NewRand(2)
	robot := Reading{10}

	// Weights in ratio 4:1:2.
	particles := []*Agent{
		sensedParticle("a", 10, 10, Reading{10}),
		sensedParticle("b", 20, 20, Reading{10 + math.Sqrt(2*math.Log(4))}),
		sensedParticle("c", 30, 30, Reading{10 - math.Sqrt(2*math.Log(2))}),
	}

	const trials, n = 300, 100
	total := make(map[string]int)
	for i := 0; i < trials; i++ {
		out, err := Resample(particles, robot, sc, n, rng)
		require.NoError(t, err)
		for id, c := range countIDs(out) {
			total[id] += c
		}
	}

	draws := float64(trials * n)
	assert.InDelta(t, 4.0/7.0, float64(total["a"])/draws, 0.03)
	assert.InDelta(t, 1.0/7.0, float64(total["b"])/draws, 0.03)
	assert.InDelta(t, 2.0/7.0, float64(total["c"])/draws, 0.03)
}

func TestResample_ZeroWeightNeverSelected(t *testing.T) {
	sc := testScene(t)
	rng := NewRand(3)
	robot := Reading{10}

	particles := []*Agent{
		sensedParticle("zero", 10, 10, Reading{1000}),
		sensedParticle("live", 20, 20, Reading{12}),
		sensedParticle("zero2", 30, 30, Reading{-1000}),
	}
	w, err := particles[0].Weight(robot)
	require.NoError(t, err)
	require.Equal(t, 0.0, w)

	for i := 0; i < 100; i++ {
		out, err := Resample(particles, robot, sc, 20, rng)
		require.NoError(t, err)
		counts := countIDs(out)
		assert.Zero(t, counts["zero"])
		assert.Zero(t, counts["zero2"])
		assert.Equal(t, 20, counts["live"])
	}
}

func TestResample_ExcludesOutOfBounds(t *testing.T) {
	sc := testScene(t)
	robot := Reading{10}

	particles := []*Agent{
		sensedParticle("outside", -5, 50, Reading{10}), // perfect match, but off the arena
		NewAgent("outside-unsensed", Pose{X: 50, Y: 150}, NoiseParams{Sensor: 1}),
		sensedParticle("inside", 50, 50, Reading{11}),
	}

	out, err := Resample(particles, robot, sc, 30, NewRand(4))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"inside": 30}, countIDs(out))
}

func TestResample_ClonesDropReadings(t *testing.T) {
	sc := testScene(t)
	p := sensedParticle("a", 50, 50, Reading{10})
	out, err := Resample([]*Agent{p}, Reading{10}, sc, 2, NewRand(5))
	require.NoError(t, err)

	assert.NotSame(t, p, out[0])
	assert.NotSame(t, out[0], out[1])
	assert.Equal(t, p.GetPose(), out[0].GetPose())
	_, err = out[0].Reading()
	assert.ErrorIs(t, err, ErrReadingNotComputed)
}

func TestResample_Errors(t *testing.T) {
	sc := testScene(t)

	_, err := Resample([]*Agent{sensedParticle("a", -1, -1, Reading{1})}, Reading{1}, sc, 10, NewRand(6))
	assert.ErrorIs(t, err, ErrNoParticlesInBounds)

	_, err = Resample(nil, Reading{1}, sc, 10, NewRand(6))
	assert.ErrorIs(t, err, ErrNoParticlesInBounds)

	unsensed := NewAgent("a", Pose{X: 50, Y: 50}, NoiseParams{Sensor: 1})
	_, err = Resample([]*Agent{unsensed}, Reading{1}, sc, 10, NewRand(6))
	assert.ErrorIs(t, err, ErrReadingNotComputed)
}

func TestResample_AllZeroWeightsTerminates(t *testing.T) {
	sc := testScene(t)
	particles := []*Agent{
		sensedParticle("a", 10, 10, Reading{1000}),
		sensedParticle("b", 20, 20, Reading{2000}),
	}
	out, err := Resample(particles, Reading{0}, sc, 10, NewRand(7))
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestSeedParticles(t *testing.T) {
	robot := NewAgent("robot", Pose{X: 400, Y: 300, Orientation: 1.5}, NoiseParams{Turn: 0.1, Move: 0.2, Sensor: 0.3})
	particles := SeedParticles(robot, 2000, 20, NewRand(8))

	require.Len(t, particles, 2000)
	for _, p := range particles {
		assert.Equal(t, 1.5, p.GetPose().Orientation)
		assert.Equal(t, robot.Noise(), p.Noise())
		_, err := p.Reading()
		assert.ErrorIs(t, err, ErrReadingNotComputed)
	}

	est := EstimatePose(particles)
	assert.InDelta(t, 400.0, est.X, 2)
	assert.InDelta(t, 300.0, est.Y, 2)
	assert.InDelta(t, 20*math.Sqrt2, est.Spread, 2)
}

func TestEstimatePose(t *testing.T) {
	assert.Equal(t, Estimate{}, EstimatePose(nil))

	single := EstimatePose([]*Agent{NewAgent("p", Pose{X: 3, Y: 4, Orientation: 0.5}, NoiseParams{})})
	assert.Equal(t, 3.0, single.X)
	assert.Equal(t, 0.0, single.Spread)

	particles := []*Agent{
		NewAgent("p", Pose{X: 0, Y: 0, Orientation: 0.1}, NoiseParams{}),
		NewAgent("p", Pose{X: 2, Y: 0, Orientation: -0.1}, NoiseParams{}),
		NewAgent("p", Pose{X: 0, Y: 2, Orientation: 2 * math.Pi}, NoiseParams{}),
		NewAgent("p", Pose{X: 2, Y: 2, Orientation: 0}, NoiseParams{}),
	}
	est := EstimatePose(particles)
	assert.InDelta(t, 1.0, est.X, 1e-12)
	assert.InDelta(t, 1.0, est.Y, 1e-12)
	assert.InDelta(t, 0.0, est.Orientation, 1e-9)
	assert.InDelta(t, math.Sqrt2, est.Spread, 1e-12)
}
