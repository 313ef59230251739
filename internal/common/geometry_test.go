package common

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/integrate"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(orb.Point{0, 0}, orb.Point{3, 4}), 1e-12)
	assert.Equal(t, 0.0, Distance(orb.Point{7, 7}, orb.Point{7, 7}))
}

func TestGaussian_IntegratesToOne(t *testing.T) {
	for _, tc := range []struct{ mu, sigma float64 }{
		{0, 1},
		{10, 0.5},
		{-3, 4},
	} {
		const n = 20001
		lo := tc.mu - 12*tc.sigma
		hi := tc.mu + 12*tc.sigma
		xs := make([]float64, n)
		fs := make([]float64, n)
		for i := range xs {
			xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
			fs[i] = Gaussian(tc.mu, tc.sigma, xs[i])
		}
		assert.InDelta(t, 1.0, integrate.Trapezoidal(xs, fs), 1e-6, "mu=%g sigma=%g", tc.mu, tc.sigma)
	}
}

func TestGaussian_Symmetric(t *testing.T) {
	for _, d := range []float64{0.1, 1, 2.5, 7} {
		left := Gaussian(3, 2, 3-d)
		right := Gaussian(3, 2, 3+d)
		assert.InEpsilon(t, left, right, 1e-9, "offset %g", d)
	}
	assert.Greater(t, Gaussian(0, 1, 0), Gaussian(0, 1, 0.5))
}

func TestBearing(t *testing.T) {
	assert.Equal(t, 0.0, Bearing(0, 9))
	assert.InDelta(t, math.Pi, Bearing(2, 4), 1e-12)
	assert.InDelta(t, 2*math.Pi/9, Bearing(1, 9), 1e-12)
}

func TestRayDistance(t *testing.T) {
	origin := orb.Point{0, 0}

	t.Run("crossing segment", func(t *testing.T) {
		d, ok := RayDistance(origin, 0, Segment{A: orb.Point{5, -5}, B: orb.Point{5, 5}})
		assert.True(t, ok)
		assert.InDelta(t, 5.0, d, 1e-12)
	})

	t.Run("segment beside the ray", func(t *testing.T) {
		_, ok := RayDistance(origin, 0, Segment{A: orb.Point{5, 1}, B: orb.Point{5, 5}})
		assert.False(t, ok)
	})

	t.Run("segment behind the ray", func(t *testing.T) {
		_, ok := RayDistance(origin, 0, Segment{A: orb.Point{-5, -5}, B: orb.Point{-5, 5}})
		assert.False(t, ok)
	})

	t.Run("parallel segment", func(t *testing.T) {
		_, ok := RayDistance(origin, 0, Segment{A: orb.Point{1, 2}, B: orb.Point{9, 2}})
		assert.False(t, ok)
	})

	t.Run("segment endpoint is a hit", func(t *testing.T) {
		d, ok := RayDistance(origin, 0, Segment{A: orb.Point{5, 0}, B: orb.Point{5, 5}})
		assert.True(t, ok)
		assert.InDelta(t, 5.0, d, 1e-12)
	})

	t.Run("diagonal ray", func(t *testing.T) {
		d, ok := RayDistance(origin, math.Pi/4, Segment{A: orb.Point{10, 0}, B: orb.Point{10, 20}})
		assert.True(t, ok)
		assert.InDelta(t, 10*math.Sqrt2, d, 1e-9)
	})
}
