package common

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat/distuv"
)

// Segment represents a line segment between two points in arena coordinates.
type Segment struct {
	A, B orb.Point
}

// Distance calculates the Euclidean distance between two points.
func Distance(p1, p2 orb.Point) float64 {
	return planar.Distance(p1, p2)
}

// Gaussian returns the normal probability density with mean mu and standard
// deviation sigma evaluated at x.
func Gaussian(mu, sigma, x float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Prob(x)
}

// Bearing returns the absolute angle of beam k out of n evenly spaced beams.
func Bearing(k, n int) float64 {
	return float64(k) / float64(n) * 2 * math.Pi
}

// RayDistance casts a ray from origin in direction theta and returns the
// distance to the point where it crosses seg.
// ok is false when the ray misses the segment or runs parallel to it.
func RayDistance(origin orb.Point, theta float64, seg Segment) (dist float64, ok bool) {
	dx, dy := math.Cos(theta), math.Sin(theta)
	sx := seg.B[0] - seg.A[0]
	sy := seg.B[1] - seg.A[1]

	den := sy*dx - sx*dy
	if den == 0 {
		return 0, false
	}

	ox := origin[0] - seg.A[0]
	oy := origin[1] - seg.A[1]
	ua := (sx*oy - sy*ox) / den // position along the ray
	ub := (dx*oy - dy*ox) / den // position along the segment
	if ua < 0 || ub < 0 || ub > 1 {
		return 0, false
	}

	hit := orb.Point{origin[0] + ua*dx, origin[1] + ua*dy}
	return Distance(origin, hit), true
}
