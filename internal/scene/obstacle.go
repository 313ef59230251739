package scene

import (
	"fmt"
	"mcl-sim/internal/common"

	"github.com/paulmach/orb"
)

// Obstacle is an axis-aligned rectangle in arena coordinates.
type Obstacle struct {
	Bound orb.Bound
}

// NewObstacle creates an obstacle from two opposite corners.
func NewObstacle(x1, y1, x2, y2 float64) Obstacle {
	return Obstacle{Bound: orb.Bound{
		Min: orb.Point{min(x1, x2), min(y1, y2)},
		Max: orb.Point{max(x1, x2), max(y1, y2)},
	}}
}

// Center returns the midpoint of the rectangle.
func (o Obstacle) Center() orb.Point {
	return o.Bound.Center()
}

// Contains reports whether p lies inside or on the edge of the rectangle.
func (o Obstacle) Contains(p orb.Point) bool {
	return o.Bound.Contains(p)
}

// Segments decomposes the obstacle into its 4 boundary segments:
// top, left, right, bottom.
func (o Obstacle) Segments() [4]common.Segment {
	x1, y1 := o.Bound.Min[0], o.Bound.Min[1]
	x2, y2 := o.Bound.Max[0], o.Bound.Max[1]
	return [4]common.Segment{
		{A: orb.Point{x1, y1}, B: orb.Point{x2, y1}},
		{A: orb.Point{x1, y1}, B: orb.Point{x1, y2}},
		{A: orb.Point{x2, y1}, B: orb.Point{x2, y2}},
		{A: orb.Point{x1, y2}, B: orb.Point{x2, y2}},
	}
}

// String representation for logging
func (o Obstacle) String() string {
	return fmt.Sprintf("Obstacle[(%.0f, %.0f)-(%.0f, %.0f)]", o.Bound.Min[0], o.Bound.Min[1], o.Bound.Max[0], o.Bound.Max[1])
}
