package scene

import (
	"fmt"
	"math"
	"mcl-sim/internal/common"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// Scene is the static arena description: its size and the obstacles inside it.
// It is read-only after construction and may be shared freely.
type Scene struct {
	width     float64
	height    float64
	obstacles []Obstacle
	index     *spatialIndex
	extent    orb.Bound // arena plus every obstacle
	reach     float64   // longest possible ray inside extent
}

// NewScene creates a scene for an arena of the given size.
func NewScene(width, height float64, obstacles []Obstacle) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("arena size must be positive, got %gx%g", width, height)
	}

	extent := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{width, height}}
	for _, o := range obstacles {
		extent = extent.Union(o.Bound)
	}

	obs := make([]Obstacle, len(obstacles))
	copy(obs, obstacles)

	return &Scene{
		width:     width,
		height:    height,
		obstacles: obs,
		index:     newSpatialIndex(obs),
		extent:    extent,
		reach:     common.Distance(extent.Min, extent.Max),
	}, nil
}

// Width returns the arena width.
func (s *Scene) Width() float64 { return s.width }

// Height returns the arena height.
func (s *Scene) Height() float64 { return s.height }

// Diagonal returns the corner-to-corner length of the arena.
func (s *Scene) Diagonal() float64 {
	return math.Hypot(s.width, s.height)
}

// Obstacles returns a copy of the obstacle list.
func (s *Scene) Obstacles() []Obstacle {
	obs := make([]Obstacle, len(s.obstacles))
	copy(obs, s.obstacles)
	return obs
}

// InBounds reports whether p lies strictly inside the arena.
func (s *Scene) InBounds(p orb.Point) bool {
	return 0 < p[0] && p[0] < s.width && 0 < p[1] && p[1] < s.height
}

// Boundary returns the four arena edges.
func (s *Scene) Boundary() [4]common.Segment {
	w, h := s.width, s.height
	return [4]common.Segment{
		{A: orb.Point{0, 0}, B: orb.Point{w, 0}},
		{A: orb.Point{0, 0}, B: orb.Point{0, h}},
		{A: orb.Point{w, 0}, B: orb.Point{w, h}},
		{A: orb.Point{0, h}, B: orb.Point{w, h}},
	}
}

// ObstaclesAlong returns the obstacles a ray from origin in direction theta
// could hit. Origins outside the scene extent get the full obstacle list.
func (s *Scene) ObstaclesAlong(origin orb.Point, theta float64) []Obstacle {
	if len(s.obstacles) == 0 {
		return nil
	}
	if !s.extent.Contains(origin) {
		return s.Obstacles()
	}

	end := orb.Point{
		origin[0] + s.reach*math.Cos(theta),
		origin[1] + s.reach*math.Sin(theta),
	}
	rect, err := rayRect(origin, end)
	if err != nil {
		return s.Obstacles()
	}
	return s.index.query(rect)
}

// rayRect is the bounding box of the segment origin-end, padded so that
// axis-aligned rays still have a non-degenerate box.
func rayRect(origin, end orb.Point) (rtreego.Rect, error) {
	const margin = 1.0
	minX := min(origin[0], end[0]) - margin
	minY := min(origin[1], end[1]) - margin
	maxX := max(origin[0], end[0]) + margin
	maxY := max(origin[1], end[1]) + margin
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxX - minX, maxY - minY})
}
