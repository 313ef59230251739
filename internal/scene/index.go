package scene

import (
	"github.com/dhconnelly/rtreego"
)

// minExtent keeps degenerate (zero-width) obstacles insertable.
const minExtent = 1e-9

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex answers "which obstacles overlap this box" for lidar rays.
type spatialIndex struct {
	tree *rtreego.Rtree
}

func newSpatialIndex(obstacles []Obstacle) *spatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, o := range obstacles {
		bbox, err := rtreego.NewRect(
			rtreego.Point{o.Bound.Min[0], o.Bound.Min[1]},
			[]float64{
				max(o.Bound.Max[0]-o.Bound.Min[0], minExtent),
				max(o.Bound.Max[1]-o.Bound.Min[1], minExtent),
			},
		)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{obstacle: o, bbox: bbox})
	}

	return &spatialIndex{tree: tree}
}

// query returns obstacles whose bounding box intersects rect
func (si *spatialIndex) query(rect rtreego.Rect) []Obstacle {
	results := si.tree.SearchIntersect(rect)
	obstacles := make([]Obstacle, 0, len(results))
	for _, item := range results {
		obstacles = append(obstacles, item.(*obstacleEntry).obstacle)
	}
	return obstacles
}
