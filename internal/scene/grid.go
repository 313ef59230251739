package scene

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Cell addresses one square of the occupancy grid.
type Cell struct {
	Row int
	Col int
}

// String representation for logging
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// Grid is a binary occupancy grid derived from the obstacle rectangles.
// A cell holds 1 when an obstacle covers it and 0 otherwise. Grids are never
// modified after BuildGrid returns.
type Grid struct {
	rows     int
	cols     int
	cellSize float64
	cells    [][]uint8
}

// BuildGrid rasterizes obstacles into a height/cellSize x width/cellSize grid.
// Obstacle edges are expected to fall on cell boundaries; any that don't are
// marked from the cell containing their top-left corner up to, but excluding,
// the cell containing their bottom-right corner.
func BuildGrid(obstacles []Obstacle, width, height, cellSize float64) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %g", cellSize)
	}
	rows := int(height / cellSize)
	cols := int(width / cellSize)
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("arena %gx%g is smaller than one %g cell", width, height, cellSize)
	}

	cells := make([][]uint8, rows)
	for i := range cells {
		cells[i] = make([]uint8, cols)
	}

	for _, o := range obstacles {
		iStart := max(int(math.Floor(o.Bound.Min[1]/cellSize)), 0)
		iEnd := min(int(math.Floor(o.Bound.Max[1]/cellSize)), rows)
		jStart := max(int(math.Floor(o.Bound.Min[0]/cellSize)), 0)
		jEnd := min(int(math.Floor(o.Bound.Max[0]/cellSize)), cols)

		for i := iStart; i < iEnd; i++ {
			for j := jStart; j < jEnd; j++ {
				cells[i][j] = 1
			}
		}
	}

	return &Grid{rows: rows, cols: cols, cellSize: cellSize, cells: cells}, nil
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return g.cols }

// CellSize returns the side length of a cell in arena units.
func (g *Grid) CellSize() float64 { return g.cellSize }

// InBounds reports whether c addresses a cell of the grid.
func (g *Grid) InBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < g.rows && 0 <= c.Col && c.Col < g.cols
}

// Value returns the stored cell value. Out of range cells read as blocked.
func (g *Grid) Value(c Cell) uint8 {
	if !g.InBounds(c) {
		return 1
	}
	return g.cells[c.Row][c.Col]
}

// IsBlocked reports whether c is covered by an obstacle.
func (g *Grid) IsBlocked(c Cell) bool {
	return g.Value(c) == 1
}

// CellAt returns the cell containing point p.
func (g *Grid) CellAt(p orb.Point) Cell {
	return Cell{
		Row: int(math.Floor(p[1] / g.cellSize)),
		Col: int(math.Floor(p[0] / g.cellSize)),
	}
}

// Center returns the arena coordinates of the middle of c.
func (g *Grid) Center(c Cell) orb.Point {
	return orb.Point{
		float64(c.Col)*g.cellSize + g.cellSize/2,
		float64(c.Row)*g.cellSize + g.cellSize/2,
	}
}
