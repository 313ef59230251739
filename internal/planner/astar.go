package planner

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"mcl-sim/internal/scene"
)

var (
	// ErrNoPathFound is returned when the target cannot be reached from the start.
	ErrNoPathFound = errors.New("no path found")
	// ErrTargetBlocked is returned when the target cell is covered by an obstacle.
	ErrTargetBlocked = errors.New("target cell is an obstacle")
	// ErrStartBlocked is returned when the start cell is covered by an obstacle.
	ErrStartBlocked = errors.New("start cell is an obstacle")
	// ErrOutOfBounds is returned when the start or target lies outside the grid.
	ErrOutOfBounds = errors.New("cell outside grid")
)

// Grid is the occupancy information the planner searches over.
type Grid interface {
	InBounds(c scene.Cell) bool
	IsBlocked(c scene.Cell) bool
}

// neighborOffsets lists the 4-connected moves in expansion order.
var neighborOffsets = [4]scene.Cell{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: -1, Col: 0},
	{Row: 0, Col: -1},
}

// node represents a cell in the A* search
type node struct {
	cell   scene.Cell
	g      float64 // steps from start
	h      float64 // straight-line distance to target
	f      float64 // g + h
	parent *node
	index  int // index in the heap
}

// priorityQueue implements heap.Interface ordered by f, then row, then col.
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.cell.Row != b.cell.Row {
		return a.cell.Row < b.cell.Row
	}
	if a.cell.Col != b.cell.Col {
		return a.cell.Col < b.cell.Col
	}
	return a.g < b.g
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// FindPath searches grid for a 4-connected route from start to target using A*
// with unit step cost and a Euclidean heuristic. The returned path includes both
// endpoints. Each cell is expanded at most once.
func FindPath(grid Grid, start, target scene.Cell) ([]scene.Cell, error) {
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("start %s: %w", start, ErrOutOfBounds)
	}
	if !grid.InBounds(target) {
		return nil, fmt.Errorf("target %s: %w", target, ErrOutOfBounds)
	}
	if grid.IsBlocked(target) {
		return nil, fmt.Errorf("target %s: %w", target, ErrTargetBlocked)
	}
	if grid.IsBlocked(start) {
		return nil, fmt.Errorf("start %s: %w", start, ErrStartBlocked)
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &node{cell: start, h: heuristic(start, target)}
	startNode.f = startNode.h
	heap.Push(openSet, startNode)

	open := map[scene.Cell]*node{start: startNode}
	closed := make(map[scene.Cell]bool)

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*node)
		delete(open, current.cell)

		if current.cell == target {
			return reconstructPath(current), nil
		}
		closed[current.cell] = true

		for _, d := range neighborOffsets {
			next := scene.Cell{Row: current.cell.Row + d.Row, Col: current.cell.Col + d.Col}
			if !grid.InBounds(next) || grid.IsBlocked(next) || closed[next] {
				continue
			}

			tentativeG := current.g + 1
			if existing, ok := open[next]; ok {
				if tentativeG < existing.g {
					existing.g = tentativeG
					existing.f = existing.g + existing.h
					existing.parent = current
					heap.Fix(openSet, existing.index)
				}
				continue
			}

			n := &node{cell: next, g: tentativeG, h: heuristic(next, target), parent: current}
			n.f = n.g + n.h
			heap.Push(openSet, n)
			open[next] = n
		}
	}

	return nil, ErrNoPathFound
}

// reconstructPath follows parent links back to the start and reverses them.
func reconstructPath(end *node) []scene.Cell {
	var path []scene.Cell
	for n := end; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func heuristic(a, b scene.Cell) float64 {
	return math.Hypot(float64(a.Row-b.Row), float64(a.Col-b.Col))
}
