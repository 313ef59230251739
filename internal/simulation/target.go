package simulation

import (
	"fmt"
	"mcl-sim/internal/common"
	"mcl-sim/internal/scene"

	"github.com/paulmach/orb"
)

// route is a planned path being followed by the robot. cells[next] is the
// waypoint currently steered towards.
type route struct {
	cells []scene.Cell
	next  int
}

func newRoute(cells []scene.Cell) *route {
	c := make([]scene.Cell, len(cells))
	copy(c, cells)
	return &route{cells: c}
}

// Target returns the final cell of the route.
func (r *route) Target() scene.Cell {
	return r.cells[len(r.cells)-1]
}

// Remaining returns the waypoints not yet reached, starting with the current one.
func (r *route) Remaining() []scene.Cell {
	rem := make([]scene.Cell, len(r.cells)-r.next)
	copy(rem, r.cells[r.next:])
	return rem
}

// waypoint returns the point to steer towards from pos. When pos is already
// within reach of the current waypoint the route advances by one cell first.
// done is true once the final waypoint has been reached.
func (r *route) waypoint(g *scene.Grid, pos orb.Point, reach float64) (wp orb.Point, done bool) {
	wp = g.Center(r.cells[r.next])
	if common.Distance(wp, pos) < reach {
		r.next++
		if r.next >= len(r.cells) {
			return orb.Point{}, true
		}
		wp = g.Center(r.cells[r.next])
	}
	return wp, false
}

// String representation for logging
func (r *route) String() string {
	return fmt.Sprintf("Route[%d/%d -> %s]", r.next, len(r.cells), r.Target())
}
