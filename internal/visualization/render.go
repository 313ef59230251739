package visualization

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"

	"mcl-sim/internal/common"
	"mcl-sim/internal/simulation"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"
)

const (
	robotRadiusOnScreen    = 6.0
	particleRadiusOnScreen = 1.5
	ellipseSegments        = 48
)

var (
	backgroundColor = color.RGBA{230, 230, 230, 255}
	gridLineColor   = color.RGBA{200, 200, 200, 255}
	obstacleColor   = color.RGBA{70, 70, 70, 255}
	pathColor       = color.RGBA{255, 200, 0, 160}
	rayColor        = color.RGBA{220, 20, 60, 120}
	robotColor      = color.RGBA{220, 20, 60, 255}
	particleColor   = color.RGBA{30, 144, 255, 200}
	estimateColor   = color.RGBA{34, 139, 34, 255}
)

// Renderer implements ebiten.Game. Every Update applies user input, advances
// the simulation by one tick and takes the snapshot that Draw renders.
type Renderer struct {
	sim      *simulation.Simulation
	viewport Viewport
	snap     simulation.Snapshot
	status   string // last input outcome shown in the overlay

	screenWidth  int
	screenHeight int
}

// NewRenderer creates a new Ebiten renderer.
func NewRenderer(sim *simulation.Simulation) *Renderer {
	return &Renderer{
		sim:    sim,
		snap:   sim.Snapshot(),
		status: "click to set a target, space to run/pause",
		// screenWidth and screenHeight will be set by Layout
	}
}

// Update handles input and steps the simulation.
func (r *Renderer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.status = fmt.Sprintf("simulation %s", r.sim.TogglePause())
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		target := r.viewport.ScreenToWorld(ebiten.CursorPosition())
		switch err := r.sim.SetTarget(target[0], target[1]); {
		case err == nil:
			r.status = fmt.Sprintf("target set to (%.0f, %.0f)", target[0], target[1])
		case errors.Is(err, simulation.ErrPathActive):
			r.status = "wait for the current path to finish"
		default:
			r.status = err.Error()
			log.Printf("[Renderer] SetTarget: %v", err)
		}
	}

	if err := r.sim.Tick(); err != nil {
		// Keep the window alive; the overlay shows what went wrong.
		r.status = err.Error()
		log.Printf("[Renderer] Tick: %v", err)
	}
	r.snap = r.sim.Snapshot()
	return nil
}

// Draw is called every frame to render the simulation.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	r.drawGrid(screen)
	r.drawPath(screen)
	r.drawRays(screen)
	r.drawParticles(screen)
	r.drawEstimate(screen)

	rx, ry := r.viewport.WorldToScreen(r.snap.Robot.Point())
	vector.DrawFilledCircle(screen, rx, ry, robotRadiusOnScreen, robotColor, true)
	hx, hy := r.viewport.WorldToScreen(orb.Point{
		r.snap.Robot.X + 2*robotRadiusOnScreen/r.viewport.Scale()*math.Cos(r.snap.Robot.Orientation),
		r.snap.Robot.Y + 2*robotRadiusOnScreen/r.viewport.Scale()*math.Sin(r.snap.Robot.Orientation),
	})
	vector.StrokeLine(screen, rx, ry, hx, hy, 2, robotColor, true)

	r.drawDebugInfo(screen)
}

func (r *Renderer) drawGrid(screen *ebiten.Image) {
	g := r.snap.Grid
	cs := float32(g.CellSize() * r.viewport.Scale())
	x0, y0 := r.viewport.WorldToScreen(orb.Point{0, 0})
	w, h := float32(g.Cols())*cs, float32(g.Rows())*cs

	for _, o := range r.snap.Obstacles {
		ox, oy := r.viewport.WorldToScreen(o.Bound.Min)
		ow := float32((o.Bound.Max[0] - o.Bound.Min[0]) * r.viewport.Scale())
		oh := float32((o.Bound.Max[1] - o.Bound.Min[1]) * r.viewport.Scale())
		vector.DrawFilledRect(screen, ox, oy, ow, oh, obstacleColor, false)
	}

	for col := 0; col <= g.Cols(); col++ {
		x := x0 + float32(col)*cs
		vector.StrokeLine(screen, x, y0, x, y0+h, 1, gridLineColor, false)
	}
	for row := 0; row <= g.Rows(); row++ {
		y := y0 + float32(row)*cs
		vector.StrokeLine(screen, x0, y, x0+w, y, 1, gridLineColor, false)
	}
}

func (r *Renderer) drawPath(screen *ebiten.Image) {
	if len(r.snap.Path) == 0 {
		return
	}
	g := r.snap.Grid
	cs := float32(g.CellSize() * r.viewport.Scale())
	for _, c := range r.snap.Path {
		center := g.Center(c)
		x, y := r.viewport.WorldToScreen(center)
		vector.DrawFilledRect(screen, x-cs/4, y-cs/4, cs/2, cs/2, pathColor, false)
	}
}

func (r *Renderer) drawRays(screen *ebiten.Image) {
	reading := r.snap.RobotReading
	origin := r.snap.Robot.Point()
	ox, oy := r.viewport.WorldToScreen(origin)
	for k, d := range reading {
		theta := common.Bearing(k, len(reading))
		ex, ey := r.viewport.WorldToScreen(orb.Point{
			origin[0] + d*math.Cos(theta),
			origin[1] + d*math.Sin(theta),
		})
		vector.StrokeLine(screen, ox, oy, ex, ey, 1, rayColor, true)
	}
}

func (r *Renderer) drawParticles(screen *ebiten.Image) {
	for _, p := range r.snap.Particles {
		x, y := r.viewport.WorldToScreen(p.Point())
		vector.DrawFilledCircle(screen, x, y, particleRadiusOnScreen, particleColor, false)
	}
}

// drawEstimate marks the mean pose and outlines the covariance ellipse.
func (r *Renderer) drawEstimate(screen *ebiten.Image) {
	ex, ey := r.viewport.WorldToScreen(orb.Point{r.snap.Estimate.X, r.snap.Estimate.Y})
	vector.StrokeLine(screen, ex-5, ey, ex+5, ey, 2, estimateColor, true)
	vector.StrokeLine(screen, ex, ey-5, ex, ey+5, 2, estimateColor, true)

	e := r.snap.Cloud
	if e == nil || e.Major == 0 {
		return
	}
	cosA, sinA := math.Cos(e.Angle), math.Sin(e.Angle)
	point := func(i int) (float32, float32) {
		t := 2 * math.Pi * float64(i) / ellipseSegments
		u, v := e.Major*math.Cos(t), e.Minor*math.Sin(t)
		return r.viewport.WorldToScreen(orb.Point{
			e.Center[0] + u*cosA - v*sinA,
			e.Center[1] + u*sinA + v*cosA,
		})
	}
	px, py := point(0)
	for i := 1; i <= ellipseSegments; i++ {
		x, y := point(i)
		vector.StrokeLine(screen, px, py, x, y, 1, estimateColor, true)
		px, py = x, y
	}
}

func (r *Renderer) drawDebugInfo(screen *ebiten.Image) {
	snap := r.snap
	lines := []string{
		fmt.Sprintf("Tick %d  t=%.2fs  %s", snap.Tick, snap.Time, snap.State),
		fmt.Sprintf("FPS: %.1f, TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("Robot (%.1f, %.1f)  Estimate (%.1f, %.1f)  Error %.2f  Spread %.2f",
			snap.Robot.X, snap.Robot.Y, snap.Estimate.X, snap.Estimate.Y,
			snap.LocalizationError(), snap.Estimate.Spread),
		fmt.Sprintf("Particles: %d  Path: %d cells", len(snap.Particles), len(snap.Path)),
		r.status,
	}
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
}

// Layout is called when the window size changes.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != r.screenWidth || outsideHeight != r.screenHeight {
		r.screenWidth = outsideWidth
		r.screenHeight = outsideHeight
		sc := r.sim.Scene()
		r.viewport.Fit(orb.Bound{Max: orb.Point{sc.Width(), sc.Height()}}, outsideWidth, outsideHeight)
	}
	return r.screenWidth, r.screenHeight
}
