package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"mcl-sim/internal/scene"
	"mcl-sim/internal/simulation"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Sample is what the recorder keeps from one tick.
type Sample struct {
	Tick     int
	Time     float64
	Truth    orb.Point
	Estimate orb.Point
	Error    float64 // distance between Truth and Estimate
	Spread   float64
}

// Recorder accumulates per-tick samples of a run and renders them as PNG
// charts once the run is over. Record matches simulation.Observer.
type Recorder struct {
	mu        sync.Mutex
	samples   []Sample
	obstacles []scene.Obstacle
	particles []simulation.Pose
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record captures one snapshot.
func (r *Recorder) Record(snap simulation.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, Sample{
		Tick:     snap.Tick,
		Time:     snap.Time,
		Truth:    snap.Robot.Point(),
		Estimate: orb.Point{snap.Estimate.X, snap.Estimate.Y},
		Error:    snap.LocalizationError(),
		Spread:   snap.Estimate.Spread,
	})
	r.obstacles = snap.Obstacles
	r.particles = snap.Particles
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// MeanError returns the average localization error over all samples, or 0
// when nothing was recorded.
func (r *Recorder) MeanError() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return 0
	}
	errs := make([]float64, len(r.samples))
	for i, s := range r.samples {
		errs[i] = s.Error
	}
	return stat.Mean(errs, nil)
}

// SaveTrajectory draws the arena with its obstacles, the true and estimated
// robot tracks, and the final particle cloud.
func (r *Recorder) SaveTrajectory(path string, width, height float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return fmt.Errorf("no samples recorded")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trajectory (%d ticks)", len(r.samples))
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, width
	p.Y.Min, p.Y.Max = 0, height
	// Arena y grows downwards, as on screen.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	for _, o := range r.obstacles {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: o.Bound.Min[0], Y: o.Bound.Min[1]},
			{X: o.Bound.Max[0], Y: o.Bound.Min[1]},
			{X: o.Bound.Max[0], Y: o.Bound.Max[1]},
			{X: o.Bound.Min[0], Y: o.Bound.Max[1]},
		})
		if err != nil {
			return err
		}
		poly.Color = color.RGBA{R: 90, G: 90, B: 90, A: 255}
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	if len(r.particles) > 0 {
		pts := make(plotter.XYs, len(r.particles))
		for i, pose := range r.particles {
			pts[i] = plotter.XY{X: pose.X, Y: pose.Y}
		}
		cloud, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		cloud.GlyphStyle.Color = color.RGBA{R: 30, G: 144, B: 255, A: 255}
		cloud.GlyphStyle.Radius = vg.Points(1)
		cloud.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(cloud)
		p.Legend.Add("particles", cloud)
	}

	truth := make(plotter.XYs, len(r.samples))
	est := make(plotter.XYs, len(r.samples))
	for i, s := range r.samples {
		truth[i] = plotter.XY{X: s.Truth[0], Y: s.Truth[1]}
		est[i] = plotter.XY{X: s.Estimate[0], Y: s.Estimate[1]}
	}

	truthLine, err := plotter.NewLine(truth)
	if err != nil {
		return err
	}
	truthLine.Color = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	truthLine.Width = vg.Points(1.5)
	p.Add(truthLine)
	p.Legend.Add("robot", truthLine)

	estLine, err := plotter.NewLine(est)
	if err != nil {
		return err
	}
	estLine.Color = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	estLine.Width = vg.Points(1)
	estLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(estLine)
	p.Legend.Add("estimate", estLine)

	p.Legend.Top = true

	return save(p, 8*vg.Inch, vg.Length(8*height/width)*vg.Inch, path)
}

// SaveError plots the localization error and the particle spread over time.
func (r *Recorder) SaveError(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return fmt.Errorf("no samples recorded")
	}

	p := plot.New()
	p.Title.Text = "Localization error"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Distance"

	errPts := make(plotter.XYs, len(r.samples))
	spreadPts := make(plotter.XYs, len(r.samples))
	for i, s := range r.samples {
		errPts[i] = plotter.XY{X: s.Time, Y: s.Error}
		spreadPts[i] = plotter.XY{X: s.Time, Y: s.Spread}
	}

	errLine, err := plotter.NewLine(errPts)
	if err != nil {
		return err
	}
	errLine.Color = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	errLine.Width = vg.Points(1)
	p.Add(errLine)
	p.Legend.Add("error", errLine)

	spreadLine, err := plotter.NewLine(spreadPts)
	if err != nil {
		return err
	}
	spreadLine.Color = color.RGBA{R: 30, G: 144, B: 255, A: 255}
	spreadLine.Width = vg.Points(1)
	p.Add(spreadLine)
	p.Legend.Add("spread", spreadLine)

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false

	return save(p, 10*vg.Inch, 4*vg.Inch, path)
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
