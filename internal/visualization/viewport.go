package visualization

import (
	"math"

	"github.com/paulmach/orb"
)

const padding = 20.0 // screen pixels kept clear around the arena

// Viewport maps arena coordinates to screen pixels. Both y axes grow
// downwards, so the mapping is a uniform scale plus an offset.
type Viewport struct {
	scale   float64
	offsetX float64
	offsetY float64
}

// Fit scales the world bound to fill the screen while preserving its aspect
// ratio, and centers it.
func (v *Viewport) Fit(world orb.Bound, screenWidth, screenHeight int) {
	worldWidth := world.Max[0] - world.Min[0]
	worldHeight := world.Max[1] - world.Min[1]
	if worldWidth <= 0 {
		worldWidth = 1
	}
	if worldHeight <= 0 {
		worldHeight = 1
	}

	scaleX := (float64(screenWidth) - 2*padding) / worldWidth
	scaleY := (float64(screenHeight) - 2*padding) / worldHeight
	v.scale = math.Min(scaleX, scaleY)
	if v.scale <= 0 || math.IsNaN(v.scale) || math.IsInf(v.scale, 0) {
		v.scale = 1.0
	}

	center := world.Center()
	v.offsetX = float64(screenWidth)/2.0 - center[0]*v.scale
	v.offsetY = float64(screenHeight)/2.0 - center[1]*v.scale
}

// Scale returns screen pixels per arena unit.
func (v *Viewport) Scale() float64 { return v.scale }

// WorldToScreen converts arena coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(p orb.Point) (float32, float32) {
	return float32(p[0]*v.scale + v.offsetX), float32(p[1]*v.scale + v.offsetY)
}

// ScreenToWorld converts a cursor position back to arena coordinates.
func (v *Viewport) ScreenToWorld(x, y int) orb.Point {
	return orb.Point{
		(float64(x) - v.offsetX) / v.scale,
		(float64(y) - v.offsetY) / v.scale,
	}
}
