package viewer

import (
	"github.com/lao-tseu-is-alive/go-flocking/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flocking/pkg/geometry"
)

// camera is an orthographic projection of the world onto the XY plane of the
// screen, scaled to fit and centered. Depth is kept for shading.
type camera struct {
	bounds           behavior.Bounds
	scale            float64
	offsetX, offsetY float64
}

func newCamera(bounds behavior.Bounds, screenW, screenH int) camera {
	spanX, spanY := bounds.Span(0), bounds.Span(1)
	scale := min(float64(screenW)/spanX, float64(screenH)/spanY)
	return camera{
		bounds:  bounds,
		scale:   scale,
		offsetX: (float64(screenW) - spanX*scale) / 2,
		offsetY: (float64(screenH) - spanY*scale) / 2,
	}
}

// project maps a world position to screen pixels.
func (c camera) project(p geometry.Vector) (x, y float64) {
	return c.offsetX + (p.X-c.bounds.Min.X)*c.scale,
		c.offsetY + (p.Y-c.bounds.Min.Y)*c.scale
}

// depth is 0 at the far (min z) face and 1 at the near one. Planar worlds
// are always at depth 1.
func (c camera) depth(p geometry.Vector) float64 {
	if !c.bounds.Active(2) {
		return 1
	}
	d := (p.Z - c.bounds.Min.Z) / c.bounds.Span(2)
	return min(max(d, 0), 1)
}
