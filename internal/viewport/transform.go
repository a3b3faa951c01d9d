// Package viewport converts between screen and canvas space and owns the
// pan/zoom state of a single canvas.
package viewport

import (
	"fmt"
	"math"

	"postboard/internal/geom"
)

// Surface is the render target the pointer events are measured against.
// Bounds is expressed in screen coordinates.
type Surface interface {
	Bounds() geom.Rect
}

// Transform is a snapshot of the zoom factor and pan offset.
type Transform struct {
	Zoom float64
	Pan  geom.Point
}

// ToCanvas maps a screen point to canvas space:
//
//	canvas = (screen - origin - pan) / zoom
//
// Every consumer that turns pointer input into canvas coordinates goes through
// here. A non-positive zoom or an invalid origin rectangle is a caller bug and
// panics.
func ToCanvas(screen geom.Point, origin geom.Rect, zoom float64, pan geom.Point) geom.Point {
	mustBeUsable(origin, zoom)
	return screen.Sub(origin.Min()).Sub(pan).Scale(1 / zoom)
}

// ToScreen is the inverse of ToCanvas.
func ToScreen(canvas geom.Point, origin geom.Rect, zoom float64, pan geom.Point) geom.Point {
	mustBeUsable(origin, zoom)
	return canvas.Scale(zoom).Add(pan).Add(origin.Min())
}

func (t Transform) ToCanvas(screen geom.Point, origin geom.Rect) geom.Point {
	return ToCanvas(screen, origin, t.Zoom, t.Pan)
}

func (t Transform) ToScreen(canvas geom.Point, origin geom.Rect) geom.Point {
	return ToScreen(canvas, origin, t.Zoom, t.Pan)
}

// SurfaceToCanvas resolves the reference rectangle from s before converting.
func (t Transform) SurfaceToCanvas(s Surface, screen geom.Point) geom.Point {
	if s == nil {
		panic("viewport: coordinate transform without a render surface")
	}
	return t.ToCanvas(screen, s.Bounds())
}

func (t Transform) SurfaceToScreen(s Surface, canvas geom.Point) geom.Point {
	if s == nil {
		panic("viewport: coordinate transform without a render surface")
	}
	return t.ToScreen(canvas, s.Bounds())
}

func mustBeUsable(origin geom.Rect, zoom float64) {
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		panic(fmt.Sprintf("viewport: zoom must be positive, got %v", zoom))
	}
	if !origin.Valid() {
		panic(fmt.Sprintf("viewport: invalid reference rectangle %+v", origin))
	}
}
