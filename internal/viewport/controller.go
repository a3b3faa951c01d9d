package viewport

import (
	"fmt"
	"math"

	"postboard/internal/geom"
)

// Direction selects whether ZoomAt zooms in or out.
type Direction int

const (
	ZoomOut Direction = -1
	ZoomIn  Direction = 1
)

// Options configures a Controller.
type Options struct {
	InitialZoom float64
	MinZoom     float64
	MaxZoom     float64
	Step        float64
	Disabled    bool
}

// DefaultOptions mirrors the bounds used by the web canvas.
func DefaultOptions() Options {
	return Options{
		InitialZoom: 1,
		MinZoom:     0.1,
		MaxZoom:     5,
		Step:        1.1,
	}
}

// Controller owns the zoom factor and pan offset of one canvas. It is passed
// by reference to whoever needs the current transform.
type Controller struct {
	opts     Options
	zoom     float64
	position geom.Point

	dragging bool
	last     geom.Point
}

func NewController(opts Options) (*Controller, error) {
	if !(opts.MinZoom > 0) {
		return nil, fmt.Errorf("viewport: min zoom must be positive, got %v", opts.MinZoom)
	}
	if !(opts.MaxZoom >= opts.MinZoom) || math.IsInf(opts.MaxZoom, 0) {
		return nil, fmt.Errorf("viewport: max zoom %v below min zoom %v", opts.MaxZoom, opts.MinZoom)
	}
	if !(opts.Step > 1) {
		return nil, fmt.Errorf("viewport: zoom step must be greater than 1, got %v", opts.Step)
	}
	c := &Controller{opts: opts}
	c.Reset()
	return c, nil
}

// Reset restores the initial zoom and a zero pan offset.
func (c *Controller) Reset() {
	c.zoom = c.clamp(c.opts.InitialZoom)
	c.position = geom.Point{}
	c.dragging = false
}

func (c *Controller) Zoom() float64        { return c.zoom }
func (c *Controller) Position() geom.Point { return c.position }
func (c *Controller) Enabled() bool        { return !c.opts.Disabled }
func (c *Controller) Dragging() bool       { return c.dragging }

func (c *Controller) SetEnabled(enabled bool) {
	c.opts.Disabled = !enabled
	if !enabled {
		c.dragging = false
	}
}

func (c *Controller) Transform() Transform {
	return Transform{Zoom: c.zoom, Pan: c.position}
}

// ZoomAt scales the zoom factor by one step and moves the pan offset so the
// canvas point under cursor stays under cursor. cursor is relative to the
// surface origin. Zoom is clamped to the configured range.
func (c *Controller) ZoomAt(dir Direction, cursor geom.Point) {
	if c.opts.Disabled {
		return
	}
	next := c.zoom
	switch {
	case dir > 0:
		next *= c.opts.Step
	case dir < 0:
		next /= c.opts.Step
	default:
		return
	}
	c.zoomTo(c.clamp(next), cursor)
}

// SetZoom jumps straight to z (clamped), anchored at cursor.
func (c *Controller) SetZoom(z float64, cursor geom.Point) {
	if c.opts.Disabled {
		return
	}
	c.zoomTo(c.clamp(z), cursor)
}

func (c *Controller) zoomTo(next float64, cursor geom.Point) {
	ratio := next / c.zoom
	c.position = cursor.Sub(cursor.Sub(c.position).Scale(ratio))
	c.zoom = next
}

// Pan moves the canvas by delta screen pixels, independent of zoom.
func (c *Controller) Pan(delta geom.Point) {
	if c.opts.Disabled {
		return
	}
	c.position = c.position.Add(delta)
}

// BeginDrag starts a background drag at screen point p.
func (c *Controller) BeginDrag(p geom.Point) {
	if c.opts.Disabled {
		return
	}
	c.dragging = true
	c.last = p
}

// DragTo pans by the pointer movement since the previous drag event.
func (c *Controller) DragTo(p geom.Point) {
	if !c.dragging {
		return
	}
	c.Pan(p.Sub(c.last))
	c.last = p
}

func (c *Controller) EndDrag() {
	c.dragging = false
}

func (c *Controller) clamp(z float64) float64 {
	return math.Max(c.opts.MinZoom, math.Min(c.opts.MaxZoom, z))
}
