// Package export renders a whole board to PNG or SVG.
package export

import (
	"math"

	"postboard/internal/apperr"
	"postboard/internal/board"
	"postboard/internal/geom"
)

const (
	margin     = 20.0
	arrowSize  = 12.0
	arrowAngle = 0.5
	fontSize   = 14.0
	lineHeight = 1.3
)

// scene is the drawable subset of a board, already resolved.
type scene struct {
	notes  []board.Note
	arrows []board.RenderedArrow
	bounds geom.Rect
}

func newScene(notes []board.Note, arrows []board.Arrow) (scene, error) {
	s := scene{arrows: board.RenderArrows(notes, arrows)}
	for _, n := range notes {
		if n.Valid() {
			s.notes = append(s.notes, n)
		}
	}
	if len(s.notes) == 0 {
		return scene{}, apperr.ErrNothingToExport
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range s.notes {
		r := n.Bounds()
		minX, minY = math.Min(minX, r.X), math.Min(minY, r.Y)
		maxX, maxY = math.Max(maxX, r.X+r.W), math.Max(maxY, r.Y+r.H)
	}
	s.bounds = geom.Rect{
		X: minX - margin,
		Y: minY - margin,
		W: maxX - minX + 2*margin,
		H: maxY - minY + 2*margin,
	}
	return s, nil
}

// local shifts a canvas point into image space.
func (s scene) local(p geom.Point) geom.Point {
	return p.Sub(s.bounds.Min())
}

// arrowHead returns the tip and the two base corners of the head at the end
// of seg. ok is false for segments too short to have a direction.
func arrowHead(seg geom.Segment) (tip, left, right geom.Point, ok bool) {
	d := seg.B.Sub(seg.A)
	length := math.Hypot(d.X, d.Y)
	if length < 0.1 {
		return tip, left, right, false
	}
	dx, dy := d.X/length, d.Y/length
	tip = seg.B
	left = geom.Pt(tip.X-arrowSize*dx+arrowSize*dy*arrowAngle, tip.Y-arrowSize*dy-arrowSize*dx*arrowAngle)
	right = geom.Pt(tip.X-arrowSize*dx-arrowSize*dy*arrowAngle, tip.Y-arrowSize*dy+arrowSize*dx*arrowAngle)
	return tip, left, right, true
}
