package board

import (
	"log/slog"
	"math"

	"postboard/internal/geom"
)

type Position string

const (
	Top    Position = "top"
	Right  Position = "right"
	Bottom Position = "bottom"
	Left   Position = "left"
)

// ConnectionPoint is an edge midpoint of a note's footprint.
type ConnectionPoint struct {
	X        float64
	Y        float64
	Position Position
}

func (p ConnectionPoint) Point() geom.Point {
	return geom.Point{X: p.X, Y: p.Y}
}

// ConnectionPoints returns the four anchors of n in the order top, right,
// bottom, left. A nil note or one without a finite position is logged and
// yields nil; callers skip it for this frame.
func ConnectionPoints(n *Note) []ConnectionPoint {
	if n == nil {
		slog.Warn("connection points: missing note")
		return nil
	}
	if !n.Valid() {
		slog.Warn("connection points: note has no valid position",
			slog.String("note_id", n.ID),
			slog.Float64("x", n.X),
			slog.Float64("y", n.Y))
		return nil
	}
	r := n.Bounds()
	return []ConnectionPoint{
		{X: r.X + r.W/2, Y: r.Y, Position: Top},
		{X: r.X + r.W, Y: r.Y + r.H/2, Position: Right},
		{X: r.X + r.W/2, Y: r.Y + r.H, Position: Bottom},
		{X: r.X, Y: r.Y + r.H/2, Position: Left},
	}
}

// ClosestPoint picks the anchor of n nearest to target. On a tie the earlier
// anchor in ConnectionPoints order wins.
func ClosestPoint(n *Note, target geom.Point) (ConnectionPoint, bool) {
	points := ConnectionPoints(n)
	if len(points) == 0 {
		return ConnectionPoint{}, false
	}
	best := points[0]
	bestDist := math.Inf(1)
	for _, p := range points {
		if d := p.Point().Distance(target); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}
