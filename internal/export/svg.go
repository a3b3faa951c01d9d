package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"postboard/internal/board"
)

// SVG writes the board as a standalone SVG document.
func SVG(w io.Writer, notes []board.Note, arrows []board.Arrow) error {
	s, err := newScene(notes, arrows)
	if err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(px(s.bounds.W), px(s.bounds.H))
	canvas.Rect(0, 0, px(s.bounds.W), px(s.bounds.H), "fill:#ffffff")

	canvas.Gid("arrows")
	for _, a := range s.arrows {
		seg := a.Segment()
		seg.A, seg.B = s.local(seg.A), s.local(seg.B)
		canvas.Line(px(seg.A.X), px(seg.A.Y), px(seg.B.X), px(seg.B.Y),
			fmt.Sprintf(`id="arrow-%s" stroke="#333333" stroke-width="2"`, escape(a.ID)))
		if tip, left, right, ok := arrowHead(seg); ok {
			canvas.Polygon(
				[]int{px(tip.X), px(left.X), px(right.X)},
				[]int{px(tip.Y), px(left.Y), px(right.Y)},
				"fill:#333333")
		}
	}
	canvas.Gend()

	canvas.Gid("notes")
	for _, n := range s.notes {
		r := n.Bounds()
		p := s.local(r.Min())
		color := n.Color
		if color == "" {
			color = board.DefaultColor
		}
		canvas.Rect(px(p.X), px(p.Y), px(r.W), px(r.H),
			fmt.Sprintf(`id="note-%s" fill="%s" stroke="#0000001a" stroke-width="%d"`, escape(n.ID), escape(color), int(board.NoteBorder)))

		c := s.local(n.Content().Min())
		step := fontSize * lineHeight
		for i, line := range n.Lines() {
			if line == "" {
				continue
			}
			canvas.Text(px(c.X), px(c.Y+fontSize+float64(i)*step), line,
				fmt.Sprintf("font-family:monospace;font-size:%dpx;fill:#000000", int(fontSize)))
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func px(f float64) int {
	return int(math.Round(f))
}

var attrEscaper = strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;", "&", "&amp;")

func escape(s string) string {
	return attrEscaper.Replace(s)
}
