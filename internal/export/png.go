package export

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"postboard/internal/board"
	"postboard/internal/geom"
)

// maxImageSide caps the longer side of an exported PNG in pixels.
var maxImageSide = 4096.0

// PNG draws the board at one image pixel per canvas unit, shrinking the whole
// picture when that would exceed maxImageSide.
func PNG(w io.Writer, notes []board.Note, arrows []board.Arrow) error {
	s, err := newScene(notes, arrows)
	if err != nil {
		return err
	}

	scale := imageScale(s.bounds)
	dc := gg.NewContext(max(int(s.bounds.W*scale+0.5), 1), max(int(s.bounds.H*scale+0.5), 1))
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Scale(scale, scale)

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("export: parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// arrows first so notes sit on top of their anchors
	for _, a := range s.arrows {
		drawArrowPNG(dc, s, a)
	}
	for _, n := range s.notes {
		drawNotePNG(dc, s, n)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// imageScale is 1 unless the board is too big to draw at full size.
func imageScale(bounds geom.Rect) float64 {
	return math.Min(1, maxImageSide/math.Max(bounds.W, bounds.H))
}

func drawArrowPNG(dc *gg.Context, s scene, a board.RenderedArrow) {
	seg := a.Segment()
	from, to := s.local(seg.A), s.local(seg.B)

	dc.SetHexColor("#333333")
	dc.SetLineWidth(2)
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	dc.Stroke()

	seg.A, seg.B = from, to
	tip, left, right, ok := arrowHead(seg)
	if !ok {
		return
	}
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(left.X, left.Y)
	dc.LineTo(right.X, right.Y)
	dc.ClosePath()
	dc.Fill()
}

func drawNotePNG(dc *gg.Context, s scene, n board.Note) {
	r := n.Bounds()
	p := s.local(r.Min())

	color := n.Color
	if color == "" {
		color = board.DefaultColor
	}
	dc.SetHexColor(color)
	dc.DrawRectangle(p.X, p.Y, r.W, r.H)
	dc.Fill()

	dc.SetHexColor("#00000022")
	dc.SetLineWidth(board.NoteBorder)
	dc.DrawRectangle(p.X+board.NoteBorder/2, p.Y+board.NoteBorder/2, r.W-board.NoteBorder, r.H-board.NoteBorder)
	dc.Stroke()

	content := n.Content()
	c := s.local(content.Min())
	dc.SetHexColor("#000000")
	dc.DrawStringWrapped(n.Text, c.X, c.Y, 0, 0, content.W, lineHeight, gg.AlignLeft)
}
