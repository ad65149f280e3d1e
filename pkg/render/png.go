package render

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/masonworks/cardgrid/pkg/errors"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithPNGScale sets the raster scale factor (default 2.0 for 2x
// resolution).
func WithPNGScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG draws the scene onto a raster canvas: card rectangles with
// the image region and text bars blocked in, rotated in place for pile
// scenes. The output is a preview of the geometry, not of the content;
// images are never fetched.
func RenderPNG(s Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}

	width, height := s.Width, s.Height()
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidViewport, "scene has no drawable area (%gx%g)", width, height)
	}

	dc := gg.NewContext(int(width*r.scale), int(height*r.scale))
	dc.Scale(r.scale, r.scale)
	dc.SetHexColor("#f4f5f6")
	dc.Clear()

	if s.Mode == "pile" {
		drawPile(dc, s)
	} else {
		drawMasonry(dc, s)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawMasonry(dc *gg.Context, s Scene) {
	byID := cardIndex(s)
	for _, f := range s.Result.Frames {
		c := byID[f.CardID]
		drawCard(dc, f.X, f.Y, f.Width, f.Height, c.HasImage())
	}
}

func drawPile(dc *gg.Context, s Scene) {
	byID := cardIndex(s)
	cw, ch := pileCardSize(s.Width)
	baseX := (s.Width - cw) / 2
	baseY := s.Height()*0.5 - ch/2

	for _, st := range s.States {
		x, y := baseX+st.DX, baseY+st.DY
		c := byID[st.CardID]

		dc.Push()
		dc.RotateAbout(gg.Radians(st.Rotation), x+cw/2, y+ch/2)
		drawCard(dc, x, y, cw, ch, c.HasImage())
		dc.Pop()
	}
}

// drawCard blocks in one card at (x, y): body, image region, a title
// bar, and excerpt bars as space allows.
func drawCard(dc *gg.Context, x, y, w, h float64, hasImage bool) {
	dc.DrawRoundedRectangle(x, y, w, h, 5)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor("#d4d9de")
	dc.SetLineWidth(1)
	dc.Stroke()

	textTop := y + 16
	if hasImage {
		imgH := min(w*2.0/3.0, h*0.6)
		dc.DrawRoundedRectangle(x, y, w, imgH, 5)
		dc.SetHexColor("#c3cdd6")
		dc.Fill()
		textTop = y + imgH + 16
	}

	dc.DrawRoundedRectangle(x+16, textTop, w*0.7-16, 12, 3)
	dc.SetHexColor("#48525c")
	dc.Fill()
	textTop += 24

	for i := 0; i < 2 && textTop+10 < y+h-12; i++ {
		barW := w - 32
		if i == 1 {
			barW *= 0.6
		}
		dc.DrawRoundedRectangle(x+16, textTop, barW, 8, 3)
		dc.SetHexColor("#d4d9de")
		dc.Fill()
		textTop += 16
	}
}
