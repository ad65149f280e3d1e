package layout

import (
	"math"
	"unicode/utf8"

	"github.com/masonworks/cardgrid/pkg/card"
)

// Measurer reports the rendered height of a card at a given width.
//
// Height depends on width because text wraps, so the engine fixes each
// card's width before asking. Implementations must be deterministic:
// identical (card, width) pairs yield identical heights, otherwise
// layout idempotence breaks.
type Measurer interface {
	Measure(c card.Card, width float64) float64
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(c card.Card, width float64) float64

// Measure calls f.
func (f MeasureFunc) Measure(c card.Card, width float64) float64 { return f(c, width) }

// FixedMeasurer returns the same height for every card. Mostly useful
// in tests and for uniform tile grids.
func FixedMeasurer(height float64) Measurer {
	return MeasureFunc(func(card.Card, float64) float64 { return height })
}

// Estimator is a typographic height model. It approximates what a card
// renders to: feature image scaled to width, wrapped title and excerpt,
// and a fixed meta row.
//
// The model is crude but deterministic, which is what layout needs.
// Callers with better information (probed image dimensions, a real
// rendering pass) override per-card aspect ratios via AspectOverrides.
type Estimator struct {
	// Padding is the vertical sum of card chrome (borders, inner padding).
	Padding float64

	// TitleSize and BodySize are font sizes in px.
	TitleSize float64
	BodySize  float64

	// LineHeight is the line-height multiplier applied to both fonts.
	LineHeight float64

	// MetaHeight is the fixed height of the author/date row.
	MetaHeight float64

	// ImageAspect is the default feature image height/width ratio.
	ImageAspect float64

	// AspectOverrides maps card ID to a measured height/width ratio,
	// taking precedence over ImageAspect.
	AspectOverrides map[string]float64
}

// DefaultEstimator returns an Estimator tuned for the stock card style:
// 16px body, 24px titles, 3:2 images.
func DefaultEstimator() *Estimator {
	return &Estimator{
		Padding:     48,
		TitleSize:   24,
		BodySize:    16,
		LineHeight:  1.5,
		MetaHeight:  40,
		ImageAspect: 2.0 / 3.0,
	}
}

// Measure returns the estimated card height at the given width.
func (e *Estimator) Measure(c card.Card, width float64) float64 {
	if width <= 0 {
		return 0
	}

	h := e.Padding + e.MetaHeight

	if c.HasImage() {
		aspect := e.ImageAspect
		if v, ok := e.AspectOverrides[c.ID]; ok && v > 0 {
			aspect = v
		}
		h += width * aspect
	}

	h += e.textHeight(c.Title, e.TitleSize, width)
	h += e.textHeight(c.Excerpt, e.BodySize, width)

	return math.Round(h)
}

// textHeight estimates the wrapped height of text at the given font size.
// Average glyph width is taken as a fixed ratio of the font size.
func (e *Estimator) textHeight(text string, fontSize, width float64) float64 {
	if text == "" {
		return 0
	}
	const glyphRatio = 0.55
	perLine := math.Max(1, math.Floor(width/(fontSize*glyphRatio)))
	lines := math.Ceil(float64(utf8.RuneCountInString(text)) / perLine)
	return lines * fontSize * e.LineHeight
}

// Ensure Estimator implements Measurer.
var _ Measurer = (*Estimator)(nil)
