// Package render turns a laid-out board into bytes.
//
// Sinks consume a [Scene], a self-contained snapshot of cards plus
// computed geometry, and never touch the live board: layout output is
// disposable, so a scene can be rendered, cached, and re-rendered
// without holding any lock.
//
// Four sinks cover the useful formats:
//
//   - [RenderHTML]: server-side page markup. The output carries the
//     same container classes, card structure, pagination block, and
//     rel=next link the content parser consumes, so rendered pages can
//     feed the engine back.
//   - [RenderSVG]: a standalone vector preview with hover raise/dim.
//   - [RenderPNG]: a raster preview drawn with gg.
//   - [RenderJSON]: the scene itself, for debug endpoints and caching.
package render

import (
	"time"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/layout"
)

// Scene is one renderable snapshot of the board: the cards, the
// geometry a layout pass produced for them, and the pagination trail
// of the page being drawn.
//
// Exactly one of Result and States is meaningful, selected by Mode:
// masonry scenes carry column frames, pile scenes carry per-card
// transforms.
type Scene struct {
	Title string
	Mode  string // "masonry" or "pile"
	Width float64
	Seed  uint64

	Cards  []card.Card
	Result layout.Result
	States []layout.CardState

	// Entering maps card IDs to entrance animation delays for cards
	// that were placed for the first time in this pass.
	Entering map[string]time.Duration

	Page    int
	Pages   int
	NextURL string
}

// Height returns the drawn height of the scene in CSS pixels. Masonry
// scenes use the packed container height; pile scenes use a 4:3 canvas
// since scattered cards have no accumulator.
func (s Scene) Height() float64 {
	if s.Mode == "pile" || s.Result.ContainerHeight <= 0 {
		return s.Width * 0.75
	}
	return s.Result.ContainerHeight
}

// frameIndex maps card ID to its masonry frame.
func (s Scene) frameIndex() map[string]layout.Frame {
	idx := make(map[string]layout.Frame, len(s.Result.Frames))
	for _, f := range s.Result.Frames {
		idx[f.CardID] = f
	}
	return idx
}

// stateIndex maps card ID to its pile state.
func (s Scene) stateIndex() map[string]layout.CardState {
	idx := make(map[string]layout.CardState, len(s.States))
	for _, st := range s.States {
		idx[st.CardID] = st
	}
	return idx
}
