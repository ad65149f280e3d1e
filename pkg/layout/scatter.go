package layout

import (
	"math/rand/v2"
	"sync"

	"github.com/masonworks/cardgrid/pkg/card"
)

// ScatterParams bound the pseudo-random transform per device class.
type ScatterParams struct {
	MaxRotate  float64 // degrees, applied as ±MaxRotate
	MaxShiftX  float64 // px, applied as ±MaxShiftX
	MaxShiftY  float64 // px, applied as ±MaxShiftY
	FocusScale float64 // scale applied to the focused card
}

// ParamsFor returns the scatter bounds for a device class.
func ParamsFor(class DeviceClass) ScatterParams {
	switch class {
	case Mobile:
		return ScatterParams{MaxRotate: 8, MaxShiftX: 40, MaxShiftY: 40, FocusScale: 1.05}
	case Tablet:
		return ScatterParams{MaxRotate: 12, MaxShiftX: 150, MaxShiftY: 120, FocusScale: 1.06}
	default:
		return ScatterParams{MaxRotate: 15, MaxShiftX: 290, MaxShiftY: 200, FocusScale: 1.08}
	}
}

// Placement is one card's resting transform in the pile.
type Placement struct {
	CardID   string
	Rotation float64 // degrees
	DX       float64 // px
	DY       float64 // px
	Z        int
}

// CardState is a card's current presentation: its resting placement
// adjusted for focus. Exactly one card can be raised at a time; while
// one is, every sibling is dimmed.
type CardState struct {
	Placement
	Scale  float64
	Raised bool
	Dimmed bool
}

// Pile is the scatter layout: every card gets an independent
// pseudo-random rotation, offset, and z-order instead of a column slot.
//
// The pile is seeded, so a given (cards, class, seed) triple always
// produces the same arrangement. Re-scatters draw further values from
// the same stream; they change the arrangement but remain reproducible.
//
// A page uses either a pile or a masonry board, never both.
type Pile struct {
	mu      sync.Mutex
	cards   []card.Card
	class   DeviceClass
	rng     *rand.Rand
	resting []Placement
	focused string
}

// NewPile scatters cards for the given device class.
func NewPile(cards []card.Card, class DeviceClass, seed uint64) *Pile {
	p := &Pile{
		cards: append([]card.Card(nil), cards...),
		class: class,
		rng:   rand.New(rand.NewPCG(seed, seed^0xbadcafe)),
	}
	p.scatter()
	return p
}

// scatter assigns fresh random transforms. Caller holds the lock or is
// the constructor.
func (p *Pile) scatter() {
	params := ParamsFor(p.class)
	zs := p.rng.Perm(len(p.cards))

	p.resting = make([]Placement, len(p.cards))
	for i, c := range p.cards {
		p.resting[i] = Placement{
			CardID:   c.ID,
			Rotation: spread(p.rng, params.MaxRotate),
			DX:       spread(p.rng, params.MaxShiftX),
			DY:       spread(p.rng, params.MaxShiftY),
			Z:        zs[i] + 1,
		}
	}
}

// spread returns a uniform value in [-limit, limit].
func spread(rng *rand.Rand, limit float64) float64 {
	return (rng.Float64()*2 - 1) * limit
}

// Resize re-resolves the device class for a new viewport width.
// Crossing a class boundary re-scatters every card and reports true;
// resizing within the same class is a no-op.
func (p *Pile) Resize(viewportWidth float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := ClassFor(viewportWidth)
	if class == p.class {
		return false
	}
	p.class = class
	p.focused = ""
	p.scatter()
	return true
}

// SetCards replaces the pile's contents and re-scatters.
func (p *Pile) SetCards(cards []card.Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cards = append(p.cards[:0], cards...)
	p.focused = ""
	p.scatter()
}

// Focus raises the card with the given identity: front of the z-order,
// rotation reset, scaled up, siblings dimmed. Focusing an unknown
// identity reports false and changes nothing.
func (p *Pile) Focus(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pl := range p.resting {
		if pl.CardID == id {
			p.focused = id
			return true
		}
	}
	return false
}

// Blur restores every card to its resting transform and z-order.
func (p *Pile) Blur() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = ""
}

// Focused returns the identity of the raised card, if any.
func (p *Pile) Focused() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused, p.focused != ""
}

// Class returns the pile's current device class.
func (p *Pile) Class() DeviceClass {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.class
}

// Placements returns the resting transforms in card order.
func (p *Pile) Placements() []Placement {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Placement, len(p.resting))
	copy(out, p.resting)
	return out
}

// States returns the current presentation of every card in card order,
// with focus adjustments applied on top of the resting placements.
func (p *Pile) States() []CardState {
	p.mu.Lock()
	defer p.mu.Unlock()

	params := ParamsFor(p.class)
	top := len(p.resting) + 1

	states := make([]CardState, len(p.resting))
	for i, pl := range p.resting {
		st := CardState{Placement: pl, Scale: 1}
		if p.focused != "" {
			if pl.CardID == p.focused {
				st.Raised = true
				st.Rotation = 0
				st.Scale = params.FocusScale
				st.Z = top
			} else {
				st.Dimmed = true
			}
		}
		states[i] = st
	}
	return states
}
