// Package grid orchestrates the visible board: one card store, one
// layout mode, and a typed signal set between them.
//
// A Board owns the layout engine for its mode (masonry or pile; a page
// uses one, never both) and is the single entry point for layout passes.
// The loader and the filter hold the Board instance they were
// constructed with and drive it through RequestLayout and ApplyAspects;
// nothing reaches the engine through ambient state.
package grid

import (
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/layout"
)

// Mode selects which layout engine the board runs.
type Mode int

const (
	// ModeMasonry packs cards into columns (natural flow on narrow
	// viewports).
	ModeMasonry Mode = iota
	// ModePile scatters cards with seeded pseudo-random transforms.
	ModePile
)

// String returns "masonry" or "pile".
func (m Mode) String() string {
	if m == ModePile {
		return "pile"
	}
	return "masonry"
}

// ParseMode returns the mode named by s. The empty string means masonry.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "masonry":
		return ModeMasonry, nil
	case "pile":
		return ModePile, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown layout mode %q (want masonry or pile)", s)
	}
}

// ModeFor maps a parsed page container to a board mode. The plain post
// feed keeps the masonry engine, which degrades to natural flow on
// narrow viewports.
func ModeFor(kind content.ContainerKind) Mode {
	if kind == content.ContainerPile {
		return ModePile
	}
	return ModeMasonry
}

const (
	defaultWidth       = 1200
	defaultResizeDelay = 150 * time.Millisecond

	// Entrance cascade for newly positioned cards.
	entranceStep     = 60 * time.Millisecond
	entranceMaxSteps = 10
)

// View is the board's latest computed output. Result is set in masonry
// mode, States in pile mode; Entering holds the cards that animate in
// this pass with their stagger delays.
type View struct {
	Mode       Mode
	Width      float64
	Breakpoint layout.Breakpoint
	Class      layout.DeviceClass
	Cards      []card.Card
	Result     layout.Result
	States     []layout.CardState
	Entering   map[string]time.Duration
}

// Board is the live layout orchestrator over a card store.
type Board struct {
	mu           sync.Mutex
	width        float64
	pendingWidth float64
	bp           layout.Breakpoint
	class        layout.DeviceClass
	positioned   map[string]bool
	pileIDs      []string
	view         View
	resizeTimer  *time.Timer

	store       *card.Store
	mode        Mode
	engine      *layout.Engine
	oracle      *oracle
	pile        *layout.Pile
	seed        uint64
	hooks       Hooks
	resizeDelay time.Duration
	logger      *log.Logger

	estimator *layout.Estimator
}

// Option configures a Board.
type Option func(*Board)

// WithMode sets the layout mode. Defaults to masonry.
func WithMode(m Mode) Option {
	return func(b *Board) { b.mode = m }
}

// WithWidth sets the initial viewport width in CSS pixels.
func WithWidth(width float64) Option {
	return func(b *Board) {
		if width > 0 {
			b.width = width
		}
	}
}

// WithSeed sets the scatter seed for pile mode.
func WithSeed(seed uint64) Option {
	return func(b *Board) { b.seed = seed }
}

// WithHooks injects the board's signal receiver.
func WithHooks(h Hooks) Option {
	return func(b *Board) {
		if h != nil {
			b.hooks = h
		}
	}
}

// WithEstimator overrides the height oracle's base model.
func WithEstimator(est *layout.Estimator) Option {
	return func(b *Board) {
		if est != nil {
			b.estimator = est
		}
	}
}

// WithResizeDelay overrides the resize debounce window.
func WithResizeDelay(d time.Duration) Option {
	return func(b *Board) {
		if d >= 0 {
			b.resizeDelay = d
		}
	}
}

// WithLogger sets the board's logger.
func WithLogger(logger *log.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a board over the given store. The board does not run an
// initial pass; trigger one with RequestLayout once the store is seeded.
func New(store *card.Store, opts ...Option) *Board {
	b := &Board{
		width:       defaultWidth,
		positioned:  make(map[string]bool),
		store:       store,
		mode:        ModeMasonry,
		seed:        1,
		hooks:       NopHooks{},
		resizeDelay: defaultResizeDelay,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		estimator:   layout.DefaultEstimator(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.bp = layout.Resolve(b.width)
	b.class = layout.ClassFor(b.width)
	b.oracle = newOracle(b.estimator)
	b.engine = layout.NewEngine(layout.WithMeasurer(b.oracle), layout.WithLogger(b.logger))
	if b.mode == ModePile {
		b.pile = layout.NewPile(store.Cards(), b.class, b.seed)
		b.pileIDs = store.IDs()
	}
	return b
}

// Mode returns the board's layout mode.
func (b *Board) Mode() Mode {
	return b.mode
}

// Width returns the current viewport width.
func (b *Board) Width() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// View returns the output of the most recent layout pass.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// ApplyAspects merges probed image ratios into the height oracle. The
// next layout pass measures with them.
func (b *Board) ApplyAspects(aspects map[string]float64) {
	b.oracle.apply(aspects)
}

// OnAppended is the loader's cards-appended notification target; it
// forwards the count to the board's hooks.
func (b *Board) OnAppended(added []card.Card) {
	b.hooks.CardsAppended(len(added))
}

// RequestLayout runs one layout pass over the store's current contents.
// Passes never overlap: in masonry mode a request that arrives while a
// pass is running is dropped (layout is idempotent, the next event
// retries). Every store mutation is followed by exactly one call here.
func (b *Board) RequestLayout(reason string) {
	b.hooks.LayoutRequested(reason)

	cards := b.store.Cards()

	b.mu.Lock()
	width, bp, mode := b.width, b.bp, b.mode
	b.mu.Unlock()

	if mode == ModePile {
		b.layoutPile(cards, width, reason)
		return
	}
	b.layoutMasonry(cards, width, bp, reason)
}

func (b *Board) layoutMasonry(cards []card.Card, width float64, bp layout.Breakpoint, reason string) {
	res, ok := b.engine.Layout(cards, width, bp)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Cards placed for the first time animate in with a short cascade.
	// Cards that left the board (category switch) forget their flag, so
	// the animation replays if they return.
	entering := make(map[string]time.Duration)
	seen := make(map[string]bool, len(res.Frames))
	newIdx := 0
	for i := range res.Frames {
		id := res.Frames[i].CardID
		seen[id] = true
		if b.positioned[id] {
			continue
		}
		if res.Positioned {
			res.Frames[i].Delay = time.Duration(min(newIdx, entranceMaxSteps)) * entranceStep
		}
		entering[id] = res.Frames[i].Delay
		newIdx++
	}
	b.positioned = seen

	b.view = View{
		Mode:       ModeMasonry,
		Width:      width,
		Breakpoint: bp,
		Class:      b.class,
		Cards:      cards,
		Result:     res,
		Entering:   entering,
	}
	b.logger.Debug("masonry pass",
		"reason", reason,
		"cards", len(cards),
		"columns", res.Columns,
		"height", res.ContainerHeight)
}

func (b *Board) layoutPile(cards []card.Card, width float64, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	if !slices.Equal(ids, b.pileIDs) {
		b.pile.SetCards(cards)
		b.pileIDs = ids
	}

	b.view = View{
		Mode:   ModePile,
		Width:  width,
		Class:  b.pile.Class(),
		Cards:  cards,
		States: b.pile.States(),
	}
	b.logger.Debug("pile pass", "reason", reason, "cards", len(cards), "class", b.pile.Class())
}

// Resize schedules a viewport change. Bursts coalesce into one trailing
// pass after the debounce window; use SetWidth for an immediate change.
func (b *Board) Resize(width float64) {
	b.mu.Lock()
	b.pendingWidth = width
	if b.resizeTimer != nil {
		b.resizeTimer.Stop()
	}
	b.resizeTimer = time.AfterFunc(b.resizeDelay, b.flushResize)
	b.mu.Unlock()
}

// SetWidth applies a viewport change immediately.
func (b *Board) SetWidth(width float64) {
	b.mu.Lock()
	b.pendingWidth = width
	if b.resizeTimer != nil {
		b.resizeTimer.Stop()
		b.resizeTimer = nil
	}
	b.mu.Unlock()
	b.flushResize()
}

// flushResize applies the pending width: re-resolve the breakpoint,
// strip positioned flags when the column count changes (the entrance
// animation replays), re-scatter the pile when the device class
// changes, then run one pass.
func (b *Board) flushResize() {
	b.mu.Lock()
	width := b.pendingWidth
	if width <= 0 {
		b.mu.Unlock()
		return
	}
	b.width = width
	oldCols := b.bp.Columns
	b.bp = layout.Resolve(width)
	b.class = layout.ClassFor(width)
	if b.bp.Columns != oldCols {
		b.positioned = make(map[string]bool)
	}
	mode := b.mode
	b.mu.Unlock()

	if mode == ModePile && b.pile.Resize(width) {
		b.logger.Debug("device class changed, pile re-scattered", "class", layout.ClassFor(width))
	}
	b.RequestLayout("resize")
}

// Focus raises a pile card; a no-op in masonry mode.
func (b *Board) Focus(id string) bool {
	if b.mode != ModePile {
		return false
	}
	if !b.pile.Focus(id) {
		return false
	}
	b.refreshPileView()
	return true
}

// Blur restores the pile's resting state; a no-op in masonry mode.
func (b *Board) Blur() {
	if b.mode != ModePile {
		return
	}
	b.pile.Blur()
	b.refreshPileView()
}

// refreshPileView re-reads pile states without re-scattering.
func (b *Board) refreshPileView() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view.Mode != ModePile {
		return
	}
	b.view.States = b.pile.States()
}

// oracle makes the height estimator safe for concurrent updates: image
// probes land through ApplyAspects while layout passes read.
type oracle struct {
	mu  sync.RWMutex
	est layout.Estimator
}

func newOracle(est *layout.Estimator) *oracle {
	o := &oracle{est: *est}
	o.est.AspectOverrides = maps.Clone(o.est.AspectOverrides)
	if o.est.AspectOverrides == nil {
		o.est.AspectOverrides = make(map[string]float64)
	}
	return o
}

// Measure implements layout.Measurer.
func (o *oracle) Measure(c card.Card, width float64) float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.est.Measure(c, width)
}

// apply merges new ratios over the existing overrides. The map is
// replaced wholesale so in-flight reads keep a consistent snapshot.
func (o *oracle) apply(aspects map[string]float64) {
	if len(aspects) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	merged := make(map[string]float64, len(o.est.AspectOverrides)+len(aspects))
	maps.Copy(merged, o.est.AspectOverrides)
	maps.Copy(merged, aspects)
	o.est.AspectOverrides = merged
}

var _ layout.Measurer = (*oracle)(nil)
