package layout

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/card"
)

// Frame is one card's computed geometry for a layout pass.
type Frame struct {
	CardID string
	Column int
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Delay staggers the entrance animation. Only set in natural flow,
	// where cards cascade in insertion order instead of being placed.
	Delay time.Duration
}

// Result is the output of one masonry pass.
type Result struct {
	Frames          []Frame
	ColumnHeights   []float64
	ContainerHeight float64
	Columns         int
	Gap             float64

	// Positioned reports whether frames carry explicit coordinates.
	// Single-column viewports leave cards to natural block flow; the
	// frames still describe the stacked geometry so sinks can draw,
	// but a live renderer must not write inline positions.
	Positioned bool
}

// Engine packs cards into columns, shortest column first.
//
// Layout is idempotent: identical inputs produce identical results, so a
// dropped pass can always be retried by the next triggering event. Passes
// never overlap; a call that arrives while another is running is dropped,
// not queued.
type Engine struct {
	mu       sync.Mutex
	measurer Measurer
	stagger  time.Duration
	maxSteps int
	logger   *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMeasurer sets the height oracle. Defaults to DefaultEstimator.
func WithMeasurer(m Measurer) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithStagger sets the per-card entrance delay step used in natural flow.
func WithStagger(step time.Duration) EngineOption {
	return func(e *Engine) {
		if step >= 0 {
			e.stagger = step
		}
	}
}

// WithLogger sets the logger for dropped and skipped passes.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a masonry engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		measurer: DefaultEstimator(),
		stagger:  60 * time.Millisecond,
		maxSteps: 10,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout computes positions for cards at the given container width and
// breakpoint. The boolean reports whether the pass ran: false means it
// was dropped by the re-entrancy guard or skipped for lack of a usable
// container width. Dropped passes are retried by whatever event fires
// next, so callers must not treat false as an error.
func (e *Engine) Layout(cards []card.Card, containerWidth float64, bp Breakpoint) (Result, bool) {
	if !e.mu.TryLock() {
		e.logger.Debug("layout pass already running, dropping", "cards", len(cards))
		return Result{}, false
	}
	defer e.mu.Unlock()

	if containerWidth <= 0 {
		e.logger.Warn("no usable container width, skipping layout", "width", containerWidth)
		return Result{}, false
	}
	if bp.Columns < 1 {
		bp.Columns = 1
	}

	if bp.Columns == 1 {
		return e.naturalFlow(cards, containerWidth, bp), true
	}
	return e.pack(cards, containerWidth, bp), true
}

// pack runs the greedy shortest-column placement.
func (e *Engine) pack(cards []card.Card, containerWidth float64, bp Breakpoint) Result {
	cols := bp.Columns
	gap := bp.Gap
	cardWidth := (containerWidth - gap*float64(cols-1)) / float64(cols)

	heights := make([]float64, cols)
	frames := make([]Frame, 0, len(cards))

	for _, c := range cards {
		col := shortestColumn(heights)
		h := e.measurer.Measure(c, cardWidth)

		frames = append(frames, Frame{
			CardID: c.ID,
			Column: col,
			X:      float64(col) * (cardWidth + gap),
			Y:      heights[col],
			Width:  cardWidth,
			Height: h,
		})
		heights[col] += h + gap
	}

	return Result{
		Frames:          frames,
		ColumnHeights:   heights,
		ContainerHeight: containerHeight(heights, gap),
		Columns:         cols,
		Gap:             gap,
		Positioned:      true,
	}
}

// naturalFlow stacks cards in insertion order without explicit
// positioning, assigning cascading entrance delays.
func (e *Engine) naturalFlow(cards []card.Card, containerWidth float64, bp Breakpoint) Result {
	gap := bp.Gap
	frames := make([]Frame, 0, len(cards))

	var y float64
	for i, c := range cards {
		h := e.measurer.Measure(c, containerWidth)
		frames = append(frames, Frame{
			CardID: c.ID,
			Column: 0,
			X:      0,
			Y:      y,
			Width:  containerWidth,
			Height: h,
			Delay:  time.Duration(min(i, e.maxSteps)) * e.stagger,
		})
		y += h + gap
	}

	return Result{
		Frames:          frames,
		ColumnHeights:   []float64{y},
		ContainerHeight: containerHeight([]float64{y}, gap),
		Columns:         1,
		Gap:             gap,
		Positioned:      false,
	}
}

// shortestColumn returns the index of the minimum accumulated height,
// lowest index winning ties.
func shortestColumn(heights []float64) int {
	col := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[col] {
			col = i
		}
	}
	return col
}

// containerHeight strips the trailing gap each placement adds, so an
// empty board reports 0 and a full one ends flush with its last card.
func containerHeight(heights []float64, gap float64) float64 {
	var tallest float64
	for _, h := range heights {
		tallest = max(tallest, h)
	}
	if tallest == 0 {
		return 0
	}
	return tallest - gap
}
