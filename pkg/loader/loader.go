// Package loader walks a blog's page trail and feeds the card store,
// the way the in-page infinite scroll does.
//
// A Loader owns the pagination cursor and a small state machine around
// it. Loads never overlap: a LoadMore that arrives while one is running
// is dropped, so appends happen in request order and at most one fetch
// is in flight. Exhaustion is terminal; errors are not, the next
// LoadMore retries.
package loader

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
)

// State is the loader's lifecycle position.
type State int

const (
	// StateIdle means the loader is ready for the next page.
	StateIdle State = iota
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateError means the last fetch failed; LoadMore retries.
	StateError
	// StateExhausted means the trail ended. Terminal.
	StateExhausted
)

// String returns the state's lowercase name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Cursor tracks the loader's position in the page trail. It moves only
// after a successful fetch and never backwards.
type Cursor struct {
	Page    int
	Pages   int
	HasNext bool
	NextURL string
}

// CursorFrom seeds a cursor from a fetched document.
func CursorFrom(doc content.Document) Cursor {
	return Cursor{
		Page:    doc.Page,
		Pages:   doc.Pages,
		HasNext: doc.HasNext(),
		NextURL: doc.NextURL,
	}
}

// PageFetcher fetches and parses one server-rendered page.
// *content.PageClient satisfies it.
type PageFetcher interface {
	FetchDocument(ctx context.Context, pageURL string, refresh bool) (content.Document, error)
}

// Layouter is the board surface the loader drives after an append. The
// loader holds the instance it was constructed with; there is no shared
// ambient engine.
type Layouter interface {
	ApplyAspects(aspects map[string]float64)
	RequestLayout(reason string)
}

// ImageProber reports intrinsic aspect ratios for newly appended cards,
// so layout never runs with unknown image heights. *content.Prober
// satisfies it.
type ImageProber interface {
	Aspects(ctx context.Context, cards []card.Card) map[string]float64
}

// Loader appends pages of cards to a store, one fetch at a time.
type Loader struct {
	mu      sync.Mutex
	state   State
	cursor  Cursor
	lastErr error

	fetch      PageFetcher
	store      *card.Store
	layout     Layouter
	prober     ImageProber
	onAppended func(added []card.Card)
	baseURL    string
	refresh    bool
	logger     *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCursor seeds the pagination cursor, typically from the document
// the caller bootstrapped the store with.
func WithCursor(c Cursor) Option {
	return func(l *Loader) { l.cursor = c }
}

// WithLayout wires the board the loader triggers after appends.
func WithLayout(lay Layouter) Option {
	return func(l *Loader) { l.layout = lay }
}

// WithProber wires the image prober run over newly appended cards.
func WithProber(p ImageProber) Option {
	return func(l *Loader) { l.prober = p }
}

// WithOnAppended registers the cards-appended notification, invoked once
// per successful append with just the cards that were new.
func WithOnAppended(fn func(added []card.Card)) Option {
	return func(l *Loader) { l.onAppended = fn }
}

// WithBaseURL enables the page-counter fallback for trails whose
// documents carry counters but no next link. The rel=next link stays
// authoritative when present.
func WithBaseURL(base string) Option {
	return func(l *Loader) { l.baseURL = strings.TrimRight(base, "/") }
}

// WithRefresh bypasses the page cache on every fetch.
func WithRefresh(refresh bool) Option {
	return func(l *Loader) { l.refresh = refresh }
}

// WithLogger sets the loader's logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader feeding the given store.
func New(fetch PageFetcher, store *card.Store, opts ...Option) *Loader {
	l := &Loader{
		fetch:  fetch,
		store:  store,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the loader's current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cursor returns a copy of the pagination cursor.
func (l *Loader) Cursor() Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// Err returns the error from the most recent failed fetch, or nil.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// More reports whether another page can be requested.
func (l *Loader) More() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state != StateExhausted && l.cursor.HasNext
}

// Load fetches the trail head: cards append to the store, the cursor
// seeds from the document, and the same probe/layout path runs as for
// any later page. The document is returned so callers can read which
// container the page declared.
func (l *Loader) Load(ctx context.Context, pageURL string) (content.Document, error) {
	l.mu.Lock()
	if l.state == StateLoading {
		l.mu.Unlock()
		return content.Document{}, nil
	}
	l.state = StateLoading
	l.mu.Unlock()

	doc, err := l.fetch.FetchDocument(ctx, pageURL, l.refresh)
	if err != nil {
		l.fail(err)
		return content.Document{}, fmt.Errorf("load %s: %w", pageURL, err)
	}
	l.apply(ctx, doc)
	return doc, nil
}

// LoadMore fetches the next page and appends its cards. It is a no-op
// while a fetch is in flight, after exhaustion, or when the cursor
// reports no next page; in the last case state is left untouched.
func (l *Loader) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StateLoading || l.state == StateExhausted {
		l.logger.Debug("load skipped", "state", l.state)
		l.mu.Unlock()
		return nil
	}
	next := l.nextURL()
	if next == "" {
		l.mu.Unlock()
		return nil
	}
	l.state = StateLoading
	l.mu.Unlock()

	l.logger.Debug("loading next page", "url", next)
	doc, err := l.fetch.FetchDocument(ctx, next, l.refresh)
	if err != nil {
		l.fail(err)
		return fmt.Errorf("load %s: %w", next, err)
	}
	l.apply(ctx, doc)
	return nil
}

// LoadPages walks up to n further pages, stopping early at exhaustion.
func (l *Loader) LoadPages(ctx context.Context, n int) error {
	for range n {
		if !l.More() {
			return nil
		}
		if err := l.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

// nextURL resolves the next page, preferring the authoritative rel=next
// link over a counter-derived address. Callers hold l.mu.
func (l *Loader) nextURL() string {
	if !l.cursor.HasNext {
		return ""
	}
	if l.cursor.NextURL != "" {
		return l.cursor.NextURL
	}
	if l.baseURL != "" && l.cursor.Page > 0 && l.cursor.Page < l.cursor.Pages {
		return fmt.Sprintf("%s/page/%d/", l.baseURL, l.cursor.Page+1)
	}
	return ""
}

func (l *Loader) fail(err error) {
	l.mu.Lock()
	l.state = StateError
	l.lastErr = err
	l.mu.Unlock()
	l.logger.Warn("page fetch failed", "error", err)
}

// apply folds a successfully fetched document into the store and cursor,
// then runs the append side effects: one probe pass over the new cards,
// one cards-appended notification, one layout pass.
func (l *Loader) apply(ctx context.Context, doc content.Document) {
	if len(doc.Cards) == 0 {
		l.mu.Lock()
		l.state = StateExhausted
		l.cursor.HasNext = false
		l.cursor.NextURL = ""
		l.lastErr = nil
		l.mu.Unlock()
		l.logger.Info("trail exhausted, no cards in page")
		return
	}

	added := l.store.Append(doc.Cards...)

	if len(added) > 0 && l.prober != nil {
		if aspects := l.prober.Aspects(ctx, added); len(aspects) > 0 && l.layout != nil {
			l.layout.ApplyAspects(aspects)
		}
	}

	l.mu.Lock()
	next := CursorFrom(doc)
	if next.Page <= l.cursor.Page {
		next.Page = l.cursor.Page + 1
	}
	if next.Pages == 0 {
		next.Pages = l.cursor.Pages
	}
	l.cursor = next
	l.lastErr = nil
	if next.HasNext {
		l.state = StateIdle
	} else {
		l.state = StateExhausted
	}
	state := l.state
	l.mu.Unlock()

	if len(added) > 0 {
		if l.onAppended != nil {
			l.onAppended(added)
		}
		if l.layout != nil {
			l.layout.RequestLayout("cards-appended")
		}
	}
	l.logger.Info("appended cards",
		"added", len(added),
		"duplicates", len(doc.Cards)-len(added),
		"page", next.Page,
		"state", state)
}
