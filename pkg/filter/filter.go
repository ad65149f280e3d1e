// Package filter switches the visible card set between categories.
//
// A Filter owns the category cache and the page-load snapshot. Selecting
// "all" restores the snapshot without touching the network; selecting a
// cached category replays the cached batch; anything else fetches one
// capped batch from the content API. Selections are last-write-wins: a
// result (or error) arriving for a category that is no longer active is
// discarded at apply time rather than cancelled in flight.
package filter

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
)

// AllCategory restores the original page-load set.
const AllCategory = "all"

// Notice is the inline message state shown in place of cards.
type Notice int

const (
	// NoticeNone means cards are showing normally.
	NoticeNone Notice = iota
	// NoticeEmpty means the selected category has no posts.
	NoticeEmpty
	// NoticeError means the category fetch failed; existing cards stay.
	NoticeError
)

// Message renders the notice for the given category key, or "" for none.
func (n Notice) Message(key string) string {
	switch n {
	case NoticeEmpty:
		return fmt.Sprintf("No posts found for %q.", key)
	case NoticeError:
		return fmt.Sprintf("Couldn't load posts for %q. Try again.", key)
	default:
		return ""
	}
}

// Source fetches one capped batch of cards for a category key.
// *content.APIClient satisfies it.
type Source interface {
	FetchCategory(ctx context.Context, key string, limit int) ([]card.Card, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, key string, limit int) ([]card.Card, error)

// FetchCategory calls f.
func (f SourceFunc) FetchCategory(ctx context.Context, key string, limit int) ([]card.Card, error) {
	return f(ctx, key, limit)
}

// Layouter is the board surface the filter drives after replacing the
// visible set. The filter holds the instance it was constructed with.
type Layouter interface {
	ApplyAspects(aspects map[string]float64)
	RequestLayout(reason string)
}

// ImageProber reports aspect ratios for freshly fetched category cards.
type ImageProber interface {
	Aspects(ctx context.Context, cards []card.Card) map[string]float64
}

// Filter drives category selection over a card store.
type Filter struct {
	mu       sync.Mutex
	active   string
	notice   Notice
	cache    map[string][]card.Card
	snapshot card.Snapshot

	source Source
	store  *card.Store
	layout Layouter
	prober ImageProber
	limit  int
	logger *log.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithProber wires the image prober run over fresh category batches.
func WithProber(p ImageProber) Option {
	return func(f *Filter) { f.prober = p }
}

// WithBatchLimit overrides the per-category fetch cap.
func WithBatchLimit(limit int) Option {
	return func(f *Filter) {
		if limit > 0 {
			f.limit = limit
		}
	}
}

// WithLogger sets the filter's logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a filter over the given store. The snapshot that "all"
// restores is taken here, so construct the filter once the initial page
// has been loaded into the store.
func New(source Source, store *card.Store, layout Layouter, opts ...Option) *Filter {
	f := &Filter{
		active:   AllCategory,
		cache:    make(map[string][]card.Card),
		snapshot: store.Snapshot(),
		source:   source,
		store:    store,
		layout:   layout,
		limit:    content.DefaultBatchLimit,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Active returns the currently selected category key.
func (f *Filter) Active() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Notice returns the current inline message state.
func (f *Filter) Notice() Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Categories lists the category keys present in the page-load snapshot,
// slugified, in first-appearance order. Tab rows are built from these.
func (f *Filter) Categories() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, c := range f.snapshot.Cards() {
		key := content.Slugify(c.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Select makes key the active category and brings the store in line
// with it. Selecting the active key is a no-op. See the package comment
// for the cache, snapshot, and last-write-wins semantics.
func (f *Filter) Select(ctx context.Context, key string) error {
	if key != AllCategory {
		if err := errors.ValidateCategoryKey(key); err != nil {
			return err
		}
	}

	f.mu.Lock()
	if key == f.active {
		f.mu.Unlock()
		return nil
	}
	f.active = key

	if key == AllCategory {
		f.notice = NoticeNone
		f.store.Restore(f.snapshot)
		f.mu.Unlock()
		f.logger.Debug("category restored to page-load set")
		f.layout.RequestLayout("category-all")
		return nil
	}

	if cached, ok := f.cache[key]; ok {
		f.notice = NoticeNone
		f.store.Replace(cached)
		f.mu.Unlock()
		f.logger.Debug("category served from cache", "category", key)
		f.layout.RequestLayout("category-cached")
		return nil
	}
	f.mu.Unlock()

	cards, err := f.source.FetchCategory(ctx, key, f.limit)

	f.mu.Lock()
	if f.active != key {
		f.mu.Unlock()
		f.logger.Debug("stale category result discarded", "category", key)
		return nil
	}
	if err != nil {
		f.notice = NoticeError
		f.mu.Unlock()
		return fmt.Errorf("fetch category %s: %w", key, err)
	}
	if len(cards) == 0 {
		f.notice = NoticeEmpty
		f.store.Clear()
		f.mu.Unlock()
		f.layout.RequestLayout("category-empty")
		return nil
	}
	f.cache[key] = slices.Clone(cards)
	f.notice = NoticeNone
	f.store.Replace(cards)
	f.mu.Unlock()

	if f.prober != nil {
		if aspects := f.prober.Aspects(ctx, cards); len(aspects) > 0 {
			f.layout.ApplyAspects(aspects)
		}
	}
	f.layout.RequestLayout("category-selected")
	f.logger.Info("category selected", "category", key, "cards", len(cards))
	return nil
}
