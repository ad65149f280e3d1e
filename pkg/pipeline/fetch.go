package pipeline

import (
	"context"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/httputil"
	"github.com/masonworks/cardgrid/pkg/loader"
)

// Fetch walks the page trail: the head page named by opts.URL, then up
// to opts.Pages-1 further pages through the loader. The loader's own
// invariants hold here too; a trail that exhausts early just yields
// fewer cards.
func Fetch(ctx context.Context, opts Options) (Fetched, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return Fetched{}, err
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		httpCache, err := httputil.NewCache(opts.HTTPCacheDir, cache.TTLPage)
		if err != nil {
			return Fetched{}, errors.Wrap(errors.ErrCodeInternal, err, "open response cache")
		}
		fetcher = content.NewPageClient(httpCache)
	}

	store := card.NewStore()
	ld := loader.New(fetcher, store,
		loader.WithRefresh(opts.Refresh),
		loader.WithLogger(opts.Logger),
	)

	doc, err := ld.Load(ctx, opts.URL)
	if err != nil {
		return Fetched{}, err
	}
	if err := ld.LoadPages(ctx, opts.Pages-1); err != nil {
		return Fetched{}, err
	}

	out := Fetched{
		Cards:     store.Cards(),
		Container: doc.Container,
		Cursor:    ld.Cursor(),
	}
	if opts.Category != "" {
		out.Cards = filterByCategory(out.Cards, opts.Category)
	}
	return out, nil
}

// filterByCategory keeps cards whose category slug matches key.
func filterByCategory(cards []card.Card, key string) []card.Card {
	key = content.Slugify(key)
	kept := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if content.Slugify(c.Category) == key {
			kept = append(kept, c)
		}
	}
	return kept
}
