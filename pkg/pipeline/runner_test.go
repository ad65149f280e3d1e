package pipeline

import (
	"context"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
)

// fakeFetcher serves canned documents keyed by URL and counts fetches.
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	pages map[string]content.Document
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, pageURL string, refresh bool) (content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	doc, ok := f.pages[pageURL]
	if !ok {
		return content.Document{}, errors.New(errors.ErrCodePageNotFound, "no page at %s", pageURL)
	}
	return doc, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// demoTrail builds a three-page masonry trail with four cards.
func demoTrail() *fakeFetcher {
	return &fakeFetcher{pages: map[string]content.Document{
		"https://blog.test/": {
			Container: content.ContainerMasonry,
			Cards: []card.Card{
				{ID: "p1", Title: "First", Category: "Poetry", ImageURL: "https://blog.test/img/1.jpg"},
				{ID: "p2", Title: "Second", Category: "Art"},
			},
			Page:    1,
			Pages:   3,
			NextURL: "https://blog.test/page/2/",
		},
		"https://blog.test/page/2/": {
			Container: content.ContainerMasonry,
			Cards: []card.Card{
				{ID: "p3", Title: "Third", Category: "Poetry"},
			},
			Page:    2,
			Pages:   3,
			NextURL: "https://blog.test/page/3/",
		},
		"https://blog.test/page/3/": {
			Container: content.ContainerMasonry,
			Cards: []card.Card{
				{ID: "p4", Title: "Fourth", Category: "Essays"},
			},
			Page:  3,
			Pages: 3,
		},
	}}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func trailOptions(fetcher *fakeFetcher) Options {
	return Options{
		URL:     "https://blog.test/",
		Pages:   3,
		Formats: []string{FormatHTML, FormatJSON},
		Fetcher: fetcher,
	}
}

func TestRunnerExecute(t *testing.T) {
	fetcher := demoTrail()
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), trailOptions(fetcher))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Fetched.Cards) != 4 {
		t.Errorf("Should fetch 4 cards, got %d", len(result.Fetched.Cards))
	}
	if result.Stats.CardCount != 4 {
		t.Errorf("CardCount should be 4, got %d", result.Stats.CardCount)
	}
	if result.Stats.PagesRead != 3 {
		t.Errorf("PagesRead should be 3, got %d", result.Stats.PagesRead)
	}
	if result.CardsHash == "" {
		t.Error("CardsHash should be set")
	}

	if result.Scene.Mode != "masonry" {
		t.Errorf("Scene mode should follow the masonry container, got %q", result.Scene.Mode)
	}
	if len(result.Scene.Result.Frames) != 4 {
		t.Errorf("Scene should position 4 frames, got %d", len(result.Scene.Result.Frames))
	}

	for _, format := range []string{FormatHTML, FormatJSON} {
		if len(result.Artifacts[format]) == 0 {
			t.Errorf("Artifact %s should not be empty", format)
		}
	}

	if result.CacheInfo.FetchHit || result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Errorf("First run should miss every cache, got %+v", result.CacheInfo)
	}
	if fetcher.callCount() != 3 {
		t.Errorf("Should fetch 3 pages, got %d", fetcher.callCount())
	}
}

func TestRunnerExecuteCacheHits(t *testing.T) {
	fetcher := demoTrail()
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	first, err := runner.Execute(context.Background(), trailOptions(fetcher))
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	second, err := runner.Execute(context.Background(), trailOptions(fetcher))
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if !second.CacheInfo.FetchHit {
		t.Error("Second run should hit the page cache")
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("Second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("Second run should hit the artifact cache")
	}
	if fetcher.callCount() != 3 {
		t.Errorf("Pages should only be fetched once, got %d calls", fetcher.callCount())
	}

	if !reflect.DeepEqual(first.Artifacts, second.Artifacts) {
		t.Error("Cached artifacts should match the first run")
	}
	if first.CardsHash != second.CardsHash {
		t.Errorf("CardsHash should be stable: %s vs %s", first.CardsHash, second.CardsHash)
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	fetcher := demoTrail()
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	if _, err := runner.Execute(context.Background(), trailOptions(fetcher)); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	opts := trailOptions(fetcher)
	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Refresh run failed: %v", err)
	}

	if result.CacheInfo.FetchHit {
		t.Error("Refresh should bypass the page cache")
	}
	if fetcher.callCount() != 6 {
		t.Errorf("Refresh should refetch all 3 pages, got %d calls", fetcher.callCount())
	}
}

func TestRunnerCategoryFilter(t *testing.T) {
	fetcher := demoTrail()
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	opts := trailOptions(fetcher)
	opts.Category = "poetry"
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Fetched.Cards) != 2 {
		t.Fatalf("Poetry filter should keep 2 cards, got %d", len(result.Fetched.Cards))
	}
	for _, c := range result.Fetched.Cards {
		if c.Category != "Poetry" {
			t.Errorf("Card %s should be Poetry, got %s", c.ID, c.Category)
		}
	}
	if len(result.Scene.Result.Frames) != 2 {
		t.Errorf("Scene should position the filtered cards only, got %d frames", len(result.Scene.Result.Frames))
	}
}

func TestRunnerModeOverride(t *testing.T) {
	fetcher := demoTrail()
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	opts := trailOptions(fetcher)
	opts.Mode = "pile"
	opts.Formats = []string{FormatJSON}
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Scene.Mode != "pile" {
		t.Errorf("Mode override should win over the container, got %q", result.Scene.Mode)
	}
	if len(result.Scene.States) != 4 {
		t.Errorf("Pile scene should scatter 4 cards, got %d states", len(result.Scene.States))
	}
}

func TestRunnerFollowsPileContainer(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]content.Document{
		"https://pile.test/": {
			Container: content.ContainerPile,
			Cards: []card.Card{
				{ID: "a", Title: "Alpha"},
				{ID: "b", Title: "Beta"},
			},
			Page:  1,
			Pages: 1,
		},
	}}
	runner := NewRunner(cache.NewMemoryCache(), nil, discardLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		URL:     "https://pile.test/",
		Pages:   1,
		Formats: []string{FormatJSON},
		Fetcher: fetcher,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Scene.Mode != "pile" {
		t.Errorf("Scene should follow the pile container, got %q", result.Scene.Mode)
	}
	if len(result.Scene.States) != 2 {
		t.Errorf("Pile scene should scatter 2 cards, got %d states", len(result.Scene.States))
	}
}

func TestRunnerStageValidation(t *testing.T) {
	runner := NewRunner(nil, nil, discardLogger())
	defer runner.Close()

	// Missing URL fails the fetch stage
	if _, _, err := runner.FetchWithCacheInfo(context.Background(), Options{}); err == nil {
		t.Error("Missing URL should fail")
	}

	// Invalid mode fails before any fetch
	opts := Options{URL: "https://blog.test/", Mode: "cascade"}
	if _, err := runner.Execute(context.Background(), opts); err == nil {
		t.Error("Invalid mode should fail")
	}

	// Invalid format fails before any fetch
	opts = Options{URL: "https://blog.test/", Formats: []string{"gif"}}
	if _, err := runner.Execute(context.Background(), opts); err == nil {
		t.Error("Invalid format should fail")
	}
}

func TestRunnerNilDefaults(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	if runner.Cache == nil {
		t.Error("Cache should default to a null cache")
	}
	if runner.Keyer == nil {
		t.Error("Keyer should default to the default keyer")
	}
	if runner.Logger == nil {
		t.Error("Logger should default")
	}
}
