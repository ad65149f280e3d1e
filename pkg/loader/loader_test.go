package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/httputil"
)

// fetcherFunc adapts a function to PageFetcher.
type fetcherFunc func(ctx context.Context, pageURL string, refresh bool) (content.Document, error)

func (f fetcherFunc) FetchDocument(ctx context.Context, pageURL string, refresh bool) (content.Document, error) {
	return f(ctx, pageURL, refresh)
}

// trailFetcher serves canned documents by URL and records every request.
type trailFetcher struct {
	mu    sync.Mutex
	docs  map[string]content.Document
	calls []string
}

func (f *trailFetcher) FetchDocument(_ context.Context, pageURL string, _ bool) (content.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pageURL)
	doc, ok := f.docs[pageURL]
	if !ok {
		return content.Document{}, fmt.Errorf("no page at %s", pageURL)
	}
	return doc, nil
}

func (f *trailFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recorder plays both the board and the prober, keeping the event order.
type recorder struct {
	mu      sync.Mutex
	events  []string
	probed  [][]string
	appends []int
}

func (r *recorder) Aspects(_ context.Context, cards []card.Card) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(cards))
	out := make(map[string]float64, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
		out[c.ID] = 1.5
	}
	r.events = append(r.events, "probe")
	r.probed = append(r.probed, ids)
	return out
}

func (r *recorder) ApplyAspects(map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "aspects")
}

func (r *recorder) RequestLayout(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "layout:"+reason)
}

func doc(ids []string, page, pages int, next string) content.Document {
	d := content.Document{Container: content.ContainerMasonry, Page: page, Pages: pages, NextURL: next}
	for _, id := range ids {
		d.Cards = append(d.Cards, card.Card{ID: id, Title: strings.ToUpper(id)})
	}
	return d
}

func TestLoaderWalkTrail(t *testing.T) {
	fetcher := &trailFetcher{docs: map[string]content.Document{
		"https://b.test/":        doc([]string{"a", "b", "c"}, 1, 3, "https://b.test/page/2/"),
		"https://b.test/page/2/": doc([]string{"d", "e"}, 2, 3, "https://b.test/page/3/"),
		"https://b.test/page/3/": doc([]string{"f"}, 3, 3, ""),
	}}
	store := card.NewStore()
	board := &recorder{}
	var appended []int
	l := New(fetcher, store,
		WithLayout(board),
		WithOnAppended(func(added []card.Card) { appended = append(appended, len(added)) }),
	)

	ctx := context.Background()
	head, err := l.Load(ctx, "https://b.test/")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if head.Container != content.ContainerMasonry {
		t.Errorf("head container = %v", head.Container)
	}
	if got := l.State(); got != StateIdle {
		t.Errorf("state after head = %v, want idle", got)
	}
	if c := l.Cursor(); c.Page != 1 || !c.HasNext {
		t.Errorf("cursor after head = %+v", c)
	}

	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore page 2 failed: %v", err)
	}
	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore page 3 failed: %v", err)
	}

	// Append-only ordering: store order is the concatenation of every
	// page's cards in fetch order.
	want := []string{"a", "b", "c", "d", "e", "f"}
	if got := store.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("store order = %v, want %v", got, want)
	}
	if got := l.State(); got != StateExhausted {
		t.Errorf("state after last page = %v, want exhausted", got)
	}
	if c := l.Cursor(); c.Page != 3 || c.HasNext {
		t.Errorf("final cursor = %+v", c)
	}
	if !reflect.DeepEqual(appended, []int{3, 2, 1}) {
		t.Errorf("appended notifications = %v, want [3 2 1]", appended)
	}

	// Exactly one layout pass per successful append.
	var layouts int
	for _, e := range board.events {
		if strings.HasPrefix(e, "layout:") {
			layouts++
		}
	}
	if layouts != 3 {
		t.Errorf("layout passes = %d, want 3", layouts)
	}
}

func TestLoaderSingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	fetcher := fetcherFunc(func(context.Context, string, bool) (content.Document, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return doc([]string{"x"}, 2, 2, ""), nil
	})

	l := New(fetcher, card.NewStore(), WithCursor(Cursor{Page: 1, Pages: 2, HasNext: true, NextURL: "https://b.test/page/2/"}))

	done := make(chan error, 1)
	go func() { done <- l.LoadMore(context.Background()) }()
	<-started

	// Second call while the first is in flight: dropped, no fetch.
	if err := l.LoadMore(context.Background()); err != nil {
		t.Fatalf("concurrent LoadMore errored: %v", err)
	}
	if got := l.State(); got != StateLoading {
		t.Errorf("state during fetch = %v, want loading", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestLoaderExhaustedIsTerminal(t *testing.T) {
	fetcher := &trailFetcher{docs: map[string]content.Document{
		"https://b.test/page/2/": doc([]string{"x"}, 2, 2, ""),
	}}
	l := New(fetcher, card.NewStore(), WithCursor(Cursor{Page: 1, Pages: 2, HasNext: true, NextURL: "https://b.test/page/2/"}))

	ctx := context.Background()
	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	if got := l.State(); got != StateExhausted {
		t.Fatalf("state = %v, want exhausted", got)
	}

	for range 3 {
		if err := l.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore after exhaustion errored: %v", err)
		}
	}
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetch calls = %d, want 1 (exhaustion issues no fetches)", got)
	}
	if got := l.State(); got != StateExhausted {
		t.Errorf("state = %v, want exhausted to stick", got)
	}
}

func TestLoaderNoNextLeavesStateUntouched(t *testing.T) {
	fetcher := &trailFetcher{docs: map[string]content.Document{}}
	l := New(fetcher, card.NewStore(), WithCursor(Cursor{Page: 3, Pages: 3, HasNext: false}))

	if err := l.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore errored: %v", err)
	}
	if got := fetcher.callCount(); got != 0 {
		t.Errorf("fetch calls = %d, want 0", got)
	}
	if got := l.State(); got != StateIdle {
		t.Errorf("state = %v, want idle (untouched)", got)
	}
}

func TestLoaderErrorThenRetry(t *testing.T) {
	var calls int
	fetcher := fetcherFunc(func(_ context.Context, pageURL string, _ bool) (content.Document, error) {
		calls++
		if calls == 1 {
			return content.Document{}, errors.New("connection reset")
		}
		return doc([]string{"d"}, 2, 2, ""), nil
	})

	store := card.NewStore()
	store.Append(card.Card{ID: "a"})
	seed := Cursor{Page: 1, Pages: 2, HasNext: true, NextURL: "https://b.test/page/2/"}
	l := New(fetcher, store, WithCursor(seed))

	ctx := context.Background()
	if err := l.LoadMore(ctx); err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if got := l.State(); got != StateError {
		t.Errorf("state = %v, want error", got)
	}
	if l.Err() == nil {
		t.Error("Err should expose the failure")
	}
	// Failure advances nothing.
	if got := l.Cursor(); got != seed {
		t.Errorf("cursor after failure = %+v, want unchanged %+v", got, seed)
	}
	if store.Len() != 1 {
		t.Errorf("store len = %d, want 1", store.Len())
	}

	// Retry is just another LoadMore from the error state.
	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := l.State(); got != StateExhausted {
		t.Errorf("state after retry = %v, want exhausted", got)
	}
	if l.Err() != nil {
		t.Errorf("Err after success = %v, want nil", l.Err())
	}
	if want := []string{"a", "d"}; !reflect.DeepEqual(store.IDs(), want) {
		t.Errorf("store = %v, want %v", store.IDs(), want)
	}
}

func TestLoaderZeroCardsExhausts(t *testing.T) {
	empty := content.Document{Container: content.ContainerMasonry, Page: 2, Pages: 9, NextURL: "https://b.test/page/3/"}
	fetcher := &trailFetcher{docs: map[string]content.Document{
		"https://b.test/page/2/": empty,
	}}
	l := New(fetcher, card.NewStore(), WithCursor(Cursor{Page: 1, Pages: 9, HasNext: true, NextURL: "https://b.test/page/2/"}))

	if err := l.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	if got := l.State(); got != StateExhausted {
		t.Errorf("state = %v, want exhausted for zero extracted cards", got)
	}
	if l.More() {
		t.Error("More should be false after exhaustion")
	}
}

func TestLoaderProbesNewCardsBeforeLayout(t *testing.T) {
	fetcher := &trailFetcher{docs: map[string]content.Document{
		"https://b.test/":        doc([]string{"a", "b"}, 1, 2, "https://b.test/page/2/"),
		"https://b.test/page/2/": doc([]string{"b", "c"}, 2, 2, ""),
	}}
	store := card.NewStore()
	rec := &recorder{}
	l := New(fetcher, store, WithLayout(rec), WithProber(rec))

	ctx := context.Background()
	if _, err := l.Load(ctx, "https://b.test/"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	want := []string{
		"probe", "aspects", "layout:cards-appended",
		"probe", "aspects", "layout:cards-appended",
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("event order = %v, want %v", rec.events, want)
	}
	// The duplicate "b" on page 2 is not probed again.
	if !reflect.DeepEqual(rec.probed[1], []string{"c"}) {
		t.Errorf("second probe batch = %v, want [c]", rec.probed[1])
	}
}

func TestLoaderCounterFallback(t *testing.T) {
	fetcher := &trailFetcher{docs: map[string]content.Document{
		"https://b.test/page/2/": doc([]string{"x"}, 2, 3, "https://b.test/page/3/"),
	}}
	l := New(fetcher, card.NewStore(),
		WithCursor(Cursor{Page: 1, Pages: 3, HasNext: true}),
		WithBaseURL("https://b.test/"),
	)

	if err := l.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	if want := []string{"https://b.test/page/2/"}; !reflect.DeepEqual(fetcher.calls, want) {
		t.Errorf("requested %v, want %v", fetcher.calls, want)
	}
}

func trailPage(ids []string, page, pages int, next string) string {
	var sb strings.Builder
	sb.WriteString("<html><head>")
	if next != "" {
		fmt.Fprintf(&sb, `<link rel="next" href="%s">`, next)
	}
	sb.WriteString(`</head><body><div class="masonry-grid">`)
	for _, id := range ids {
		fmt.Fprintf(&sb, `<article class="post-card" data-post-id="%s"><h2 class="post-card-title">Post %s</h2></article>`, id, id)
	}
	sb.WriteString(`</div>`)
	fmt.Fprintf(&sb, `<script id="pagination-data" type="application/json">{"page":%d,"pages":%d,"next":%q}</script>`, page, pages, next)
	sb.WriteString("</body></html>")
	return sb.String()
}

// End-to-end against the real page client: the loader consumes the same
// DOM contract the HTML pages carry.
func TestLoaderWithPageClient(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, trailPage([]string{"one", "two"}, 1, 2, "/page/2/"))
	})
	mux.HandleFunc("/page/2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, trailPage([]string{"three"}, 2, 2, ""))
	})

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	store := card.NewStore()
	l := New(content.NewPageClient(cache), store)

	ctx := context.Background()
	head, err := l.Load(ctx, server.URL+"/")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if head.Container != content.ContainerMasonry {
		t.Errorf("container = %v, want masonry-grid", head.Container)
	}
	if err := l.LoadMore(ctx); err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}

	want := []string{"one", "two", "three"}
	if got := store.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("store = %v, want %v", got, want)
	}
	if got := l.State(); got != StateExhausted {
		t.Errorf("state = %v, want exhausted", got)
	}
}
