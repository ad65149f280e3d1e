// Package pkg provides the core libraries for the cardgrid engine.
//
// # Overview
//
// Cardgrid turns a blog's post listing into a laid-out card grid. It
// fetches pages, parses them into cards, arranges the cards with a
// masonry or pile layout, and renders the result. The pkg directory is
// organized into four main areas:
//
//  1. [content], [loader], [card] - Content acquisition (fetch, parse, walk the trail)
//  2. [grid], [filter], [layout] - The live board (category selection, layout engines)
//  3. [render], [pipeline] - Static output (scene sinks, cached end-to-end runs)
//  4. [cache], [session], [httputil] - Infrastructure (backends, recents, HTTP plumbing)
//
// # Architecture
//
// The typical data flow through cardgrid:
//
//	Blog page / Content API
//	         ↓
//	    [content] package (fetch + parse post cards)
//	         ↓
//	    [loader] package (walk the pagination trail into the store)
//	         ↓
//	    [grid] package (board state, layout requests)
//	         ↓
//	    [layout] package (masonry columns, seeded pile scatter)
//	         ↓
//	    HTML/SVG/PNG/JSON output
//
// # Quick Start
//
// Fetch a blog and render its card grid:
//
//	import (
//	    "context"
//	    "github.com/masonworks/cardgrid/pkg/cache"
//	    "github.com/masonworks/cardgrid/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	defer runner.Close()
//
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    URL:     "https://blog.example.com",
//	    Pages:   3,
//	    Formats: []string{"html", "svg"},
//	})
//	page := result.Artifacts["html"]
//
// # Main Packages
//
// ## Content Acquisition
//
// [card] - The card model and the append-only Store. Cards are post
// summaries (title, URL, image, category, author, date); the store
// deduplicates by ID and hands out immutable snapshots.
//
// [content] - Fetching and parsing. PageClient scrapes a listing page
// into a Document (cards, container kind, pagination cursor); APIClient
// reads the host CMS's content API for category batches. Both share a
// cached, retrying HTTP client.
//
// [loader] - The incremental page walker. Load fetches the first page,
// LoadMore follows the trail one page at a time, and the cursor state
// (walking, idle, exhausted) gates repeated requests.
//
// ## The Live Board
//
// [grid] - The Board orchestrates store, layout engines, and hooks. It
// coalesces layout requests, debounces resizes, and exposes the current
// View (frames for masonry, scatter states for piles).
//
// [filter] - Category selection over the board's cards. Select swaps
// the visible set to one category batch, discarding stale responses
// when selections race; the "all" key restores the full snapshot.
//
// [layout] - The geometry engines. The masonry Engine packs cards into
// breakpoint-resolved columns shortest-column-first; Pile scatters them
// with a seeded, device-class-aware distribution. Both are pure and
// deterministic for a given input.
//
// ## Static Output
//
// [render] - Scene sinks. RenderHTML emits the themed grid page,
// RenderSVG a standalone vector preview, RenderPNG a raster geometry
// preview, RenderJSON the scene as data.
//
// [pipeline] - The fetch → layout → render pipeline used by the CLI and
// the preview server. Runner caches each stage by content hash, so
// repeated runs skip the stages whose inputs did not change.
//
// ## Infrastructure
//
// [cache] - The Cache interface with memory, file, Redis, and null
// backends, plus the TTL policy per artifact class.
//
// [session] - Recently browsed trails for the TUI, persisted as JSON
// under the user config directory.
//
// [httputil] - The response cache and retrying client underneath
// [content]. Namespaced keys keep page and API responses apart.
//
// [errors] - Coded errors shared by every package. Codes map to user
// messages in the CLI and to HTTP statuses in the preview server.
//
// [buildinfo] - Version and build metadata for the CLI's --version.
//
// # Common Workflows
//
// Walk a trail incrementally:
//
//	client := content.NewPageClient(responseCache)
//	store := card.NewStore()
//	ld := loader.New(client, store, loader.WithBaseURL("https://blog.example.com"))
//	doc, _ := ld.Load(ctx, "https://blog.example.com/")
//	_ = ld.LoadMore(ctx)
//
// Drive the live board:
//
//	board := grid.New(store, grid.WithWidth(1200), grid.WithSeed(42))
//	board.RequestLayout("initial")
//	view := board.View()
//
// Filter by category:
//
//	flt := filter.New(apiClient, store, board)
//	_ = flt.Select(ctx, "poetry")
//
// Render a scene directly:
//
//	scene, _ := pipeline.ComputeScene(ctx, fetched, opts)
//	svg := render.RenderSVG(scene, render.WithSVGLabels())
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Specific package
//	go test -run Example        # Examples only
//
// [card]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/card
// [content]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/content
// [loader]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/loader
// [grid]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/grid
// [filter]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/filter
// [layout]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/layout
// [render]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/cache
// [session]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/session
// [httputil]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/masonworks/cardgrid/pkg/buildinfo
package pkg
