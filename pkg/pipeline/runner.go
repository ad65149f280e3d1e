package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use this to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	fetched, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Fetched = fetched
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.CardCount = len(fetched.Cards)
	result.Stats.PagesRead = fetched.Cursor.Page
	result.CacheInfo.FetchHit = fetchHit

	// Compute cards hash for cache keys and API responses
	if cardsData, err := json.Marshal(fetched.Cards); err == nil {
		result.CardsHash = cache.Hash(cardsData)
	}

	r.Logger.Info("fetched cards",
		"cards", len(fetched.Cards),
		"pages", fetched.Cursor.Page,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	scene, layoutHit, err := r.ComputeSceneWithCacheInfo(ctx, fetched, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = scene
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed scene",
		"mode", scene.Mode,
		"cards", len(scene.Cards),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, scene, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo loads the card trail with caching and returns cache hit info.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (Fetched, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return Fetched{}, false, err
	}

	cacheKey := r.Keyer.PageKey(opts.URL, opts.Pages, cache.PageKeyOpts{
		Category: opts.Category,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Fetched
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil // Cache hit
			}
		}
	}

	// Fetch
	fetched, err := Fetch(ctx, opts)
	if err != nil {
		return Fetched{}, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := json.Marshal(fetched); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLPage)
		}
	}

	return fetched, false, nil // Cache miss
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (Fetched, error) {
	fetched, _, err := r.FetchWithCacheInfo(ctx, opts)
	return fetched, err
}

// ComputeSceneWithCacheInfo computes a scene with caching and returns cache hit info.
func (r *Runner) ComputeSceneWithCacheInfo(ctx context.Context, fetched Fetched, opts Options) (render.Scene, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return render.Scene{}, false, err
	}

	// Compute cache key
	cardsData, _ := json.Marshal(fetched.Cards)
	cardsHash := cache.Hash(cardsData)
	cacheKey := r.Keyer.LayoutKey(cardsHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := render.DecodeScene(data)
		if err == nil {
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	// Compute scene
	scene, err := ComputeScene(ctx, fetched, opts)
	if err != nil {
		return render.Scene{}, false, err
	}

	// Cache the result
	if data, err := render.RenderJSON(scene); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return scene, false, nil // Cache miss
}

// ComputeScene is a convenience wrapper that calls ComputeSceneWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeScene(ctx context.Context, fetched Fetched, opts Options) (render.Scene, error) {
	scene, _, err := r.ComputeSceneWithCacheInfo(ctx, fetched, opts)
	return scene, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, scene render.Scene, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from scene data
	sceneData, err := render.RenderJSON(scene)
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(sceneData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := RenderScene(scene, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, scene render.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, scene, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
// Runs before stage validation so the runner's logger wins over the
// validators' discard default.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
