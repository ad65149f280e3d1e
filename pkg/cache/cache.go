// Package cache provides caching abstractions for the card pipeline.
//
// The Cache interface supports pluggable backends (file, memory, Redis)
// while the Keyer interface generates deterministic cache keys for each
// pipeline stage: fetched page documents, filtered card sets, computed
// layouts, and rendered artifacts.
package cache

import (
	"context"
	"time"
)

// Standard TTLs for different content types.
const (
	// TTLPage is the lifetime of fetched page documents. Blog indexes
	// change when posts publish, so this stays short.
	TTLPage = 15 * time.Minute

	// TTLCategory is the lifetime of filtered card sets.
	TTLCategory = time.Hour

	// TTLLayout is the lifetime of computed layouts. Layouts are pure
	// functions of cards and viewport, so they can live longer.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is the lifetime of rendered artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. Returns (data, true, nil) on hit,
	// (nil, false, nil) on miss, and (nil, false, err) on backend failure.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PageKeyOpts captures the parameters that affect a fetched page document.
type PageKeyOpts struct {
	Category string // Category filter applied, empty for unfiltered
	PerPage  int    // Cards per page requested
}

// LayoutKeyOpts captures the parameters that affect a computed layout.
type LayoutKeyOpts struct {
	Mode    string // Layout mode: "masonry" or "pile"
	Width   int    // Viewport width in CSS pixels
	Columns int    // Column count override, 0 for breakpoint default
	Gap     int    // Gap override, 0 for breakpoint default
	Seed    uint64 // Scatter seed, only meaningful for pile mode
}

// ArtifactKeyOpts captures the parameters that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  // Output format: "html", "svg", "png", "json"
	Theme  string  // Color theme name
	Labels bool    // SVG title labels
	Scale  float64 // PNG raster scale, 0 for the sink default
}

// Keyer generates cache keys for each pipeline stage.
// Implementations must produce deterministic keys: identical inputs
// yield identical keys across processes.
type Keyer interface {
	// HTTPKey generates a key for raw HTTP response caching.
	HTTPKey(namespace, key string) string

	// PageKey generates a key for a fetched page of cards.
	PageKey(site string, page int, opts PageKeyOpts) string

	// CategoryKey generates a key for a filtered card set.
	CategoryKey(site, category string) string

	// LayoutKey generates a key for a computed layout.
	LayoutKey(cardsHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates hierarchical cache keys with hashed options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// Format: http:namespace:key
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// PageKey generates a key for a fetched page of cards.
func (k *DefaultKeyer) PageKey(site string, page int, opts PageKeyOpts) string {
	return hashKey("page", site, page, opts)
}

// CategoryKey generates a key for a filtered card set.
func (k *DefaultKeyer) CategoryKey(site, category string) string {
	return hashKey("category", site, category)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(cardsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", cardsHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
