// Package pipeline runs the fetch → layout → render pipeline for one
// site, with per-stage caching.
//
// The CLI and the preview server both build on the same Runner so a
// walked page trail, a computed layout, and a rendered artifact are
// each fetched or computed once and reused across entry points.
//
// # Stages
//
//  1. Fetch: walk the site's page trail through the incremental loader
//     and collect the cards it appends.
//  2. Layout: run one board pass over the collected cards, producing a
//     renderable scene.
//  3. Render: write the scene in the requested formats.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    URL:     "https://blog.example.com/",
//	    Pages:   3,
//	    Formats: []string{"html", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
//
// Stages can also run independently:
//
//	fetched, err := runner.Fetch(ctx, opts)
//	scene, err := runner.ComputeScene(ctx, fetched, opts)
//	artifacts, err := runner.Render(ctx, scene, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/masonworks/cardgrid/pkg/cache"
	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/loader"
	"github.com/masonworks/cardgrid/pkg/render"
)

const (
	// DefaultPages is how many pages of the trail Execute walks. One
	// head page plus two LoadMore rounds covers a typical index while
	// keeping unattended runs bounded.
	DefaultPages = 3

	// DefaultWidth is the default viewport width in CSS pixels.
	DefaultWidth = 1200.0

	// DefaultSeed is the default scatter seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Options contains all configuration for one pipeline run.
// The struct is JSON-serializable for request payloads; runtime-only
// fields are excluded.
type Options struct {
	// Fetch options
	URL      string `json:"url"`
	Pages    int    `json:"pages,omitempty"`
	Category string `json:"category,omitempty"` // keep only cards whose category slug matches
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options
	Mode        string  `json:"mode,omitempty"` // "masonry", "pile", or "" to follow the page container
	Width       float64 `json:"width,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	ProbeImages bool    `json:"probe_images,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Labels  bool     `json:"labels,omitempty"` // draw card titles in SVG output
	Scale   float64  `json:"scale,omitempty"`  // PNG raster scale, 0 for default

	// Runtime options (not serialized)
	Logger       *log.Logger        `json:"-"`
	Fetcher      loader.PageFetcher `json:"-"` // overrides the built-in page client
	Prober       loader.ImageProber `json:"-"` // overrides the built-in image prober
	HTTPCacheDir string             `json:"-"` // response cache dir for the built-in page client

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Fetched is the output of the fetch stage: the collected cards plus
// the trail position they came from.
type Fetched struct {
	Cards     []card.Card           `json:"cards"`
	Container content.ContainerKind `json:"container"`
	Cursor    loader.Cursor         `json:"cursor"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Fetched is the collected card set and trail position.
	Fetched Fetched

	// CardsHash is the content hash of the fetched cards, used as the
	// layout cache key component.
	CardsHash string

	// Scene is the laid-out render input.
	Scene render.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CardCount  int
	PagesRead  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the card set came from cache
	LayoutHit bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: html, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a layout mode is valid. The empty mode is
// allowed and means "follow the page's container".
func ValidateMode(mode string) error {
	if mode != "" && mode != "masonry" && mode != "pile" {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid mode: %q (must be masonry or pile)", mode)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults
// for the full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for the fetch stage.
func (o *Options) ValidateForFetch() error {
	if o.URL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "url is required")
	}
	if o.Pages <= 0 {
		o.Pages = DefaultPages
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for the layout stage.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for the layout stage.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateMode(o.Mode)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:  o.Mode,
		Width: int(o.Width),
		Seed:  o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Labels: o.Labels,
		Scale:  o.Scale,
	}
}
