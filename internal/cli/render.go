package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// These options control fetching depth, layout geometry, and output formats.
type renderOpts struct {
	output   string  // output file (single format) or base path (multiple)
	pages    int     // how many pages to walk
	category string  // restrict to one category key
	mode     string  // layout mode: "masonry", "pile", or "" to follow the page
	width    float64 // viewport width in CSS pixels
	seed     uint64  // scatter seed for reproducible pile layouts
	title    string  // page title for HTML output
	labels   bool    // draw card titles in SVG output
	scale    float64 // PNG raster scale
	probe    bool    // probe image dimensions
	refresh  bool    // bypass cached pages
	noCache  bool    // disable the cache entirely
}

// renderCommand creates the render command: run the full
// fetch, layout, render pipeline and write the artifacts to disk.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render a blog's card grid to HTML, SVG, PNG, or JSON",
		Long: `Render fetches a blog's cards, computes the layout, and writes the
result in one or more formats. Output paths derive from the URL unless
-o is given.

Examples:
  cardgrid render https://blog.example.com
  cardgrid render https://blog.example.com -f svg,png -o grid
  cardgrid render https://blog.example.com --mode pile --seed 7 -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), svg, png, json (comma-separated)")
	cmd.Flags().IntVarP(&opts.pages, "pages", "p", pipeline.DefaultPages, "maximum pages to walk")
	cmd.Flags().StringVar(&opts.category, "category", "", "render one category instead of the page trail")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "layout mode: masonry, pile (default follows the page)")
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Uint64Var(&opts.seed, "seed", pipeline.DefaultSeed, "scatter seed for pile layouts")
	cmd.Flags().StringVar(&opts.title, "title", "", "page title for HTML output")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw card titles in SVG output")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG raster scale (default 2)")
	cmd.Flags().BoolVar(&opts.probe, "probe-images", false, "probe image dimensions for layout heights")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached pages")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, pageURL string, formats []string, opts renderOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	// Config supplies layout defaults; explicit flags win.
	if !cmd.Flags().Changed("width") && cfg.Layout.Width > 0 {
		opts.width = cfg.Layout.Width
	}
	if !cmd.Flags().Changed("mode") && cfg.Layout.Mode != "" {
		opts.mode = cfg.Layout.Mode
	}
	if !cmd.Flags().Changed("seed") && cfg.Layout.Seed > 0 {
		opts.seed = cfg.Layout.Seed
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		URL:         pageURL,
		Pages:       opts.pages,
		Category:    opts.category,
		Refresh:     opts.refresh,
		Mode:        opts.mode,
		Width:       opts.width,
		Seed:        opts.seed,
		ProbeImages: opts.probe,
		Formats:     formats,
		Title:       opts.title,
		Labels:      opts.labels,
		Scale:       opts.scale,
		Logger:      c.Logger,
	}

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", pageURL))
	spin.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	spin.Stop()
	if err != nil {
		return err
	}

	if err := writeArtifacts(result.Artifacts, formats, opts.output, pageURL); err != nil {
		return err
	}

	cached := result.CacheInfo.FetchHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printStats(result.Stats.CardCount, result.Stats.PagesRead, cached)
	printDetail("fetch %s, layout %s, render %s",
		result.Stats.FetchTime.Round(time.Millisecond),
		result.Stats.LayoutTime.Round(time.Millisecond),
		result.Stats.RenderTime.Round(time.Millisecond))
	return nil
}

// writeArtifacts writes each rendered format to disk. A single format
// with an explicit output path goes exactly there; otherwise paths are
// derived as base.format.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, pageURL string) error {
	if len(formats) == 1 && output != "" {
		return writeArtifact(output, artifacts[formats[0]])
	}

	base := outputBase(output, pageURL)
	for _, format := range formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := writeArtifact(path, artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

// writeArtifact writes one artifact and reports the path.
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// outputBase derives the base output path. An explicit output path is
// stripped of a known format extension; otherwise the base comes from
// the page URL, slugified ("https://blog.example.com" becomes
// "blog-example-com").
func outputBase(output, pageURL string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "cards"
	}
	base := content.Slugify(u.Host + strings.TrimSuffix(u.Path, "/"))
	if base == "" {
		return "cards"
	}
	return base
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It makes os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
