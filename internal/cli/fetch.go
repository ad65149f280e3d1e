package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masonworks/cardgrid/pkg/pipeline"
)

// fetchOpts holds the command-line flags for the fetch command.
type fetchOpts struct {
	pages    int    // how many pages to walk
	category string // restrict to one category key
	output   string // JSON output path (stdout if empty, table if unset)
	asJSON   bool   // emit the fetched document as JSON
	probe    bool   // probe image dimensions
	refresh  bool   // bypass the cache
	noCache  bool   // disable the cache entirely
}

// fetchCommand creates the fetch command: walk a blog's pages through
// the loader and show what came back.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a blog's cards page by page",
		Long: `Fetch walks a blog's index pages the way the infinite-scroll loader
does: follow rel=next links, extract post cards, stop at the trail's
end. Cards print as a table, or as JSON with --json.

Examples:
  cardgrid fetch https://blog.example.com
  cardgrid fetch https://blog.example.com --pages 5 --category poetry
  cardgrid fetch https://blog.example.com --json -o cards.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.pages, "pages", "p", pipeline.DefaultPages, "maximum pages to walk")
	cmd.Flags().StringVar(&opts.category, "category", "", "fetch one category instead of the page trail")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the fetched cards as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to file (implies --json)")
	cmd.Flags().BoolVar(&opts.probe, "probe-images", false, "probe image dimensions for layout heights")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached pages")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, url string, opts fetchOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		URL:         url,
		Pages:       opts.pages,
		Category:    opts.category,
		ProbeImages: opts.probe,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	}

	spin := newSpinner(ctx, fmt.Sprintf("Fetching %s...", url))
	spin.Start()
	fetched, hit, err := runner.FetchWithCacheInfo(ctx, pipeOpts)
	spin.Stop()
	if err != nil {
		return err
	}

	if opts.asJSON || opts.output != "" {
		out, err := openOutput(opts.output)
		if err != nil {
			return err
		}
		defer out.Close()

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fetched); err != nil {
			return err
		}
		if opts.output != "" {
			printFile(opts.output)
		}
		return nil
	}

	printSuccess("Fetched %d cards", len(fetched.Cards))
	printStats(len(fetched.Cards), fetched.Cursor.Page, hit)
	if len(fetched.Cards) > 0 {
		fmt.Println(cardTable(fetched.Cards))
	}
	if fetched.Cursor.HasNext {
		printDetail("more pages available (walked %d of %d)", fetched.Cursor.Page, fetched.Cursor.Pages)
	}
	return nil
}
