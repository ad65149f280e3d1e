package cli

import (
	"github.com/spf13/cobra"

	"github.com/masonworks/cardgrid/internal/config"
	"github.com/masonworks/cardgrid/internal/server"
)

// serveCommand creates the serve command for the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		demo bool
		site string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview server",
		Long: `Serve runs a local preview server that renders card grids through the
same pipeline the render command uses. Without --site it serves a
built-in demo blog, which is also a self-contained target for testing
the loader.

Examples:
  cardgrid serve
  cardgrid serve --addr :9000
  cardgrid serve --site https://blog.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("demo") {
				cfg.Server.Demo = demo
			}
			if cmd.Flags().Changed("site") {
				cfg.Site.URL = site
				cfg.Server.Demo = false
			}
			if err := config.Validate(&cfg); err != nil {
				return err
			}

			srv, err := server.New(cfg, server.WithLogger(c.Logger))
			if err != nil {
				return err
			}

			if cfg.Server.Demo {
				printInfo("Serving demo blog on http://localhost%s", displayAddr(cfg.Server.Addr))
			} else {
				printInfo("Previewing %s on http://localhost%s", cfg.Site.URL, displayAddr(cfg.Server.Addr))
			}
			printDetail("press ctrl+c to stop")

			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8384)")
	cmd.Flags().BoolVar(&demo, "demo", true, "serve the built-in demo blog")
	cmd.Flags().StringVar(&site, "site", "", "preview this blog instead of the demo")

	return cmd
}

// displayAddr normalizes a listen address for the startup message.
// ":8384" stays as is; "0.0.0.0:8384" becomes ":8384".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return addr
	}
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ":" + addr
}
