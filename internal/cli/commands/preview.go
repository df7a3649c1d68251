package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/executor"
	"github.com/peterhq/peter/internal/server"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	Addr    string
	Watch   bool
	Execute bool
	NoAuth  bool
	Token   string
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand() *cobra.Command {
	opts := &PreviewOptions{}
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Serve a live dashboard preview",
		Long: `Start the local preview server. Given a file, the server compiles
that document and, with --watch, reloads open pages whenever it changes.
Without a file, dashboards are previewed from the revision store by
slug (http://.../?slug=my-dashboard).`,
		Example: `  # Preview a document with live reload
  peter preview --watch dashboards/revenue.yaml

  # Execute queries against a local DuckDB while previewing
  peter preview --watch --execute dashboards/revenue.yaml

  # Serve the revision store
  peter preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runPreview(cmd, file, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload previews when the document changes")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "Execute queries against a local DuckDB database")
	cmd.Flags().BoolVar(&opts.NoAuth, "no-auth", false, "Disable API authentication")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Shared token for API login")

	return cmd
}

func runPreview(cmd *cobra.Command, file string, opts *PreviewOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("cannot access %s: %w", file, err)
		}
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Addr
	}

	srvCfg := server.Config{
		Addr:          addr,
		File:          file,
		Watch:         opts.Watch,
		NoAuth:        opts.NoAuth || cfg.NoAuth,
		Token:         opts.Token,
		SessionSecret: cfg.SessionSecret,
		Logger:        cmdCtx.Logger,
	}
	if !srvCfg.NoAuth && srvCfg.Token == "" {
		// Local authoring default: no token means no way to log in, so
		// run open rather than locked out.
		srvCfg.NoAuth = true
	}

	s, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()
	srvCfg.Store = s

	if opts.Execute {
		runner, err := executor.OpenDuckDB(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer runner.Close()
		srvCfg.Runner = runner

		c, ttl, err := cmdCtx.OpenCache()
		if err != nil {
			return err
		}
		defer c.Close()
		srvCfg.Cache = c
		srvCfg.TTL = ttl
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(srvCfg).Serve(ctx)
}
