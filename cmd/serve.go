package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/routes"
	"github.com/conneroisu/docmux/internal/server"
	"github.com/conneroisu/docmux/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the home site and every listed project, rebuilding on change",
	Long: `Serve the home site and the build output of every project listed in the
index document behind one HTTP endpoint. Project sources (.rst) and home
pages (.md) under the working directory are watched; a change rebuilds the
affected project or the home site.

Examples:
  docmux serve                     # Serve on 0.0.0.0:8443
  docmux serve --port 9000         # Serve on a custom port
  docmux serve --host 127.0.0.1    # Only accept local connections`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd, map[string]string{
		"port":            "server.port",
		"host":            "server.host",
		"max-connections": "server.max_connections",
	}); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return errors.SuggestPath(a.suggestionContext("serve"), func() error {
		return a.serve(ctx, cmd, prompt.Default())
	})
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, confirmer prompt.Confirmer) error {
	source := a.routeSource()
	table, err := routes.Refresh(ctx, a.store, source)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "Routes refreshed", "routes", len(table))

	handler := server.Chain(
		server.NewHandler(&server.Translator{
			Store:       a.store,
			DefaultRoot: a.cfg.SitePath(),
			Logger:      a.logger,
		}),
		server.LoggingMiddleware(a.logger),
		server.SecurityHeaders(),
	)

	srv := server.New(handler, server.Options{
		Host:           a.cfg.Server.Host,
		Port:           a.cfg.Server.Port,
		MaxConnections: a.cfg.Server.MaxConnections,
		MaxRetries:     a.cfg.Server.BindRetries,
		RetryInterval:  a.cfg.Server.BindRetryInterval,
		Confirmer:      confirmer,
		Logger:         a.logger,
	})

	ln, err := srv.Listen(ctx)
	if err != nil {
		if stderrors.Is(err, server.ErrStartAborted) && (ctx.Err() != nil || stderrors.Is(err, prompt.ErrAborted)) {
			a.out.Warning("Aborting.")
			return nil
		}
		if stderrors.Is(err, server.ErrStartAborted) {
			return errors.NewEnhancedError(
				fmt.Sprintf("Failed to start server on port %d", srv.Port()),
				err,
				errors.ServerStartError(err, srv.Port(), a.suggestionContext("serve")),
			)
		}
		return err
	}

	fw, err := watcher.NewFileWatcher(a.cfg.WorkDir, watcher.Options{
		Debounce: a.cfg.Watch.Debounce,
		Ignore:   a.cfg.Watch.Ignore,
		Logger:   a.logger,
	})
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Stop() }()

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.ExtensionFilter("md", "rst"))
	if err := fw.AddRecursive(a.cfg.WorkDir); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to watch %s: %w", a.cfg.WorkDir, err)
	}

	dispatcher := &watcher.Dispatcher{
		Root:    a.cfg.WorkDir,
		Store:   a.store,
		Source:  source,
		Driver:  a.driver(cmd, prompt.Static{Answer: true}),
		State:   a,
		SiteDir: a.cfg.SitePath(),
		Logger:  a.logger,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})

	g.Go(func() error {
		fw.AddHandler(dispatcher.Handler(gctx))
		if err := fw.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return fw.Stop()
	})

	a.out.Success("Serving at http://%s:%d", a.cfg.Server.Host, srv.Port())
	a.out.Info("Watching %s for changes. Press Ctrl+C to stop.", a.cfg.WorkDir)

	if err := g.Wait(); err != nil {
		return err
	}

	a.out.Info("Server stopped")
	return nil
}
