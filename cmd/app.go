package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/docmux/internal/builder"
	"github.com/conneroisu/docmux/internal/config"
	"github.com/conneroisu/docmux/internal/errors"
	"github.com/conneroisu/docmux/internal/logging"
	"github.com/conneroisu/docmux/internal/postprocess"
	"github.com/conneroisu/docmux/internal/prompt"
	"github.com/conneroisu/docmux/internal/routes"
	"github.com/conneroisu/docmux/internal/ux"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	logger logging.Logger
	store  *routes.FileStore
	state  *routes.StateFile
	out    *ux.Printer
	errOut *ux.Printer
}

func newLogger(w io.Writer) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: w,
	})
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			configPath = ".docmux.yml"
		}
		ctx := &errors.SuggestionContext{ConfigPath: configPath, Command: cmd.Name()}
		return nil, errors.NewEnhancedError("Failed to load configuration", err,
			errors.ConfigurationError(err.Error(), configPath, ctx))
	}

	return &app{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr()),
		store:  routes.NewFileStore(cfg.RoutesPath()),
		state:  routes.NewStateFile(cfg.StatePath()),
		out:    ux.NewPrinter(cmd.OutOrStdout()),
		errOut: ux.NewPrinter(cmd.ErrOrStderr()),
	}, nil
}

func (a *app) routeSource() routes.Source {
	return routes.Source{
		IndexPath:   a.cfg.IndexPath(),
		Marker:      a.cfg.Home.Marker,
		WorkDir:     a.cfg.WorkDir,
		BuildSubdir: a.cfg.Projects.BuildDir,
	}
}

func (a *app) suggestionContext(command string) *errors.SuggestionContext {
	return &errors.SuggestionContext{
		WorkDir:    a.cfg.WorkDir,
		IndexPath:  a.cfg.IndexPath(),
		Command:    command,
		HomeConfig: a.cfg.Home.ConfigFile,
	}
}

func (a *app) driver(cmd *cobra.Command, confirmer prompt.Confirmer) *builder.Driver {
	return builder.New(builder.Config{
		WorkDir:     a.cfg.WorkDir,
		Markers:     a.cfg.Projects.Markers,
		Commands:    a.cfg.Projects.Commands,
		HTMLEntry:   a.cfg.Projects.HTMLEntry,
		HomeCommand: a.cfg.Home.Command,
		IndexPath:   a.cfg.IndexPath(),
		IndexMarker: a.cfg.Home.Marker,
	},
		builder.WithConfirmer(confirmer),
		builder.WithOutput(cmd.OutOrStdout()),
		builder.WithLogger(a.logger),
	)
}

// Offline reports whether remote fonts should be stripped. The persisted
// flag written by "build --offline" and the configured value both count.
func (a *app) Offline() bool {
	return a.cfg.Offline || a.state.Offline()
}

func (a *app) stripFonts(ctx context.Context) {
	n, err := postprocess.StripRemoteFonts(a.cfg.SitePath())
	if err != nil {
		a.logger.Warn(ctx, err, "Failed to strip remote fonts", "site", a.cfg.SitePath())
		return
	}
	a.logger.Debug(ctx, "Stripped remote fonts", "files", n)
}
