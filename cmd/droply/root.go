package main

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zamdevio/droply"
	"github.com/zamdevio/droply/pkg/config"
	"github.com/zamdevio/droply/pkg/logging"
)

// App carries the dependencies every command needs. The engine is built in
// the root command's PersistentPreRunE, after the platform flag is known.
type App struct {
	FS       afero.Fs
	Logger   *logging.Logger
	Settings *config.Settings
	Engine   *droply.Engine
}

// NewRootCommand returns the root command with all subcommands attached.
func NewRootCommand(ctx context.Context, app *App) *cobra.Command {
	cobra.EnableCommandSorting = false

	var platform string
	rootCmd := &cobra.Command{
		Use:   "droply",
		Short: "Plugin-based compression and archiving.",
		Long: `Droply compresses, archives, and restores files through pluggable codec
backends. Formats compose freely: a tar archive wrapped in brotli, a zip
with internally deflated entries, or a plain gzip stream are all one
command away, and every operation produces a structured metadata record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if platform != "" {
				app.Settings.Platform = platform
			}
			engine, err := droply.NewEngine(app.FS, app.Logger, app.Settings)
			if err != nil {
				return err
			}
			app.Engine = engine
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "",
		"plugin platform to resolve backends for (native, nodejs, bundler, web)")

	rootCmd.AddCommand(NewCompressCommand(ctx, app))
	rootCmd.AddCommand(NewDecompressCommand(ctx, app))
	rootCmd.AddCommand(NewArchiveCommand(ctx, app))
	rootCmd.AddCommand(NewExtractCommand(ctx, app))

	return rootCmd
}
