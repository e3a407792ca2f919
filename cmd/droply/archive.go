package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zamdevio/droply"
)

// NewArchiveCommand creates the 'archive' command. Archiving is compression
// with an explicit archive format; the planner applies the same rules.
func NewArchiveCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		opts  droply.Options
		level int
	)
	cmd := &cobra.Command{
		Use:     "archive <files...>",
		Example: "$ droply archive src/ --format tar --compression gzip",
		Short:   "Bundle files into an archive",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("level") {
				opts.Level = &level
			}
			return runCompress(ctx, app, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Archive, "format", "f", "zip", "archive format (zip, tar)")
	cmd.Flags().StringVarP(&opts.Algorithm, "compression", "c", "",
		"outer compression wrapped around the archive")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "compression level")
	cmd.Flags().BoolVar(&opts.CompressInside, "compress-inside", false,
		"deflate zip entries instead of storing them")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output base name")
	cmd.Flags().BoolVar(&opts.NoMeta, "no-meta", false, "never embed metadata into the archive")
	return cmd
}
