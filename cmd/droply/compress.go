package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zamdevio/droply"
)

func runCompress(ctx context.Context, app *App, args []string, opts droply.Options) error {
	files, isDir, err := collectInputs(app.FS, args)
	if err != nil {
		return err
	}

	result, err := app.Engine.Compress(ctx, files, droply.ShapeOf(files, isDir), opts)
	if err != nil {
		return err
	}
	for _, w := range result.AllWarnings() {
		app.Logger.Warn(w)
	}
	if !result.Validation.Valid {
		return &usageError{strings.Join(result.Validation.Errors, "; ")}
	}

	if err := writeOutputs(app.FS, ".", result.Files); err != nil {
		return err
	}
	for _, f := range result.Files {
		fmt.Println(f.Name)
	}

	if opts.Meta {
		return printMeta(result.Meta, opts.MetaFormat)
	}
	return nil
}

// NewCompressCommand creates the 'compress' command.
func NewCompressCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		opts  droply.Options
		level int
	)
	cmd := &cobra.Command{
		Use:     "compress <files...>",
		Aliases: []string{"c"},
		Example: "$ droply compress report.txt --algo brotli --level 9",
		Short:   "Compress files, optionally bundling them into an archive",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("level") {
				opts.Level = &level
			}
			return runCompress(ctx, app, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Algorithm, "algo", "a", "",
		"compression algorithm (gzip, brotli, zstd, lz4, snappy, none)")
	cmd.Flags().IntVarP(&level, "level", "l", 0, "compression level")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "archive format (zip, tar, none)")
	cmd.Flags().BoolVar(&opts.CompressInside, "compress-inside", false,
		"deflate zip entries instead of storing them")
	cmd.Flags().StringVar(&opts.Mode, "mode", "",
		"multi-input handling without an archive (each, bundle, error)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output base name")
	cmd.Flags().BoolVar(&opts.Meta, "meta", false, "print the operation metadata report")
	cmd.Flags().StringVar(&opts.MetaFormat, "meta-format", "text", "metadata report format (text, json)")
	cmd.Flags().StringVar(&opts.MetaDir, "meta-path", "", "in-archive metadata directory")
	cmd.Flags().StringVar(&opts.MetaName, "meta-name", "", "in-archive metadata filename")
	cmd.Flags().BoolVar(&opts.NoMeta, "no-meta", false, "never embed metadata into the archive")
	cmd.Flags().BoolVar(&opts.AllowUserMeta, "allow-user-meta", false,
		"permit inputs that collide with the reserved metadata path")
	return cmd
}
