package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zamdevio/droply/pkg/plugin"
)

func runDecompress(ctx context.Context, app *App, args []string, outputDir string) error {
	for _, arg := range args {
		data, err := afero.ReadFile(app.FS, arg)
		if err != nil {
			return err
		}
		result, err := app.Engine.Decompress(ctx, plugin.FileTuple{
			Name: filepath.ToSlash(arg),
			Data: data,
		})
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			app.Logger.Warn(w)
		}
		// Decompression drops any directory part of the input path; the
		// result lands in the output directory under the stripped name.
		for i, f := range result.Files {
			result.Files[i].Name = filepath.Base(f.Name)
		}
		if err := writeOutputs(app.FS, outputDir, result.Files); err != nil {
			return err
		}
		for _, f := range result.Files {
			fmt.Println(filepath.Join(outputDir, f.Name))
		}
	}
	return nil
}

// NewDecompressCommand creates the 'decompress' command.
func NewDecompressCommand(ctx context.Context, app *App) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:     "decompress <files...>",
		Aliases: []string{"d"},
		Example: "$ droply decompress report.txt.gz",
		Short:   "Undo wrapper compression on files",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompress(ctx, app, args, outputDir)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", ".", "directory to write results into")
	return cmd
}
