package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zamdevio/droply"
	"github.com/zamdevio/droply/pkg/plugin"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true)
	listSizeStyle   = lipgloss.NewStyle().Faint(true)
)

func runExtract(ctx context.Context, app *App, arg string, opts droply.Options, outputDir string, list bool) error {
	data, err := afero.ReadFile(app.FS, arg)
	if err != nil {
		return err
	}

	result, err := app.Engine.Extract(ctx, plugin.FileTuple{
		Name: filepath.ToSlash(arg),
		Data: data,
	}, opts)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		app.Logger.Warn(w)
	}

	if list {
		fmt.Println(listHeaderStyle.Render(arg))
		for _, f := range result.Files {
			fmt.Printf("  %s %s\n", f.Name,
				listSizeStyle.Render(humanize.Bytes(uint64(len(f.Data)))))
		}
		if result.Embedded != nil {
			fmt.Printf("  embedded metadata: %s (%s, produced by %s)\n",
				result.Embedded.ID, result.Embedded.Operation,
				result.Embedded.Compatibility.Producer)
		}
		return nil
	}

	if err := writeOutputs(app.FS, outputDir, result.Files); err != nil {
		return err
	}
	for _, f := range result.Files {
		fmt.Println(filepath.Join(outputDir, filepath.FromSlash(f.Name)))
	}
	if result.Embedded != nil {
		app.Logger.Debug("recovered embedded metadata",
			"id", result.Embedded.ID, "operation", result.Embedded.Operation)
	}
	return nil
}

// NewExtractCommand creates the 'extract' command.
func NewExtractCommand(ctx context.Context, app *App) *cobra.Command {
	var (
		opts      droply.Options
		outputDir string
		list      bool
	)
	cmd := &cobra.Command{
		Use:     "extract <archive>",
		Aliases: []string{"x"},
		Example: "$ droply extract backup.tar.gz --output restored/",
		Short:   "Unpack an archive, undoing wrapper compression first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(ctx, app, args[0], opts, outputDir, list)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to extract into")
	cmd.Flags().BoolVar(&list, "list", false, "list archive contents without extracting")
	cmd.Flags().StringVar(&opts.MetaDir, "meta-path", "", "in-archive metadata directory")
	cmd.Flags().StringVar(&opts.MetaName, "meta-name", "", "in-archive metadata filename")
	return cmd
}
