package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/zamdevio/droply/pkg/plugin"
)

// collectInputs reads the named paths into file tuples. A single directory
// argument is walked recursively with entry names kept relative to the
// directory's parent, so archive layouts match what the user pointed at.
func collectInputs(fs afero.Fs, paths []string) ([]plugin.FileTuple, bool, error) {
	if len(paths) == 1 {
		info, err := fs.Stat(paths[0])
		if err != nil {
			return nil, false, err
		}
		if info.IsDir() {
			files, err := readDir(fs, paths[0])
			return files, true, err
		}
	}

	files := make([]plugin.FileTuple, 0, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return nil, false, err
		}
		files = append(files, plugin.FileTuple{Name: filepath.ToSlash(p), Data: data})
	}
	return files, false, nil
}

func readDir(fs afero.Fs, root string) ([]plugin.FileTuple, error) {
	parent := filepath.Dir(filepath.Clean(root))
	var files []plugin.FileTuple
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			rel = path
		}
		files = append(files, plugin.FileTuple{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	return files, err
}

// writeOutputs writes produced tuples under dir, creating intermediate
// directories for nested entry names.
func writeOutputs(fs afero.Fs, dir string, files []plugin.FileTuple) error {
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(fs, target, f.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
