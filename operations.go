package droply

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/zamdevio/droply/pkg/codec"
	"github.com/zamdevio/droply/pkg/ext"
	"github.com/zamdevio/droply/pkg/meta"
	"github.com/zamdevio/droply/pkg/planner"
	"github.com/zamdevio/droply/pkg/plugin"
)

// Compress runs the full pipeline: spoofing guard, planning, packing,
// wrapper compression and metadata composition.
//
// User-input problems come back inside Result.Validation with no Go error;
// the returned error is reserved for spoofing detection and infrastructure
// failures (missing plugin, broken registry).
func (e *Engine) Compress(ctx context.Context, files []plugin.FileTuple, shape planner.InputShape, opts Options) (*Result, error) {
	if err := meta.GuardSpoofing(files, opts.MetaDir, opts.MetaName, opts.AllowUserMeta); err != nil {
		return nil, err
	}

	validation, err := e.planner.Plan(ctx, opts.RawOptions, shape)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return &Result{Validation: validation}, nil
	}

	started := time.Now()
	if validation.Plan.Kind == planner.KindManySingle {
		return e.compressEach(ctx, files, validation, started)
	}
	return e.compressArchived(ctx, files, shape, validation, opts, started)
}

// compressEach compresses every file independently with the wrapper
// algorithm. Failures are per-file: one bad input does not abort the rest.
func (e *Engine) compressEach(ctx context.Context, files []plugin.FileTuple, validation planner.ValidationResult, started time.Time) (*Result, error) {
	plan := validation.Plan

	comp, err := e.loadCompressor(ctx, plan.WrapperCompression)
	if err != nil {
		return nil, err
	}

	result := &Result{Validation: validation}
	var fileMetas []meta.FileMeta
	now := time.Now()
	for _, file := range files {
		compressed, err := comp.Compress(file.Data, plan.WrapperLevel)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipping %s: %v", file.Name, err))
			continue
		}
		gen, err := ext.Generate(file.Name, plugin.ArchiveNone, plan.WrapperCompression)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, plugin.FileTuple{Name: gen.FullName, Data: compressed})
		fileMetas = append(fileMetas, meta.FileMeta{
			Name:           file.Name,
			OriginalSize:   len(file.Data),
			CompressedSize: len(compressed),
			Method:         string(plan.WrapperCompression),
			Mtime:          now,
		})
	}

	result.Meta = meta.Compose(meta.OperationDescriptor{
		Operation:     "compress",
		Archive:       plugin.ArchiveNone,
		Algorithm:     plan.WrapperCompression,
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Files:         fileMetas,
		Backends:      []string{comp.Info().Name},
		Versions:      map[string]string{comp.Info().Name: comp.Info().Version},
		WasmAvailable: e.wasmAvailable(),
	})
	return result, nil
}

// compressArchived packs the inputs into the planned archive, embeds
// metadata when eligible, and applies wrapper compression.
func (e *Engine) compressArchived(ctx context.Context, files []plugin.FileTuple, shape planner.InputShape, validation planner.ValidationResult, opts Options, started time.Time) (*Result, error) {
	plan := validation.Plan

	arch, err := e.loadArchiver(ctx, plan.Archive)
	if err != nil {
		return nil, err
	}
	var comp *codec.Compressor
	if plan.WrapperCompression != plugin.AlgorithmNone {
		if comp, err = e.loadCompressor(ctx, plan.WrapperCompression); err != nil {
			return nil, err
		}
	}

	method := "store"
	if plan.ZipInternal.Enabled {
		method = "deflate"
	}
	now := time.Now()
	fileMetas := make([]meta.FileMeta, 0, len(files))
	for _, file := range files {
		fileMetas = append(fileMetas, meta.FileMeta{
			Name:           file.Name,
			OriginalSize:   len(file.Data),
			CompressedSize: len(file.Data),
			Method:         method,
			Mtime:          now,
		})
	}

	backends := []string{arch.Info().Name}
	versions := map[string]string{arch.Info().Name: arch.Info().Version}
	if comp != nil {
		backends = append(backends, comp.Info().Name)
		versions[comp.Info().Name] = comp.Info().Version
	}

	toPack := files
	if plan.EmbedMeta {
		embedded := meta.Compose(meta.OperationDescriptor{
			Operation:     "compress",
			Archive:       plan.Archive,
			Algorithm:     plan.WrapperCompression,
			StartedAt:     started,
			FinishedAt:    time.Now(),
			Files:         fileMetas,
			Backends:      backends,
			Versions:      versions,
			WasmAvailable: e.wasmAvailable(),
		})
		doc, err := embedded.EncodeJSON()
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		toPack = append(append([]plugin.FileTuple{}, files...), plugin.FileTuple{
			Name: meta.ReservedPath(opts.MetaDir, opts.MetaName),
			Data: doc,
		})
	}

	packed, err := arch.Pack(toPack, plugin.PackOptions{
		CompressInside: plan.ZipInternal.Enabled,
		Level:          plan.ZipInternal.Level,
	})
	if err != nil {
		// Archive creation failed after validation passed: fall back to
		// plain compression of the original inputs and surface it.
		e.logger.Warn("archive creation failed, falling back to plain compression",
			"format", plan.Archive, "err", err)
		return e.archiveFallback(ctx, files, validation, started, err)
	}

	output := packed
	if comp != nil {
		output, err = comp.Compress(packed, plan.WrapperLevel)
		if err != nil {
			return nil, fmt.Errorf("wrapper compression: %w", err)
		}
	}

	base := opts.Output
	if base == "" {
		if len(files) == 1 && !shape.IsDirectory {
			base = files[0].Name
		} else {
			base = "archive"
		}
	}
	gen, err := ext.Generate(base, plan.Archive, plan.WrapperCompression)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Validation: validation,
		Files:      []plugin.FileTuple{{Name: gen.FullName, Data: output}},
	}
	result.Meta = meta.Compose(meta.OperationDescriptor{
		Operation:       "compress",
		Archive:         plan.Archive,
		Algorithm:       plan.WrapperCompression,
		StartedAt:       started,
		FinishedAt:      time.Now(),
		Files:           fileMetas,
		Backends:        backends,
		Versions:        versions,
		CompressedTotal: len(output),
		WasmAvailable:   e.wasmAvailable(),
	})
	return result, nil
}

// archiveFallback compresses each original input individually after the
// archive backend failed. The wrapper algorithm is kept when one was planned;
// otherwise gzip.
func (e *Engine) archiveFallback(ctx context.Context, files []plugin.FileTuple, validation planner.ValidationResult, started time.Time, cause error) (*Result, error) {
	algo := validation.Plan.WrapperCompression
	level := validation.Plan.WrapperLevel
	if algo == plugin.AlgorithmNone {
		algo = plugin.AlgorithmGzip
		if r, err := e.registry.CompressionLevels(ctx, algo); err == nil {
			level = r.Default
		}
	}

	fallback := validation
	fallback.Plan = &planner.OperationPlan{
		Kind:               planner.KindManySingle,
		Archive:            plugin.ArchiveNone,
		WrapperCompression: algo,
		WrapperLevel:       level,
		Mode:               validation.Plan.Mode,
		Inputs:             validation.Plan.Inputs,
	}
	result, err := e.compressEach(ctx, files, fallback, started)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("archiving did not occur (%v); inputs were compressed individually with %s", cause, algo))
	return result, nil
}

// Decompress undoes wrapper compression on a single file. Archives come back
// still packed under the stripped name; use Extract to unpack them.
func (e *Engine) Decompress(ctx context.Context, file plugin.FileTuple) (*Result, error) {
	parsed := ext.Parse(file.Name)
	if parsed.Compression == plugin.AlgorithmNone && parsed.Archive == plugin.ArchiveNone {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, file.Name)
	}

	started := time.Now()
	data := file.Data
	backends := []string{}
	versions := map[string]string{}
	if parsed.Compression != plugin.AlgorithmNone {
		comp, err := e.loadCompressor(ctx, parsed.Compression)
		if err != nil {
			return nil, err
		}
		data, err = comp.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", file.Name, err)
		}
		backends = append(backends, comp.Info().Name)
		versions[comp.Info().Name] = comp.Info().Version
	}

	outName := parsed.Base
	if parsed.Archive != plugin.ArchiveNone {
		gen, err := ext.Generate(parsed.Base, parsed.Archive, plugin.AlgorithmNone)
		if err != nil {
			return nil, err
		}
		outName = gen.FullName
	}

	finished := time.Now()
	return &Result{
		Files: []plugin.FileTuple{{Name: outName, Data: data}},
		Meta: meta.Compose(meta.OperationDescriptor{
			Operation:  "decompress",
			Archive:    parsed.Archive,
			Algorithm:  parsed.Compression,
			StartedAt:  started,
			FinishedAt: finished,
			Files: []meta.FileMeta{{
				Name:           outName,
				OriginalSize:   len(data),
				CompressedSize: len(file.Data),
				Method:         string(parsed.Compression),
				Mtime:          finished,
			}},
			Backends:      backends,
			Versions:      versions,
			WasmAvailable: e.wasmAvailable(),
		}),
	}, nil
}

// Extract undoes wrapper compression, unpacks the archive and separates any
// embedded metadata document from the user files.
func (e *Engine) Extract(ctx context.Context, file plugin.FileTuple, opts Options) (*Result, error) {
	parsed := ext.Parse(file.Name)
	if parsed.Archive == plugin.ArchiveNone {
		return nil, fmt.Errorf("%w: %q", ErrNotAnArchive, file.Name)
	}

	started := time.Now()
	data := file.Data
	backends := []string{}
	versions := map[string]string{}
	if parsed.Compression != plugin.AlgorithmNone {
		comp, err := e.loadCompressor(ctx, parsed.Compression)
		if err != nil {
			return nil, err
		}
		data, err = comp.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", file.Name, err)
		}
		backends = append(backends, comp.Info().Name)
		versions[comp.Info().Name] = comp.Info().Version
	}

	arch, err := e.loadArchiver(ctx, parsed.Archive)
	if err != nil {
		return nil, err
	}
	backends = append(backends, arch.Info().Name)
	versions[arch.Info().Name] = arch.Info().Version

	entries, err := arch.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", file.Name, err)
	}

	result := &Result{}
	reserved := meta.ReservedPath(opts.MetaDir, opts.MetaName)
	reservedDir := path.Dir(reserved)
	finished := time.Now()
	var fileMetas []meta.FileMeta
	for _, entry := range entries {
		clean := path.Clean(strings.ReplaceAll(entry.Name, "\\", "/"))
		if clean == reserved || strings.HasPrefix(clean, reservedDir+"/") {
			if embedded, err := meta.DecodeJSON(entry.Data); err == nil {
				result.Embedded = embedded
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("ignoring unreadable embedded metadata %s: %v", entry.Name, err))
			}
			continue
		}
		result.Files = append(result.Files, entry)
		fileMetas = append(fileMetas, meta.FileMeta{
			Name:           entry.Name,
			OriginalSize:   len(entry.Data),
			CompressedSize: len(entry.Data),
			Method:         "store",
			Mtime:          finished,
		})
	}

	result.Meta = meta.Compose(meta.OperationDescriptor{
		Operation:       "extract",
		Archive:         parsed.Archive,
		Algorithm:       parsed.Compression,
		StartedAt:       started,
		FinishedAt:      finished,
		Files:           fileMetas,
		Backends:        backends,
		Versions:        versions,
		CompressedTotal: len(file.Data),
		WasmAvailable:   e.wasmAvailable(),
	})
	return result, nil
}

func (e *Engine) loadCompressor(ctx context.Context, algo plugin.Algorithm) (*codec.Compressor, error) {
	handle, err := e.loader.LoadCompression(ctx, e.platform, string(algo))
	if err != nil {
		return nil, err
	}
	return codec.NewCompressor(handle)
}

func (e *Engine) loadArchiver(ctx context.Context, format plugin.ArchiveFormat) (*codec.Archiver, error) {
	handle, err := e.loader.LoadArchive(ctx, e.platform, string(format))
	if err != nil {
		return nil, err
	}
	return codec.NewArchiver(handle)
}
