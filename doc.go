// Package droply is a plugin-based compression and archiving runtime.
//
// It turns raw user options (algorithm, archive format, level, mode) into a
// validated operation plan, loads the matching codec backends through a
// multi-strategy discovery pipeline, and produces files plus a structured
// metadata record for every operation.
//
// # Features
//
//   - 6 compression algorithms: gzip, brotli, zstd, lz4, snappy, zip-deflate
//   - 2 archive formats: zip and tar, with composable wrappers (.tar.gz,
//     .tar.br, .zip.zst, ...)
//   - Total filename codec: any name parses, round-trips are lossless
//   - Capability discovery with graceful fallback (structured registry,
//     legacy manifests, static table)
//   - Plugin loading across platforms with a conventional path layout and
//     remote fetch
//   - Embedded per-archive metadata with a compatibility block
//
// # Quick Start
//
//	import (
//	    "github.com/spf13/afero"
//	    "github.com/zamdevio/droply"
//	    "github.com/zamdevio/droply/pkg/plugin"
//	)
//
//	engine, _ := droply.NewEngine(afero.NewOsFs(), nil, nil)
//
//	files := []plugin.FileTuple{{Name: "report.txt", Data: content}}
//	result, _ := engine.Compress(ctx, files, droply.ShapeOf(files, false),
//	    droply.Options{})
//
//	// result.Files[0].Name == "report.txt.gz"
//
// With multiple inputs and no explicit options the engine bundles them into a
// zip archive; a single file defaults to gzip. Every default can be overridden
// and every invalid combination is reported through the plan's validation
// result rather than a panic or a silent fallback.
//
// # Algorithm Selection Guide
//
//   - General Purpose: zstd (level 3) - best balance of speed and ratio
//   - Maximum Speed: lz4 or snappy
//   - Maximum Compression: brotli (level 9-11)
//   - Maximum Compatibility: gzip
//
// See cmd/droply for the command line front end.
package droply
