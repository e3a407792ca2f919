package backend

import "github.com/zamdevio/droply/pkg/plugin"

// Version stamped on every built-in registration.
const Version = "0.1.0"

// Builtins returns the registration set for the compiled-in backends.
func Builtins() []*plugin.Registration {
	return []*plugin.Registration{
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmGzip),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"gz"},
				Levels:     GzipLevels,
			},
			Compression: Gzip{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmBrotli),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"br"},
				Levels:     BrotliLevels,
			},
			Compression: Brotli{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmZipDeflate),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"zip"},
				Levels:     DeflateLevels,
			},
			Compression: Deflate{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmZstd),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"zst"},
				Levels:     ZstdLevels,
			},
			Compression: Zstd{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmLZ4),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"lz4"},
				Levels:     LZ4Levels,
			},
			Compression: LZ4{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.AlgorithmSnappy),
				Version:    Version,
				Kind:       plugin.KindCompression,
				Extensions: []string{"sz"},
				Levels:     SnappyLevels,
			},
			Compression: Snappy{},
		},
		{
			Info: plugin.Info{
				Name:    string(plugin.AlgorithmNone),
				Version: Version,
				Kind:    plugin.KindCompression,
				Levels:  NoneLevels,
			},
			Compression: None{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.ArchiveZip),
				Version:    Version,
				Kind:       plugin.KindArchive,
				Extensions: []string{"zip"},
				Features:   []string{plugin.FeatureCompressInside, plugin.FeatureMetadataEmbedding},
			},
			Archive: Zip{},
		},
		{
			Info: plugin.Info{
				Name:       string(plugin.ArchiveTar),
				Version:    Version,
				Kind:       plugin.KindArchive,
				Extensions: []string{"tar"},
				Features:   []string{plugin.FeatureMetadataEmbedding},
			},
			Archive: Tar{},
		},
	}
}

// RegisterBuiltins registers every built-in backend under every platform, so
// registry documents written for any platform resolve against the native
// implementations.
func RegisterBuiltins(table *plugin.Table) error {
	for _, platform := range plugin.AllPlatforms() {
		for _, reg := range Builtins() {
			if err := table.Register(platform, reg); err != nil {
				return err
			}
		}
	}
	return nil
}
