package registry

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/zamdevio/droply/pkg/plugin"
)

// MetadataFormats are the render modes for operation metadata.
var MetadataFormats = []string{"text", "json"}

// structuredProbe reads the first parseable registry.json document from the
// candidate paths and projects the entry for the configured platform. This is
// the primary strategy: exact names, level ranges and features as published
// by the plugin build pipeline.
func (s *Service) structuredProbe(paths []string) func(context.Context) (*Capabilities, error) {
	return func(_ context.Context) (*Capabilities, error) {
		if len(paths) == 0 {
			return nil, fmt.Errorf("no registry document paths configured")
		}

		var lastErr error
		for _, path := range paths {
			data, err := afero.ReadFile(s.fs, path)
			if err != nil {
				lastErr = err
				continue
			}
			doc, err := plugin.ParseRegistryDoc(data)
			if err != nil {
				lastErr = fmt.Errorf("%s: %w", path, err)
				continue
			}
			caps, err := s.capsFromDoc(doc)
			if err != nil {
				lastErr = fmt.Errorf("%s: %w", path, err)
				continue
			}
			return caps, nil
		}
		return nil, fmt.Errorf("no usable registry document: %w", lastErr)
	}
}

func (s *Service) capsFromDoc(doc *plugin.RegistryDoc) (*Capabilities, error) {
	entry, ok := doc.Platforms[string(s.platform)]
	if !ok {
		// Documents published by the plugin pipeline key on nodejs even
		// when the consumer runs native backends.
		entry, ok = doc.Platforms[string(plugin.PlatformNodejs)]
	}
	if !ok {
		return nil, fmt.Errorf("registry document has no entry for platform %q", s.platform)
	}

	levels := make(map[plugin.Algorithm]plugin.LevelRange)
	for name, p := range entry.Compression {
		algo, ok := plugin.ParseAlgorithm(name)
		if !ok {
			continue
		}
		r := plugin.LevelRange{}
		if p.Levels != nil {
			r = *p.Levels
		}
		levels[algo] = r
	}

	features := make(map[plugin.ArchiveFormat][]string)
	for name, p := range entry.Archives {
		format, ok := plugin.ParseArchiveFormat(name)
		if !ok {
			continue
		}
		features[format] = p.Features
	}

	if len(levels) == 0 && len(features) == 0 {
		return nil, fmt.Errorf("registry document lists no plugins for platform %q", s.platform)
	}

	return &Capabilities{
		Compression: CompressionSet{Algorithms: sortedAlgorithms(levels), Levels: levels},
		Archives:    ArchiveSet{Formats: sortedFormats(features), Features: features},
		Metadata:    MetadataSet{Supported: len(features) > 0, Formats: MetadataFormats},
	}, nil
}

// legacyProbe enumerates plugin.json manifests one level below each plugin
// directory. This is the older, flat interface shape: no per-platform
// nesting, level ranges defaulted when the manifest omits them.
func (s *Service) legacyProbe(dirs []string) func(context.Context) (*Capabilities, error) {
	return func(_ context.Context) (*Capabilities, error) {
		levels := make(map[plugin.Algorithm]plugin.LevelRange)
		features := make(map[plugin.ArchiveFormat][]string)

		for _, dir := range dirs {
			matches, err := afero.Glob(s.fs, filepath.Join(dir, "*", plugin.ManifestFileName))
			if err != nil {
				continue
			}
			for _, path := range matches {
				data, err := afero.ReadFile(s.fs, path)
				if err != nil {
					continue
				}
				m, err := plugin.ParseManifest(data)
				if err != nil {
					s.logger.Warn("skipping unparseable plugin manifest", "path", path, "err", err)
					continue
				}
				switch m.Kind() {
				case plugin.KindCompression:
					algo, ok := plugin.ParseAlgorithm(m.Algorithm)
					if !ok {
						continue
					}
					r := plugin.LevelRange{Min: 0, Max: 9, Default: 6}
					if m.Levels != nil {
						r = *m.Levels
					}
					levels[algo] = r
				case plugin.KindArchive:
					format, ok := plugin.ParseArchiveFormat(m.Format)
					if !ok {
						continue
					}
					var feats []string
					if m.Capabilities.CompressInside {
						feats = append(feats, plugin.FeatureCompressInside)
					}
					if m.Capabilities.MetadataEmbedding {
						feats = append(feats, plugin.FeatureMetadataEmbedding)
					}
					features[format] = feats
				}
			}
		}

		if len(levels) == 0 && len(features) == 0 {
			return nil, fmt.Errorf("no plugin manifests found under %v", dirs)
		}

		return &Capabilities{
			Compression: CompressionSet{Algorithms: sortedAlgorithms(levels), Levels: levels},
			Archives:    ArchiveSet{Formats: sortedFormats(features), Features: features},
			Metadata:    MetadataSet{Supported: len(features) > 0, Formats: MetadataFormats},
		}, nil
	}
}

// staticProbe builds capabilities from the compiled-in registration table.
// It cannot fail: the built-in backends are always linked in.
func (s *Service) staticProbe(_ context.Context) (*Capabilities, error) {
	platform := s.platform
	if len(s.table.Entries(platform, plugin.KindCompression)) == 0 {
		platform = plugin.PlatformNative
	}

	levels := make(map[plugin.Algorithm]plugin.LevelRange)
	for _, reg := range s.table.Entries(platform, plugin.KindCompression) {
		if algo, ok := plugin.ParseAlgorithm(reg.Info.Name); ok && algo != plugin.AlgorithmNone {
			levels[algo] = reg.Info.Levels
		}
	}

	features := make(map[plugin.ArchiveFormat][]string)
	for _, reg := range s.table.Entries(platform, plugin.KindArchive) {
		if format, ok := plugin.ParseArchiveFormat(reg.Info.Name); ok && format != plugin.ArchiveNone {
			features[format] = reg.Info.Features
		}
	}

	return &Capabilities{
		Compression: CompressionSet{Algorithms: sortedAlgorithms(levels), Levels: levels},
		Archives:    ArchiveSet{Formats: sortedFormats(features), Features: features},
		Metadata:    MetadataSet{Supported: len(features) > 0, Formats: MetadataFormats},
	}, nil
}
