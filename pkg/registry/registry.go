// Package registry answers "which compression algorithms and archive formats
// exist, and with what parameters" for a given platform.
//
// Discovery tries three strategies in strict order, never partially combined:
// a structured registry-document probe, a legacy flat manifest enumeration,
// and a static table built from the compiled-in backends. The static strategy
// always succeeds, so a droply installation with zero plugins is still
// usable.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/zamdevio/droply/pkg/logging"
	"github.com/zamdevio/droply/pkg/plugin"
)

var (
	ErrUnsupportedAlgorithm = errors.New("droply: unsupported compression algorithm")
	ErrUnsupportedArchive   = errors.New("droply: unsupported archive format")
)

// Capabilities is one immutable discovery snapshot.
type Capabilities struct {
	Compression CompressionSet
	Archives    ArchiveSet
	Metadata    MetadataSet

	// Source names the strategy that produced the snapshot.
	Source string
}

// CompressionSet lists available algorithms and their level ranges.
type CompressionSet struct {
	Algorithms []plugin.Algorithm
	Levels     map[plugin.Algorithm]plugin.LevelRange
}

// ArchiveSet lists available archive formats and their feature sets.
type ArchiveSet struct {
	Formats  []plugin.ArchiveFormat
	Features map[plugin.ArchiveFormat][]string
}

// MetadataSet describes metadata embedding support.
type MetadataSet struct {
	Supported bool
	Formats   []string
}

// HasAlgorithm reports whether algo is in the snapshot. AlgorithmNone is
// always available.
func (c *Capabilities) HasAlgorithm(algo plugin.Algorithm) bool {
	if algo == plugin.AlgorithmNone {
		return true
	}
	for _, a := range c.Compression.Algorithms {
		if a == algo {
			return true
		}
	}
	return false
}

// HasArchive reports whether format is in the snapshot. ArchiveNone is always
// available.
func (c *Capabilities) HasArchive(format plugin.ArchiveFormat) bool {
	if format == plugin.ArchiveNone {
		return true
	}
	for _, f := range c.Archives.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ArchiveFeatures returns the feature list for a format.
func (c *Capabilities) ArchiveFeatures(format plugin.ArchiveFormat) []string {
	return c.Archives.Features[format]
}

// SupportedAlgorithmNames renders the algorithm list for error messages.
func (c *Capabilities) SupportedAlgorithmNames() string {
	names := make([]string, 0, len(c.Compression.Algorithms)+1)
	for _, a := range c.Compression.Algorithms {
		names = append(names, string(a))
	}
	names = append(names, string(plugin.AlgorithmNone))
	return strings.Join(names, ", ")
}

// SupportedArchiveNames renders the format list for error messages.
func (c *Capabilities) SupportedArchiveNames() string {
	names := make([]string, 0, len(c.Archives.Formats)+1)
	for _, f := range c.Archives.Formats {
		names = append(names, string(f))
	}
	names = append(names, string(plugin.ArchiveNone))
	return strings.Join(names, ", ")
}

// Strategy is one discovery approach: a pure function of the environment.
type Strategy struct {
	Name  string
	Probe func(ctx context.Context) (*Capabilities, error)
}

// Options configure a Service.
type Options struct {
	Platform      plugin.Platform
	RegistryPaths []string
	PluginDirs    []string

	// Strategies overrides the default strategy chain. Used by tests to
	// observe discovery behavior.
	Strategies []Strategy
}

// Service is the capability registry. The snapshot is cached for the process
// lifetime; concurrent callers before the first discovery completes share
// exactly one in-flight discovery.
type Service struct {
	fs       afero.Fs
	logger   *logging.Logger
	table    *plugin.Table
	platform plugin.Platform

	strategies []Strategy

	mu    sync.RWMutex
	caps  *Capabilities
	group singleflight.Group
}

// NewService creates a registry service. The static strategy is always
// appended, so discovery cannot exhaust.
func NewService(fs afero.Fs, logger *logging.Logger, table *plugin.Table, opts Options) *Service {
	s := &Service{
		fs:       fs,
		logger:   logger,
		table:    table,
		platform: opts.Platform,
	}
	if s.platform == "" {
		s.platform = plugin.PlatformNative
	}

	if opts.Strategies != nil {
		s.strategies = opts.Strategies
	} else {
		s.strategies = []Strategy{
			{Name: "registry-document", Probe: s.structuredProbe(opts.RegistryPaths)},
			{Name: "manifest-scan", Probe: s.legacyProbe(opts.PluginDirs)},
		}
	}
	s.strategies = append(s.strategies, Strategy{Name: "static", Probe: s.staticProbe})
	return s
}

// GetCapabilities returns the cached snapshot, running discovery at most once
// across concurrent callers.
func (s *Service) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	s.mu.RLock()
	caps := s.caps
	s.mu.RUnlock()
	if caps != nil {
		return caps, nil
	}

	// The singleflight key is registered before the probe work starts, so a
	// second caller arriving mid-discovery joins the same flight instead of
	// starting another.
	v, err, _ := s.group.Do("capabilities", func() (interface{}, error) {
		discovered, err := s.discover(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.caps = discovered
		s.mu.Unlock()
		return discovered, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Capabilities), nil
}

// ClearCache drops the snapshot so the next call re-discovers.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.caps = nil
	s.mu.Unlock()
}

// discover walks the strategy chain. Strategy failures are warnings; only a
// fully exhausted chain is an error, and the static strategy prevents that in
// the default configuration.
func (s *Service) discover(ctx context.Context) (*Capabilities, error) {
	var reasons []string
	for _, strategy := range s.strategies {
		caps, err := strategy.Probe(ctx)
		if err != nil {
			s.logger.Warn("capability discovery strategy failed",
				"strategy", strategy.Name, "err", err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", strategy.Name, err))
			continue
		}
		caps.Source = strategy.Name
		s.logger.Debug("capabilities discovered",
			"strategy", strategy.Name,
			"algorithms", len(caps.Compression.Algorithms),
			"archives", len(caps.Archives.Formats))
		return caps, nil
	}
	return nil, fmt.Errorf("droply: capability discovery exhausted all strategies (%s)", strings.Join(reasons, "; "))
}

// ValidateAlgorithm resolves a user-supplied algorithm name against the
// snapshot.
func (s *Service) ValidateAlgorithm(ctx context.Context, name string) (plugin.Algorithm, error) {
	caps, err := s.GetCapabilities(ctx)
	if err != nil {
		return "", err
	}
	algo, ok := plugin.ParseAlgorithm(name)
	if !ok || !caps.HasAlgorithm(algo) {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedAlgorithm, name, caps.SupportedAlgorithmNames())
	}
	return algo, nil
}

// ValidateArchive resolves a user-supplied archive format name against the
// snapshot.
func (s *Service) ValidateArchive(ctx context.Context, name string) (plugin.ArchiveFormat, error) {
	caps, err := s.GetCapabilities(ctx)
	if err != nil {
		return "", err
	}
	format, ok := plugin.ParseArchiveFormat(name)
	if !ok || !caps.HasArchive(format) {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedArchive, name, caps.SupportedArchiveNames())
	}
	return format, nil
}

// CompressionLevels returns the level range for an algorithm.
func (s *Service) CompressionLevels(ctx context.Context, algo plugin.Algorithm) (plugin.LevelRange, error) {
	caps, err := s.GetCapabilities(ctx)
	if err != nil {
		return plugin.LevelRange{}, err
	}
	if r, ok := caps.Compression.Levels[algo]; ok {
		return r, nil
	}
	if algo == plugin.AlgorithmNone {
		return plugin.LevelRange{}, nil
	}
	return plugin.LevelRange{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedAlgorithm, algo, caps.SupportedAlgorithmNames())
}

func sortedAlgorithms(levels map[plugin.Algorithm]plugin.LevelRange) []plugin.Algorithm {
	algos := make([]plugin.Algorithm, 0, len(levels))
	for a := range levels {
		if a == plugin.AlgorithmNone {
			continue
		}
		algos = append(algos, a)
	}
	sort.Slice(algos, func(i, j int) bool { return algos[i] < algos[j] })
	return algos
}

func sortedFormats(features map[plugin.ArchiveFormat][]string) []plugin.ArchiveFormat {
	formats := make([]plugin.ArchiveFormat, 0, len(features))
	for f := range features {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
