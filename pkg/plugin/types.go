// Package plugin defines the core types of the droply codec runtime: the
// compression and archive backend interfaces, the per-platform registration
// table, and the on-disk manifest and registry document formats.
package plugin

import (
	"errors"
	"strings"
)

// Kind distinguishes the two plugin families.
type Kind string

const (
	KindCompression Kind = "compression"
	KindArchive     Kind = "archive"
)

// Platform identifies a backend target. Compiled-in Go backends live under
// PlatformNative; the nodejs/bundler/web names match the registry documents
// produced by the plugin build pipeline and are accepted wherever a platform
// is configurable.
type Platform string

const (
	PlatformNative  Platform = "native"
	PlatformNodejs  Platform = "nodejs"
	PlatformBundler Platform = "bundler"
	PlatformWeb     Platform = "web"
)

// AllPlatforms lists every platform a built-in backend registers under.
func AllPlatforms() []Platform {
	return []Platform{PlatformNative, PlatformNodejs, PlatformBundler, PlatformWeb}
}

// ParsePlatform normalizes a platform name.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(s)) {
	case PlatformNative, PlatformNodejs, PlatformBundler, PlatformWeb:
		return Platform(strings.ToLower(s)), true
	}
	return "", false
}

// Algorithm names a compression algorithm.
type Algorithm string

const (
	AlgorithmGzip       Algorithm = "gzip"
	AlgorithmBrotli     Algorithm = "brotli"
	AlgorithmZipDeflate Algorithm = "zip-deflate"
	AlgorithmZstd       Algorithm = "zstd"
	AlgorithmLZ4        Algorithm = "lz4"
	AlgorithmSnappy     Algorithm = "snappy"
	AlgorithmNone       Algorithm = "none"
)

// ParseAlgorithm normalizes an algorithm name. The bare name "zip" is an
// accepted alias for zip-deflate: callers frequently write --algo zip, and the
// planner needs to see the normalized form to reject it as a wrapper.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch strings.ToLower(s) {
	case "gzip", "gz":
		return AlgorithmGzip, true
	case "brotli", "br":
		return AlgorithmBrotli, true
	case "zip", "zip-deflate", "deflate":
		return AlgorithmZipDeflate, true
	case "zstd", "zst":
		return AlgorithmZstd, true
	case "lz4":
		return AlgorithmLZ4, true
	case "snappy", "sz":
		return AlgorithmSnappy, true
	case "none", "":
		return AlgorithmNone, true
	}
	return "", false
}

// ArchiveFormat names an archive container format.
type ArchiveFormat string

const (
	ArchiveZip  ArchiveFormat = "zip"
	ArchiveTar  ArchiveFormat = "tar"
	ArchiveNone ArchiveFormat = "none"
)

// ParseArchiveFormat normalizes an archive format name.
func ParseArchiveFormat(s string) (ArchiveFormat, bool) {
	switch strings.ToLower(s) {
	case "zip":
		return ArchiveZip, true
	case "tar":
		return ArchiveTar, true
	case "none", "":
		return ArchiveNone, true
	}
	return "", false
}

// Archive feature flags reported through capability discovery.
const (
	FeatureCompressInside    = "compress-inside"
	FeatureMetadataEmbedding = "metadata-embedding"
)

// FileTuple is the unit of input and output: a named byte stream. Ownership
// transfers to whichever component currently processes it; no component may
// mutate a tuple it has handed off.
type FileTuple struct {
	Name string
	Data []byte
}

// LevelRange describes the valid compression levels for an algorithm.
type LevelRange struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Default int `json:"default" yaml:"default"`
}

// Contains reports whether level falls inside the range.
func (r LevelRange) Contains(level int) bool {
	return level >= r.Min && level <= r.Max
}

// Clamp forces level into the range.
func (r LevelRange) Clamp(level int) int {
	if level < r.Min {
		return r.Min
	}
	if level > r.Max {
		return r.Max
	}
	return level
}

// PackOptions control archive-internal behavior when packing.
type PackOptions struct {
	// CompressInside enables per-entry compression by the archive format
	// itself (zip deflate). Ignored by formats without the feature.
	CompressInside bool

	// Level is the per-entry compression level when CompressInside is set.
	Level int
}

// CompressionBackend is the uniform compute interface every compression
// plugin exposes, regardless of which resolution path loaded it.
type CompressionBackend interface {
	Compress(data []byte, level int) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ArchiveBackend is the uniform compute interface every archive plugin
// exposes.
type ArchiveBackend interface {
	Pack(files []FileTuple, opts PackOptions) ([]byte, error)
	Unpack(data []byte) ([]FileTuple, error)
}

// Info describes a registered backend for capability discovery.
type Info struct {
	Name       string
	Version    string
	Kind       Kind
	Extensions []string
	Levels     LevelRange
	Features   []string
}

var (
	ErrDuplicateRegistration = errors.New("droply: backend already registered")
	ErrInvalidRegistration   = errors.New("droply: registration missing a backend implementation")
)
