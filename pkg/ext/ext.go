// Package ext is the filename extension codec: the pure function pair mapping
// (archive format, compression algorithm, base name) to a filename and back.
//
// Parsing is total. Any suffix the codec does not recognize yields
// archive=none, compression=none rather than an error, so callers can probe
// arbitrary filenames safely.
package ext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zamdevio/droply/pkg/plugin"
)

// ErrUnsupportedPairing is returned by Generate for combinations that have no
// filename form, such as zip-deflate outside an archive.
var ErrUnsupportedPairing = errors.New("droply: no filename extension for this archive/compression pairing")

// Generated is the result of Generate.
type Generated struct {
	// Extension is the combined suffix including the leading dot, e.g.
	// ".tar.gz". Empty when neither archive nor compression applies.
	Extension string

	// FullName is base name plus extension.
	FullName string

	// Description is a human-readable summary of the pairing.
	Description string
}

// Parsed is the result of Parse.
type Parsed struct {
	Base        string
	Archive     plugin.ArchiveFormat
	Compression plugin.Algorithm
	Description string
}

// ValidationResult is the result of Validate.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

var compressionSuffix = map[plugin.Algorithm]string{
	plugin.AlgorithmGzip:   ".gz",
	plugin.AlgorithmBrotli: ".br",
	plugin.AlgorithmZstd:   ".zst",
	plugin.AlgorithmLZ4:    ".lz4",
	plugin.AlgorithmSnappy: ".sz",
}

var archiveSuffix = map[plugin.ArchiveFormat]string{
	plugin.ArchiveZip: ".zip",
	plugin.ArchiveTar: ".tar",
}

type suffixRule struct {
	suffix      string
	archive     plugin.ArchiveFormat
	compression plugin.Algorithm
}

// suffixRules is checked in order on parse. Double extensions come first so
// that "x.tar.gz" never matches the bare ".gz" rule; within each group longer
// suffixes precede shorter ones.
var suffixRules = []suffixRule{
	{".tar.zip", plugin.ArchiveTar, plugin.AlgorithmZipDeflate},
	{".tar.lz4", plugin.ArchiveTar, plugin.AlgorithmLZ4},
	{".tar.zst", plugin.ArchiveTar, plugin.AlgorithmZstd},
	{".tar.gz", plugin.ArchiveTar, plugin.AlgorithmGzip},
	{".tar.br", plugin.ArchiveTar, plugin.AlgorithmBrotli},
	{".tar.sz", plugin.ArchiveTar, plugin.AlgorithmSnappy},
	{".zip.lz4", plugin.ArchiveZip, plugin.AlgorithmLZ4},
	{".zip.zst", plugin.ArchiveZip, plugin.AlgorithmZstd},
	{".zip.gz", plugin.ArchiveZip, plugin.AlgorithmGzip},
	{".zip.br", plugin.ArchiveZip, plugin.AlgorithmBrotli},
	{".zip.sz", plugin.ArchiveZip, plugin.AlgorithmSnappy},
	{".tgz", plugin.ArchiveTar, plugin.AlgorithmGzip},
	{".lz4", plugin.ArchiveNone, plugin.AlgorithmLZ4},
	{".zst", plugin.ArchiveNone, plugin.AlgorithmZstd},
	{".tar", plugin.ArchiveTar, plugin.AlgorithmNone},
	{".zip", plugin.ArchiveZip, plugin.AlgorithmNone},
	{".gz", plugin.ArchiveNone, plugin.AlgorithmGzip},
	{".br", plugin.ArchiveNone, plugin.AlgorithmBrotli},
	{".sz", plugin.ArchiveNone, plugin.AlgorithmSnappy},
}

// Generate builds the canonical filename for a base name processed with the
// given archive format and wrapper compression.
func Generate(base string, archive plugin.ArchiveFormat, compression plugin.Algorithm) (Generated, error) {
	var ext string

	switch archive {
	case plugin.ArchiveZip, plugin.ArchiveTar:
		ext = archiveSuffix[archive]
	case plugin.ArchiveNone:
		// No archive part.
	default:
		return Generated{}, fmt.Errorf("%w: unknown archive format %q", ErrUnsupportedPairing, archive)
	}

	switch compression {
	case plugin.AlgorithmNone:
		// No compression part.
	case plugin.AlgorithmZipDeflate:
		// zip-deflate denotes archive-internal compression. It only has a
		// filename form as the ".tar.zip" wrapper suffix; as a standalone
		// stream it would be indistinguishable from a zip archive.
		if archive != plugin.ArchiveTar {
			return Generated{}, fmt.Errorf("%w: zip-deflate requires a tar archive", ErrUnsupportedPairing)
		}
		ext += ".zip"
	default:
		suffix, ok := compressionSuffix[compression]
		if !ok {
			return Generated{}, fmt.Errorf("%w: unknown compression algorithm %q", ErrUnsupportedPairing, compression)
		}
		ext += suffix
	}

	return Generated{
		Extension:   ext,
		FullName:    base + ext,
		Description: describe(archive, compression),
	}, nil
}

// Parse decomposes a filename into base name, archive format and compression
// algorithm. Rules are checked longest-suffix-first; an unrecognized suffix
// yields archive=none, compression=none.
func Parse(filename string) Parsed {
	lower := strings.ToLower(filename)
	for _, rule := range suffixRules {
		if !strings.HasSuffix(lower, rule.suffix) {
			continue
		}
		base := filename[:len(filename)-len(rule.suffix)]
		return Parsed{
			Base:        base,
			Archive:     rule.archive,
			Compression: rule.compression,
			Description: describe(rule.archive, rule.compression),
		}
	}
	return Parsed{
		Base:        filename,
		Archive:     plugin.ArchiveNone,
		Compression: plugin.AlgorithmNone,
		Description: describe(plugin.ArchiveNone, plugin.AlgorithmNone),
	}
}

// Validate checks whether a filename carries a well-formed recognized suffix.
func Validate(filename string) ValidationResult {
	var errs []string
	if filename == "" {
		errs = append(errs, "filename is empty")
		return ValidationResult{Valid: false, Errors: errs}
	}

	parsed := Parse(filename)
	if parsed.Archive == plugin.ArchiveNone && parsed.Compression == plugin.AlgorithmNone {
		errs = append(errs, fmt.Sprintf("no recognized compression or archive suffix in %q", filename))
	}
	if parsed.Base == "" {
		errs = append(errs, fmt.Sprintf("%q has a suffix but no base name", filename))
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func describe(archive plugin.ArchiveFormat, compression plugin.Algorithm) string {
	switch {
	case archive != plugin.ArchiveNone && compression == plugin.AlgorithmZipDeflate:
		return fmt.Sprintf("%s archive with zip-deflate wrapper", archive)
	case archive != plugin.ArchiveNone && compression != plugin.AlgorithmNone:
		return fmt.Sprintf("%s archive compressed with %s", archive, compression)
	case archive != plugin.ArchiveNone:
		return fmt.Sprintf("%s archive", archive)
	case compression != plugin.AlgorithmNone:
		return fmt.Sprintf("%s compressed stream", compression)
	default:
		return "plain file"
	}
}
