// Package planner is the decision engine that turns raw user options and the
// shape of the input set into a validated, unambiguous OperationPlan.
//
// Planning never throws for user-input problems: the output is always a
// ValidationResult whose errors are terminal and whose warnings are
// informational. Only registry/environment failures surface as errors from
// Plan itself.
package planner

import (
	"context"
	"fmt"

	"github.com/zamdevio/droply/pkg/plugin"
	"github.com/zamdevio/droply/pkg/registry"
)

// Mode controls how multiple inputs are handled when no archive is requested.
type Mode string

const (
	ModeUnset  Mode = ""
	ModeEach   Mode = "each"
	ModeBundle Mode = "bundle"
	ModeError  Mode = "error"
)

// PlanKind distinguishes the two execution shapes.
type PlanKind string

const (
	// KindManySingle compresses each file independently with the wrapper
	// algorithm; no archive step.
	KindManySingle PlanKind = "manySingle"

	// KindArchived bundles the inputs into an archive, optionally wrapped
	// in outer compression.
	KindArchived PlanKind = "archived"
)

// RawOptions are the caller's unresolved wishes.
type RawOptions struct {
	// Algorithm and Archive are user-supplied names; empty means "decide
	// for me".
	Algorithm string
	Archive   string

	// Level is the requested compression level; nil means algorithm
	// default.
	Level *int

	// CompressInside requests per-entry compression by the archive format
	// itself (zip deflate).
	CompressInside bool

	// Mode selects the multi-input-without-archive behavior.
	Mode string

	// Meta requests a metadata report; NoMeta forcibly disables embedding.
	Meta   bool
	NoMeta bool
}

// InputShape describes the caller's file set.
type InputShape struct {
	IsMulti     bool
	IsDirectory bool
}

// ZipInternal describes archive-internal compression for zip.
type ZipInternal struct {
	Enabled bool
	Level   int
}

// OperationPlan is the fully resolved description of one operation.
// Immutable after creation: rebuilt, never mutated.
type OperationPlan struct {
	Kind               PlanKind
	Archive            plugin.ArchiveFormat
	WrapperCompression plugin.Algorithm
	WrapperLevel       int
	ZipInternal        ZipInternal
	EmbedMeta          bool
	Mode               Mode
	Inputs             InputShape
}

// ValidationResult is the sole planner output. Errors are terminal; warnings
// are informational and the operation proceeds.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Plan     *OperationPlan
}

// Planner validates against the capability registry.
type Planner struct {
	registry *registry.Service
}

// New creates a Planner.
func New(reg *registry.Service) *Planner {
	return &Planner{registry: reg}
}

// Plan produces a ValidationResult for the given options and input shape.
// The returned error is reserved for registry/environment failures.
func (p *Planner) Plan(ctx context.Context, raw RawOptions, shape InputShape) (ValidationResult, error) {
	caps, err := p.registry.GetCapabilities(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	return Resolve(raw, shape, caps), nil
}

// Resolve is the pure decision sequence: a function of the options, the input
// shape and a capability snapshot, with no hidden state. Exposed so the
// default cascade can be tested in isolation from I/O.
func Resolve(raw RawOptions, shape InputShape, caps *registry.Capabilities) ValidationResult {
	var errs, warnings []string

	// Step 1: validate requested names against the capability snapshot.
	algo := plugin.AlgorithmNone
	algoRequested := raw.Algorithm != ""
	if algoRequested {
		parsed, ok := plugin.ParseAlgorithm(raw.Algorithm)
		if !ok || !caps.HasAlgorithm(parsed) {
			errs = append(errs, fmt.Sprintf("unsupported compression algorithm %q (supported: %s)",
				raw.Algorithm, caps.SupportedAlgorithmNames()))
		} else {
			algo = parsed
		}
	}

	archive := plugin.ArchiveNone
	archiveRequested := raw.Archive != ""
	if archiveRequested {
		parsed, ok := plugin.ParseArchiveFormat(raw.Archive)
		if !ok || !caps.HasArchive(parsed) {
			errs = append(errs, fmt.Sprintf("unsupported archive format %q (supported: %s)",
				raw.Archive, caps.SupportedArchiveNames()))
		} else {
			archive = parsed
		}
	}

	mode := Mode(raw.Mode)
	switch mode {
	case ModeUnset, ModeEach, ModeBundle, ModeError:
	default:
		errs = append(errs, fmt.Sprintf("invalid mode %q (valid: each, bundle, error)", raw.Mode))
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
	}

	// Step 2: zip is an archive format, never a wrapper compression.
	// Rejected categorically, whatever the archive setting: zip-as-
	// compression is only meaningful inside an archive via compressInside.
	if algoRequested && algo == plugin.AlgorithmZipDeflate {
		errs = append(errs, fmt.Sprintf(
			"%q is an archive format, not a wrapper compression; use --archive zip, or --compress-inside for zip-internal deflate",
			raw.Algorithm))
		return ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
	}

	// Step 3: level bounds for the requested algorithm.
	if raw.Level != nil && algoRequested && algo != plugin.AlgorithmNone {
		if r, ok := caps.Compression.Levels[algo]; ok && !r.Contains(*raw.Level) {
			errs = append(errs, fmt.Sprintf("level %d out of range for %s (%d-%d, default %d)",
				*raw.Level, algo, r.Min, r.Max, r.Default))
			return ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
		}
	}

	// Step 4: default resolution cascade. Archiving implies no automatic
	// outer compression; the caller must opt in.
	if !archiveRequested && !algoRequested {
		if shape.IsMulti || shape.IsDirectory {
			archive = plugin.ArchiveZip
		}
	}
	if !algoRequested {
		if archive == plugin.ArchiveNone {
			algo = plugin.AlgorithmGzip
		} else {
			algo = plugin.AlgorithmNone
		}
	}

	// Step 5: multiple inputs without an archive.
	kind := KindArchived
	if archive == plugin.ArchiveNone && (shape.IsMulti || shape.IsDirectory) {
		switch mode {
		case ModeEach:
			kind = KindManySingle
		case ModeError:
			errs = append(errs, "multiple inputs require an explicit archive or mode=each")
			return ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
		default:
			// bundle or unset: upgrade to zip so the operation stays
			// well-defined.
			archive = plugin.ArchiveZip
		}
	}
	if archive == plugin.ArchiveNone {
		kind = KindManySingle
	}

	// Step 6: zip-internal compression.
	var zipInternal ZipInternal
	if archive == plugin.ArchiveZip && raw.CompressInside {
		level := deflateDefault(caps)
		if raw.Level != nil {
			level = *raw.Level
		}
		zipInternal = ZipInternal{Enabled: true, Level: level}
	}

	// Step 7: metadata embedding eligibility.
	embedMeta := archive != plugin.ArchiveNone && !raw.NoMeta

	// Step 8: non-fatal warnings.
	if raw.Level != nil && archive == plugin.ArchiveZip && !raw.CompressInside && algo == plugin.AlgorithmNone {
		warnings = append(warnings, "level has no effect: zip entries are stored uncompressed unless --compress-inside is set")
	}
	if archive != plugin.ArchiveNone && !algoRequested {
		warnings = append(warnings, fmt.Sprintf("no outer compression specified for the %s archive; defaulting to none", archive))
	}
	if raw.Meta && archive == plugin.ArchiveNone {
		warnings = append(warnings, "metadata cannot be embedded without an archive; it will only be reported")
	}

	wrapperLevel := 0
	if algo != plugin.AlgorithmNone {
		if r, ok := caps.Compression.Levels[algo]; ok {
			wrapperLevel = r.Default
		}
		if raw.Level != nil && !zipInternal.Enabled {
			wrapperLevel = *raw.Level
		}
	}

	plan := &OperationPlan{
		Kind:               kind,
		Archive:            archive,
		WrapperCompression: algo,
		WrapperLevel:       wrapperLevel,
		ZipInternal:        zipInternal,
		EmbedMeta:          embedMeta,
		Mode:               mode,
		Inputs:             shape,
	}
	return ValidationResult{Valid: true, Warnings: warnings, Plan: plan}
}

func deflateDefault(caps *registry.Capabilities) int {
	if r, ok := caps.Compression.Levels[plugin.AlgorithmZipDeflate]; ok {
		return r.Default
	}
	return 6
}
