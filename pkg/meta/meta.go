// Package meta composes the structured description of an operation: sizes,
// ratios, timing, the file list, and a compatibility block consumers use to
// decide whether to trust metadata from a different producer version.
package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zamdevio/droply/pkg/plugin"
)

// Reserved in-archive metadata location. Never written into raw
// single-stream compressed output: a .gz or .br must stay readable by
// standard tools.
const (
	DefaultDir      = ".droply"
	DefaultFileName = "__droply_meta.json"
)

// MinConsumerVersion is the oldest consumer the produced metadata is valid
// for.
const MinConsumerVersion = "0.1.0"

// ProducerVersion is stamped into the compatibility block.
const ProducerVersion = "0.1.0"

// ErrSpoofingDetected is returned when a user-supplied file collides with the
// reserved metadata path.
var ErrSpoofingDetected = errors.New("droply: input filename collides with the reserved metadata path")

// FileMeta describes one processed file.
type FileMeta struct {
	Name           string    `json:"name"`
	OriginalSize   int       `json:"originalSize"`
	CompressedSize int       `json:"compressedSize"`
	Method         string    `json:"method"`
	Mtime          time.Time `json:"mtime"`
}

// Totals aggregates sizes across the operation. Ratio is 1 −
// compressed/original: the fraction of space saved.
type Totals struct {
	Original   int     `json:"original"`
	Compressed int     `json:"compressed"`
	Ratio      float64 `json:"ratio"`
}

// Environment records the producing runtime.
type Environment struct {
	Runtime       string            `json:"runtime"`
	WasmAvailable bool              `json:"wasmAvailable"`
	Versions      map[string]string `json:"versions,omitempty"`
}

// Compatibility lets a consumer of embedded metadata decide whether to trust
// it.
type Compatibility struct {
	MinConsumerVersion string   `json:"minConsumerVersion"`
	Producer           string   `json:"producer"`
	Backends           []string `json:"backends,omitempty"`
}

// ProcessMetadata is the write-once record of one operation.
type ProcessMetadata struct {
	ID            string               `json:"id"`
	Operation     string               `json:"operation"`
	Archive       plugin.ArchiveFormat `json:"archive"`
	Algorithm     plugin.Algorithm     `json:"algo"`
	StartedAt     time.Time            `json:"startedAt"`
	FinishedAt    time.Time            `json:"finishedAt"`
	DurationMs    int64                `json:"durationMs"`
	Files         []FileMeta           `json:"files"`
	Totals        Totals               `json:"totals"`
	Environment   Environment          `json:"environment"`
	Compatibility Compatibility        `json:"compatibility"`
}

// OperationDescriptor is the composer input.
type OperationDescriptor struct {
	Operation  string
	Archive    plugin.ArchiveFormat
	Algorithm  plugin.Algorithm
	StartedAt  time.Time
	FinishedAt time.Time
	Files      []FileMeta

	// Backends names the loaded modules that produced the output, for the
	// compatibility block.
	Backends []string

	// CompressedTotal, when positive, overrides the summed per-file
	// compressed sizes. Used when the output is a single container whose
	// per-entry sizes are not individually observable.
	CompressedTotal int

	// WasmAvailable records whether any non-native platform backend was
	// resolvable in this process.
	WasmAvailable bool

	// Versions maps backend names to versions.
	Versions map[string]string
}

// Compose is a pure transform from descriptor to metadata record.
func Compose(desc OperationDescriptor) *ProcessMetadata {
	totals := Totals{}
	for _, f := range desc.Files {
		totals.Original += f.OriginalSize
		totals.Compressed += f.CompressedSize
	}
	if desc.CompressedTotal > 0 {
		totals.Compressed = desc.CompressedTotal
	}
	if totals.Original > 0 {
		totals.Ratio = 1 - float64(totals.Compressed)/float64(totals.Original)
	}

	return &ProcessMetadata{
		ID:         uuid.NewString(),
		Operation:  desc.Operation,
		Archive:    desc.Archive,
		Algorithm:  desc.Algorithm,
		StartedAt:  desc.StartedAt,
		FinishedAt: desc.FinishedAt,
		DurationMs: desc.FinishedAt.Sub(desc.StartedAt).Milliseconds(),
		Files:      desc.Files,
		Totals:     totals,
		Environment: Environment{
			Runtime:       "go/" + runtime.Version(),
			WasmAvailable: desc.WasmAvailable,
			Versions:      desc.Versions,
		},
		Compatibility: Compatibility{
			MinConsumerVersion: MinConsumerVersion,
			Producer:           ProducerVersion,
			Backends:           desc.Backends,
		},
	}
}

// ReservedPath joins the metadata directory and filename, applying defaults
// for empty components.
func ReservedPath(dir, name string) string {
	if dir == "" {
		dir = DefaultDir
	}
	if name == "" {
		name = DefaultFileName
	}
	return path.Join(dir, name)
}

// GuardSpoofing scans input filenames for collisions with the reserved
// metadata path. Runs before any operation; detection is an error unless the
// caller explicitly allowed such inputs.
func GuardSpoofing(files []plugin.FileTuple, dir, name string, allow bool) error {
	if allow {
		return nil
	}
	reserved := ReservedPath(dir, name)
	reservedDir := path.Clean(dirOf(reserved)) + "/"
	for _, f := range files {
		clean := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if clean == reserved || strings.HasPrefix(clean, reservedDir) {
			return fmt.Errorf("%w: %q (pass --allow-user-meta to permit)", ErrSpoofingDetected, f.Name)
		}
	}
	return nil
}

func dirOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return p
}

// EncodeJSON renders the metadata document embedded into archives.
func (m *ProcessMetadata) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// DecodeJSON parses an embedded metadata document.
func DecodeJSON(data []byte) (*ProcessMetadata, error) {
	var m ProcessMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &m, nil
}
