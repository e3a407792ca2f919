package droply

import (
	"errors"
	"os"

	"github.com/spf13/afero"

	"github.com/zamdevio/droply/pkg/backend"
	"github.com/zamdevio/droply/pkg/config"
	"github.com/zamdevio/droply/pkg/loader"
	"github.com/zamdevio/droply/pkg/logging"
	"github.com/zamdevio/droply/pkg/meta"
	"github.com/zamdevio/droply/pkg/planner"
	"github.com/zamdevio/droply/pkg/plugin"
	"github.com/zamdevio/droply/pkg/registry"
)

var (
	// ErrUnsupportedFormat is returned when a filename carries no
	// recognized compression or archive suffix for the requested
	// operation.
	ErrUnsupportedFormat = errors.New("droply: unrecognized or unsupported file format")

	// ErrNotAnArchive is returned by Extract and List for inputs that are
	// not archives.
	ErrNotAnArchive = errors.New("droply: input is not an archive")
)

// Options are the caller-facing knobs for one operation: the planner's raw
// options plus output naming and metadata policy.
type Options struct {
	planner.RawOptions

	// Output is the base name for the produced file. Extensions are
	// appended by the extension codec.
	Output string

	// AllowUserMeta permits input filenames that collide with the
	// reserved metadata path.
	AllowUserMeta bool

	// MetaFormat selects the report rendering: "text" or "json".
	MetaFormat string

	// MetaDir and MetaName override the reserved in-archive metadata
	// location.
	MetaDir  string
	MetaName string
}

// Result is the outcome of one operation.
type Result struct {
	// Files are the produced (or recovered) file tuples.
	Files []plugin.FileTuple

	// Meta describes this operation.
	Meta *meta.ProcessMetadata

	// Embedded is metadata recovered from an archive, when present.
	Embedded *meta.ProcessMetadata

	// Validation carries the planner verdict. When Validation.Valid is
	// false no operation ran and Files is empty.
	Validation planner.ValidationResult

	// Warnings are non-fatal conditions raised during execution, in
	// addition to the planner's.
	Warnings []string
}

// AllWarnings merges planner and execution warnings.
func (r *Result) AllWarnings() []string {
	out := make([]string, 0, len(r.Validation.Warnings)+len(r.Warnings))
	out = append(out, r.Validation.Warnings...)
	out = append(out, r.Warnings...)
	return out
}

// Engine is the runtime context owning the registration table, capability
// registry, module loader and planner. Construct one at startup and share it;
// all caches live here, not in package globals.
type Engine struct {
	fs       afero.Fs
	logger   *logging.Logger
	settings *config.Settings
	platform plugin.Platform

	table    *plugin.Table
	registry *registry.Service
	loader   *loader.Loader
	planner  *planner.Planner
}

// NewEngine builds an Engine from settings. The built-in backends are
// registered and the discovery/load caches start cold.
func NewEngine(fs afero.Fs, logger *logging.Logger, settings *config.Settings) (*Engine, error) {
	if settings == nil {
		settings = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	table := plugin.NewTable()
	if err := backend.RegisterBuiltins(table); err != nil {
		return nil, err
	}

	platform, ok := plugin.ParsePlatform(settings.Platform)
	if !ok {
		platform = plugin.PlatformNative
	}

	workDir, err := os.Getwd()
	if err != nil {
		workDir = ""
	}

	reg := registry.NewService(fs, logger, table, registry.Options{
		Platform:      platform,
		RegistryPaths: settings.RegistryPaths,
		PluginDirs:    settings.PluginDirs,
	})
	ldr := loader.New(fs, logger, table, loader.Options{
		PluginDirs:    settings.PluginDirs,
		WorkDir:       workDir,
		RemoteBaseURL: settings.RemoteBaseURL,
		FetchTimeout:  settings.FetchTimeout(),
	})

	return &Engine{
		fs:       fs,
		logger:   logger,
		settings: settings,
		platform: platform,
		table:    table,
		registry: reg,
		loader:   ldr,
		planner:  planner.New(reg),
	}, nil
}

// Registry exposes the capability registry.
func (e *Engine) Registry() *registry.Service { return e.registry }

// Loader exposes the module loader.
func (e *Engine) Loader() *loader.Loader { return e.loader }

// Platform returns the active plugin platform.
func (e *Engine) Platform() plugin.Platform { return e.platform }

// wasmAvailable reports whether remotely hosted compute modules are
// reachable in this configuration. Native builds carry their backends
// compiled in, so this only turns true when a remote base URL is set.
func (e *Engine) wasmAvailable() bool {
	return e.settings.RemoteBaseURL != ""
}
