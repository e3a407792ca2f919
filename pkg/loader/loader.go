// Package loader resolves and instantiates the concrete compute backend for a
// platform and algorithm name.
//
// Resolution walks an ordered candidate list: the compiled-in registration
// table first, then plugin-directory manifests at increasing ancestor depth,
// then absolute paths rooted at the process working directory, and finally a
// remote manifest fetch when a remote base URL is configured. The first
// candidate that yields a valid handle wins; the result is cached per
// (kind, platform, name) for the process lifetime.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/zamdevio/droply/pkg/logging"
	"github.com/zamdevio/droply/pkg/plugin"
)

// ErrPluginNotFound is returned when every resolution candidate fails. Fatal
// for the specific request, not for the process.
var ErrPluginNotFound = errors.New("droply: plugin not found")

// maxAncestorDepth bounds the relative-path candidate walk.
const maxAncestorDepth = 3

// Handle is a loaded, validated backend.
type Handle struct {
	Info        plugin.Info
	Compression plugin.CompressionBackend
	Archive     plugin.ArchiveBackend

	// Source describes the candidate that produced the handle.
	Source string
}

// Options configure a Loader.
type Options struct {
	PluginDirs []string
	WorkDir    string

	// RemoteBaseURL enables the remote manifest candidate.
	RemoteBaseURL string
	FetchTimeout  time.Duration

	// HTTPClient overrides the default client. Used by tests.
	HTTPClient *http.Client
}

// Loader resolves backends. Safe for concurrent use; loads for the same key
// are single-flight.
type Loader struct {
	fs     afero.Fs
	logger *logging.Logger
	table  *plugin.Table
	opts   Options
	client *http.Client

	mu    sync.Mutex
	cache map[string]*Handle
	group singleflight.Group
}

// New creates a Loader backed by the registration table.
func New(fs afero.Fs, logger *logging.Logger, table *plugin.Table, opts Options) *Loader {
	if len(opts.PluginDirs) == 0 {
		opts.PluginDirs = []string{"plugins"}
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Loader{
		fs:     fs,
		logger: logger,
		table:  table,
		opts:   opts,
		client: client,
		cache:  make(map[string]*Handle),
	}
}

// LoadCompression resolves a compression backend.
func (l *Loader) LoadCompression(ctx context.Context, platform plugin.Platform, algo string) (*Handle, error) {
	return l.load(ctx, plugin.KindCompression, platform, algo)
}

// LoadArchive resolves an archive backend.
func (l *Loader) LoadArchive(ctx context.Context, platform plugin.Platform, format string) (*Handle, error) {
	return l.load(ctx, plugin.KindArchive, platform, format)
}

func (l *Loader) load(ctx context.Context, kind plugin.Kind, platform plugin.Platform, name string) (*Handle, error) {
	key := plugin.ConventionalPath(platform, kind, name)

	l.mu.Lock()
	if h, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return h, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		h, err := l.resolve(ctx, kind, platform, name)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = h
		l.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

type candidate struct {
	desc string
	load func(ctx context.Context) (*Handle, error)
}

func (l *Loader) resolve(ctx context.Context, kind plugin.Kind, platform plugin.Platform, name string) (*Handle, error) {
	var reasons []string
	for _, c := range l.candidates(kind, platform, name) {
		h, err := c.load(ctx)
		if err != nil {
			l.logger.Debug("plugin candidate failed", "candidate", c.desc, "err", err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", c.desc, err))
			continue
		}
		if err := validateHandle(h, kind); err != nil {
			// A loadable module with the wrong export set fails this
			// candidate only; later candidates may still provide it.
			l.logger.Debug("plugin candidate rejected", "candidate", c.desc, "err", err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", c.desc, err))
			continue
		}
		h.Source = c.desc
		l.logger.Debug("plugin loaded", "kind", kind, "name", name, "source", c.desc)
		return h, nil
	}
	return nil, fmt.Errorf("%w: no %s plugin %q for platform %s (tried %s)",
		ErrPluginNotFound, kind, name, platform, strings.Join(reasons, "; "))
}

func (l *Loader) candidates(kind plugin.Kind, platform plugin.Platform, name string) []candidate {
	var cands []candidate

	// (a) registration table, addressed by the conventional package path.
	path := plugin.ConventionalPath(platform, kind, name)
	cands = append(cands, candidate{
		desc: "table:" + path,
		load: func(context.Context) (*Handle, error) {
			reg, ok := l.table.Lookup(path)
			if !ok {
				return nil, fmt.Errorf("not registered")
			}
			return &Handle{Info: reg.Info, Compression: reg.Compression, Archive: reg.Archive}, nil
		},
	})

	// (b) relative manifests at increasing ancestor depth.
	rel := filepath.Join(string(platform), string(kind), name, plugin.ManifestFileName)
	for depth := 0; depth <= maxAncestorDepth; depth++ {
		up := strings.Repeat("../", depth)
		for _, dir := range l.opts.PluginDirs {
			manifestPath := filepath.Join(up+dir, rel)
			cands = append(cands, candidate{
				desc: "manifest:" + manifestPath,
				load: func(context.Context) (*Handle, error) {
					return l.loadManifestFile(manifestPath, kind, platform, name)
				},
			})
		}
	}

	// (c) absolute paths derived from the working directory.
	if l.opts.WorkDir != "" {
		for _, dir := range l.opts.PluginDirs {
			manifestPath := filepath.Join(l.opts.WorkDir, dir, rel)
			cands = append(cands, candidate{
				desc: "manifest:" + manifestPath,
				load: func(context.Context) (*Handle, error) {
					return l.loadManifestFile(manifestPath, kind, platform, name)
				},
			})
		}
	}

	// (d) remotely hosted manifest, bounded by the fetch timeout.
	if l.opts.RemoteBaseURL != "" {
		url := strings.TrimRight(l.opts.RemoteBaseURL, "/") + "/" +
			strings.Join([]string{string(platform), string(kind), name, plugin.ManifestFileName}, "/")
		cands = append(cands, candidate{
			desc: "remote:" + url,
			load: func(ctx context.Context) (*Handle, error) {
				return l.loadRemoteManifest(ctx, url, kind, platform, name)
			},
		})
	}

	return cands
}

func (l *Loader) loadManifestFile(path string, kind plugin.Kind, platform plugin.Platform, name string) (*Handle, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	return l.bindManifest(data, kind, platform, name)
}

func (l *Loader) loadRemoteManifest(ctx context.Context, url string, kind plugin.Kind, platform plugin.Platform, name string) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return l.bindManifest(data, kind, platform, name)
}

// bindManifest parses a plugin.json document and binds it to a registered
// compute implementation. Manifests carry metadata; the compute itself always
// resolves through the typed registration table, falling back to the native
// platform when the manifest's own platform has no registration.
func (l *Loader) bindManifest(data []byte, kind plugin.Kind, platform plugin.Platform, name string) (*Handle, error) {
	m, err := plugin.ParseManifest(data)
	if err != nil {
		return nil, err
	}
	if m.Kind() != kind {
		return nil, fmt.Errorf("manifest is a %s plugin, want %s", m.Kind(), kind)
	}
	if !strings.EqualFold(m.Subject(), name) {
		return nil, fmt.Errorf("manifest provides %q, want %q", m.Subject(), name)
	}

	binding := m.Binding()
	reg, ok := l.table.Find(platform, kind, binding)
	if !ok {
		reg, ok = l.table.Find(plugin.PlatformNative, kind, binding)
	}
	if !ok {
		return nil, fmt.Errorf("manifest binds to unregistered backend %q", binding)
	}

	info := reg.Info
	if m.Version != "" {
		info.Version = m.Version
	}
	if m.Levels != nil {
		info.Levels = *m.Levels
	}
	return &Handle{Info: info, Compression: reg.Compression, Archive: reg.Archive}, nil
}

// validateHandle checks the export set of a loaded handle.
func validateHandle(h *Handle, kind plugin.Kind) error {
	switch kind {
	case plugin.KindCompression:
		if h.Compression == nil {
			return fmt.Errorf("module exports no compress/decompress functions")
		}
	case plugin.KindArchive:
		if h.Archive == nil {
			return fmt.Errorf("module exports no pack/unpack functions")
		}
	}
	return nil
}
