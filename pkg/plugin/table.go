package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Namespace is the conventional import-path prefix plugins are addressed by.
const Namespace = "droply"

// ConventionalPath builds the canonical lookup path for a backend, mirroring
// the package naming convention of the plugin distribution
// (droply/<platform>/<kind>/<name>).
func ConventionalPath(platform Platform, kind Kind, name string) string {
	return strings.Join([]string{Namespace, string(platform), string(kind), name}, "/")
}

// Registration binds backend metadata to an implementation. Exactly one of
// Compression or Archive must be set, matching Info.Kind.
type Registration struct {
	Info        Info
	Compression CompressionBackend
	Archive     ArchiveBackend
}

// Table is the typed plugin-registration table: the compile-time replacement
// for stringly-typed dynamic imports. It is constructed once at startup and
// handed to the registry and loader; there is no package-global table.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*Registration
}

// NewTable returns an empty registration table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Registration)}
}

// Register adds a backend under the conventional path for platform.
func (t *Table) Register(platform Platform, reg *Registration) error {
	switch reg.Info.Kind {
	case KindCompression:
		if reg.Compression == nil {
			return fmt.Errorf("%w: %s/%s", ErrInvalidRegistration, KindCompression, reg.Info.Name)
		}
	case KindArchive:
		if reg.Archive == nil {
			return fmt.Errorf("%w: %s/%s", ErrInvalidRegistration, KindArchive, reg.Info.Name)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRegistration, reg.Info.Kind)
	}

	path := ConventionalPath(platform, reg.Info.Kind, reg.Info.Name)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, path)
	}
	t.entries[path] = reg
	return nil
}

// Lookup resolves a registration by its conventional path.
func (t *Table) Lookup(path string) (*Registration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	reg, ok := t.entries[path]
	return reg, ok
}

// Find resolves a registration by platform, kind and name.
func (t *Table) Find(platform Platform, kind Kind, name string) (*Registration, bool) {
	return t.Lookup(ConventionalPath(platform, kind, name))
}

// Entries returns all registrations for a platform and kind, sorted by name.
func (t *Table) Entries(platform Platform, kind Kind) []*Registration {
	prefix := ConventionalPath(platform, kind, "")

	t.mu.RLock()
	defer t.mu.RUnlock()

	var regs []*Registration
	for path, reg := range t.entries {
		if strings.HasPrefix(path, prefix) {
			regs = append(regs, reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Info.Name < regs[j].Info.Name })
	return regs
}

// Len returns the number of registered backends across all platforms.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
