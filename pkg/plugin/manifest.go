package plugin

import (
	"encoding/json"
	"fmt"
)

// ManifestFileName is the per-plugin metadata file produced by the plugin
// build pipeline alongside each compute module.
const ManifestFileName = "plugin.json"

// ManifestCapabilities mirrors the capabilities block of plugin.json.
type ManifestCapabilities struct {
	Compression       bool `json:"compression"`
	Archiving         bool `json:"archiving"`
	MetadataEmbedding bool `json:"metadata_embedding"`
	CompressInside    bool `json:"compress_inside"`
}

// Manifest is the parsed form of a plugin.json document. Algorithm is set for
// compression plugins, Format for archive plugins. Module optionally names the
// backend implementation to bind; when empty the plugin name is used.
type Manifest struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	Type         string               `json:"type"`
	Platform     string               `json:"platform"`
	Algorithm    string               `json:"algorithm,omitempty"`
	Format       string               `json:"format,omitempty"`
	Module       string               `json:"module,omitempty"`
	Description  string               `json:"description,omitempty"`
	Capabilities ManifestCapabilities `json:"capabilities"`
	Levels       *LevelRange          `json:"compression_levels,omitempty"`
	Extensions   []string             `json:"extensions,omitempty"`
}

// ParseManifest decodes and sanity-checks a plugin.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFileName, err)
	}
	switch Kind(m.Type) {
	case KindCompression:
		if m.Algorithm == "" {
			return nil, fmt.Errorf("parse %s: compression plugin %q missing algorithm", ManifestFileName, m.Name)
		}
	case KindArchive:
		if m.Format == "" {
			return nil, fmt.Errorf("parse %s: archive plugin %q missing format", ManifestFileName, m.Name)
		}
	default:
		return nil, fmt.Errorf("parse %s: unknown plugin type %q", ManifestFileName, m.Type)
	}
	return &m, nil
}

// Kind returns the plugin family the manifest describes.
func (m *Manifest) Kind() Kind { return Kind(m.Type) }

// Subject returns the algorithm or format the manifest provides.
func (m *Manifest) Subject() string {
	if m.Kind() == KindArchive {
		return m.Format
	}
	return m.Algorithm
}

// Binding returns the backend name the manifest binds to.
func (m *Manifest) Binding() string {
	if m.Module != "" {
		return m.Module
	}
	return m.Subject()
}

// RegistryDoc is the external per-installation registry document
// (registry.json), listing available plugins per platform. Consumed
// read-only.
type RegistryDoc struct {
	Version   int                         `json:"version"`
	Platforms map[string]RegistryPlatform `json:"platforms"`
}

// RegistryPlatform lists the plugins available for one platform.
type RegistryPlatform struct {
	Compression map[string]RegistryPlugin `json:"compression"`
	Archives    map[string]RegistryPlugin `json:"archives"`
}

// RegistryPlugin describes one plugin entry in a registry document.
type RegistryPlugin struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Extensions []string          `json:"extensions,omitempty"`
	Levels     *LevelRange       `json:"levels,omitempty"`
	Features   []string          `json:"features,omitempty"`
	Paths      map[string]string `json:"paths,omitempty"`
}

// ParseRegistryDoc decodes a registry.json document.
func ParseRegistryDoc(data []byte) (*RegistryDoc, error) {
	var doc RegistryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry document: %w", err)
	}
	if len(doc.Platforms) == 0 {
		return nil, fmt.Errorf("parse registry document: no platforms listed")
	}
	return &doc, nil
}
