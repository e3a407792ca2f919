// Package config loads droply runtime settings from an optional .droply.yaml
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for in the working directory and then
// the home directory.
const FileName = ".droply.yaml"

// Settings holds the runtime configuration for the codec subsystem.
type Settings struct {
	// Platform selects which plugin platform the registry and loader
	// resolve against.
	Platform string `yaml:"platform" env:"DROPLY_PLATFORM"`

	// PluginDirs are directories searched for plugin manifests, relative
	// to the working directory unless absolute.
	PluginDirs []string `yaml:"pluginDirs"`

	// RegistryPaths are candidate locations of the registry.json document.
	RegistryPaths []string `yaml:"registryPaths"`

	// RemoteBaseURL, when set, enables the remote manifest resolution
	// candidate for hosted compute modules.
	RemoteBaseURL string `yaml:"remoteBaseURL" env:"DROPLY_REMOTE_BASE_URL"`

	// FetchTimeoutSec bounds each remote manifest fetch.
	FetchTimeoutSec int `yaml:"fetchTimeoutSec" env:"DROPLY_FETCH_TIMEOUT"`

	// MetaDir and MetaName override the reserved in-archive metadata path.
	MetaDir  string `yaml:"metaDir"`
	MetaName string `yaml:"metaName"`

	Extras env.EnvSet `yaml:"-"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		Platform:        "native",
		PluginDirs:      []string{"plugins"},
		RegistryPaths:   []string{"registry.json", filepath.Join("plugins", "registry.json")},
		FetchTimeoutSec: 30,
	}
}

// FetchTimeout returns the remote fetch timeout as a duration.
func (s *Settings) FetchTimeout() time.Duration {
	if s.FetchTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.FetchTimeoutSec) * time.Second
}

// findConfig searches pwd then home for the config file.
func findConfig(fs afero.Fs, pwd, home string) string {
	for _, dir := range []string{pwd, home} {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, FileName)
		if exists, err := afero.Exists(fs, candidate); err == nil && exists {
			return candidate
		}
	}
	return ""
}

// Load builds Settings from defaults, the first config file found in pwd or
// home, and finally environment overrides.
func Load(fs afero.Fs, pwd, home string) (*Settings, error) {
	settings := Default()

	if path := findConfig(fs, pwd, home); path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	extras, err := env.UnmarshalFromEnviron(settings)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	settings.Extras = extras

	return settings, nil
}

// LoadFromWorkingDir is the common entry: pwd and home from the process
// environment.
func LoadFromWorkingDir(fs afero.Fs) (*Settings, error) {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	home, _ := os.UserHomeDir()
	return Load(fs, pwd, home)
}
