// Package configpaths resolves where razerctl keeps its configuration and
// cached device profile.
package configpaths

import (
	"os"
	"path/filepath"
)

const appDir = "razerctl"

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// ConfigCandidatePaths lists configuration file candidates in priority
// order, grouped by format. A user-supplied path is considered for every
// format since kong tries the loaders in sequence.
func ConfigCandidatePaths(userConfig string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userConfig != "" {
		return []string{userConfig}, []string{userConfig}, []string{userConfig}
	}

	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, nil, nil
	}

	jsonPaths = []string{filepath.Join(dir, "config.json")}
	yamlPaths = []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}
	tomlPaths = []string{filepath.Join(dir, "config.toml")}
	return jsonPaths, yamlPaths, tomlPaths
}
