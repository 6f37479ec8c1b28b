// Package profile persists the last known device state between runs: which
// interface last carried confirmed traffic and the last confirmed settings.
// The cache only orders reconnect candidates; it is never trusted as device
// state.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml"
)

// Profile is the persisted device profile.
type Profile struct {
	Path            string    `toml:"path"`
	LastDPI         int       `toml:"lastDpi"`
	LastPollingRate int       `toml:"lastPollingRate"`
	UpdatedAt       time.Time `toml:"updatedAt"`
}

const fileName = "profile.toml"

// DefaultFile returns the profile location inside dir.
func DefaultFile(dir string) string {
	return filepath.Join(dir, fileName)
}

// Load reads the profile at path. A missing file is not an error; it returns
// (nil, nil).
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}

	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: parse %s: %w", path, err)
	}
	return &p, nil
}

// Save writes the profile to path, creating parent directories as needed.
func Save(path string, p Profile) error {
	p.UpdatedAt = time.Now()
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("profile: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("profile: write %s: %w", path, err)
	}
	return nil
}
