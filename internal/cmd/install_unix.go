//go:build !windows

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const desktopEntry = `[Desktop Entry]
Type=Application
Name=razerctl
Comment=Razer mouse control tray
Exec=%s tray
X-GNOME-Autostart-enabled=true
`

func autostartFile() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "autostart", "razerctl.desktop"), nil
}

func install(exePath string, logger *slog.Logger) error {
	path, err := autostartFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	entry := fmt.Sprintf(desktopEntry, exePath)
	if err := os.WriteFile(path, []byte(entry), 0o644); err != nil {
		return err
	}

	logger.Info("autostart entry created", "path", path)
	return nil
}

func uninstall(logger *slog.Logger) error {
	path, err := autostartFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	logger.Info("autostart entry removed", "path", path)
	return nil
}
