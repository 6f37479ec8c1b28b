//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath  = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValueKey = "razerctl"
)

func install(exePath string, logger *slog.Logger) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer key.Close()

	value := fmt.Sprintf("%q tray", exePath)
	if err := key.SetStringValue(runValueKey, value); err != nil {
		return err
	}

	logger.Info("autorun entry created", "exe", exePath)
	return nil
}

func uninstall(logger *slog.Logger) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return err
	}
	defer key.Close()

	if err := key.DeleteValue(runValueKey); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}

	logger.Info("autorun entry removed")
	return nil
}
