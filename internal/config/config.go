// Package config defines the CLI structure and configuration for razerctl.
package config

import (
	"github.com/Alia5/razerctl/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"RAZERCTL_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"RAZERCTL_LOG_FILE"`
	RawFile string `help:"Raw HID report log file path (default: none)" env:"RAZERCTL_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log    `embed:"" prefix:"log."`
	Config string `help:"Path to a configuration file" env:"RAZERCTL_CONFIG"`

	Info      cmd.Info      `cmd:"" help:"Enumerate and classify the device's HID interfaces"`
	Dpi       cmd.Dpi       `cmd:"" help:"Set DPI by probing the candidate command catalog"`
	Rate      cmd.Rate      `cmd:"" help:"Set the polling rate (single best-guess command)"`
	Reset     cmd.Reset     `cmd:"" help:"Reset DPI and polling rate to factory defaults"`
	Watch     cmd.Watch     `cmd:"" help:"Monitor device notifications until interrupted"`
	Tray      cmd.Tray      `cmd:"" help:"Run the menu-bar presentation"`
	Handshake cmd.Handshake `cmd:"" help:"Run the diagnostic handshake sequence"`
	Listen    cmd.Listen    `cmd:"" help:"Monitor input reports on every interface (protocol discovery)"`
	Install   cmd.Install   `cmd:"" help:"Configure razerctl tray to start automatically"`
	Uninstall cmd.Uninstall `cmd:"" help:"Remove the automatic startup configuration"`
}
