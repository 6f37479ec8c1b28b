package cmd

import (
	"log/slog"

	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/tray"
)

// Tray runs the menu-bar presentation until quit.
type Tray struct {
	Device `embed:""`
}

func (c *Tray) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	return tray.Run(s, logger)
}
