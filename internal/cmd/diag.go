package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rzlog "github.com/Alia5/razerctl/internal/log"
)

// Handshake sends the fixed wake/init/command/confirm sequence to the best
// single candidate interface. Protocol discovery aid, not a production path.
type Handshake struct {
	Device `embed:""`
}

func (c *Handshake) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	return s.Engine().Handshake(s.Interfaces())
}

// Listen registers input monitoring on every interface simultaneously so the
// interface that actually emits notifications can be observed empirically.
type Listen struct {
	Device `embed:""`
}

func (c *Listen) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	logger.Info("press the hardware DPI button or move the mouse; Ctrl-C to stop")
	return s.Engine().ListenAll(ctx, s.Interfaces())
}
