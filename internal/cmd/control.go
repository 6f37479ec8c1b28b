package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/protocol"
	"github.com/Alia5/razerctl/internal/session"
)

// Dpi sets the sensor DPI by probing the candidate command catalog and
// waiting for device-originated confirmation.
type Dpi struct {
	Device `embed:""`

	Value int `arg:"" help:"Target DPI (one of the device's legal values)"`
}

func (c *Dpi) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	result, err := s.SetDPI(c.Value)
	if err != nil {
		if errors.Is(err, session.ErrInvalidArgument) {
			return fmt.Errorf("dpi %d is not a legal value; legal values: %s",
				c.Value, joinInts(protocol.LegalDPI))
		}
		return err
	}

	res, ok := awaitResult(result)
	if ok && res.Confirmed {
		fmt.Printf("dpi %d confirmed by device\n", c.Value)
		saveProfile(logger, s.Status())
		return nil
	}
	fmt.Printf("dpi %d sent but not confirmed; the device may or may not have applied it\n", c.Value)
	return nil
}

// Rate sets the polling rate with a single best-guess feature command.
type Rate struct {
	Device `embed:""`

	Hz int `arg:"" help:"Polling rate in Hz (125, 500 or 1000)"`
}

func (c *Rate) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	result, err := s.SetPollingRate(c.Hz)
	if err != nil {
		if errors.Is(err, session.ErrInvalidArgument) {
			return fmt.Errorf("rate %d is not a legal value; legal values: %s",
				c.Hz, joinInts(protocol.PollingRates()))
		}
		return err
	}

	res, ok := awaitResult(result)
	if ok && res.Confirmed {
		fmt.Printf("polling rate %d Hz confirmed by device\n", c.Hz)
		return nil
	}
	fmt.Printf("polling rate %d Hz sent; no notification format exists to confirm it\n", c.Hz)
	return nil
}

// Reset restores factory defaults for DPI and polling rate.
type Reset struct {
	Device `embed:""`
}

func (c *Reset) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	dpiRes, rateRes, err := s.ResetToDefault()
	if err != nil {
		return err
	}

	if res, ok := awaitResult(dpiRes); ok && res.Confirmed {
		fmt.Printf("dpi %d confirmed by device\n", protocol.DefaultDPI)
	} else {
		fmt.Printf("dpi %d sent but not confirmed\n", protocol.DefaultDPI)
	}
	if res, ok := awaitResult(rateRes); ok && res.Confirmed {
		fmt.Printf("polling rate %d Hz confirmed by device\n", protocol.DefaultPollingRate)
	} else {
		fmt.Printf("polling rate %d Hz sent but not confirmed\n", protocol.DefaultPollingRate)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
