// Package cmd implements the razerctl subcommands invoked by Kong.
package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/razerctl/internal/configpaths"
	"github.com/Alia5/razerctl/internal/hidio"
	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/profile"
	"github.com/Alia5/razerctl/internal/session"
)

// Device holds the device-selection flags shared by every subcommand.
type Device struct {
	VendorID  uint16 `help:"USB vendor id of the target device" default:"0x1532" env:"RAZERCTL_VENDOR_ID"`
	ProductID uint16 `help:"USB product id of the target device" default:"0x00b9" env:"RAZERCTL_PRODUCT_ID"`
}

// connect opens the HID transport and attaches a session. The caller owns
// both and must Disconnect/Close them.
func (d Device) connect(logger *slog.Logger, raw rzlog.RawLogger) (*session.Session, hidio.Transport, error) {
	tr, err := hidio.New()
	if err != nil {
		return nil, nil, err
	}

	var preferPath string
	if dir, err := configpaths.DefaultConfigDir(); err == nil {
		if p, err := profile.Load(profile.DefaultFile(dir)); err == nil && p != nil {
			preferPath = p.Path
		} else if err != nil {
			logger.Debug("profile cache unreadable", "error", err)
		}
	}

	s := session.New(tr, session.Options{
		VendorID:   d.VendorID,
		ProductID:  d.ProductID,
		PreferPath: preferPath,
		Logger:     logger,
		Raw:        raw,
	})
	if err := s.Connect(); err != nil {
		_ = tr.Close()
		return nil, nil, fmt.Errorf("connect %04x:%04x: %w", d.VendorID, d.ProductID, err)
	}
	return s, tr, nil
}

// saveProfile caches the confirmed state for the next run. Best effort.
func saveProfile(logger *slog.Logger, st session.Status) {
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return
	}

	path := ""
	if len(st.Interfaces) > 0 {
		path = st.Interfaces[0].Path
	}
	p := profile.Profile{
		Path:            path,
		LastDPI:         st.DPI,
		LastPollingRate: st.PollingRate,
	}
	if err := profile.Save(profile.DefaultFile(dir), p); err != nil {
		logger.Debug("profile cache not written", "error", err)
	}
}

// awaitResult waits for the pending-change outcome with a safety margin on
// top of the tracker's own deadline.
func awaitResult(ch <-chan session.ChangeResult) (session.ChangeResult, bool) {
	select {
	case res := <-ch:
		return res, true
	case <-time.After(session.ConfirmWindow + time.Second):
		return session.ChangeResult{}, false
	}
}
