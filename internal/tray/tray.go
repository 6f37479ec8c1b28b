// Package tray is the menu-bar presentation of a device session: current
// DPI/battery in the tooltip, pickers for DPI and polling rate. It only
// consumes the session's public surface.
package tray

import (
	"fmt"
	"log/slog"

	"fyne.io/systray"
	"github.com/ncruces/zenity"

	"github.com/Alia5/razerctl/internal/protocol"
	"github.com/Alia5/razerctl/internal/session"
)

// Run blocks until Quit is selected. The caller owns the session lifecycle.
func Run(s *session.Session, logger *slog.Logger) error {
	t := &tray{s: s, logger: logger}
	systray.Run(t.onReady, t.onExit)
	return nil
}

type tray struct {
	s      *session.Session
	logger *slog.Logger

	unsubscribe func()
}

func (t *tray) onReady() {
	systray.SetTitle("razerctl")
	systray.SetTooltip(tooltip(t.s.Status()))

	dpiRoot := systray.AddMenuItem("DPI", "Set sensor DPI")
	for _, value := range protocol.LegalDPI {
		item := dpiRoot.AddSubMenuItem(fmt.Sprint(value), "")
		go t.clickLoop(item, func() { t.setDPI(value) })
	}

	rateRoot := systray.AddMenuItem("Polling rate", "Set polling rate")
	for _, hz := range protocol.PollingRates() {
		item := rateRoot.AddSubMenuItem(fmt.Sprintf("%d Hz", hz), "")
		go t.clickLoop(item, func() { t.setRate(hz) })
	}

	systray.AddSeparator()
	reset := systray.AddMenuItem("Reset to defaults", "")
	go t.clickLoop(reset, t.reset)

	quit := systray.AddMenuItem("Quit", "")
	go func() {
		<-quit.ClickedCh
		systray.Quit()
	}()

	t.unsubscribe = t.s.Subscribe(func(st session.Status) {
		systray.SetTooltip(tooltip(st))
	})
}

func (t *tray) onExit() {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
}

func (t *tray) clickLoop(item *systray.MenuItem, fn func()) {
	for range item.ClickedCh {
		fn()
	}
}

func (t *tray) setDPI(value int) {
	if _, err := t.s.SetDPI(value); err != nil {
		t.fail(fmt.Sprintf("Cannot set DPI to %d", value), err)
	}
}

func (t *tray) setRate(hz int) {
	if _, err := t.s.SetPollingRate(hz); err != nil {
		t.fail(fmt.Sprintf("Cannot set polling rate to %d Hz", hz), err)
	}
}

func (t *tray) reset() {
	if _, _, err := t.s.ResetToDefault(); err != nil {
		t.fail("Cannot reset to defaults", err)
	}
}

func (t *tray) fail(title string, err error) {
	t.logger.Error(title, "error", err)
	_ = zenity.Error(err.Error(), zenity.Title(title))
}

func tooltip(st session.Status) string {
	if !st.Connected {
		return "razerctl: disconnected"
	}
	out := "razerctl: " + st.Mode.String()
	if st.DPI > 0 {
		out += fmt.Sprintf(", %d dpi", st.DPI)
	}
	if st.BatteryLevel >= 0 {
		out += fmt.Sprintf(", battery %d%%", st.BatteryLevel)
		if st.Charging {
			out += " (charging)"
		}
	}
	return out
}
