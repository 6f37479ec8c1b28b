package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/session"
)

// Watch attaches a session and prints every published state change until
// interrupted.
type Watch struct {
	Device `embed:""`
}

func (c *Watch) Run(logger *slog.Logger, raw rzlog.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, tr, err := c.connect(logger, raw)
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()
	defer s.Disconnect()

	cancel := s.Subscribe(func(st session.Status) {
		fmt.Println(formatStatus(st))
	})
	defer cancel()

	logger.Info("watching; press Ctrl-C to stop")
	<-ctx.Done()
	return nil
}

func formatStatus(st session.Status) string {
	dpi := "?"
	if st.DPI > 0 {
		dpi = fmt.Sprint(st.DPI)
	}
	rate := "?"
	if st.PollingRate > 0 {
		rate = fmt.Sprint(st.PollingRate)
	}
	battery := "?"
	if st.BatteryLevel >= 0 {
		battery = fmt.Sprintf("%d%%", st.BatteryLevel)
		if st.Charging {
			battery += " charging"
		}
	}
	state := "disconnected"
	if st.Connected {
		state = "connected " + st.Mode.String()
	}
	out := fmt.Sprintf("%s dpi=%s rate=%s battery=%s", state, dpi, rate, battery)
	for _, p := range st.Pending {
		out += fmt.Sprintf(" pending[%s->%d]", p.Field, p.Target)
	}
	return out
}
