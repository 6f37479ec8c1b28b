package probe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Alia5/razerctl/internal/hidio"
	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/protocol"
)

// Delays between sends. The device is assumed unable to absorb overlapping
// writes, and asynchronous confirmations need time to arrive before the next
// probe muddies the water.
const (
	frameDelay     = 40 * time.Millisecond
	interfaceDelay = 150 * time.Millisecond
)

// ErrNoInterface is returned when no classified interface can carry any
// frame of the requested command.
var ErrNoInterface = errors.New("probe: no usable interface for command")

// Engine drives the probe catalog across classified interfaces.
type Engine struct {
	tr         hidio.Transport
	logger     *slog.Logger
	raw        rzlog.RawLogger
	strategies []Strategy

	// sleep is injectable so tests run without real delays.
	sleep func(time.Duration)
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithSleep replaces the delay function; tests pass a no-op.
func WithSleep(fn func(time.Duration)) Option {
	return func(e *Engine) { e.sleep = fn }
}

// WithStrategies replaces the default probe catalog.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Engine) { e.strategies = strategies }
}

func New(tr hidio.Transport, logger *slog.Logger, raw rzlog.RawLogger, opts ...Option) *Engine {
	e := &Engine{
		tr:         tr,
		logger:     logger,
		raw:        raw,
		strategies: DefaultStrategies(),
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies every applicable strategy to every interface, in order,
// spacing sends with the fixed delays. Transport write failures are logged
// and skipped; the probe moves on to the next candidate. It returns the
// number of frames actually handed to the transport, and ErrNoInterface if
// that number is zero.
func (e *Engine) Execute(cmd protocol.Command, ifaces []protocol.ClassifiedInterface) (int, error) {
	sent := 0

	for i, iface := range ifaces {
		if i > 0 {
			e.sleep(interfaceDelay)
		}
		for _, s := range e.strategies {
			for _, frame := range s.Frames(cmd, iface) {
				if e.send(iface, frame) {
					sent++
				}
				e.sleep(frameDelay)
			}
		}
	}

	if sent == 0 {
		return 0, ErrNoInterface
	}
	e.logger.Debug("probe complete", "field", cmd.Field, "value", cmd.Value, "framesSent", sent)
	return sent, nil
}

func (e *Engine) send(iface protocol.ClassifiedInterface, frame Frame) bool {
	switch frame.Kind {
	case FrameProperty:
		if err := e.tr.WriteProperty(iface.Interface, frame.Key, frame.Value); err != nil {
			if !errors.Is(err, hidio.ErrPropertyUnsupported) {
				e.logger.Debug("property write failed", "key", frame.Key, "path", iface.Path, "error", err)
			}
			return false
		}
		e.logger.Debug("property write", "key", frame.Key, "value", frame.Value, "path", iface.Path)
		return true

	case FrameFeature:
		if len(frame.Data) > iface.MaxFeatureReportSize && iface.MaxFeatureReportSize > 0 {
			return false
		}
		return e.write(iface, hidio.ReportFeature, frame)

	default:
		if len(frame.Data) > iface.MaxOutputReportSize && iface.MaxOutputReportSize > 0 {
			return false
		}
		return e.write(iface, hidio.ReportOutput, frame)
	}
}

func (e *Engine) write(iface protocol.ClassifiedInterface, typ hidio.ReportType, frame Frame) bool {
	e.raw.Report("send "+frame.Strategy, iface.Path, frame.Data)
	if err := e.tr.WriteReport(iface.Interface, typ, frame.Data); err != nil {
		e.logger.Debug("write failed",
			"strategy", frame.Strategy, "type", typ, "path", iface.Path, "error", err)
		return false
	}
	return true
}

// handshakeFrames is the fixed diagnostic sequence: wake, init, command,
// confirm. Sent as feature reports on the single best candidate interface.
var handshakeFrames = [][]byte{
	{0x00, 0x01},                         // wake
	{0x00, 0x04, 0x00},                   // init
	{0x00, 0x04, 0x05, 0x00, 0x00},       // command (no-op value)
	{0x00, 0x04, 0x05, 0x00, 0x00, 0x01}, // confirm
}

// Handshake runs the diagnostic sequence on the best single candidate: the
// first feature-capable interface, else the first interface. It exists to
// bootstrap protocol discovery, not for production use.
func (e *Engine) Handshake(ifaces []protocol.ClassifiedInterface) error {
	if len(ifaces) == 0 {
		return ErrNoInterface
	}

	target := ifaces[0]
	for _, iface := range ifaces {
		if iface.Roles.Has(protocol.RoleFeatureCapable) {
			target = iface
			break
		}
	}

	e.logger.Info("handshake", "path", target.Path, "roles", target.Roles.String())
	for _, data := range handshakeFrames {
		e.raw.Report("handshake", target.Path, data)
		if err := e.tr.WriteReport(target.Interface, hidio.ReportFeature, data); err != nil {
			e.logger.Warn("handshake frame rejected", "path", target.Path, "error", err)
		}
		e.sleep(frameDelay)
	}
	return nil
}

// ListenAll registers input monitoring on every interface at once and logs
// each frame until ctx is done. Diagnostic mode for empirically observing
// which interface emits notifications.
func (e *Engine) ListenAll(ctx context.Context, ifaces []protocol.ClassifiedInterface) error {
	var stops []func()
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	for _, iface := range ifaces {
		path := iface.Path
		stop, err := e.tr.RegisterInputCallback(iface.Interface, func(data []byte) {
			e.raw.Report("recv", path, data)
			e.logger.Info("input report", "path", path, "len", len(data))
		})
		if err != nil {
			e.logger.Warn("cannot monitor interface", "path", path, "error", err)
			continue
		}
		stops = append(stops, stop)
	}

	if len(stops) == 0 {
		return ErrNoInterface
	}
	e.logger.Info("listening on all interfaces", "count", len(stops))
	<-ctx.Done()
	return nil
}
