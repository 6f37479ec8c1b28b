package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Alia5/razerctl/internal/hidio"
	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/probe"
	"github.com/Alia5/razerctl/internal/protocol"
)

var (
	// ErrInvalidArgument rejects values outside the enumerated legal sets,
	// before any transport I/O happens.
	ErrInvalidArgument = errors.New("session: value outside the legal set")

	// ErrDeviceUnavailable means no classified interface exists for the
	// requested operation.
	ErrDeviceUnavailable = errors.New("session: no classified interface for operation")

	ErrNotConnected     = errors.New("session: not connected")
	ErrAlreadyConnected = errors.New("session: already connected")
)

// ConnectionMode is the link heuristic determined at connect time. The
// detection is a placeholder: the hardware family is usually paired through
// its 2.4 GHz dongle, so that is the default assumption.
type ConnectionMode int

const (
	ModeUnknown ConnectionMode = iota
	ModeWired
	ModeWireless24GHz
	ModeBluetooth
)

func (m ConnectionMode) String() string {
	switch m {
	case ModeWired:
		return "wired"
	case ModeWireless24GHz:
		return "wireless-2.4GHz"
	case ModeBluetooth:
		return "bluetooth"
	default:
		return "unknown"
	}
}

// Status is the published session state. DPI and PollingRate are 0 until
// device-originated evidence establishes them; BatteryLevel is -1 until a
// telemetry frame arrives.
type Status struct {
	Connected    bool
	Mode         ConnectionMode
	DPI          int
	PollingRate  int
	BatteryLevel int
	Charging     bool
	Device       hidio.DeviceInfo
	Interfaces   []protocol.ClassifiedInterface
	Pending      []PendingChange
}

// Options configures a session.
type Options struct {
	VendorID  uint16
	ProductID uint16

	// PreferPath fronts the interface with this path during classification
	// (last known good interface from the cached profile).
	PreferPath string

	Clock  Clock
	Logger *slog.Logger
	Raw    rzlog.RawLogger
}

// Session wires transport, classifier, probe engine and tracker together.
//
// Transport callbacks only decode and forward; every state mutation happens
// under the session lock, driven by the run loop or by the public methods.
type Session struct {
	opts    Options
	tr      hidio.Transport
	logger  *slog.Logger
	raw     rzlog.RawLogger
	engine  *probe.Engine
	tracker *tracker

	mu         sync.Mutex
	connected  bool
	connecting bool
	mode       ConnectionMode
	dpi        int
	rate       int
	battery    int
	charging   bool
	device     hidio.DeviceInfo
	ifaces     []protocol.ClassifiedInterface
	stops      []func()
	events     chan protocol.Event
	done       chan struct{}

	observers map[int]func(Status)
	nextObs   int
}

// New builds a session over tr. Call Connect before issuing commands.
func New(tr hidio.Transport, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Raw == nil {
		opts.Raw = rzlog.NewRaw(nil)
	}
	if opts.VendorID == 0 {
		opts.VendorID = protocol.VendorIDRazer
	}
	if opts.ProductID == 0 {
		opts.ProductID = protocol.ProductIDTarget
	}

	s := &Session{
		opts:      opts,
		tr:        tr,
		logger:    opts.Logger,
		raw:       opts.Raw,
		engine:    probe.New(tr, opts.Logger, opts.Raw),
		battery:   -1,
		observers: make(map[int]func(Status)),
	}
	s.tracker = newTracker(opts.Clock, s.onResolve)
	return s
}

// Connect enumerates and classifies the device's interfaces and begins input
// monitoring on the notification interface(s).
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.connected || s.connecting {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.connecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	raw, err := s.tr.Enumerate(s.opts.VendorID, s.opts.ProductID)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrDeviceUnavailable
	}
	classified := protocol.ClassifyAll(raw, s.opts.PreferPath)

	events := make(chan protocol.Event, 32)
	done := make(chan struct{})

	var stops []func()
	for _, iface := range classified {
		if !iface.Roles.Has(protocol.RoleInputReport) {
			continue
		}
		path := iface.Path
		stop, err := s.tr.RegisterInputCallback(iface.Interface, func(data []byte) {
			// transport goroutine: decode only, never mutate session state
			s.raw.Report("recv", path, data)
			ev := protocol.Decode(protocol.NewRawReport(data))
			select {
			case events <- ev:
			default: // session loop is behind; drop rather than block the reader
			}
		})
		if err != nil {
			s.logger.Warn("cannot monitor interface", "path", path, "error", err)
			continue
		}
		stops = append(stops, stop)
	}

	s.mu.Lock()
	s.connected = true
	s.mode = ModeWireless24GHz
	s.device = hidio.DeviceInfo{
		VendorID:    s.opts.VendorID,
		ProductID:   s.opts.ProductID,
		DisplayName: "Razer mouse",
	}
	s.ifaces = classified
	s.stops = stops
	s.events = events
	s.done = done
	s.mu.Unlock()

	go s.run(events, done)

	s.logger.Info("connected",
		"vendorId", s.opts.VendorID, "productId", s.opts.ProductID,
		"interfaces", len(classified), "monitored", len(stops))
	s.notify()
	return nil
}

// Disconnect stops input monitoring, forces any armed change terminal and
// clears all derived interface roles. Roles are re-derived on the next
// Connect; interface numbering is not stable across plug cycles.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return
	}
	stops := s.stops
	done := s.done
	s.connected = false
	s.mode = ModeUnknown
	s.ifaces = nil
	s.stops = nil
	s.events = nil
	s.done = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	close(done)
	s.tracker.CancelAll()

	s.logger.Info("disconnected")
	s.notify()
}

func (s *Session) run(events <-chan protocol.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			s.handleEvent(ev)
		}
	}
}

func (s *Session) handleEvent(ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.DpiChanged:
		s.mu.Lock()
		s.dpi = ev.Value
		s.mu.Unlock()
		if s.tracker.Observe(protocol.FieldDPI, ev.Value) {
			s.logger.Info("dpi change confirmed by device", "dpi", ev.Value)
		} else {
			s.logger.Info("hardware dpi change", "dpi", ev.Value)
		}
		s.notify()

	case protocol.BatteryChanged:
		s.mu.Lock()
		s.battery = ev.Level
		s.charging = ev.Charging
		s.mu.Unlock()
		s.logger.Debug("battery", "level", ev.Level, "charging", ev.Charging)
		s.notify()

	case protocol.Unknown:
		s.logger.Log(context.Background(), rzlog.LevelTrace, "unknown report",
			"reportId", ev.ReportID, "len", len(ev.Data))
	}
}

// SetDPI probes every classified interface with the full candidate catalog
// and arms a pending change. The returned channel delivers the confirmation
// outcome; silence until the deadline means unconfirmed, never success.
func (s *Session) SetDPI(value int) (<-chan ChangeResult, error) {
	if !protocol.ValidDPI(value) {
		return nil, ErrInvalidArgument
	}

	s.mu.Lock()
	connected := s.connected
	ifaces := append([]protocol.ClassifiedInterface(nil), s.ifaces...)
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	if len(ifaces) == 0 {
		return nil, ErrDeviceUnavailable
	}

	// arm before sending so an immediate confirmation is not missed
	result := s.tracker.Arm(protocol.FieldDPI, value)

	cmd := protocol.Command{Field: protocol.FieldDPI, Value: value}
	if _, err := s.engine.Execute(cmd, ifaces); err != nil {
		s.tracker.Cancel(protocol.FieldDPI)
		return nil, ErrDeviceUnavailable
	}
	s.notify()
	return result, nil
}

// SetPollingRate sends a single best-guess feature command; the rate path is
// not probed because no notification format exists to confirm it frame by
// frame.
func (s *Session) SetPollingRate(hz int) (<-chan ChangeResult, error) {
	if !protocol.ValidPollingRate(hz) {
		return nil, ErrInvalidArgument
	}

	s.mu.Lock()
	connected := s.connected
	ifaces := append([]protocol.ClassifiedInterface(nil), s.ifaces...)
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}

	var target *protocol.ClassifiedInterface
	for i := range ifaces {
		if ifaces[i].Roles.Has(protocol.RoleFeatureCapable) {
			target = &ifaces[i]
			break
		}
	}
	if target == nil {
		return nil, ErrDeviceUnavailable
	}

	result := s.tracker.Arm(protocol.FieldPollingRate, hz)

	cmd := protocol.Command{Field: protocol.FieldPollingRate, Value: hz}
	frame := protocol.FeatureFrame(cmd, target.MaxFeatureReportSize)
	if len(frame) > target.MaxFeatureReportSize {
		// a frame must never exceed the interface's declared report size;
		// the armed change expires on its own
		s.logger.Warn("feature pipe too small for command",
			"path", target.Path, "declared", target.MaxFeatureReportSize, "frame", len(frame))
		s.notify()
		return result, nil
	}
	s.raw.Report("send rate", target.Path, frame)
	if err := s.tr.WriteReport(target.Interface, hidio.ReportFeature, frame); err != nil {
		// logged, not fatal: the pending change will expire on its own
		s.logger.Warn("polling rate write failed", "path", target.Path, "error", err)
	}
	s.notify()
	return result, nil
}

// ResetToDefault composes SetDPI and SetPollingRate with factory defaults.
func (s *Session) ResetToDefault() (dpi, rate <-chan ChangeResult, err error) {
	dpi, err = s.SetDPI(protocol.DefaultDPI)
	if err != nil {
		return nil, nil, err
	}
	rate, err = s.SetPollingRate(protocol.DefaultPollingRate)
	if err != nil {
		return nil, nil, err
	}
	return dpi, rate, nil
}

// Engine exposes the probe engine for the diagnostic commands.
func (s *Session) Engine() *probe.Engine { return s.engine }

// Interfaces returns the classified interfaces of the current connection.
func (s *Session) Interfaces() []protocol.ClassifiedInterface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.ClassifiedInterface(nil), s.ifaces...)
}

// Status returns a snapshot of the published session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{
		Connected:    s.connected,
		Mode:         s.mode,
		DPI:          s.dpi,
		PollingRate:  s.rate,
		BatteryLevel: s.battery,
		Charging:     s.charging,
		Device:       s.device,
		Interfaces:   append([]protocol.ClassifiedInterface(nil), s.ifaces...),
	}
	for _, f := range []protocol.Field{protocol.FieldDPI, protocol.FieldPollingRate} {
		if p, ok := s.tracker.Pending(f); ok {
			st.Pending = append(st.Pending, p)
		}
	}
	return st
}

// Subscribe registers an observer called after every published state change.
// The returned function cancels the subscription.
func (s *Session) Subscribe(fn func(Status)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	st := s.statusLocked()
	obs := make([]func(Status), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()

	for _, fn := range obs {
		fn(st)
	}
}

// onResolve runs on every terminal pending-change transition. Observed state
// is never touched here: confirmation already updated it via the decoded
// event, and expiry must leave it alone.
func (s *Session) onResolve(res ChangeResult) {
	if res.Confirmed {
		s.logger.Info("change confirmed", "field", res.Field.String(), "target", res.Target)
	} else {
		s.logger.Warn("change unconfirmed", "field", res.Field.String(), "target", res.Target)
	}
	s.notify()
}
