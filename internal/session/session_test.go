package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/razerctl/internal/hidio"
	rzlog "github.com/Alia5/razerctl/internal/log"
	"github.com/Alia5/razerctl/internal/probe"
	"github.com/Alia5/razerctl/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInterfaces() []hidio.Interface {
	return []hidio.Interface{
		{
			Path: "mouse0", Number: 0,
			UsagePage:          protocol.UsagePageGenericDesktop,
			Usage:              protocol.UsageMouse,
			MaxInputReportSize: 8,
		},
		{
			Path: "vendor1", Number: 1,
			UsagePage:            protocol.UsagePageVendor,
			Usage:                protocol.UsageVendorControl,
			MaxInputReportSize:   16,
			MaxOutputReportSize:  16,
			MaxFeatureReportSize: 90,
		},
	}
}

func newTestSession(t *testing.T, clock Clock) (*Session, *hidio.Mock) {
	t.Helper()
	mock := hidio.NewMock(testInterfaces()...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := New(mock, Options{Clock: clock, Logger: logger})
	s.engine = probe.New(mock, logger, rzlog.NewRaw(nil),
		probe.WithSleep(func(time.Duration) {}))
	return s, mock
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond, msg)
}

func TestConnectClassifiesInterfaces(t *testing.T) {
	s, _ := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	st := s.Status()
	assert.True(t, st.Connected)
	assert.Equal(t, ModeWireless24GHz, st.Mode)
	assert.Equal(t, -1, st.BatteryLevel)
	require.Len(t, st.Interfaces, 2)

	// vendor page ranks first and carries the notification role
	assert.Equal(t, "vendor1", st.Interfaces[0].Path)
	assert.True(t, st.Interfaces[0].Roles.Has(protocol.RoleInputReport))
	assert.True(t, st.Interfaces[1].Roles.Has(protocol.RolePrimaryCommand))

	assert.ErrorIs(t, s.Connect(), ErrAlreadyConnected)
}

func TestSetDPIRejectsInvalidValueBeforeIO(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	_, err := s.SetDPI(1337)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, mock.Writes())

	_, pending := s.tracker.Pending(protocol.FieldDPI)
	assert.False(t, pending)
}

func TestSetDPIRequiresConnection(t *testing.T) {
	s, _ := newTestSession(t, newFakeClock())
	_, err := s.SetDPI(800)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSetDPIConfirmedByDeviceNotification(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	ch, err := s.SetDPI(1600)
	require.NoError(t, err)
	assert.NotEmpty(t, mock.Writes())

	// the device acknowledges with a dpi notification on the vendor interface
	mock.Emit("vendor1", []byte{0x05, 0x00, 0x06, 0x40})

	res := recvResult(t, ch)
	assert.True(t, res.Confirmed)
	assert.Equal(t, 1600, res.Target)

	waitFor(t, func() bool { return s.Status().DPI == 1600 }, "dpi not published")
	assert.Empty(t, s.Status().Pending)
}

func TestSetDPIExpiresWithoutNotification(t *testing.T) {
	clock := newFakeClock()
	s, _ := newTestSession(t, clock)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	ch, err := s.SetDPI(3200)
	require.NoError(t, err)

	st := s.Status()
	require.Len(t, st.Pending, 1)
	assert.Equal(t, StateArmed, st.Pending[0].State)

	clock.Advance(ConfirmWindow)

	res := recvResult(t, ch)
	assert.False(t, res.Confirmed)

	// silence means unconfirmed: observed state stays untouched
	assert.Equal(t, 0, s.Status().DPI)
	assert.Empty(t, s.Status().Pending)
}

func TestHardwareDpiChangePublishedWithoutPending(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	// DPI stage button pressed on the mouse itself
	mock.Emit("vendor1", []byte{0x05, 0x00, 0x03, 0x20})

	waitFor(t, func() bool { return s.Status().DPI == 800 }, "dpi not published")
	assert.Empty(t, s.Status().Pending)
}

func TestBatteryTelemetryPublished(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	mock.Emit("vendor1", []byte{0x04, 0, 0, 0, 0, 0, 0x80, 0x01, 0x37})

	waitFor(t, func() bool { return s.Status().BatteryLevel == 55 }, "battery not published")
	assert.True(t, s.Status().Charging)
}

func TestSetPollingRateWritesSingleFeatureFrame(t *testing.T) {
	clock := newFakeClock()
	s, mock := newTestSession(t, clock)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	ch, err := s.SetPollingRate(500)
	require.NoError(t, err)

	writes := mock.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "vendor1", writes[0].Path)
	assert.Equal(t, hidio.ReportFeature, writes[0].Type)
	require.Len(t, writes[0].Data, 90)
	assert.Equal(t, []byte{0x00, 0x04, 0x0F, 0x00, 0x02, 0x00, 0x02}, writes[0].Data[:7])

	// no notification format exists for the rate; the change can only expire
	clock.Advance(ConfirmWindow)
	assert.False(t, recvResult(t, ch).Confirmed)
}

func TestSetPollingRateSkipsUndersizedFeaturePipe(t *testing.T) {
	clock := newFakeClock()
	iface := hidio.Interface{
		Path: "vendor0", Number: 0,
		UsagePage:           protocol.UsagePageVendor,
		Usage:               protocol.UsageVendorControl,
		MaxInputReportSize:  16,
		MaxOutputReportSize: 16,
		// smallest size that still classifies FeatureCapable, below the
		// 7-byte logical feature frame
		MaxFeatureReportSize: 6,
	}
	mock := hidio.NewMock(iface)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(mock, Options{Clock: clock, Logger: logger})
	s.engine = probe.New(mock, logger, rzlog.NewRaw(nil),
		probe.WithSleep(func(time.Duration) {}))

	require.NoError(t, s.Connect())
	defer s.Disconnect()
	require.True(t, s.Interfaces()[0].Roles.Has(protocol.RoleFeatureCapable))

	ch, err := s.SetPollingRate(500)
	require.NoError(t, err)

	// no frame may exceed the interface's declared report size, so nothing
	// reaches the transport
	assert.Empty(t, mock.Writes())

	clock.Advance(ConfirmWindow)
	assert.False(t, recvResult(t, ch).Confirmed)
}

func TestSetPollingRateRejectsInvalidValue(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	_, err := s.SetPollingRate(250)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, mock.Writes())
}

func TestResetToDefaultArmsBothFields(t *testing.T) {
	clock := newFakeClock()
	s, mock := newTestSession(t, clock)
	require.NoError(t, s.Connect())
	defer s.Disconnect()

	dpiCh, rateCh, err := s.ResetToDefault()
	require.NoError(t, err)

	st := s.Status()
	assert.Len(t, st.Pending, 2)

	mock.Emit("vendor1", []byte{0x05, 0x00, 0x03, 0x20})
	assert.True(t, recvResult(t, dpiCh).Confirmed)

	clock.Advance(ConfirmWindow)
	assert.False(t, recvResult(t, rateCh).Confirmed)
}

func TestDisconnectForcesPendingTerminal(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())
	require.NoError(t, s.Connect())

	ch, err := s.SetDPI(1600)
	require.NoError(t, err)

	s.Disconnect()

	res := recvResult(t, ch)
	assert.False(t, res.Confirmed)

	st := s.Status()
	assert.False(t, st.Connected)
	assert.Equal(t, ModeUnknown, st.Mode)
	assert.Empty(t, st.Interfaces)

	// callbacks are detached; late reports change nothing
	mock.Emit("vendor1", []byte{0x05, 0x00, 0x06, 0x40})
	assert.Equal(t, 0, s.Status().DPI)

	// disconnect is idempotent, reconnect re-derives roles
	s.Disconnect()
	require.NoError(t, s.Connect())
	assert.Len(t, s.Status().Interfaces, 2)
	s.Disconnect()
}

// gatedTransport blocks Enumerate until released so connection attempts can
// be interleaved deterministically.
type gatedTransport struct {
	hidio.Transport
	entered chan struct{}
	release chan struct{}
}

func (t *gatedTransport) Enumerate(vendorID, productID uint16) ([]hidio.Interface, error) {
	t.entered <- struct{}{}
	<-t.release
	return t.Transport.Enumerate(vendorID, productID)
}

func TestConnectRejectsConcurrentAttempts(t *testing.T) {
	mock := hidio.NewMock(testInterfaces()...)
	gate := &gatedTransport{
		Transport: mock,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(gate, Options{Clock: newFakeClock(), Logger: logger})

	done := make(chan error, 1)
	go func() { done <- s.Connect() }()
	<-gate.entered

	// the first attempt holds the connection while still enumerating
	assert.ErrorIs(t, s.Connect(), ErrAlreadyConnected)

	close(gate.release)
	require.NoError(t, <-done)
	defer s.Disconnect()
	assert.True(t, s.Status().Connected)
}

func TestSubscribePublishesStateChanges(t *testing.T) {
	s, mock := newTestSession(t, newFakeClock())

	var mu sync.Mutex
	var last Status
	var calls int
	cancel := s.Subscribe(func(st Status) {
		mu.Lock()
		last = st
		calls++
		mu.Unlock()
	})

	require.NoError(t, s.Connect())
	defer s.Disconnect()

	mu.Lock()
	assert.True(t, last.Connected)
	mu.Unlock()

	mock.Emit("vendor1", []byte{0x05, 0x00, 0x07, 0x08})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last.DPI == 1800
	}, "observer did not see dpi change")

	cancel()
	mu.Lock()
	before := calls
	mu.Unlock()

	mock.Emit("vendor1", []byte{0x05, 0x00, 0x03, 0x20})
	waitFor(t, func() bool { return s.Status().DPI == 800 }, "dpi not published")

	mu.Lock()
	assert.Equal(t, before, calls)
	mu.Unlock()
}
