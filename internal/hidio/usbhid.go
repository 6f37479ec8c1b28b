//go:build purego

package hidio

import (
	"fmt"
	"sync"

	usbhid "rafaelmartins.com/p/usbhid"
)

// Pure-Go backend. It reports per-type maximum sizes directly from the
// library but cannot surface usage page/usage metadata, so classification
// falls back to the size-based rules.
type usbhidTransport struct {
	mu      sync.Mutex
	handles map[string]*usbhid.Device
	closed  bool
}

func newTransport() (Transport, error) {
	return &usbhidTransport{handles: make(map[string]*usbhid.Device)}, nil
}

func (t *usbhidTransport) Enumerate(vendorID, productID uint16) ([]Interface, error) {
	devs, err := usbhid.Enumerate(func(d *usbhid.Device) bool {
		return d.VendorId() == vendorID && d.ProductId() == productID
	})
	if err != nil {
		return nil, fmt.Errorf("hidio: enumerate %04x:%04x: %w", vendorID, productID, err)
	}

	out := make([]Interface, 0, len(devs))
	for i, d := range devs {
		out = append(out, Interface{
			Path:                 d.Path(),
			Number:               i,
			MaxInputReportSize:   int(d.GetInputReportLength()),
			MaxOutputReportSize:  int(d.GetOutputReportLength()),
			MaxFeatureReportSize: int(d.GetFeatureReportLength()),
		})
	}
	return out, nil
}

func (t *usbhidTransport) open(path string) (*usbhid.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("hidio: transport closed")
	}
	if d, ok := t.handles[path]; ok {
		return d, nil
	}
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == path
	}, true, false)
	if err != nil {
		return nil, err
	}
	t.handles[path] = d
	return d, nil
}

func (t *usbhidTransport) RegisterInputCallback(iface Interface, fn InputHandler) (func(), error) {
	d, err := t.open(iface.Path)
	if err != nil {
		return nil, fmt.Errorf("hidio: open %s: %w", iface.Path, err)
	}

	stopCh := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(stopCh) }) }

	go func() {
		for {
			select {
			case <-stopCh:
				return
			default:
			}
			rid, buf, err := d.GetInputReport()
			if err != nil {
				return
			}
			frame := make([]byte, 0, len(buf)+1)
			frame = append(frame, rid)
			frame = append(frame, buf...)
			fn(frame)
		}
	}()

	return stop, nil
}

func (t *usbhidTransport) WriteReport(iface Interface, typ ReportType, data []byte) error {
	d, err := t.open(iface.Path)
	if err != nil {
		return fmt.Errorf("hidio: open %s: %w", iface.Path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("hidio: empty report")
	}

	rid, payload := data[0], data[1:]
	switch typ {
	case ReportFeature:
		err = d.SetFeatureReport(rid, payload)
	default:
		err = d.SetOutputReport(rid, payload)
	}
	if err != nil {
		return fmt.Errorf("hidio: write %s report (%d bytes): %w", typ, len(data), err)
	}
	return nil
}

func (t *usbhidTransport) ReadProperty(Interface, string) (int, error) {
	return 0, ErrPropertyUnsupported
}

func (t *usbhidTransport) WriteProperty(Interface, string, int) error {
	return ErrPropertyUnsupported
}

func (t *usbhidTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, d := range t.handles {
		_ = d.Close()
		delete(t.handles, path)
	}
	t.closed = true
	return nil
}
