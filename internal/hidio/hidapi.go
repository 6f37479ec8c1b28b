//go:build !purego

package hidio

import (
	"fmt"
	"sync"
	"time"

	"github.com/sstallion/go-hid"
)

// hidapi descriptors can be up to 4096 bytes.
const maxDescriptorSize = 4096

// readTimeout bounds blocking input reads so reader goroutines can observe
// their stop channel.
const readTimeout = 100 * time.Millisecond

type hidapiTransport struct {
	mu      sync.Mutex
	handles map[string]*hid.Device
	closed  bool
}

func newTransport() (Transport, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidio: init hidapi: %w", err)
	}
	return &hidapiTransport{handles: make(map[string]*hid.Device)}, nil
}

func (t *hidapiTransport) Enumerate(vendorID, productID uint16) ([]Interface, error) {
	var out []Interface
	seen := make(map[string]bool)

	err := hid.Enumerate(vendorID, productID, func(info *hid.DeviceInfo) error {
		if seen[info.Path] {
			return nil
		}
		seen[info.Path] = true

		iface := Interface{
			Path:      info.Path,
			Number:    info.InterfaceNbr,
			UsagePage: info.UsagePage,
			Usage:     info.Usage,
		}

		// hidapi exposes usage metadata in the enumeration record but not
		// report sizes; those come from the report descriptor.
		if d, err := t.open(info.Path); err == nil {
			buf := make([]byte, maxDescriptorSize)
			if n, err := d.GetReportDescriptor(buf); err == nil && n > 0 {
				sizes := parseReportDescriptor(buf[:n])
				iface.MaxInputReportSize = sizes.input
				iface.MaxOutputReportSize = sizes.output
				iface.MaxFeatureReportSize = sizes.feature
				if iface.UsagePage == 0 {
					iface.UsagePage = sizes.usagePage
					iface.Usage = sizes.usage
				}
			}
		}

		out = append(out, iface)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hidio: enumerate %04x:%04x: %w", vendorID, productID, err)
	}
	return out, nil
}

func (t *hidapiTransport) open(path string) (*hid.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("hidio: transport closed")
	}
	if d, ok := t.handles[path]; ok {
		return d, nil
	}
	d, err := hid.OpenPath(path)
	if err != nil {
		return nil, err
	}
	t.handles[path] = d
	return d, nil
}

func (t *hidapiTransport) RegisterInputCallback(iface Interface, fn InputHandler) (func(), error) {
	d, err := t.open(iface.Path)
	if err != nil {
		return nil, fmt.Errorf("hidio: open %s: %w", iface.Path, err)
	}

	stopCh := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(stopCh) }) }

	size := iface.MaxInputReportSize
	if size <= 0 {
		size = 65
	}

	go func() {
		buf := make([]byte, size)
		for {
			select {
			case <-stopCh:
				return
			default:
			}
			n, err := d.ReadWithTimeout(buf, readTimeout)
			if err != nil {
				return
			}
			if n > 0 {
				frame := make([]byte, n)
				copy(frame, buf[:n])
				fn(frame)
			}
		}
	}()

	return stop, nil
}

func (t *hidapiTransport) WriteReport(iface Interface, typ ReportType, data []byte) error {
	d, err := t.open(iface.Path)
	if err != nil {
		return fmt.Errorf("hidio: open %s: %w", iface.Path, err)
	}
	switch typ {
	case ReportFeature:
		_, err = d.SendFeatureReport(data)
	default:
		_, err = d.Write(data)
	}
	if err != nil {
		return fmt.Errorf("hidio: write %s report (%d bytes): %w", typ, len(data), err)
	}
	return nil
}

func (t *hidapiTransport) ReadProperty(Interface, string) (int, error) {
	return 0, ErrPropertyUnsupported
}

func (t *hidapiTransport) WriteProperty(Interface, string, int) error {
	return ErrPropertyUnsupported
}

func (t *hidapiTransport) Close() error {
	t.mu.Lock()
	for path, d := range t.handles {
		_ = d.Close()
		delete(t.handles, path)
	}
	t.closed = true
	t.mu.Unlock()
	return hid.Exit()
}
