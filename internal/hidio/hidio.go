// Package hidio abstracts raw HID access for the protocol engine.
//
// The engine never touches a HID handle directly; it consumes the Transport
// interface, which enumerates logical interfaces, delivers asynchronous input
// reports and accepts output/feature report writes. Two backends exist: the
// default hidapi-based one (cgo) and a pure-Go one selected with the
// `purego` build tag.
package hidio

import (
	"errors"
	"fmt"
)

// ReportType selects which HID report pipe a write targets.
type ReportType int

const (
	ReportOutput ReportType = iota
	ReportFeature
)

func (t ReportType) String() string {
	switch t {
	case ReportOutput:
		return "output"
	case ReportFeature:
		return "feature"
	default:
		return fmt.Sprintf("ReportType(%d)", int(t))
	}
}

// ErrPropertyUnsupported is returned by backends that cannot surface
// device-level named properties. Property access only exists on platforms
// whose HID stack exposes it; callers treat failures as best-effort.
var ErrPropertyUnsupported = errors.New("hidio: device properties not supported by this backend")

// DeviceInfo identifies one matched physical device.
type DeviceInfo struct {
	VendorID    uint16
	ProductID   uint16
	DisplayName string
}

// Interface describes one logical HID interface of an attached device.
//
// Max report sizes are in bytes and include the report ID prefix where the
// interface uses numbered reports. A size of 0 means the descriptor did not
// declare that report type (or the backend could not read it).
type Interface struct {
	Path   string
	Number int

	UsagePage uint16
	Usage     uint16

	MaxInputReportSize   int
	MaxOutputReportSize  int
	MaxFeatureReportSize int
}

// InputHandler receives one raw input report. The first byte of data is the
// report ID when the interface uses numbered reports. Handlers run on the
// backend's reader goroutine and must not block.
type InputHandler func(data []byte)

// Transport is the HID capability consumed by the protocol engine.
type Transport interface {
	// Enumerate lists all logical interfaces of the given device.
	Enumerate(vendorID, productID uint16) ([]Interface, error)

	// RegisterInputCallback starts delivering input reports from iface to
	// fn. The returned stop function cancels delivery and is safe to call
	// more than once.
	RegisterInputCallback(iface Interface, fn InputHandler) (stop func(), err error)

	// WriteReport sends one output or feature report. data must already
	// carry the report ID at data[0].
	WriteReport(iface Interface, typ ReportType, data []byte) error

	// ReadProperty and WriteProperty access device-level named properties.
	// Backends without property support return ErrPropertyUnsupported.
	ReadProperty(iface Interface, key string) (int, error)
	WriteProperty(iface Interface, key string, value int) error

	Close() error
}

// New returns the platform backend.
func New() (Transport, error) {
	return newTransport()
}
