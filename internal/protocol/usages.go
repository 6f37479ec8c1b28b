// Package protocol implements the vendor HID protocol engine for the target
// mouse: interface classification, input-report decoding and outbound frame
// construction.
//
// The vendor command format is undocumented. Constants in this package are
// either taken from the HID usage tables or empirically observed on the
// target hardware; frame builders produce *candidate* encodings, not a
// verified protocol.
package protocol

// Usage pages, per HID Usage Tables.
const (
	UsagePageGenericDesktop uint16 = 0x01
	UsagePageVendor         uint16 = 0xFF00
)

// Generic Desktop usages.
const (
	UsagePointer uint16 = 0x01
	UsageMouse   uint16 = 0x02
)

// Vendor-page usage observed on the interface that delivers asynchronous
// hardware notifications (DPI stage button, battery telemetry).
const UsageVendorControl uint16 = 0x0001

// Target product identity.
const (
	VendorIDRazer   uint16 = 0x1532
	ProductIDTarget uint16 = 0x00B9
)

// DpiNotifyReportID is the only input report the decoder understands
// structurally: [id=5][unused][dpiHigh][dpiLow]... with the DPI value
// big-endian at offsets 2-3.
const DpiNotifyReportID byte = 0x05

// BatteryNotifyReportID carries battery telemetry in the token format the
// hardware family emits (token byte, charging flag, level).
const BatteryNotifyReportID byte = 0x04
