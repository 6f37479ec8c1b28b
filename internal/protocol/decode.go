package protocol

// RawReport is one input report as delivered by the transport. Data carries
// the full report bytes including the report ID prefix at Data[0].
type RawReport struct {
	ReportID byte
	Data     []byte
}

// NewRawReport wraps a transport frame. Empty frames decode to Unknown.
func NewRawReport(data []byte) RawReport {
	var rid byte
	if len(data) > 0 {
		rid = data[0]
	}
	return RawReport{ReportID: rid, Data: data}
}

// Event is a decoded input report.
type Event interface{ isEvent() }

// DpiChanged reports a hardware-originated DPI change, e.g. the DPI stage
// button on the mouse. Value is always a member of LegalDPI.
type DpiChanged struct {
	Value int
}

// BatteryChanged carries battery telemetry.
type BatteryChanged struct {
	Level    int
	Charging bool
}

// Unknown carries any report the decoder does not understand, with its raw
// bytes preserved for diagnostic surfacing.
type Unknown struct {
	ReportID byte
	Data     []byte
}

func (DpiChanged) isEvent()     {}
func (BatteryChanged) isEvent() {}
func (Unknown) isEvent()        {}

type decodeFunc func(RawReport) (Event, bool)

var decoders = map[byte]decodeFunc{
	DpiNotifyReportID:     decodeDpiNotify,
	BatteryNotifyReportID: decodeBatteryNotify,
}

// Decode turns one raw report into a typed event. Reports that carry no
// recognized structure decode to Unknown; Decode itself never fails.
func Decode(raw RawReport) Event {
	if fn, ok := decoders[raw.ReportID]; ok {
		if ev, ok := fn(raw); ok {
			return ev
		}
	}
	return Unknown{ReportID: raw.ReportID, Data: raw.Data}
}

// Layout: [id=5][unused][dpiHigh][dpiLow]... The value is accepted only if
// it is a member of the enumerated DPI set.
func decodeDpiNotify(raw RawReport) (Event, bool) {
	if len(raw.Data) < 4 {
		return nil, false
	}
	value := int(raw.Data[2])<<8 | int(raw.Data[3])
	if !ValidDPI(value) {
		return nil, false
	}
	return DpiChanged{Value: value}, true
}

// Battery frames carry a status token (0x80-0x83) followed by a charging
// flag and a 0-100 level. The token offset drifts by a byte or two between
// firmware revisions, so a short window is scanned.
func decodeBatteryNotify(raw RawReport) (Event, bool) {
	buf := raw.Data
	if len(buf) < 9 {
		return nil, false
	}

	isToken := func(b byte) bool { return b >= 0x80 && b <= 0x83 }

	for _, off := range []int{0, 1, 2} {
		iTok, iChg, iLvl := 6+off, 7+off, 8+off
		if iLvl >= len(buf) || !isToken(buf[iTok]) {
			continue
		}
		lvl := int(buf[iLvl])
		chg := buf[iChg] == 1
		if lvl >= 0 && lvl <= 100 {
			return BatteryChanged{Level: lvl, Charging: chg}, true
		}
	}
	return nil, false
}
