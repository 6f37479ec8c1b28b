package protocol

// LegalDPI is the enumerated set of DPI values the device accepts, in
// ascending order. Decoded DPI notifications outside this set are treated as
// unknown reports.
var LegalDPI = []int{
	400, 800, 1200, 1600, 1800, 2400, 3200, 4000, 5000,
	6400, 8000, 8500, 10000, 12000, 14000, 16000, 20000,
}

// PollingRateBytes maps legal polling rates in Hz to their protocol byte.
var PollingRateBytes = map[int]byte{
	125:  0x08,
	500:  0x02,
	1000: 0x01,
}

// Factory defaults used by reset.
const (
	DefaultDPI         = 800
	DefaultPollingRate = 1000
)

// ValidDPI reports whether v is a member of LegalDPI.
func ValidDPI(v int) bool {
	for _, d := range LegalDPI {
		if d == v {
			return true
		}
	}
	return false
}

// ValidPollingRate reports whether hz is a legal polling rate.
func ValidPollingRate(hz int) bool {
	_, ok := PollingRateBytes[hz]
	return ok
}

// PollingRates returns the legal polling rates in ascending order.
func PollingRates() []int {
	return []int{125, 500, 1000}
}

// Field names one controllable device setting.
type Field int

const (
	FieldDPI Field = iota
	FieldPollingRate
)

func (f Field) String() string {
	switch f {
	case FieldDPI:
		return "dpi"
	case FieldPollingRate:
		return "pollingRate"
	default:
		return "unknown"
	}
}

// Command is one logical outbound intent: set Field to Value.
type Command struct {
	Field Field
	Value int
}
