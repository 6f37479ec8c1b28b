package protocol

// Candidate command bytes. The device never confirmed a software-initiated
// change, so these are the most plausible values gathered from captures of
// related hardware, not a verified protocol.
const (
	frameMarker          byte = 0x04
	opcodeSetDPI         byte = 0x05
	opcodeSetPollingRate byte = 0x0F
)

// featureFrameMaxPad caps zero-padding for feature sizes other than the
// observed 90-byte layout.
const featureFrameMaxPad = 64

// checksumFeatureSize is the feature report length on which the trailing
// XOR checksum layout was observed.
const checksumFeatureSize = 90

// Checksum folds b with exclusive-or.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum ^= v
	}
	return sum
}

// LogicalCommand builds the 6-byte logical form of cmd:
// [marker, opcode, valueHigh, valueLow, valueHigh, valueLow]. The value pair
// is doubled because captures of the hardware family show the payload
// repeated once.
func LogicalCommand(cmd Command) []byte {
	opcode, hi, lo := commandBytes(cmd)
	return []byte{frameMarker, opcode, hi, lo, hi, lo}
}

func commandBytes(cmd Command) (opcode, hi, lo byte) {
	switch cmd.Field {
	case FieldPollingRate:
		return opcodeSetPollingRate, 0x00, PollingRateBytes[cmd.Value]
	default:
		return opcodeSetDPI, byte(cmd.Value >> 8), byte(cmd.Value)
	}
}

// Fragment splits data into size-byte frames preserving byte order. The
// last frame may be shorter. It is used against interfaces whose maximum
// output report is too small for the logical command.
func Fragment(data []byte, size int) [][]byte {
	if size <= 0 {
		return nil
	}
	var out [][]byte
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		frame := make([]byte, end-off)
		copy(frame, data[off:end])
		out = append(out, frame)
	}
	return out
}

// ShortPermutations enumerates abbreviated candidate frames built from the
// distinct constituent bytes of the logical command: each byte alone, then
// each pair, on the theory that the device may accept a shorter encoding.
// Duplicate frames are dropped.
func ShortPermutations(cmd Command) [][]byte {
	opcode, hi, lo := commandBytes(cmd)
	parts := dedupBytes([]byte{frameMarker, opcode, hi, lo})

	var out [][]byte
	seen := make(map[string]bool)
	add := func(frame []byte) {
		if !seen[string(frame)] {
			seen[string(frame)] = true
			out = append(out, frame)
		}
	}

	for _, b := range parts {
		add([]byte{b})
	}
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			add([]byte{parts[i], parts[j]})
		}
	}
	return out
}

func dedupBytes(b []byte) []byte {
	var out []byte
	seen := make(map[byte]bool)
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// FeatureFrame builds the full logical frame with a leading zero report ID
// and pads it to the interface's declared feature size.
//
// For the observed 90-byte layout the contract is: zero-pad to 88 bytes,
// append one checksum byte equal to the XOR of bytes 2..87, then one
// trailing zero. Other sizes are zero-padded to the declared size, capped
// at 64, with no checksum.
func FeatureFrame(cmd Command, featureSize int) []byte {
	opcode, hi, lo := commandBytes(cmd)
	logical := []byte{0x00, frameMarker, opcode, hi, lo, hi, lo}

	if featureSize == checksumFeatureSize {
		frame := make([]byte, checksumFeatureSize)
		copy(frame, logical)
		frame[88] = Checksum(frame[2:88])
		frame[89] = 0x00
		return frame
	}

	size := featureSize
	if size > featureFrameMaxPad {
		size = featureFrameMaxPad
	}
	if size < len(logical) {
		size = len(logical)
	}
	frame := make([]byte, size)
	copy(frame, logical)
	return frame
}

// PropertyKeys lists the candidate device-property names tried by the
// property-simulation fallback for a field.
func PropertyKeys(f Field) []string {
	switch f {
	case FieldPollingRate:
		return []string{"ReportInterval", "PollingRate", "ReportRate"}
	default:
		return []string{"DPI", "Resolution", "SensorResolution", "PointerResolution"}
	}
}
