package hidio

// HID report descriptors are a byte-coded DSL of short items. The hidapi
// backend cannot ask the OS for per-type maximum report sizes, so this file
// walks the descriptor and accumulates the payload bits each Input, Output
// and Feature main item contributes per report ID.

// Short item type field values (HID 1.11, 6.2.2.2).
const (
	itemTypeMain   = 0
	itemTypeGlobal = 1
	itemTypeLocal  = 2
)

// Main item tags.
const (
	tagInput   = 0x8
	tagOutput  = 0x9
	tagFeature = 0xB
)

// Global item tags.
const (
	tagUsagePage   = 0x0
	tagReportSize  = 0x7
	tagReportID    = 0x8
	tagReportCount = 0x9
	tagPush        = 0xA
	tagPop         = 0xB
)

// Local item tags.
const tagUsage = 0x0

type descGlobals struct {
	reportSize  uint32
	reportCount uint32
	reportID    uint32
}

// descriptorSizes holds the computed per-type maxima plus the first
// top-level usage page/usage pair seen in the descriptor.
type descriptorSizes struct {
	input, output, feature int

	usagePage uint16
	usage     uint16
}

// parseReportDescriptor computes per-type maximum report sizes in bytes.
// Sizes include one byte for the report ID prefix when the descriptor
// declares numbered reports. Malformed trailing bytes are ignored rather
// than reported: classification degrades gracefully on missing metadata.
func parseReportDescriptor(desc []byte) descriptorSizes {
	var (
		g        descGlobals
		stack    []descGlobals
		out      descriptorSizes
		numbered bool
		sawUsage bool

		// payload bits per report ID, per main item tag
		bits = map[int]map[uint32]uint32{
			tagInput:   {},
			tagOutput:  {},
			tagFeature: {},
		}
	)

	for i := 0; i < len(desc); {
		header := desc[i]
		if header == 0xFE { // long item: 0xFE, size, tag, data
			if i+2 >= len(desc) {
				break
			}
			i += 3 + int(desc[i+1])
			continue
		}

		size := int(header & 0x03)
		if size == 3 {
			size = 4
		}
		typ := int(header >> 2 & 0x03)
		tag := int(header >> 4)
		if i+1+size > len(desc) {
			break
		}

		var value uint32
		for n := 0; n < size; n++ {
			value |= uint32(desc[i+1+n]) << (8 * n)
		}

		switch typ {
		case itemTypeGlobal:
			switch tag {
			case tagUsagePage:
				if !sawUsage {
					out.usagePage = uint16(value)
				}
			case tagReportSize:
				g.reportSize = value
			case tagReportCount:
				g.reportCount = value
			case tagReportID:
				g.reportID = value
				numbered = true
			case tagPush:
				stack = append(stack, g)
			case tagPop:
				if n := len(stack); n > 0 {
					g = stack[n-1]
					stack = stack[:n-1]
				}
			}
		case itemTypeLocal:
			if tag == tagUsage && !sawUsage {
				out.usage = uint16(value)
				sawUsage = true
			}
		case itemTypeMain:
			if tag == tagInput || tag == tagOutput || tag == tagFeature {
				bits[tag][g.reportID] += g.reportSize * g.reportCount
			}
		}

		i += 1 + size
	}

	maxBytes := func(m map[uint32]uint32) int {
		var max uint32
		for _, b := range m {
			if b > max {
				max = b
			}
		}
		if max == 0 {
			return 0
		}
		n := int((max + 7) / 8)
		if numbered {
			n++
		}
		return n
	}

	out.input = maxBytes(bits[tagInput])
	out.output = maxBytes(bits[tagOutput])
	out.feature = maxBytes(bits[tagFeature])
	return out
}
