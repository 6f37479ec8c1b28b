package hidio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReportDescriptorNumberedReports(t *testing.T) {
	// Vendor collection with three numbered reports:
	// id 5: 15-byte input, id 4: 31-byte output, id 6: 89-byte feature.
	desc := []byte{
		0x06, 0x00, 0xFF, // Usage Page (vendor 0xFF00)
		0x09, 0x01, // Usage (1)
		0xA1, 0x01, // Collection (Application)
		0x85, 0x05, //   Report ID (5)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x0F, //   Report Count (15)
		0x81, 0x02, //   Input
		0x85, 0x04, //   Report ID (4)
		0x95, 0x1F, //   Report Count (31)
		0x91, 0x02, //   Output
		0x85, 0x06, //   Report ID (6)
		0x95, 0x59, //   Report Count (89)
		0xB1, 0x02, //   Feature
		0xC0, // End Collection
	}

	sizes := parseReportDescriptor(desc)
	assert.Equal(t, 16, sizes.input)
	assert.Equal(t, 32, sizes.output)
	assert.Equal(t, 90, sizes.feature)
	assert.Equal(t, uint16(0xFF00), sizes.usagePage)
	assert.Equal(t, uint16(0x0001), sizes.usage)
}

func TestParseReportDescriptorUnnumberedMouse(t *testing.T) {
	desc := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x02, // Usage (Mouse)
		0xA1, 0x01, // Collection (Application)
		0x75, 0x08, //   Report Size (8)
		0x95, 0x03, //   Report Count (3)
		0x81, 0x02, //   Input
		0xC0, // End Collection
	}

	sizes := parseReportDescriptor(desc)
	assert.Equal(t, 3, sizes.input) // no report ID prefix
	assert.Zero(t, sizes.output)
	assert.Zero(t, sizes.feature)
	assert.Equal(t, uint16(0x0001), sizes.usagePage)
	assert.Equal(t, uint16(0x0002), sizes.usage)
}

func TestParseReportDescriptorAccumulatesMainItems(t *testing.T) {
	// Two input main items under the same report ID add up; a second report
	// ID does not inflate the first one's size.
	desc := []byte{
		0x05, 0x01, // Usage Page
		0x09, 0x06, // Usage (Keyboard)
		0xA1, 0x01, // Collection
		0x85, 0x01, //   Report ID (1)
		0x75, 0x01, //   Report Size (1)
		0x95, 0x08, //   Report Count (8) -> 8 bits
		0x81, 0x02, //   Input
		0x75, 0x08, //   Report Size (8)
		0x95, 0x05, //   Report Count (5) -> 40 bits
		0x81, 0x00, //   Input
		0x85, 0x02, //   Report ID (2)
		0x95, 0x01, //   Report Count (1) -> 8 bits
		0x81, 0x02, //   Input
		0xC0,
	}

	sizes := parseReportDescriptor(desc)
	// report 1 dominates: (8+40) bits = 6 bytes, +1 for the report ID
	assert.Equal(t, 7, sizes.input)
}

func TestParseReportDescriptorPushPop(t *testing.T) {
	desc := []byte{
		0x05, 0x01, // Usage Page
		0x09, 0x02, // Usage (Mouse)
		0xA1, 0x01, // Collection
		0x75, 0x08, //   Report Size (8)
		0x95, 0x02, //   Report Count (2)
		0xA4,       //   Push
		0x95, 0x10, //   Report Count (16)
		0xB4,       //   Pop (restores count 2)
		0x81, 0x02, //   Input -> 16 bits
		0xC0,
	}

	sizes := parseReportDescriptor(desc)
	assert.Equal(t, 2, sizes.input)
}

func TestParseReportDescriptorMalformedInput(t *testing.T) {
	// truncated value bytes and stray long items must not panic
	assert.Zero(t, parseReportDescriptor(nil).input)
	assert.Zero(t, parseReportDescriptor([]byte{0x75}).input)
	assert.Zero(t, parseReportDescriptor([]byte{0xFE, 0x02, 0x00, 0xAA, 0xBB}).input)

	sizes := parseReportDescriptor([]byte{
		0x75, 0x08, // Report Size (8)
		0x95, 0x01, // Report Count (1)
		0x81, 0x02, // Input
		0x95, // truncated item
	})
	assert.Equal(t, 1, sizes.input)
}
