package protocol_test

import (
	"testing"

	"github.com/Alia5/razerctl/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	type testCase struct {
		name     string
		data     []byte
		expected protocol.Event
	}

	cases := []testCase{
		{
			name:     "dpi notify 1800",
			data:     []byte{0x05, 0x00, 0x07, 0x08},
			expected: protocol.DpiChanged{Value: 1800},
		},
		{
			name:     "dpi notify 400 with trailing bytes",
			data:     []byte{0x05, 0x00, 0x01, 0x90, 0xAA, 0xBB},
			expected: protocol.DpiChanged{Value: 400},
		},
		{
			name:     "dpi outside the legal set",
			data:     []byte{0x05, 0x00, 0x99, 0x99},
			expected: protocol.Unknown{ReportID: 0x05, Data: []byte{0x05, 0x00, 0x99, 0x99}},
		},
		{
			name:     "dpi notify too short",
			data:     []byte{0x05, 0x00},
			expected: protocol.Unknown{ReportID: 0x05, Data: []byte{0x05, 0x00}},
		},
		{
			name:     "battery token at nominal offset",
			data:     []byte{0x04, 0, 0, 0, 0, 0, 0x80, 0x01, 0x37},
			expected: protocol.BatteryChanged{Level: 55, Charging: true},
		},
		{
			name:     "battery token drifted one byte",
			data:     []byte{0x04, 0, 0, 0, 0, 0, 0x00, 0x82, 0x00, 0x42},
			expected: protocol.BatteryChanged{Level: 66, Charging: false},
		},
		{
			name:     "battery level out of range",
			data:     []byte{0x04, 0, 0, 0, 0, 0, 0x80, 0x00, 0xFF},
			expected: protocol.Unknown{ReportID: 0x04, Data: []byte{0x04, 0, 0, 0, 0, 0, 0x80, 0x00, 0xFF}},
		},
		{
			name:     "battery frame too short",
			data:     []byte{0x04, 0x80, 0x01, 0x37},
			expected: protocol.Unknown{ReportID: 0x04, Data: []byte{0x04, 0x80, 0x01, 0x37}},
		},
		{
			name:     "unrecognized report id",
			data:     []byte{0x07, 0x01, 0x02},
			expected: protocol.Unknown{ReportID: 0x07, Data: []byte{0x07, 0x01, 0x02}},
		},
		{
			name:     "empty frame",
			data:     []byte{},
			expected: protocol.Unknown{ReportID: 0x00, Data: []byte{}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := protocol.Decode(protocol.NewRawReport(tc.data))
			assert.Equal(t, tc.expected, ev)
		})
	}
}

func TestNewRawReport(t *testing.T) {
	raw := protocol.NewRawReport([]byte{0x05, 0x00, 0x07, 0x08})
	assert.Equal(t, byte(0x05), raw.ReportID)
	assert.Equal(t, []byte{0x05, 0x00, 0x07, 0x08}, raw.Data)

	raw = protocol.NewRawReport(nil)
	assert.Equal(t, byte(0x00), raw.ReportID)
}
