package protocol_test

import (
	"testing"

	"github.com/Alia5/razerctl/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalCommand(t *testing.T) {
	type testCase struct {
		name     string
		cmd      protocol.Command
		expected []byte
	}

	cases := []testCase{
		{
			name:     "dpi 1800",
			cmd:      protocol.Command{Field: protocol.FieldDPI, Value: 1800},
			expected: []byte{0x04, 0x05, 0x07, 0x08, 0x07, 0x08},
		},
		{
			name:     "dpi 800",
			cmd:      protocol.Command{Field: protocol.FieldDPI, Value: 800},
			expected: []byte{0x04, 0x05, 0x03, 0x20, 0x03, 0x20},
		},
		{
			name:     "dpi 20000",
			cmd:      protocol.Command{Field: protocol.FieldDPI, Value: 20000},
			expected: []byte{0x04, 0x05, 0x4e, 0x20, 0x4e, 0x20},
		},
		{
			name:     "polling rate 1000",
			cmd:      protocol.Command{Field: protocol.FieldPollingRate, Value: 1000},
			expected: []byte{0x04, 0x0F, 0x00, 0x01, 0x00, 0x01},
		},
		{
			name:     "polling rate 500",
			cmd:      protocol.Command{Field: protocol.FieldPollingRate, Value: 500},
			expected: []byte{0x04, 0x0F, 0x00, 0x02, 0x00, 0x02},
		},
		{
			name:     "polling rate 125",
			cmd:      protocol.Command{Field: protocol.FieldPollingRate, Value: 125},
			expected: []byte{0x04, 0x0F, 0x00, 0x08, 0x00, 0x08},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, protocol.LogicalCommand(tc.cmd))
		})
	}
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, byte(0x00), protocol.Checksum(nil))
	assert.Equal(t, byte(0x42), protocol.Checksum([]byte{0x42}))
	assert.Equal(t, byte(0x00), protocol.Checksum([]byte{0x42, 0x42}))
	assert.Equal(t, byte(0x05^0x07^0x08^0x07^0x08), protocol.Checksum([]byte{0x05, 0x07, 0x08, 0x07, 0x08}))
}

func TestFragment(t *testing.T) {
	logical := protocol.LogicalCommand(protocol.Command{Field: protocol.FieldDPI, Value: 1800})

	type testCase struct {
		name     string
		size     int
		expected [][]byte
	}

	cases := []testCase{
		{
			name: "single byte frames",
			size: 1,
			expected: [][]byte{
				{0x04}, {0x05}, {0x07}, {0x08}, {0x07}, {0x08},
			},
		},
		{
			name: "two byte frames",
			size: 2,
			expected: [][]byte{
				{0x04, 0x05}, {0x07, 0x08}, {0x07, 0x08},
			},
		},
		{
			name: "uneven tail",
			size: 4,
			expected: [][]byte{
				{0x04, 0x05, 0x07, 0x08}, {0x07, 0x08},
			},
		},
		{
			name:     "fits in one frame",
			size:     8,
			expected: [][]byte{{0x04, 0x05, 0x07, 0x08, 0x07, 0x08}},
		},
		{
			name:     "invalid size",
			size:     0,
			expected: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, protocol.Fragment(logical, tc.size))
		})
	}
}

func TestShortPermutations(t *testing.T) {
	// 1800 = 0x0708: marker, opcode and both value bytes are distinct,
	// so 4 singles plus C(4,2)=6 pairs.
	frames := protocol.ShortPermutations(protocol.Command{Field: protocol.FieldDPI, Value: 1800})
	assert.Len(t, frames, 10)

	seen := make(map[string]bool)
	for _, f := range frames {
		assert.LessOrEqual(t, len(f), 2)
		assert.False(t, seen[string(f)], "duplicate frame %x", f)
		seen[string(f)] = true
	}

	// 1200 = 0x04B0: the high value byte collides with the frame marker,
	// leaving 3 distinct bytes: 3 singles plus 3 pairs.
	frames = protocol.ShortPermutations(protocol.Command{Field: protocol.FieldDPI, Value: 1200})
	assert.Len(t, frames, 6)
}

func TestFeatureFrameChecksumLayout(t *testing.T) {
	frame := protocol.FeatureFrame(protocol.Command{Field: protocol.FieldDPI, Value: 1800}, 90)
	require.Len(t, frame, 90)

	assert.Equal(t, byte(0x00), frame[0])
	assert.Equal(t, []byte{0x04, 0x05, 0x07, 0x08, 0x07, 0x08}, frame[1:7])
	for i := 7; i < 88; i++ {
		assert.Equal(t, byte(0x00), frame[i], "padding byte %d", i)
	}
	assert.Equal(t, protocol.Checksum(frame[2:88]), frame[88])
	assert.Equal(t, byte(0x00), frame[89])
}

func TestFeatureFramePadding(t *testing.T) {
	type testCase struct {
		name        string
		featureSize int
		expectedLen int
	}

	cases := []testCase{
		{name: "declared size", featureSize: 32, expectedLen: 32},
		{name: "oversized capped", featureSize: 4096, expectedLen: 64},
		{name: "smaller than logical frame", featureSize: 4, expectedLen: 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := protocol.FeatureFrame(protocol.Command{Field: protocol.FieldDPI, Value: 800}, tc.featureSize)
			require.Len(t, frame, tc.expectedLen)
			assert.Equal(t, byte(0x00), frame[0])
			assert.Equal(t, []byte{0x04, 0x05, 0x03, 0x20, 0x03, 0x20}, frame[1:7])
		})
	}
}

func TestValidValues(t *testing.T) {
	assert.True(t, protocol.ValidDPI(400))
	assert.True(t, protocol.ValidDPI(20000))
	assert.False(t, protocol.ValidDPI(0))
	assert.False(t, protocol.ValidDPI(1337))

	assert.True(t, protocol.ValidPollingRate(125))
	assert.True(t, protocol.ValidPollingRate(1000))
	assert.False(t, protocol.ValidPollingRate(250))

	assert.Equal(t, []int{125, 500, 1000}, protocol.PollingRates())
}
