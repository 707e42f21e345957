package iforce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openffb/wheelbridge/protocol/iforce"
)

func TestDecodeInputReport(t *testing.T) {
	type testCase struct {
		name     string
		raw      []byte
		expected iforce.InputReport
	}

	cases := []testCase{
		{
			name: "neutral",
			raw:  []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x08},
			expected: iforce.InputReport{
				Steering: 0,
				Hat:      8,
			},
		},
		{
			name: "full left with pedals",
			raw:  []byte{0x01, 0x80, 0xFF, 0x7F, 0x10, 0x05, 0x00, 0x00},
			expected: iforce.InputReport{
				Steering: -32767,
				Throttle: 0xFF,
				Brake:    0x7F,
				Clutch:   0x10,
				Buttons:  0x0005,
				Hat:      0,
			},
		},
		{
			name: "full right high buttons",
			raw:  []byte{0xFF, 0x7F, 0x00, 0x00, 0x00, 0x00, 0x80, 0x02},
			expected: iforce.InputReport{
				Steering: 32767,
				Buttons:  0x8000,
				Hat:      2,
			},
		},
		{
			name: "hat high nibble masked off",
			raw:  []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF3},
			expected: iforce.InputReport{
				Hat: 3,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := iforce.DecodeInputReport(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, rep)
		})
	}
}

func TestDecodeInputReportRejectsBadSize(t *testing.T) {
	for _, n := range []int{0, 1, 7, 9, 64} {
		_, err := iforce.DecodeInputReport(make([]byte, n))
		assert.ErrorIs(t, err, iforce.ErrParse, "length %d", n)
	}
}

func TestInputReportRoundTrip(t *testing.T) {
	rep := iforce.InputReport{
		Steering: -12345,
		Throttle: 200,
		Brake:    17,
		Clutch:   255,
		Buttons:  0xA5C3,
		Hat:      6,
	}

	raw := rep.EncodeInputReport()
	require.Len(t, raw, iforce.InputReportSize)

	decoded, err := iforce.DecodeInputReport(raw)
	require.NoError(t, err)
	assert.Equal(t, rep, decoded)
	assert.Equal(t, raw, decoded.EncodeInputReport())
}

func TestCommandEncode(t *testing.T) {
	type testCase struct {
		name     string
		cmd      iforce.Command
		expected []byte
	}

	cases := []testCase{
		{
			name: "constant force",
			cmd:  iforce.ConstantForce(1, 1000, 0),
			expected: []byte{
				0x07,       // length: opcode + payload + checksum
				0x41,       // constant force
				0x01,       // slot
				0xE8, 0x03, // magnitude 1000 LE
				0x00, 0x00, // infinite duration
				0xAC, // checksum
			},
		},
		{
			name: "set range 900 degrees",
			cmd:  iforce.SetRange(900),
			expected: []byte{
				0x04,
				0x01,
				0x84, 0x03, // 900 LE
				0x82,
			},
		},
		{
			name: "autocenter off",
			cmd:  iforce.Autocenter(0),
			expected: []byte{
				0x03,
				0x02,
				0x00,
				0x01,
			},
		},
		{
			name: "damper condition",
			cmd:  iforce.ConditionForce(2, iforce.CondDamper, 0x1000, 0x2000),
			expected: []byte{
				0x08,
				0x43,
				0x02,
				0x02,       // damper subtype
				0x00, 0x10, // positive LE
				0x00, 0x20, // negative LE
				0x7B,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := tc.cmd.Encode()
			assert.Equal(t, tc.expected, frame)

			// Trailing byte must XOR the frame to zero.
			var sum uint8
			for _, b := range frame {
				sum ^= b
			}
			assert.Zero(t, sum)
		})
	}
}

func TestChecksumRecomputedPerEncode(t *testing.T) {
	a := iforce.ConstantForce(1, 100, 0)
	b := iforce.ConstantForce(1, 200, 0)
	assert.NotEqual(t, a.Encode()[7], b.Encode()[7],
		"different payloads must produce different checksums")
}

func TestPeriodicForceLayout(t *testing.T) {
	frame := iforce.PeriodicForce(3, iforce.WaveSine, -16384, 20, 90).Encode()
	require.Len(t, frame, 11)
	assert.Equal(t, uint8(0x0A), frame[0])
	assert.Equal(t, uint8(iforce.OpPeriodic), frame[1])
	assert.Equal(t, uint8(3), frame[2])
	assert.Equal(t, uint8(iforce.WaveSine), frame[3])
	assert.Equal(t, []byte{0x00, 0xC0}, frame[4:6]) // -16384 LE
	assert.Equal(t, []byte{0x14, 0x00}, frame[6:8]) // period 20 ms
	assert.Equal(t, []byte{0x5A, 0x00}, frame[8:10])
	assert.Equal(t, iforce.Checksum(frame[:10]), frame[10])
}

func TestRampForceLayout(t *testing.T) {
	frame := iforce.RampForce(1, -1000, 1000, 500).Encode()
	require.Len(t, frame, 10)
	assert.Equal(t, uint8(iforce.OpRamp), frame[1])
	assert.Equal(t, uint8(1), frame[2])
	assert.Equal(t, []byte{0x18, 0xFC}, frame[3:5]) // -1000 LE
	assert.Equal(t, []byte{0xE8, 0x03}, frame[5:7]) // 1000 LE
	assert.Equal(t, []byte{0xF4, 0x01}, frame[7:9]) // 500 ms
}
