package g29_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openffb/wheelbridge/protocol/g29"
	"github.com/openffb/wheelbridge/protocol/iforce"
)

func TestInputReportEncode(t *testing.T) {
	type testCase struct {
		name     string
		report   g29.InputReport
		expected []byte
	}

	cases := []testCase{
		{
			name: "neutral",
			report: g29.InputReport{
				Steering: g29.SteeringCenter,
				Hat:      8,
			},
			expected: []byte{
				0x01,       // report ID
				0x00, 0x80, // steering center LE
				0x00, 0x00, 0x00, // pedals
				0x00, 0x00, 0x00, 0x08, // buttons, hat neutral in bits 24..27
				0x00, 0x00,
			},
		},
		{
			name: "full deflection with buttons",
			report: g29.InputReport{
				Steering: 0xFFFF,
				Throttle: 0xFF,
				Brake:    0x80,
				Clutch:   0x01,
				Buttons:  0x00800001,
				Hat:      0,
			},
			expected: []byte{
				0x01,
				0xFF, 0xFF,
				0xFF, 0x80, 0x01,
				0x01, 0x00, 0x80, 0x00,
				0x00, 0x00,
			},
		},
		{
			name: "hat shares byte with high buttons",
			report: g29.InputReport{
				Steering: g29.SteeringCenter,
				Buttons:  0x00FFFFFF,
				Hat:      5,
			},
			expected: []byte{
				0x01,
				0x00, 0x80,
				0x00, 0x00, 0x00,
				0xFF, 0xFF, 0xFF, 0x05,
				0x00, 0x00,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.report.Encode()
			require.Len(t, raw, g29.InputReportSize)
			assert.Equal(t, tc.expected, raw)

			decoded, err := g29.DecodeInputReport(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.report, decoded)
		})
	}
}

func TestDecodeInputReportErrors(t *testing.T) {
	_, err := g29.DecodeInputReport(make([]byte, 4))
	assert.ErrorIs(t, err, iforce.ErrParse)

	bad := make([]byte, g29.InputReportSize)
	bad[0] = 0x42
	_, err = g29.DecodeInputReport(bad)
	assert.ErrorIs(t, err, iforce.ErrParse)
}

func TestDecodeOutputReport(t *testing.T) {
	type testCase struct {
		name     string
		raw      []byte
		expected g29.Output
	}

	cases := []testCase{
		{
			name:     "create new effect",
			raw:      []byte{0x11, 0x01, 0x04},
			expected: g29.CreateNewEffect{Slot: 1, Type: g29.EffectSine},
		},
		{
			name:     "set effect",
			raw:      []byte{0x01, 0x02, 0x01, 0xE8, 0x03, 0xFF},
			expected: g29.SetEffect{Slot: 2, Type: g29.EffectConstant, Duration: 1000, Gain: 0xFF},
		},
		{
			name:     "set envelope",
			raw:      []byte{0x02, 0x01, 0x00, 0x10, 0xF4, 0x01, 0x00, 0x08, 0xC8, 0x00},
			expected: g29.SetEnvelope{Slot: 1, AttackLevel: 0x1000, AttackTime: 500, FadeLevel: 0x0800, FadeTime: 200},
		},
		{
			name:     "set condition",
			raw:      []byte{0x03, 0x01, 0x00, 0x40, 0x00, 0xC0},
			expected: g29.SetCondition{Slot: 1, Positive: 0x4000, Negative: -0x4000},
		},
		{
			name:     "set periodic",
			raw:      []byte{0x04, 0x03, 0x00, 0x20, 0x14, 0x00, 0x5A, 0x00},
			expected: g29.SetPeriodic{Slot: 3, Magnitude: 0x2000, Period: 20, Phase: 90},
		},
		{
			name:     "set constant force negative",
			raw:      []byte{0x05, 0x01, 0x18, 0xFC},
			expected: g29.SetConstantForce{Slot: 1, Magnitude: -1000},
		},
		{
			name:     "set ramp force",
			raw:      []byte{0x06, 0x02, 0x00, 0x00, 0xFF, 0x7F, 0xF4, 0x01},
			expected: g29.SetRampForce{Slot: 2, Start: 0, End: 32767, Duration: 500},
		},
		{
			name:     "effect operation start",
			raw:      []byte{0x0A, 0x01, 0x01, 0x01},
			expected: g29.EffectOperation{Slot: 1, Op: g29.OpEffectStart, LoopCount: 1},
		},
		{
			name:     "block free",
			raw:      []byte{0x0B, 0x07},
			expected: g29.BlockFree{Slot: 7},
		},
		{
			name:     "device control reset",
			raw:      []byte{0x0C, 0x04},
			expected: g29.DeviceControl{Control: g29.CtrlReset},
		},
		{
			name:     "device gain",
			raw:      []byte{0x0D, 0x80},
			expected: g29.DeviceGain{Gain: 0x80},
		},
		{
			name:     "led pattern",
			raw:      []byte{0xF8, 0x1F},
			expected: g29.LED{Pattern: 0x1F},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := g29.DecodeOutputReport(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestDecodeOutputReportUnknownID(t *testing.T) {
	out, err := g29.DecodeOutputReport([]byte{0x77, 0x01, 0x02})
	assert.NoError(t, err)
	assert.Nil(t, out, "unknown report IDs pass through as non-FFB traffic")
}

func TestDecodeOutputReportTruncated(t *testing.T) {
	for _, raw := range [][]byte{
		nil,
		{0x01, 0x02},
		{0x05, 0x01},
		{0x11},
	} {
		_, err := g29.DecodeOutputReport(raw)
		assert.ErrorIs(t, err, iforce.ErrParse, "raw % x", raw)
	}
}
