package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/protocol/g29"
	"github.com/openffb/wheelbridge/protocol/iforce"
	"github.com/openffb/wheelbridge/translate"
	"github.com/openffb/wheelbridge/wheel"
)

func snapshot(t *testing.T, mutate func(*config.Snapshot)) *config.Snapshot {
	t.Helper()
	snap := config.Default()
	if mutate != nil {
		mutate(&snap)
	}
	require.NoError(t, snap.Validate())
	return &snap
}

func rawInput(rep iforce.InputReport) []byte {
	return rep.EncodeInputReport()
}

func TestInputNeutralReport(t *testing.T) {
	snap := snapshot(t, nil)

	out, err := translate.Input(rawInput(iforce.InputReport{Hat: 8}), snap)
	require.NoError(t, err)

	rep, err := g29.DecodeInputReport(out)
	require.NoError(t, err)
	assert.Equal(t, uint16(g29.SteeringCenter), rep.Steering)
	assert.Zero(t, rep.Throttle)
	assert.Zero(t, rep.Brake)
	assert.Zero(t, rep.Clutch)
	assert.Zero(t, rep.Buttons)
	assert.Equal(t, uint8(8), rep.Hat)
}

func TestInputDeterministic(t *testing.T) {
	snap := snapshot(t, nil)
	raw := rawInput(iforce.InputReport{Steering: 9000, Throttle: 77, Buttons: 0x0041, Hat: 2})

	a, err := translate.Input(raw, snap)
	require.NoError(t, err)
	b, err := translate.Input(raw, snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInputMalformed(t *testing.T) {
	snap := snapshot(t, nil)
	_, err := translate.Input([]byte{0x01, 0x02}, snap)
	assert.ErrorIs(t, err, iforce.ErrParse)
}

func TestSteeringDeadzone(t *testing.T) {
	type testCase struct {
		name     string
		raw      int16
		deadzone float64
		expected uint16
	}

	cases := []testCase{
		{"exact center", 0, 0.02, g29.SteeringCenter},
		{"inside deadzone positive", 300, 0.02, g29.SteeringCenter},
		{"inside deadzone negative", -300, 0.02, g29.SteeringCenter},
		{"zero deadzone passes through", 300, 0, g29.SteeringCenter + 300},
		{"full deflection preserved", 32767, 0.02, 0xFFFF},
		{"full negative deflection preserved", -32767, 0.02, 0x0001},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(t, func(s *config.Snapshot) {
				s.Input.SteeringDeadzone = tc.deadzone
			})
			out, err := translate.Input(rawInput(iforce.InputReport{Steering: tc.raw, Hat: 8}), snap)
			require.NoError(t, err)
			rep, err := g29.DecodeInputReport(out)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, rep.Steering)
		})
	}
}

func TestDeadzoneRescalesRemainingRange(t *testing.T) {
	// Just outside the deadzone the output starts fresh from center, not
	// with a jump of deadzone width.
	snap := snapshot(t, func(s *config.Snapshot) { s.Input.SteeringDeadzone = 0.1 })

	edge := int16(3278) // just above 0.1 * 32767
	out, err := translate.Input(rawInput(iforce.InputReport{Steering: edge, Hat: 8}), snap)
	require.NoError(t, err)
	rep, err := g29.DecodeInputReport(out)
	require.NoError(t, err)

	offset := int(rep.Steering) - g29.SteeringCenter
	assert.Greater(t, offset, 0)
	assert.Less(t, offset, 20, "output should restart near center past the deadzone edge")
}

func TestPedalCurvesAndMultipliers(t *testing.T) {
	type testCase struct {
		name     string
		mutate   func(*config.Snapshot)
		throttle uint8
		expected uint8
	}

	cases := []testCase{
		{
			name:     "linear passthrough",
			mutate:   nil,
			throttle: 128,
			expected: 128,
		},
		{
			name: "squared curve",
			mutate: func(s *config.Snapshot) {
				s.Input.ThrottleCurve = config.Curve{Kind: config.CurveSquared}
			},
			throttle: 128,
			expected: 64, // (128/255)^2 * 255
		},
		{
			name: "multiplier clamps at full scale",
			mutate: func(s *config.Snapshot) {
				s.Input.ThrottleMultiplier = 2.0
			},
			throttle: 200,
			expected: 255,
		},
		{
			name: "half multiplier",
			mutate: func(s *config.Snapshot) {
				s.Input.ThrottleMultiplier = 0.5
			},
			throttle: 200,
			expected: 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(t, tc.mutate)
			out, err := translate.Input(rawInput(iforce.InputReport{Throttle: tc.throttle, Hat: 8}), snap)
			require.NoError(t, err)
			rep, err := g29.DecodeInputReport(out)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, rep.Throttle)
		})
	}
}

func TestButtonRemap(t *testing.T) {
	snap := snapshot(t, func(s *config.Snapshot) {
		s.Input.ButtonMap = map[uint8]uint8{0: 2, 1: 0, 5: 23}
	})

	out, err := translate.Input(rawInput(iforce.InputReport{
		Buttons: 0b0000_0000_0010_0011, // physical 0, 1, 5
		Hat:     8,
	}), snap)
	require.NoError(t, err)
	rep, err := g29.DecodeInputReport(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<2|1<<0|1<<23), rep.Buttons)
}

func TestButtonRemapDropsUnmapped(t *testing.T) {
	snap := snapshot(t, func(s *config.Snapshot) {
		s.Input.ButtonMap = map[uint8]uint8{3: 3}
	})

	out, err := translate.Input(rawInput(iforce.InputReport{
		Buttons: 0xFFFF,
		Hat:     8,
	}), snap)
	require.NoError(t, err)
	rep, err := g29.DecodeInputReport(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<3), rep.Buttons, "unmapped physical buttons are dropped")
}

func TestHatOutOfRangeIsNeutral(t *testing.T) {
	snap := snapshot(t, nil)
	state := translate.Canonical(iforce.InputReport{Hat: 0x0D}, snap)
	assert.Equal(t, wheel.HatNeutral, state.Hat)
}

func TestCanonicalVelocity(t *testing.T) {
	snap := snapshot(t, func(s *config.Snapshot) { s.Input.SteeringDeadzone = 0 })

	prev := translate.Canonical(iforce.InputReport{Steering: 0, Hat: 8}, snap)
	next := translate.Canonical(iforce.InputReport{Steering: 16384, Hat: 8}, snap)
	next = next.WithVelocity(prev, 0.001)

	assert.InDelta(t, 500.0, next.Velocity, 1.0, "half deflection in one millisecond")
}
