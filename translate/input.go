// Package translate converts between the wheel's legacy reports and the
// emulated wheel's HID reports: raw input bytes to target input reports,
// and target output reports to canonical effect operations.
package translate

import (
	"math"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/protocol/g29"
	"github.com/openffb/wheelbridge/protocol/iforce"
	"github.com/openffb/wheelbridge/wheel"
)

// Input translates a raw wheel input report into the emulated wheel's
// input report bytes. The pipeline order is fixed: decode, deadzone,
// curve, multiplier and clamp, button remap, encode. The function is pure:
// identical raw bytes and snapshot always yield identical output bytes.
func Input(raw []byte, snap *config.Snapshot) ([]byte, error) {
	rep, err := iforce.DecodeInputReport(raw)
	if err != nil {
		return nil, err
	}
	state := Canonical(rep, snap)
	return Encode(state, snap), nil
}

// Canonical decodes a wheel report into calibrated canonical state:
// deadzone, pedal curves and axis multipliers applied, all axes clamped
// to their normalized ranges.
func Canonical(rep iforce.InputReport, snap *config.Snapshot) wheel.State {
	in := snap.Input

	steering := applyDeadzone(float64(rep.Steering)/iforce.SteeringMax, in.SteeringDeadzone)
	steering = clampSigned(steering * in.SteeringMultiplier)

	throttle := clamp01(in.ThrottleCurve.Apply(float64(rep.Throttle)/255) * in.ThrottleMultiplier)
	brake := clamp01(in.BrakeCurve.Apply(float64(rep.Brake)/255) * in.BrakeMultiplier)
	clutch := clamp01(in.ClutchCurve.Apply(float64(rep.Clutch)/255) * in.ClutchMultiplier)

	hat := rep.Hat
	if hat > 7 {
		hat = wheel.HatNeutral
	}

	return wheel.State{
		Steering: steering,
		Throttle: throttle,
		Brake:    brake,
		Clutch:   clutch,
		Buttons:  remapButtons(rep.Buttons, in.ButtonMap),
		Hat:      hat,
	}
}

// Encode builds the emulated wheel's input report from canonical state.
func Encode(state wheel.State, snap *config.Snapshot) []byte {
	return g29.InputReport{
		Steering: encodeSteering(state.Steering),
		Throttle: uint8(math.Round(state.Throttle * g29.PedalMax)),
		Brake:    uint8(math.Round(state.Brake * g29.PedalMax)),
		Clutch:   uint8(math.Round(state.Clutch * g29.PedalMax)),
		Buttons:  state.Buttons,
		Hat:      state.Hat,
	}.Encode()
}

// applyDeadzone collapses values within ±dz of center to exact center and
// re-expands the remaining range so full deflection is preserved.
func applyDeadzone(v, dz float64) float64 {
	if dz <= 0 {
		return v
	}
	if dz >= 1 {
		return 0
	}
	if math.Abs(v) < dz {
		return 0
	}
	if v > 0 {
		return (v - dz) / (1 - dz)
	}
	return (v + dz) / (1 - dz)
}

// remapButtons routes each pressed physical button through the map. The
// mapping is total: physical indices absent from the map are dropped, and
// in-domain indices pass through to their configured target.
func remapButtons(buttons uint16, table map[uint8]uint8) uint32 {
	var out uint32
	for i := uint8(0); i < 16; i++ {
		if buttons&(1<<i) == 0 {
			continue
		}
		if target, ok := table[i]; ok && target < 24 {
			out |= 1 << target
		}
	}
	return out
}

func encodeSteering(v float64) uint16 {
	raw := int(math.Round(v*iforce.SteeringMax)) + g29.SteeringCenter
	if raw < 0 {
		raw = 0
	} else if raw > 0xFFFF {
		raw = 0xFFFF
	}
	return uint16(raw)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
