// Package wheel defines the device-agnostic representation of wheel input.
package wheel

// State is the canonical wheel state for one input tick. It is a value type:
// a fresh State is produced on every tick and no identity persists across
// ticks.
type State struct {
	// Steering is the normalized wheel position, -1 (full left) to +1
	// (full right), 0 at center.
	Steering float64
	// Velocity is the estimated steering velocity in normalized units per
	// second, derived from consecutive states. Condition effects (damper,
	// friction) are computed against it.
	Velocity float64

	// Pedals, normalized 0 (released) to 1 (fully pressed).
	Throttle float64
	Brake    float64
	Clutch   float64

	// Buttons is the physical button bitset, bit N = button N.
	Buttons uint32
	// Hat is the d-pad value, 0..7 clockwise from up, HatNeutral when
	// released.
	Hat uint8
}

// HatNeutral is the released d-pad value.
const HatNeutral uint8 = 8

// WithVelocity returns a copy of s with Velocity estimated from a previous
// state and the elapsed seconds between the two.
func (s State) WithVelocity(prev State, dt float64) State {
	if dt > 0 {
		s.Velocity = (s.Steering - prev.Steering) / dt
	}
	return s
}
