package ffb

import "time"

// SlotState is the lifecycle state of an effect slot.
type SlotState uint8

const (
	// SlotFree carries no parameters.
	SlotFree SlotState = iota
	// SlotAllocated has a type but no parameters yet.
	SlotAllocated
	// SlotConfigured has received at least one parameter update.
	SlotConfigured
	// SlotRunning contributes to every tick.
	SlotRunning
	// SlotStopped was running and may be restarted without reconfiguring.
	SlotStopped
)

func (s SlotState) String() string {
	switch s {
	case SlotAllocated:
		return "allocated"
	case SlotConfigured:
		return "configured"
	case SlotRunning:
		return "running"
	case SlotStopped:
		return "stopped"
	default:
		return "free"
	}
}

// Envelope is the attack/fade shaping of an effect. Levels are in command
// magnitude units.
type Envelope struct {
	AttackLevel  uint16
	AttackTimeMs uint16
	FadeLevel    uint16
	FadeTimeMs   uint16
}

// EffectSlot is one entry of the effect table. Identity is the slot index;
// a Free slot carries no parameters.
type EffectSlot struct {
	State    SlotState
	Type     EffectType
	Waveform Waveform

	DurationMs uint16  // 0 = infinite
	Gain       float64 // per-effect gain 0..1

	// Constant / periodic magnitude, ramp start.
	Magnitude int16
	// Ramp endpoints.
	RampStart, RampEnd int16
	// Condition coefficients.
	Positive, Negative int16
	// Periodic timing.
	PeriodMs uint16
	PhaseDeg uint16

	Envelope Envelope

	StartedAt time.Time
}

// running reports whether the slot contributes to a tick.
func (s *EffectSlot) running() bool { return s.State == SlotRunning }

// occupied reports whether the slot holds an allocated effect.
func (s *EffectSlot) occupied() bool { return s.State != SlotFree }
