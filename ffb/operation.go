// Package ffb owns the force feedback effect table: canonical effect
// operations, the per-slot lifecycle state machine, and the engine that
// turns running effects into wheel commands on every tick.
package ffb

// EffectType is the canonical effect type variant.
type EffectType uint8

const (
	EffectNone EffectType = iota
	EffectConstant
	EffectRamp
	EffectPeriodic
	EffectSpring
	EffectDamper
	EffectInertia
	EffectFriction
)

func (t EffectType) String() string {
	switch t {
	case EffectConstant:
		return "constant"
	case EffectRamp:
		return "ramp"
	case EffectPeriodic:
		return "periodic"
	case EffectSpring:
		return "spring"
	case EffectDamper:
		return "damper"
	case EffectInertia:
		return "inertia"
	case EffectFriction:
		return "friction"
	default:
		return "none"
	}
}

// Waveform selects the periodic effect waveform.
type Waveform uint8

const (
	WaveNone Waveform = iota
	WaveSine
	WaveSquare
	WaveTriangle
	WaveSawtoothUp
	WaveSawtoothDown
)

// ControlAction is the EffectControl verb.
type ControlAction uint8

const (
	ControlStart ControlAction = iota + 1
	ControlStartSolo
	ControlStop
)

// DeviceAction is the DeviceControl verb.
type DeviceAction uint8

const (
	DeviceReset DeviceAction = iota + 1
	DevicePause
	DeviceContinue
	DeviceStopAll
	DeviceEnableActuators
	DeviceDisableActuators
)

// Operation is a canonical effect operation produced by the output
// translator and applied to the engine. Slot indices are 0-based.
type Operation interface{ isOperation() }

// CreateEffect allocates a slot for an effect type.
type CreateEffect struct {
	Slot     int
	Type     EffectType
	Waveform Waveform // periodic types only
}

// SetEffect updates the common slot fields.
type SetEffect struct {
	Slot       int
	DurationMs uint16  // 0 = infinite
	Gain       float64 // 0..1
}

// SetConstantForce updates a constant force magnitude.
type SetConstantForce struct {
	Slot      int
	Magnitude int16
}

// SetConditionEffect updates the condition coefficients. Covers spring and
// damper style effects by slot type.
type SetConditionEffect struct {
	Slot     int
	Positive int16
	Negative int16
}

// SetPeriodic updates the periodic waveform parameters. A zero Waveform
// leaves the waveform chosen at creation unchanged.
type SetPeriodic struct {
	Slot      int
	Waveform  Waveform
	Magnitude int16
	PeriodMs  uint16
	PhaseDeg  uint16
}

// SetRampForce updates the ramp endpoints.
type SetRampForce struct {
	Slot       int
	Start, End int16
	DurationMs uint16
}

// SetEnvelope updates the attack/fade envelope.
type SetEnvelope struct {
	Slot         int
	AttackLevel  uint16
	AttackTimeMs uint16
	FadeLevel    uint16
	FadeTimeMs   uint16
}

// EffectControl starts or stops a slot.
type EffectControl struct {
	Slot   int
	Action ControlAction
}

// FreeEffect releases a slot back to Free.
type FreeEffect struct{ Slot int }

// DeviceControl applies a device-wide action.
type DeviceControl struct{ Action DeviceAction }

// SetDeviceGain sets the device-wide gain, 0..1.
type SetDeviceGain struct{ Gain float64 }

func (CreateEffect) isOperation()       {}
func (SetEffect) isOperation()          {}
func (SetConstantForce) isOperation()   {}
func (SetConditionEffect) isOperation() {}
func (SetPeriodic) isOperation()        {}
func (SetRampForce) isOperation()       {}
func (SetEnvelope) isOperation()        {}
func (EffectControl) isOperation()      {}
func (FreeEffect) isOperation()         {}
func (DeviceControl) isOperation()      {}
func (SetDeviceGain) isOperation()      {}
