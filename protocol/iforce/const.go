package iforce

// Input report layout (8 bytes, little endian where multi-byte).
const (
	InputReportSize = 8

	inOffsetSteeringLo = 0
	inOffsetSteeringHi = 1
	inOffsetThrottle   = 2
	inOffsetBrake      = 3
	inOffsetClutch     = 4
	inOffsetButtonsLo  = 5
	inOffsetButtonsHi  = 6
	inOffsetHat        = 7

	hatMask = 0x0F
)

// Steering raw range. The wheel reports a signed 16-bit position with 0 at
// center.
const (
	SteeringMax = 32767
	SteeringMin = -32767
)

// Command opcodes.
const (
	OpSetRange   = 0x01
	OpAutocenter = 0x02
	OpConstant   = 0x41
	OpPeriodic   = 0x42
	OpCondition  = 0x43
	OpRamp       = 0x44
)

// Periodic waveform subtypes (payload byte after the effect slot).
const (
	WaveSine         = 0x01
	WaveSquare       = 0x02
	WaveTriangle     = 0x03
	WaveSawtoothUp   = 0x04
	WaveSawtoothDown = 0x05
)

// Condition subtypes.
const (
	CondSpring   = 0x01
	CondDamper   = 0x02
	CondInertia  = 0x03
	CondFriction = 0x04
)

// ForceMax is the maximum command payload magnitude the wheel accepts.
const ForceMax = 32767
