package g29

// Emulated device identity.
const (
	DefaultVID = 0x046D
	DefaultPID = 0xC24F

	DefaultManufacturer = "Logitech"
	DefaultProduct      = "G29 Driving Force Racing Wheel"
)

// Input report layout (12 bytes).
const (
	InputReportID   = 0x01
	InputReportSize = 12

	inOffsetReportID = 0
	inOffsetSteering = 1 // u16 LE, center 0x8000
	inOffsetThrottle = 3
	inOffsetBrake    = 4
	inOffsetClutch   = 5
	inOffsetButtons  = 6 // u32 LE, hat nibble in bits 24..27

	SteeringCenter = 0x8000
	PedalMax       = 0xFF

	hatShift = 24
	hatMask  = 0x0F
)

// Output report IDs (force feedback command set plus the LED extension).
const (
	ReportSetEffect        = 0x01
	ReportSetEnvelope      = 0x02
	ReportSetCondition     = 0x03
	ReportSetPeriodic      = 0x04
	ReportSetConstantForce = 0x05
	ReportSetRampForce     = 0x06
	ReportEffectOperation  = 0x0A
	ReportBlockFree        = 0x0B
	ReportDeviceControl    = 0x0C
	ReportDeviceGain       = 0x0D
	ReportCreateNewEffect  = 0x11
	ReportLED              = 0xF8
)

// Effect type discriminators used by SetEffect and CreateNewEffect.
const (
	EffectConstant     = 0x01
	EffectRamp         = 0x02
	EffectSquare       = 0x03
	EffectSine         = 0x04
	EffectTriangle     = 0x05
	EffectSawtoothUp   = 0x06
	EffectSawtoothDown = 0x07
	EffectSpring       = 0x08
	EffectDamper       = 0x09
	EffectInertia      = 0x0A
	EffectFriction     = 0x0B
)

// Effect operation codes (ReportEffectOperation byte 2).
const (
	OpEffectStart     = 0x01
	OpEffectStartSolo = 0x02
	OpEffectStop      = 0x03
)

// Device control codes (ReportDeviceControl byte 1).
const (
	CtrlEnableActuators  = 0x01
	CtrlDisableActuators = 0x02
	CtrlStopAll          = 0x03
	CtrlReset            = 0x04
	CtrlPause            = 0x05
	CtrlContinue         = 0x06
)

// MaxEffectSlots is the highest effect block index games may address.
// Slots are 1-based on the wire.
const MaxEffectSlots = 16
