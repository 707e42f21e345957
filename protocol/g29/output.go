package g29

import (
	"encoding/binary"
	"fmt"

	"github.com/openffb/wheelbridge/protocol/iforce"
)

// Output is implemented by every decoded output report variant.
type Output interface{ isOutput() }

// SetEffect configures the common fields of an allocated effect block.
type SetEffect struct {
	Slot     uint8
	Type     uint8
	Duration uint16 // milliseconds, 0 = infinite
	Gain     uint8  // 0..255
}

// SetEnvelope configures the attack/fade envelope of an effect block.
type SetEnvelope struct {
	Slot        uint8
	AttackLevel uint16
	AttackTime  uint16 // milliseconds
	FadeLevel   uint16
	FadeTime    uint16 // milliseconds
}

// SetCondition carries the condition coefficients for spring/damper style
// effects.
type SetCondition struct {
	Slot     uint8
	Positive int16
	Negative int16
}

// SetPeriodic carries the waveform parameters for a periodic effect.
type SetPeriodic struct {
	Slot      uint8
	Magnitude uint16
	Period    uint16 // milliseconds
	Phase     uint16 // degrees 0..359
}

// SetConstantForce carries the magnitude of a constant force effect.
type SetConstantForce struct {
	Slot      uint8
	Magnitude int16
}

// SetRampForce carries the endpoints of a ramp effect.
type SetRampForce struct {
	Slot     uint8
	Start    int16
	End      int16
	Duration uint16
}

// EffectOperation starts or stops an effect block.
type EffectOperation struct {
	Slot      uint8
	Op        uint8
	LoopCount uint8
}

// BlockFree releases an effect block.
type BlockFree struct{ Slot uint8 }

// DeviceControl carries a device-wide control code.
type DeviceControl struct{ Control uint8 }

// DeviceGain sets the device-wide gain, 0..255.
type DeviceGain struct{ Gain uint8 }

// CreateNewEffect allocates an effect block for the given effect type.
type CreateNewEffect struct {
	Slot uint8
	Type uint8
}

// LED is the non-FFB LED extension report; the rev counter lights are a
// bit pattern in Pattern's low 5 bits.
type LED struct{ Pattern uint8 }

func (SetEffect) isOutput()        {}
func (SetEnvelope) isOutput()      {}
func (SetCondition) isOutput()     {}
func (SetPeriodic) isOutput()      {}
func (SetConstantForce) isOutput() {}
func (SetRampForce) isOutput()     {}
func (EffectOperation) isOutput()  {}
func (BlockFree) isOutput()        {}
func (DeviceControl) isOutput()    {}
func (DeviceGain) isOutput()       {}
func (CreateNewEffect) isOutput()  {}
func (LED) isOutput()              {}

// DecodeOutputReport parses a raw output report received from the host.
// Returns (nil, nil) for report IDs outside the known set; those reports
// are not force feedback traffic and pass through untouched.
func DecodeOutputReport(buf []byte) (Output, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty output report", iforce.ErrParse)
	}

	need := func(n int) error {
		if len(buf) < n {
			return fmt.Errorf("%w: report 0x%02x got %d bytes, want %d", iforce.ErrParse, buf[0], len(buf), n)
		}
		return nil
	}
	u16 := func(off int) uint16 { return binary.LittleEndian.Uint16(buf[off : off+2]) }

	switch buf[0] {
	case ReportSetEffect:
		if err := need(6); err != nil {
			return nil, err
		}
		return SetEffect{Slot: buf[1], Type: buf[2], Duration: u16(3), Gain: buf[5]}, nil
	case ReportSetEnvelope:
		if err := need(10); err != nil {
			return nil, err
		}
		return SetEnvelope{Slot: buf[1], AttackLevel: u16(2), AttackTime: u16(4), FadeLevel: u16(6), FadeTime: u16(8)}, nil
	case ReportSetCondition:
		if err := need(6); err != nil {
			return nil, err
		}
		return SetCondition{Slot: buf[1], Positive: int16(u16(2)), Negative: int16(u16(4))}, nil
	case ReportSetPeriodic:
		if err := need(8); err != nil {
			return nil, err
		}
		return SetPeriodic{Slot: buf[1], Magnitude: u16(2), Period: u16(4), Phase: u16(6)}, nil
	case ReportSetConstantForce:
		if err := need(4); err != nil {
			return nil, err
		}
		return SetConstantForce{Slot: buf[1], Magnitude: int16(u16(2))}, nil
	case ReportSetRampForce:
		if err := need(8); err != nil {
			return nil, err
		}
		return SetRampForce{Slot: buf[1], Start: int16(u16(2)), End: int16(u16(4)), Duration: u16(6)}, nil
	case ReportEffectOperation:
		if err := need(4); err != nil {
			return nil, err
		}
		return EffectOperation{Slot: buf[1], Op: buf[2], LoopCount: buf[3]}, nil
	case ReportBlockFree:
		if err := need(2); err != nil {
			return nil, err
		}
		return BlockFree{Slot: buf[1]}, nil
	case ReportDeviceControl:
		if err := need(2); err != nil {
			return nil, err
		}
		return DeviceControl{Control: buf[1]}, nil
	case ReportDeviceGain:
		if err := need(2); err != nil {
			return nil, err
		}
		return DeviceGain{Gain: buf[1]}, nil
	case ReportCreateNewEffect:
		if err := need(3); err != nil {
			return nil, err
		}
		return CreateNewEffect{Slot: buf[1], Type: buf[2]}, nil
	case ReportLED:
		if err := need(2); err != nil {
			return nil, err
		}
		return LED{Pattern: buf[1]}, nil
	default:
		return nil, nil
	}
}
