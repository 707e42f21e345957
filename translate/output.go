package translate

import (
	"errors"
	"fmt"

	"github.com/openffb/wheelbridge/ffb"
	"github.com/openffb/wheelbridge/protocol/g29"
)

// ErrUnsupportedEffectType indicates an output report with an unrecognized
// effect type or operation discriminator. The operation is dropped and
// translation continues.
var ErrUnsupportedEffectType = errors.New("translate: unsupported effect type")

// Output parses an outgoing report from the host into a canonical effect
// operation. Reports that are not force feedback related (including LED
// reports, which the bridge forwards separately) yield (nil, nil).
func Output(buf []byte) (ffb.Operation, error) {
	rep, err := g29.DecodeOutputReport(buf)
	if err != nil {
		return nil, err
	}

	switch r := rep.(type) {
	case nil:
		return nil, nil
	case g29.CreateNewEffect:
		typ, wave, ok := effectType(r.Type)
		if !ok {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedEffectType, r.Type)
		}
		return ffb.CreateEffect{Slot: slotIndex(r.Slot), Type: typ, Waveform: wave}, nil
	case g29.SetEffect:
		return ffb.SetEffect{
			Slot:       slotIndex(r.Slot),
			DurationMs: r.Duration,
			Gain:       float64(r.Gain) / 255,
		}, nil
	case g29.SetConstantForce:
		return ffb.SetConstantForce{Slot: slotIndex(r.Slot), Magnitude: r.Magnitude}, nil
	case g29.SetCondition:
		return ffb.SetConditionEffect{Slot: slotIndex(r.Slot), Positive: r.Positive, Negative: r.Negative}, nil
	case g29.SetPeriodic:
		return ffb.SetPeriodic{
			Slot:      slotIndex(r.Slot),
			Magnitude: clampMagnitude(r.Magnitude),
			PeriodMs:  r.Period,
			PhaseDeg:  r.Phase,
		}, nil
	case g29.SetRampForce:
		return ffb.SetRampForce{Slot: slotIndex(r.Slot), Start: r.Start, End: r.End, DurationMs: r.Duration}, nil
	case g29.SetEnvelope:
		return ffb.SetEnvelope{
			Slot:         slotIndex(r.Slot),
			AttackLevel:  r.AttackLevel,
			AttackTimeMs: r.AttackTime,
			FadeLevel:    r.FadeLevel,
			FadeTimeMs:   r.FadeTime,
		}, nil
	case g29.EffectOperation:
		action, ok := controlAction(r.Op)
		if !ok {
			return nil, fmt.Errorf("%w: effect operation 0x%02x", ErrUnsupportedEffectType, r.Op)
		}
		return ffb.EffectControl{Slot: slotIndex(r.Slot), Action: action}, nil
	case g29.BlockFree:
		return ffb.FreeEffect{Slot: slotIndex(r.Slot)}, nil
	case g29.DeviceControl:
		action, ok := deviceAction(r.Control)
		if !ok {
			return nil, fmt.Errorf("%w: device control 0x%02x", ErrUnsupportedEffectType, r.Control)
		}
		return ffb.DeviceControl{Action: action}, nil
	case g29.DeviceGain:
		return ffb.SetDeviceGain{Gain: float64(r.Gain) / 255}, nil
	default:
		// LED and other recognized non-FFB reports.
		return nil, nil
	}
}

// slotIndex converts a 1-based wire slot to the engine's 0-based index.
func slotIndex(wire uint8) int { return int(wire) - 1 }

func effectType(wire uint8) (ffb.EffectType, ffb.Waveform, bool) {
	switch wire {
	case g29.EffectConstant:
		return ffb.EffectConstant, ffb.WaveNone, true
	case g29.EffectRamp:
		return ffb.EffectRamp, ffb.WaveNone, true
	case g29.EffectSquare:
		return ffb.EffectPeriodic, ffb.WaveSquare, true
	case g29.EffectSine:
		return ffb.EffectPeriodic, ffb.WaveSine, true
	case g29.EffectTriangle:
		return ffb.EffectPeriodic, ffb.WaveTriangle, true
	case g29.EffectSawtoothUp:
		return ffb.EffectPeriodic, ffb.WaveSawtoothUp, true
	case g29.EffectSawtoothDown:
		return ffb.EffectPeriodic, ffb.WaveSawtoothDown, true
	case g29.EffectSpring:
		return ffb.EffectSpring, ffb.WaveNone, true
	case g29.EffectDamper:
		return ffb.EffectDamper, ffb.WaveNone, true
	case g29.EffectInertia:
		return ffb.EffectInertia, ffb.WaveNone, true
	case g29.EffectFriction:
		return ffb.EffectFriction, ffb.WaveNone, true
	default:
		return ffb.EffectNone, ffb.WaveNone, false
	}
}

func controlAction(op uint8) (ffb.ControlAction, bool) {
	switch op {
	case g29.OpEffectStart:
		return ffb.ControlStart, true
	case g29.OpEffectStartSolo:
		return ffb.ControlStartSolo, true
	case g29.OpEffectStop:
		return ffb.ControlStop, true
	default:
		return 0, false
	}
}

func deviceAction(ctl uint8) (ffb.DeviceAction, bool) {
	switch ctl {
	case g29.CtrlReset:
		return ffb.DeviceReset, true
	case g29.CtrlPause:
		return ffb.DevicePause, true
	case g29.CtrlContinue:
		return ffb.DeviceContinue, true
	case g29.CtrlStopAll:
		return ffb.DeviceStopAll, true
	case g29.CtrlEnableActuators:
		return ffb.DeviceEnableActuators, true
	case g29.CtrlDisableActuators:
		return ffb.DeviceDisableActuators, true
	default:
		return 0, false
	}
}

// clampMagnitude clamps the unsigned wire magnitude into the signed
// command range; out-of-range parameters are clamped, never rejected.
func clampMagnitude(m uint16) int16 {
	if m > 32767 {
		return 32767
	}
	return int16(m)
}
