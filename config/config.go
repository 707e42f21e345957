// Package config defines the validated, immutable configuration snapshot
// consumed by the translation pipeline, and the atomic store used to swap
// snapshots on reload.
package config

import (
	"fmt"
)

// Snapshot is the complete per-session configuration. A Snapshot is never
// mutated after Validate; reconfiguration builds a new Snapshot and swaps
// it whole through a Store.
type Snapshot struct {
	Wheel    WheelConfig    `embed:"" prefix:"wheel."`
	Emulated EmulatedConfig `embed:"" prefix:"emulated."`
	Input    InputConfig    `embed:"" prefix:"input."`
	Output   OutputConfig   `embed:"" prefix:"output."`
	FFB      FFBConfig      `embed:"" prefix:"ffb."`
}

// WheelConfig identifies the physical wheel.
type WheelConfig struct {
	VID       uint16 `help:"Wheel USB vendor ID" default:"0x044F" env:"WHEELBRIDGE_WHEEL_VID"`
	PID       uint16 `help:"Wheel USB product ID" default:"0x0004" env:"WHEELBRIDGE_WHEEL_PID"`
	Serial    string `help:"Wheel serial number, empty matches any" env:"WHEELBRIDGE_WHEEL_SERIAL"`
	Exclusive bool   `help:"Open the wheel for exclusive access" default:"true"`
}

// EmulatedConfig identifies the virtual wheel presented to the host.
type EmulatedConfig struct {
	VID          uint16 `help:"Emulated USB vendor ID" default:"0x046D"`
	PID          uint16 `help:"Emulated USB product ID" default:"0xC24F"`
	Manufacturer string `help:"Emulated manufacturer string" default:"Logitech"`
	Product      string `help:"Emulated product string" default:"G29 Driving Force Racing Wheel"`
	Serial       string `help:"Emulated serial number" default:"WB2G29001"`
}

// InputConfig holds the input translation parameters.
type InputConfig struct {
	SteeringRange    uint16  `help:"Steering rotation range in degrees" default:"900"`
	SteeringDeadzone float64 `help:"Steering deadzone as a fraction of full range" default:"0.02"`

	SteeringMultiplier float64 `help:"Steering axis multiplier" default:"1.0"`
	ThrottleMultiplier float64 `help:"Throttle axis multiplier" default:"1.0"`
	BrakeMultiplier    float64 `help:"Brake axis multiplier" default:"1.0"`
	ClutchMultiplier   float64 `help:"Clutch axis multiplier" default:"1.0"`

	ThrottleCurve Curve `embed:"" prefix:"throttle-curve."`
	BrakeCurve    Curve `embed:"" prefix:"brake-curve."`
	ClutchCurve   Curve `embed:"" prefix:"clutch-curve."`

	// ButtonMap maps physical button index to emulated button index.
	// Physical indices absent from the map are dropped from the output.
	ButtonMap map[uint8]uint8 `help:"Physical to emulated button index map" kong:"-"`
}

// OutputConfig holds the non-FFB output parameters.
type OutputConfig struct {
	LEDSupport    bool    `help:"Forward rev LED reports to the wheel" default:"true"`
	LEDBrightness float64 `help:"LED brightness 0..1" default:"1.0"`
}

// FFBConfig holds the force feedback parameters.
type FFBConfig struct {
	Enabled        bool    `help:"Enable force feedback translation" default:"true"`
	GlobalGain     float64 `help:"Global FFB gain 0..1" default:"1.0"`
	ConstantGain   float64 `help:"Constant force gain 0..1" default:"1.0"`
	PeriodicGain   float64 `help:"Periodic effect gain 0..1" default:"1.0"`
	SpringGain     float64 `help:"Spring effect gain 0..1" default:"1.0"`
	DamperGain     float64 `help:"Damper effect gain 0..1" default:"1.0"`
	FrictionGain   float64 `help:"Friction effect gain 0..1" default:"1.0"`
	RampGain       float64 `help:"Ramp effect gain 0..1" default:"1.0"`
	AutocenterGain float64 `help:"Autocenter spring gain 0..1" default:"0.2"`
	MaxForce       float64 `help:"Maximum force in Newtons" default:"2.5"`
	UpdateRateHz   uint    `help:"Effect update frequency" default:"1000"`
}

// MaxForceBaseline is the force in Newtons that maps to the full command
// magnitude range.
const MaxForceBaseline = 2.5

// Default returns a snapshot with every field at its documented default,
// matching the kong tag defaults.
func Default() Snapshot {
	return Snapshot{
		Wheel: WheelConfig{VID: 0x044F, PID: 0x0004, Exclusive: true},
		Emulated: EmulatedConfig{
			VID:          0x046D,
			PID:          0xC24F,
			Manufacturer: "Logitech",
			Product:      "G29 Driving Force Racing Wheel",
			Serial:       "WB2G29001",
		},
		Input: InputConfig{
			SteeringRange:      900,
			SteeringDeadzone:   0.02,
			SteeringMultiplier: 1.0,
			ThrottleMultiplier: 1.0,
			BrakeMultiplier:    1.0,
			ClutchMultiplier:   1.0,
			ButtonMap:          DefaultButtonMap(14),
		},
		Output: OutputConfig{LEDSupport: true, LEDBrightness: 1.0},
		FFB: FFBConfig{
			Enabled:        true,
			GlobalGain:     1.0,
			ConstantGain:   1.0,
			PeriodicGain:   1.0,
			SpringGain:     1.0,
			DamperGain:     1.0,
			FrictionGain:   1.0,
			RampGain:       1.0,
			AutocenterGain: 0.2,
			MaxForce:       2.5,
			UpdateRateHz:   1000,
		},
	}
}

// DefaultButtonMap returns the identity mapping for the first n buttons.
func DefaultButtonMap(n int) map[uint8]uint8 {
	m := make(map[uint8]uint8, n)
	for i := 0; i < n; i++ {
		m[uint8(i)] = uint8(i)
	}
	return m
}

// Validate checks the snapshot. Validation failures are fatal at load time
// only; the pipeline never sees an unvalidated snapshot.
func (s *Snapshot) Validate() error {
	if s.Input.SteeringDeadzone < 0 || s.Input.SteeringDeadzone > 1 {
		return fmt.Errorf("config: steering deadzone %v outside [0,1]", s.Input.SteeringDeadzone)
	}
	if s.Input.SteeringRange == 0 {
		return fmt.Errorf("config: steering range must be positive")
	}
	for _, c := range []struct {
		name  string
		curve Curve
	}{
		{"throttle", s.Input.ThrottleCurve},
		{"brake", s.Input.BrakeCurve},
		{"clutch", s.Input.ClutchCurve},
	} {
		if err := c.curve.validate(); err != nil {
			return fmt.Errorf("config: %s curve: %w", c.name, err)
		}
	}
	if s.Output.LEDBrightness < 0 || s.Output.LEDBrightness > 1 {
		return fmt.Errorf("config: LED brightness %v outside [0,1]", s.Output.LEDBrightness)
	}
	if s.FFB.UpdateRateHz == 0 {
		return fmt.Errorf("config: FFB update rate must be positive")
	}
	if s.FFB.MaxForce <= 0 {
		return fmt.Errorf("config: max force must be positive")
	}
	if s.Input.ButtonMap == nil {
		s.Input.ButtonMap = DefaultButtonMap(14)
	}
	return nil
}
