package config

import "fmt"

// CurveKind selects a pedal response curve.
type CurveKind string

const (
	CurveLinear  CurveKind = "linear"
	CurveSquared CurveKind = "squared"
	CurveCubed   CurveKind = "cubed"
	CurveCustom  CurveKind = "custom"
)

// Curve is a pedal response curve. For CurveCustom, Table holds output
// values at evenly spaced inputs over [0,1] and must be monotonically
// non-decreasing; evaluation interpolates linearly between the two nearest
// breakpoints. An empty table falls back to linear.
type Curve struct {
	Kind  CurveKind `help:"Curve kind" enum:"linear,squared,cubed,custom" default:"linear"`
	Table []float64 `help:"Breakpoint table for the custom curve" kong:"-"`
}

// Apply evaluates the curve for a normalized input in [0,1]. The sign of
// the input is preserved for the power curves.
func (c Curve) Apply(v float64) float64 {
	switch c.Kind {
	case CurveSquared:
		if v < 0 {
			return -(v * v)
		}
		return v * v
	case CurveCubed:
		return v * v * v
	case CurveCustom:
		if len(c.Table) == 0 {
			return v
		}
		return c.interpolate(clamp01(v))
	default:
		return v
	}
}

func (c Curve) interpolate(v float64) float64 {
	last := len(c.Table) - 1
	if last == 0 {
		return c.Table[0]
	}
	pos := v * float64(last)
	idx := int(pos)
	if idx >= last {
		return c.Table[last]
	}
	frac := pos - float64(idx)
	return c.Table[idx]*(1-frac) + c.Table[idx+1]*frac
}

func (c Curve) validate() error {
	switch c.Kind {
	case CurveLinear, CurveSquared, CurveCubed, "":
		return nil
	case CurveCustom:
		for i := 1; i < len(c.Table); i++ {
			if c.Table[i] < c.Table[i-1] {
				return fmt.Errorf("breakpoint table not monotonic at index %d", i)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown curve kind %q", c.Kind)
	}
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
