package ffb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/internal/log"
	"github.com/openffb/wheelbridge/protocol/iforce"
	"github.com/openffb/wheelbridge/wheel"
)

// MaxEffects is the number of concurrent effect slots the wheel supports.
const MaxEffects = 16

// ErrCapacityExceeded is returned when CreateEffect is issued against a
// full effect table. The table is left unchanged.
var ErrCapacityExceeded = errors.New("ffb: effect table full")

// Engine owns the effect table. Apply mutates slots from the output
// context; Tick reads them from the effect-update context. Both hold the
// table lock only for the duration of the call, never across I/O.
type Engine struct {
	store  *config.Store
	logger *slog.Logger

	// Clock is the time source for effect timing. Overridable in tests.
	Clock func() time.Time

	mu         sync.Mutex
	slots      [MaxEffects]EffectSlot
	deviceGain float64
	paused     bool
	actuators  bool
}

// NewEngine creates an engine with an empty effect table.
func NewEngine(store *config.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		logger:     logger,
		Clock:      time.Now,
		deviceGain: 1.0,
		actuators:  true,
	}
}

// Occupied returns the number of allocated slots.
func (e *Engine) Occupied() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.slots {
		if e.slots[i].occupied() {
			n++
		}
	}
	return n
}

// Slot returns a copy of the slot at index i, or false when i is out of
// range.
func (e *Engine) Slot(i int) (EffectSlot, bool) {
	if i < 0 || i >= MaxEffects {
		return EffectSlot{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[i], true
}

// Apply executes one canonical effect operation against the table.
// CreateEffect against a full table fails with ErrCapacityExceeded and
// leaves the table unchanged. Control or free operations against a Free
// slot succeed as no-ops.
func (e *Engine) Apply(op Operation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch o := op.(type) {
	case CreateEffect:
		return e.create(o)
	case SetEffect:
		e.configure(o.Slot, func(s *EffectSlot) {
			s.DurationMs = o.DurationMs
			s.Gain = clampGain(o.Gain)
		})
	case SetConstantForce:
		e.configure(o.Slot, func(s *EffectSlot) { s.Magnitude = o.Magnitude })
	case SetConditionEffect:
		e.configure(o.Slot, func(s *EffectSlot) {
			s.Positive = o.Positive
			s.Negative = o.Negative
		})
	case SetPeriodic:
		e.configure(o.Slot, func(s *EffectSlot) {
			if o.Waveform != WaveNone {
				s.Waveform = o.Waveform
			}
			s.Magnitude = o.Magnitude
			s.PeriodMs = o.PeriodMs
			s.PhaseDeg = o.PhaseDeg % 360
		})
	case SetRampForce:
		e.configure(o.Slot, func(s *EffectSlot) {
			s.RampStart = o.Start
			s.RampEnd = o.End
			s.DurationMs = o.DurationMs
		})
	case SetEnvelope:
		e.configure(o.Slot, func(s *EffectSlot) {
			s.Envelope = Envelope{
				AttackLevel:  o.AttackLevel,
				AttackTimeMs: o.AttackTimeMs,
				FadeLevel:    o.FadeLevel,
				FadeTimeMs:   o.FadeTimeMs,
			}
		})
	case EffectControl:
		e.control(o)
	case FreeEffect:
		if s := e.slot(o.Slot); s != nil {
			*s = EffectSlot{}
		}
	case DeviceControl:
		e.deviceControl(o.Action)
	case SetDeviceGain:
		e.deviceGain = clampGain(o.Gain)
	default:
		return fmt.Errorf("ffb: unhandled operation %T", op)
	}
	return nil
}

func (e *Engine) create(o CreateEffect) error {
	if o.Slot < 0 || o.Slot >= MaxEffects {
		return fmt.Errorf("%w: slot %d out of range", ErrCapacityExceeded, o.Slot)
	}
	s := &e.slots[o.Slot]
	if !s.occupied() {
		occupied := 0
		for i := range e.slots {
			if e.slots[i].occupied() {
				occupied++
			}
		}
		if occupied >= MaxEffects {
			return ErrCapacityExceeded
		}
	}
	*s = EffectSlot{
		State:    SlotAllocated,
		Type:     o.Type,
		Waveform: o.Waveform,
		Gain:     1.0,
	}
	return nil
}

// slot returns the addressed slot, or nil for out-of-range indices, which
// are logged and ignored.
func (e *Engine) slot(i int) *EffectSlot {
	if i < 0 || i >= MaxEffects {
		e.logger.Warn("effect slot out of range", "slot", i)
		return nil
	}
	return &e.slots[i]
}

func (e *Engine) configure(i int, f func(*EffectSlot)) {
	s := e.slot(i)
	if s == nil || !s.occupied() {
		return
	}
	f(s)
	if s.State == SlotAllocated {
		s.State = SlotConfigured
	}
}

func (e *Engine) control(o EffectControl) {
	s := e.slot(o.Slot)
	if s == nil || !s.occupied() {
		return
	}
	switch o.Action {
	case ControlStart, ControlStartSolo:
		if o.Action == ControlStartSolo {
			for i := range e.slots {
				if i != o.Slot && e.slots[i].running() {
					e.slots[i].State = SlotStopped
				}
			}
		}
		s.State = SlotRunning
		s.StartedAt = e.Clock()
	case ControlStop:
		if s.running() {
			s.State = SlotStopped
		}
	}
}

func (e *Engine) deviceControl(a DeviceAction) {
	switch a {
	case DeviceReset:
		for i := range e.slots {
			e.slots[i] = EffectSlot{}
		}
		e.deviceGain = 1.0
		e.paused = false
		e.actuators = true
	case DeviceStopAll:
		for i := range e.slots {
			if e.slots[i].running() {
				e.slots[i].State = SlotStopped
			}
		}
	case DevicePause:
		e.paused = true
	case DeviceContinue:
		e.paused = false
	case DeviceEnableActuators:
		e.actuators = true
	case DeviceDisableActuators:
		e.actuators = false
	}
}

// channel identifies the physical output a command drives. If two commands
// in one tick target the same channel, the later (higher slot) one is
// authoritative for that tick.
type channel uint16

func commandChannel(c iforce.Command) channel {
	ch := channel(c.Opcode) << 8
	if c.Opcode == iforce.OpCondition && len(c.Payload) >= 2 {
		ch |= channel(c.Payload[1])
	}
	return ch
}

// Tick computes every running slot's instantaneous contribution at time
// now and returns the resulting wheel commands in ascending slot order.
// An empty table, a paused device, or disabled actuators yield an empty
// sequence.
func (e *Engine) Tick(state wheel.State, now time.Time) []iforce.Command {
	cfg := e.store.Load()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused || !e.actuators || !cfg.FFB.Enabled {
		return nil
	}

	var out []iforce.Command
	channels := make(map[channel]int)

	for i := range e.slots {
		s := &e.slots[i]
		if !s.running() {
			continue
		}

		elapsed := now.Sub(s.StartedAt)
		if s.DurationMs > 0 && elapsed >= time.Duration(s.DurationMs)*time.Millisecond {
			s.State = SlotStopped
			continue
		}

		cmd, ok := e.slotCommand(i, s, state, elapsed, cfg)
		if !ok {
			continue
		}

		ch := commandChannel(cmd)
		if prev, dup := channels[ch]; dup {
			out = append(out[:prev], out[prev+1:]...)
			for k, v := range channels {
				if v > prev {
					channels[k] = v - 1
				}
			}
		}
		channels[ch] = len(out)
		out = append(out, cmd)
	}

	return out
}

func (e *Engine) slotCommand(i int, s *EffectSlot, state wheel.State, elapsed time.Duration, cfg *config.Snapshot) (iforce.Command, bool) {
	gain := e.gainChain(s, cfg)
	slot := uint8(i + 1)

	switch s.Type {
	case EffectConstant:
		m := float64(s.Magnitude) * s.envelopeScale(elapsed)
		return iforce.ConstantForce(slot, scaleForce(m, gain), s.DurationMs), true

	case EffectRamp:
		frac := 1.0
		if s.DurationMs > 0 {
			frac = float64(elapsed) / float64(time.Duration(s.DurationMs)*time.Millisecond)
		}
		m := float64(s.RampStart) + (float64(s.RampEnd)-float64(s.RampStart))*frac
		m *= s.envelopeScale(elapsed)
		return iforce.ConstantForce(slot, scaleForce(m, gain), s.DurationMs), true

	case EffectPeriodic:
		period := s.PeriodMs
		if period == 0 {
			e.logger.Warn("periodic effect with zero period, clamping", "slot", i)
			period = 1
		}
		wf, wave := iforceWaveform(s.Waveform)
		phased := elapsed + time.Duration(s.PhaseDeg)*time.Duration(period)*time.Millisecond/360
		t := math.Mod(float64(phased), float64(time.Duration(period)*time.Millisecond)) /
			float64(time.Duration(period) * time.Millisecond)
		// Instantaneous value for diagnostics; the wheel replays the
		// waveform itself from the emitted parameters.
		m := float64(s.Magnitude) * wave(t) * s.envelopeScale(elapsed)
		e.logger.Log(context.Background(), log.LevelTrace, "periodic contribution", "slot", i, "value", m*gain)
		return iforce.PeriodicForce(slot, wf, scaleForce(float64(s.Magnitude), gain), period, s.PhaseDeg), true

	case EffectSpring, EffectDamper, EffectInertia, EffectFriction:
		// The wheel runs the condition loop itself; coefficients are
		// re-scaled by the gain chain each tick. The host-side
		// instantaneous value is still computed for diagnostics.
		var basis float64
		switch s.Type {
		case EffectSpring:
			basis = state.Steering
		default:
			basis = state.Velocity
		}
		var instant float64
		if basis >= 0 {
			instant = -basis * float64(s.Positive)
		} else {
			instant = -basis * float64(s.Negative)
		}
		e.logger.Log(context.Background(), log.LevelTrace, "condition contribution", "slot", i, "value", instant*gain)
		sub := conditionSubtype(s.Type)
		return iforce.ConditionForce(slot, sub,
			scaleForce(float64(s.Positive), gain),
			scaleForce(float64(s.Negative), gain)), true

	default:
		return iforce.Command{}, false
	}
}

// gainChain folds the per-effect, per-type, global and max-force gains
// into one multiplier.
func (e *Engine) gainChain(s *EffectSlot, cfg *config.Snapshot) float64 {
	typeGain := 1.0
	switch s.Type {
	case EffectConstant:
		typeGain = cfg.FFB.ConstantGain
	case EffectPeriodic:
		typeGain = cfg.FFB.PeriodicGain
	case EffectRamp:
		typeGain = cfg.FFB.RampGain
	case EffectSpring:
		typeGain = cfg.FFB.SpringGain
	case EffectDamper, EffectInertia:
		typeGain = cfg.FFB.DamperGain
	case EffectFriction:
		typeGain = cfg.FFB.FrictionGain
	}
	forceRatio := cfg.FFB.MaxForce / config.MaxForceBaseline
	return s.Gain * clampGain(typeGain) * clampGain(cfg.FFB.GlobalGain) * e.deviceGain * forceRatio
}

// envelopeScale evaluates the attack/fade envelope at the elapsed time,
// returning a multiplier in [0,1]-ish space relative to the nominal
// magnitude.
func (s *EffectSlot) envelopeScale(elapsed time.Duration) float64 {
	env := s.Envelope
	if env.AttackTimeMs > 0 {
		attack := time.Duration(env.AttackTimeMs) * time.Millisecond
		if elapsed < attack {
			start := float64(env.AttackLevel) / float64(iforce.ForceMax)
			frac := float64(elapsed) / float64(attack)
			return start + (1-start)*frac
		}
	}
	if env.FadeTimeMs > 0 && s.DurationMs > 0 {
		total := time.Duration(s.DurationMs) * time.Millisecond
		fade := time.Duration(env.FadeTimeMs) * time.Millisecond
		if remaining := total - elapsed; remaining < fade {
			end := float64(env.FadeLevel) / float64(iforce.ForceMax)
			frac := float64(remaining) / float64(fade)
			return end + (1-end)*frac
		}
	}
	return 1.0
}

// scaleForce applies the gain multiplier and clamps to the wheel's
// representable range. Out-of-range values are clamped, never rejected.
func scaleForce(v, gain float64) int16 {
	scaled := v * gain
	if scaled > iforce.ForceMax {
		scaled = iforce.ForceMax
	} else if scaled < -iforce.ForceMax {
		scaled = -iforce.ForceMax
	}
	return int16(math.Round(scaled))
}

func clampGain(g float64) float64 {
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}

func conditionSubtype(t EffectType) uint8 {
	switch t {
	case EffectDamper:
		return iforce.CondDamper
	case EffectInertia:
		return iforce.CondInertia
	case EffectFriction:
		return iforce.CondFriction
	default:
		return iforce.CondSpring
	}
}

func iforceWaveform(w Waveform) (uint8, func(t float64) float64) {
	switch w {
	case WaveSquare:
		return iforce.WaveSquare, func(t float64) float64 {
			if t < 0.5 {
				return 1
			}
			return -1
		}
	case WaveTriangle:
		return iforce.WaveTriangle, func(t float64) float64 {
			if t < 0.5 {
				return 4*t - 1
			}
			return 3 - 4*t
		}
	case WaveSawtoothUp:
		return iforce.WaveSawtoothUp, func(t float64) float64 { return 2*t - 1 }
	case WaveSawtoothDown:
		return iforce.WaveSawtoothDown, func(t float64) float64 { return 1 - 2*t }
	default:
		return iforce.WaveSine, func(t float64) float64 { return math.Sin(2 * math.Pi * t) }
	}
}
