// Package bridge runs the real-time translation pipeline: the input
// context polling the physical wheel, the output context draining force
// feedback reports from the virtual wheel, and the effect-update context
// ticking the FFB engine at a fixed frequency.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/device"
	"github.com/openffb/wheelbridge/ffb"
	"github.com/openffb/wheelbridge/internal/log"
	"github.com/openffb/wheelbridge/protocol/g29"
	"github.com/openffb/wheelbridge/protocol/iforce"
	"github.com/openffb/wheelbridge/translate"
	"github.com/openffb/wheelbridge/wheel"
)

const (
	// inputPollTimeout bounds one physical read so the input context is
	// never blocked indefinitely.
	inputPollTimeout = time.Millisecond

	// commandQueueSize bounds the tick-to-writer channel. On overflow
	// the oldest pending command is dropped; freshness wins over
	// completeness.
	commandQueueSize = 32

	// writeRetries and writeBackoff bound the per-command retry budget
	// before a write failure escalates to reconnection.
	writeRetries = 3
	writeBackoff = 2 * time.Millisecond

	// reconnectAttempts and reconnectBackoff bound the reconnection
	// ladder before force feedback is disabled.
	reconnectAttempts = 5
	reconnectBackoff  = 200 * time.Millisecond

	// inputFailureBudget is the number of consecutive read failures
	// tolerated before the input context escalates.
	inputFailureBudget = 50
)

// ErrDeviceLost is returned by Run when the physical wheel is gone and
// reconnection failed; the process should exit with a non-zero status.
var ErrDeviceLost = errors.New("bridge: physical wheel lost")

// Bridge owns the three execution contexts and the shared state between
// them.
type Bridge struct {
	store  *config.Store
	engine *ffb.Engine
	logger *slog.Logger
	raw    log.RawLogger

	physMu sync.RWMutex
	phys   device.Physical
	virt   device.Virtual
	reopen device.PhysicalOpener

	// latest is the most-recent-value wheel state handoff from the
	// input context to the effect-update context. No queueing;
	// staleness is tolerated up to one input tick.
	latest atomic.Pointer[wheel.State]

	cmdCh       chan []byte
	dropped     atomic.Uint64
	ffbDisabled atomic.Bool
}

// New wires a bridge over opened devices. reopen may be nil, disabling
// reconnection.
func New(store *config.Store, engine *ffb.Engine, phys device.Physical, virt device.Virtual,
	reopen device.PhysicalOpener, logger *slog.Logger, raw log.RawLogger) *Bridge {
	b := &Bridge{
		store:  store,
		engine: engine,
		phys:   phys,
		virt:   virt,
		reopen: reopen,
		logger: logger,
		raw:    raw,
		cmdCh:  make(chan []byte, commandQueueSize),
	}
	b.latest.Store(&wheel.State{Hat: wheel.HatNeutral})
	return b
}

// Run drives all contexts until ctx is cancelled or the physical wheel is
// lost. Per-report errors never stop the loops. On return all effect
// slots are freed and a neutral output has been attempted.
func (b *Bridge) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	for _, loop := range []func(context.Context, context.CancelCauseFunc){
		b.inputLoop,
		b.outputLoop,
		b.tickLoop,
		b.writeLoop,
	} {
		wg.Add(1)
		go func(f func(context.Context, context.CancelCauseFunc)) {
			defer wg.Done()
			f(runCtx, cancel)
		}(loop)
	}
	wg.Wait()

	b.shutdown()

	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// inputLoop is the input context: poll the wheel at a bounded interval,
// translate, publish to the virtual device and to the latest-state
// handoff.
func (b *Bridge) inputLoop(ctx context.Context, cancel context.CancelCauseFunc) {
	var (
		prev     = *b.latest.Load()
		prevAt   time.Time
		failures int
	)

	for ctx.Err() == nil {
		raw, err := b.physical().ReadInput(inputPollTimeout)
		if errors.Is(err, device.ErrTimeout) {
			failures = 0
			continue
		}
		if err != nil {
			failures++
			if failures >= inputFailureBudget {
				failures = 0
				if !b.recover(ctx) {
					cancel(ErrDeviceLost)
					return
				}
			}
			continue
		}
		failures = 0
		b.raw.Log(false, raw)

		snap := b.store.Load()
		rep, err := iforce.DecodeInputReport(raw)
		if err != nil {
			// Malformed report: drop it, keep the loop running.
			b.logger.Debug("dropping malformed input report", "error", err)
			continue
		}

		now := time.Now()
		state := translate.Canonical(rep, snap)
		if !prevAt.IsZero() {
			state = state.WithVelocity(prev, now.Sub(prevAt).Seconds())
		}
		prev, prevAt = state, now
		b.latest.Store(&state)

		if err := b.virt.SendInput(translate.Encode(state, snap)); err != nil {
			b.logger.Warn("failed to publish input report", "error", err)
		}
	}
}

// outputLoop is the output context: block on the virtual device for
// outgoing reports and apply the resulting operations to the engine.
func (b *Bridge) outputLoop(ctx context.Context, cancel context.CancelCauseFunc) {
	for ctx.Err() == nil {
		buf, err := b.virt.ReadOutput(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("virtual device read failed", "error", err)
			cancel(fmt.Errorf("bridge: virtual wheel read: %w", err))
			return
		}
		b.raw.Log(true, buf)
		b.handleOutput(buf)
	}
}

func (b *Bridge) handleOutput(buf []byte) {
	snap := b.store.Load()

	if len(buf) > 0 && buf[0] == g29.ReportLED {
		if out, err := g29.DecodeOutputReport(buf); err == nil {
			if led, ok := out.(g29.LED); ok && snap.Output.LEDSupport {
				b.logger.Debug("rev LED report",
					"pattern", fmt.Sprintf("%05b", led.Pattern),
					"brightness", snap.Output.LEDBrightness)
			}
		}
		return
	}

	op, err := translate.Output(buf)
	if err != nil {
		// Unknown or malformed operations are dropped, never fatal.
		b.logger.Debug("dropping output report", "error", err)
		return
	}
	if op == nil {
		return
	}
	if !snap.FFB.Enabled || b.ffbDisabled.Load() {
		return
	}
	if err := b.engine.Apply(op); err != nil {
		b.logger.Warn("effect operation rejected", "error", err)
	}
}

// tickLoop is the effect-update context: at the configured rate, read the
// latest wheel state, tick the engine and queue the resulting commands.
func (b *Bridge) tickLoop(ctx context.Context, _ context.CancelCauseFunc) {
	rate := b.store.Load().FFB.UpdateRateHz
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if b.ffbDisabled.Load() {
				continue
			}
			// Config swaps are observed here, at the tick boundary.
			if r := b.store.Load().FFB.UpdateRateHz; r != rate && r > 0 {
				rate = r
				ticker.Reset(time.Second / time.Duration(rate))
			}
			state := b.latest.Load()
			for _, cmd := range b.engine.Tick(*state, now) {
				b.queueCommand(cmd.Encode())
			}
		}
	}
}

// queueCommand enqueues an encoded frame, dropping the oldest pending
// frame on overflow so the writer never applies backpressure to the tick
// context.
func (b *Bridge) queueCommand(frame []byte) {
	for {
		select {
		case b.cmdCh <- frame:
			return
		default:
			select {
			case <-b.cmdCh:
				b.dropped.Add(1)
			default:
			}
		}
	}
}

// writeLoop drains queued commands to the physical wheel with a bounded
// retry budget; persistent failure escalates to reconnection.
func (b *Bridge) writeLoop(ctx context.Context, cancel context.CancelCauseFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-b.cmdCh:
			b.raw.Log(true, frame)
			if b.writeWithRetry(frame) {
				continue
			}
			if !b.recover(ctx) {
				// FFB is already disabled; input-only operation
				// continues if the wheel still delivers reports.
				b.logger.Error("force feedback disabled after reconnect failure",
					"dropped", b.dropped.Load())
			}
		}
	}
}

func (b *Bridge) writeWithRetry(frame []byte) bool {
	backoff := writeBackoff
	for attempt := 0; attempt < writeRetries; attempt++ {
		if err := b.physical().WriteCommand(frame); err == nil {
			return true
		} else if attempt == writeRetries-1 {
			b.logger.Warn("command write failed", "error", err, "attempts", writeRetries)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return false
}

// recover attempts to reopen the physical wheel. On failure force
// feedback is disabled (graceful degradation); input translation keeps
// going while the wheel still answers reads. Returns whether the device
// is usable again.
func (b *Bridge) recover(ctx context.Context) bool {
	if b.reopen == nil {
		b.ffbDisabled.Store(true)
		return false
	}

	backoff := reconnectBackoff
	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		b.logger.Info("attempting wheel reconnect", "attempt", attempt)

		phys, err := b.reopen()
		if err == nil {
			b.physMu.Lock()
			old := b.phys
			b.phys = phys
			b.physMu.Unlock()
			_ = old.Close()
			b.ffbDisabled.Store(false)
			b.logger.Info("wheel reconnected")
			return true
		}

		b.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	b.ffbDisabled.Store(true)
	return false
}

func (b *Bridge) physical() device.Physical {
	b.physMu.RLock()
	defer b.physMu.RUnlock()
	return b.phys
}

// shutdown frees all effect slots and issues a neutral output, both best
// effort; failure to neutralize is logged and never blocks exit.
func (b *Bridge) shutdown() {
	if err := b.engine.Apply(ffb.DeviceControl{Action: ffb.DeviceReset}); err != nil {
		b.logger.Warn("effect table reset failed", "error", err)
	}

	neutral := iforce.ConstantForce(1, 0, 0)
	if err := b.physical().WriteCommand(neutral.Encode()); err != nil {
		b.logger.Warn("failed to neutralize wheel on shutdown", "error", err)
	}
	if n := b.dropped.Load(); n > 0 {
		b.logger.Debug("commands dropped during session", "count", n)
	}
}
