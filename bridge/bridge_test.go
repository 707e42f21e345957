package bridge_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openffb/wheelbridge/bridge"
	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/device"
	"github.com/openffb/wheelbridge/ffb"
	"github.com/openffb/wheelbridge/internal/log"
	"github.com/openffb/wheelbridge/protocol/g29"
	"github.com/openffb/wheelbridge/protocol/iforce"
)

type fakePhysical struct {
	reports chan []byte
	readErr error

	mu      sync.Mutex
	written [][]byte
}

func newFakePhysical() *fakePhysical {
	return &fakePhysical{reports: make(chan []byte, 16)}
}

func (f *fakePhysical) ReadInput(timeout time.Duration) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	select {
	case r := <-f.reports:
		return r, nil
	case <-time.After(timeout):
		return nil, device.ErrTimeout
	}
}

func (f *fakePhysical) WriteCommand(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, frame)
	return nil
}

func (f *fakePhysical) Close() error { return nil }

func (f *fakePhysical) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.written))
	copy(out, f.written)
	return out
}

type fakeVirtual struct {
	sent chan []byte
	out  chan []byte
}

func newFakeVirtual() *fakeVirtual {
	return &fakeVirtual{
		sent: make(chan []byte, 64),
		out:  make(chan []byte, 16),
	}
}

func (f *fakeVirtual) SendInput(report []byte) error {
	select {
	case f.sent <- report:
	default:
	}
	return nil
}

func (f *fakeVirtual) ReadOutput(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case buf := <-f.out:
		return buf, nil
	}
}

func (f *fakeVirtual) Close() error { return nil }

func newBridge(t *testing.T, phys device.Physical, virt device.Virtual, reopen device.PhysicalOpener) *bridge.Bridge {
	t.Helper()
	snap := config.Default()
	require.NoError(t, snap.Validate())
	store := config.NewStore(&snap)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := ffb.NewEngine(store, logger)
	return bridge.New(store, engine, phys, virt, reopen, logger, log.NewRaw(nil))
}

func runBridge(t *testing.T, b *bridge.Bridge) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- b.Run(ctx) }()
	return stop, ch
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("bridge did not stop")
		return nil
	}
}

func TestInputFlowsToVirtualDevice(t *testing.T) {
	phys := newFakePhysical()
	virt := newFakeVirtual()
	b := newBridge(t, phys, virt, nil)

	cancel, done := runBridge(t, b)
	defer cancel()

	phys.reports <- iforce.InputReport{Steering: 0, Throttle: 128, Hat: 8}.EncodeInputReport()

	select {
	case report := <-virt.sent:
		rep, err := g29.DecodeInputReport(report)
		require.NoError(t, err)
		assert.Equal(t, uint16(g29.SteeringCenter), rep.Steering)
		assert.Equal(t, uint8(128), rep.Throttle)
		assert.Equal(t, uint8(8), rep.Hat)
	case <-time.After(2 * time.Second):
		t.Fatal("no input report reached the virtual device")
	}

	cancel()
	assert.NoError(t, waitErr(t, done))
}

func TestMalformedInputDoesNotStopLoop(t *testing.T) {
	phys := newFakePhysical()
	virt := newFakeVirtual()
	b := newBridge(t, phys, virt, nil)

	cancel, done := runBridge(t, b)
	defer cancel()

	phys.reports <- []byte{0xDE, 0xAD}
	phys.reports <- iforce.InputReport{Hat: 8}.EncodeInputReport()

	select {
	case report := <-virt.sent:
		assert.Len(t, report, g29.InputReportSize)
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after malformed report")
	}

	cancel()
	assert.NoError(t, waitErr(t, done))
}

func TestOutputReportDrivesWheelCommands(t *testing.T) {
	phys := newFakePhysical()
	virt := newFakeVirtual()
	b := newBridge(t, phys, virt, nil)

	cancel, done := runBridge(t, b)
	defer cancel()

	// Create, configure and start a constant force effect in slot 1.
	virt.out <- []byte{g29.ReportCreateNewEffect, 0x01, g29.EffectConstant}
	virt.out <- []byte{g29.ReportSetConstantForce, 0x01, 0xE8, 0x03}
	virt.out <- []byte{g29.ReportEffectOperation, 0x01, g29.OpEffectStart, 0x01}

	require.Eventually(t, func() bool {
		for _, frame := range phys.frames() {
			if len(frame) > 1 && frame[1] == iforce.OpConstant {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "no constant force command reached the wheel")

	cancel()
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownNeutralizesWheel(t *testing.T) {
	phys := newFakePhysical()
	virt := newFakeVirtual()
	b := newBridge(t, phys, virt, nil)

	cancel, done := runBridge(t, b)
	cancel()
	require.NoError(t, waitErr(t, done))

	frames := phys.frames()
	require.NotEmpty(t, frames, "shutdown issues a neutral command")
	last := frames[len(frames)-1]
	assert.Equal(t, iforce.ConstantForce(1, 0, 0).Encode(), last)
}

func TestDeviceLost(t *testing.T) {
	phys := newFakePhysical()
	phys.readErr = errors.New("device unplugged")
	virt := newFakeVirtual()
	b := newBridge(t, phys, virt, nil)

	_, done := runBridge(t, b)
	assert.ErrorIs(t, waitErr(t, done), bridge.ErrDeviceLost)
}

func TestDeviceLostRecovers(t *testing.T) {
	phys := newFakePhysical()
	phys.readErr = errors.New("device unplugged")
	virt := newFakeVirtual()

	replacement := newFakePhysical()
	reopen := func() (device.Physical, error) { return replacement, nil }
	b := newBridge(t, phys, virt, reopen)

	cancel, done := runBridge(t, b)
	defer cancel()

	replacement.reports <- iforce.InputReport{Hat: 8}.EncodeInputReport()

	select {
	case <-virt.sent:
		// Reports flow from the reopened device.
	case <-time.After(5 * time.Second):
		t.Fatal("no report after reconnect")
	}

	cancel()
	assert.NoError(t, waitErr(t, done))
}
