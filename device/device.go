// Package device defines the I/O contract between the translation core
// and the physical and virtual wheel devices. Implementations are
// platform-specific; the core never branches on platform.
package device

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout indicates a bounded read returned no data. The caller
// retries; it is not a device failure.
var ErrTimeout = errors.New("device: read timeout")

// ErrClosed indicates the device handle has been released.
var ErrClosed = errors.New("device: closed")

// Physical is the handle to the real wheel.
type Physical interface {
	// ReadInput reads one raw input report, waiting at most timeout.
	// Returns ErrTimeout when no report arrived in time.
	ReadInput(timeout time.Duration) ([]byte, error)
	// WriteCommand sends one encoded command frame to the wheel.
	WriteCommand(frame []byte) error
	Close() error
}

// Virtual is the handle to the emulated wheel presented to the host.
type Virtual interface {
	// SendInput publishes one input report to the host.
	SendInput(report []byte) error
	// ReadOutput blocks until the host delivers an output report or ctx
	// is cancelled.
	ReadOutput(ctx context.Context) ([]byte, error)
	Close() error
}

// PhysicalOpener re-opens the physical wheel, used for reconnection after
// persistent I/O failure.
type PhysicalOpener func() (Physical, error)
