// Package uhid creates the virtual wheel through the Linux /dev/uhid
// interface.
package uhid

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/device"
	"github.com/openffb/wheelbridge/protocol/g29"
)

const uhidPath = "/dev/uhid"

// uhid event types from linux/uhid.h.
const (
	uhidDestroy = 1
	uhidStart   = 2
	uhidStop    = 3
	uhidOpen    = 4
	uhidClose   = 5
	uhidOutput  = 6
	uhidCreate2 = 11
	uhidInput2  = 12
)

const (
	uhidDataMax = 4096

	// uhid_create2_req field offsets, after the 4-byte event type.
	createOffName    = 4
	createOffPhys    = 4 + 128
	createOffUniq    = 4 + 128 + 64
	createOffRdSize  = 4 + 128 + 64 + 64
	createOffBus     = createOffRdSize + 2
	createOffVendor  = createOffBus + 2
	createOffProduct = createOffVendor + 4
	createOffVersion = createOffProduct + 4
	createOffCountry = createOffVersion + 4
	createOffRdData  = createOffCountry + 4
	createEventSize  = createOffRdData + uhidDataMax

	// uhid_input2_req: u16 size followed by data.
	input2OffSize = 4
	input2OffData = 6

	// uhid_output_req: data, u16 size, u8 rtype.
	outputOffData  = 4
	outputOffSize  = outputOffData + uhidDataMax
	outputOffRType = outputOffSize + 2
)

// Device is a virtual wheel backed by a uhid character device.
type Device struct {
	fd     int
	logger *slog.Logger

	writeMu sync.Mutex
	closed  bool
}

// Create builds the virtual wheel with the emulated identity and the
// report descriptor from the g29 package.
func Create(cfg config.EmulatedConfig, logger *slog.Logger) (*Device, error) {
	fd, err := unix.Open(uhidPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("uhid: open %s: %w", uhidPath, err)
	}

	d := &Device{fd: fd, logger: logger}
	if err := d.create(cfg); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	logger.Info("virtual wheel created",
		"vid", fmt.Sprintf("%04x", cfg.VID),
		"pid", fmt.Sprintf("%04x", cfg.PID),
		"product", cfg.Product)
	return d, nil
}

func (d *Device) create(cfg config.EmulatedConfig) error {
	desc := g29.ReportDescriptor
	if len(desc) > uhidDataMax {
		return fmt.Errorf("uhid: report descriptor too large: %d bytes", len(desc))
	}

	buf := make([]byte, createEventSize)
	binary.LittleEndian.PutUint32(buf[0:4], uhidCreate2)
	copy(buf[createOffName:createOffName+127], cfg.Product)
	copy(buf[createOffUniq:createOffUniq+63], cfg.Serial)
	binary.LittleEndian.PutUint16(buf[createOffRdSize:createOffRdSize+2], uint16(len(desc)))
	binary.LittleEndian.PutUint16(buf[createOffBus:createOffBus+2], unix.BUS_USB)
	binary.LittleEndian.PutUint32(buf[createOffVendor:createOffVendor+4], uint32(cfg.VID))
	binary.LittleEndian.PutUint32(buf[createOffProduct:createOffProduct+4], uint32(cfg.PID))
	copy(buf[createOffRdData:], desc)

	if _, err := unix.Write(d.fd, buf); err != nil {
		return fmt.Errorf("uhid: create: %w", err)
	}
	return nil
}

// SendInput publishes one input report to the host.
func (d *Device) SendInput(report []byte) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if d.closed {
		return device.ErrClosed
	}
	if len(report) > uhidDataMax {
		return fmt.Errorf("uhid: input report too large: %d bytes", len(report))
	}

	buf := make([]byte, input2OffData+len(report))
	binary.LittleEndian.PutUint32(buf[0:4], uhidInput2)
	binary.LittleEndian.PutUint16(buf[input2OffSize:input2OffSize+2], uint16(len(report)))
	copy(buf[input2OffData:], report)

	if _, err := unix.Write(d.fd, buf); err != nil {
		return fmt.Errorf("uhid: send input: %w", err)
	}
	return nil
}

// ReadOutput blocks until the host delivers an output report or ctx is
// cancelled. Kernel lifecycle events (start/stop/open/close) are consumed
// here and logged at debug level.
func (d *Device) ReadOutput(ctx context.Context) ([]byte, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	buf := make([]byte, createEventSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fds[0].Revents = 0
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("uhid: poll: %w", err)
		}
		if n == 0 {
			continue
		}

		r, err := unix.Read(d.fd, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("uhid: read: %w", err)
		}
		if r < 4 {
			continue
		}

		switch binary.LittleEndian.Uint32(buf[0:4]) {
		case uhidOutput:
			if r < outputOffRType+1 {
				continue
			}
			size := int(binary.LittleEndian.Uint16(buf[outputOffSize : outputOffSize+2]))
			if size > uhidDataMax {
				size = uhidDataMax
			}
			out := make([]byte, size)
			copy(out, buf[outputOffData:outputOffData+size])
			return out, nil
		case uhidStart, uhidOpen:
			d.logger.Debug("uhid device opened by host")
		case uhidStop, uhidClose:
			d.logger.Debug("uhid device closed by host")
		default:
			// GET_REPORT and friends are not needed for the wheel.
		}
	}
}

// Close destroys the virtual device and releases the handle.
func (d *Device) Close() error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uhidDestroy)
	_, _ = unix.Write(d.fd, buf)
	return unix.Close(d.fd)
}
