// Package hidwheel accesses the physical wheel through the hidapi HID
// layer.
package hidwheel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/device"
	"github.com/openffb/wheelbridge/protocol/iforce"
)

// Wheel is a physical wheel opened over hidapi.
type Wheel struct {
	dev    *hid.Device
	logger *slog.Logger
}

// Open locates and opens the wheel identified by the snapshot's VID/PID
// and optional serial number.
func Open(cfg config.WheelConfig, logger *slog.Logger) (*Wheel, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("hidwheel: init: %w", err)
	}

	var dev *hid.Device
	var err error
	if cfg.Serial != "" {
		dev, err = hid.Open(cfg.VID, cfg.PID, cfg.Serial)
	} else {
		dev, err = hid.OpenFirst(cfg.VID, cfg.PID)
	}
	if err != nil {
		return nil, fmt.Errorf("hidwheel: open %04x:%04x: %w", cfg.VID, cfg.PID, err)
	}

	if info, err := dev.GetDeviceInfo(); err == nil {
		logger.Info("opened wheel",
			"path", info.Path,
			"vid", fmt.Sprintf("%04x", info.VendorID),
			"pid", fmt.Sprintf("%04x", info.ProductID),
			"product", info.ProductStr)
	}

	return &Wheel{dev: dev, logger: logger}, nil
}

// ReadInput reads one raw input report, waiting at most timeout. A read
// that returns no data within the timeout yields device.ErrTimeout.
func (w *Wheel) ReadInput(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, iforce.InputReportSize)
	n, err := w.dev.ReadWithTimeout(buf, timeout)
	if err != nil {
		return nil, fmt.Errorf("hidwheel: read: %w", err)
	}
	if n == 0 {
		return nil, device.ErrTimeout
	}
	return buf[:n], nil
}

// WriteCommand sends one encoded command frame to the wheel.
func (w *Wheel) WriteCommand(frame []byte) error {
	if _, err := w.dev.Write(frame); err != nil {
		return fmt.Errorf("hidwheel: write: %w", err)
	}
	return nil
}

// Close releases the device handle.
func (w *Wheel) Close() error {
	return w.dev.Close()
}

// Initialize sends the wheel setup sequence: rotation range and the
// autocenter spring.
func (w *Wheel) Initialize(snap *config.Snapshot) error {
	cmds := []iforce.Command{
		iforce.SetRange(snap.Input.SteeringRange),
		iforce.Autocenter(uint8(snap.FFB.AutocenterGain * 255)),
	}
	for _, c := range cmds {
		if err := w.WriteCommand(c.Encode()); err != nil {
			return err
		}
		// The wheel firmware needs a moment between setup commands.
		time.Sleep(10 * time.Millisecond)
	}
	w.logger.Info("wheel initialized",
		"range", snap.Input.SteeringRange,
		"autocenter", snap.FFB.AutocenterGain)
	return nil
}

// Info describes one enumerated HID device.
type Info struct {
	Path      string
	VID, PID  uint16
	Serial    string
	Product   string
	Vendor    string
	UsagePage uint16
}

// Enumerate lists HID devices, optionally filtered by VID/PID (0 matches
// any).
func Enumerate(vid, pid uint16) ([]Info, error) {
	var out []Info
	err := hid.Enumerate(vid, pid, func(info *hid.DeviceInfo) error {
		out = append(out, Info{
			Path:      info.Path,
			VID:       info.VendorID,
			PID:       info.ProductID,
			Serial:    info.SerialNbr,
			Product:   info.ProductStr,
			Vendor:    info.MfrStr,
			UsagePage: info.UsagePage,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hidwheel: enumerate: %w", err)
	}
	return out, nil
}
