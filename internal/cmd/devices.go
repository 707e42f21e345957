package cmd

import (
	"fmt"

	"github.com/openffb/wheelbridge/device/hidwheel"
)

// Devices lists HID devices so users can find their wheel's VID/PID.
type Devices struct {
	VID uint16 `help:"Filter by vendor ID, 0 matches any" default:"0"`
	PID uint16 `help:"Filter by product ID, 0 matches any" default:"0"`
}

func (d *Devices) Run() error {
	infos, err := hidwheel.Enumerate(d.VID, d.PID)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no HID devices found")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%04x:%04x  %-30s %-30s %s\n",
			info.VID, info.PID, info.Vendor, info.Product, info.Path)
	}
	return nil
}
