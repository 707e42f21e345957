// Package g29 implements the emulated wheel's fixed HID report formats:
// the input report sent to the host and the force feedback output reports
// received from it. Pure encode/decode, no behavior.
package g29

import (
	"encoding/binary"
	"fmt"

	"github.com/openffb/wheelbridge/protocol/iforce"
)

// InputReport is the fixed input report presented to the host.
type InputReport struct {
	Steering uint16 // center 0x8000
	Throttle uint8
	Brake    uint8
	Clutch   uint8
	Buttons  uint32 // bits 0..23 buttons
	Hat      uint8  // 0..7, 8 = neutral
}

// Encode builds the raw 12-byte report.
func (r InputReport) Encode() []byte {
	b := make([]byte, InputReportSize)
	b[inOffsetReportID] = InputReportID
	binary.LittleEndian.PutUint16(b[inOffsetSteering:inOffsetSteering+2], r.Steering)
	b[inOffsetThrottle] = r.Throttle
	b[inOffsetBrake] = r.Brake
	b[inOffsetClutch] = r.Clutch
	buttons := r.Buttons&0x00FFFFFF | uint32(r.Hat&hatMask)<<hatShift
	binary.LittleEndian.PutUint32(b[inOffsetButtons:inOffsetButtons+4], buttons)
	return b
}

// DecodeInputReport parses a raw input report, the inverse of Encode.
func DecodeInputReport(buf []byte) (InputReport, error) {
	if len(buf) != InputReportSize {
		return InputReport{}, fmt.Errorf("%w: got %d bytes, want %d", iforce.ErrParse, len(buf), InputReportSize)
	}
	if buf[inOffsetReportID] != InputReportID {
		return InputReport{}, fmt.Errorf("%w: report ID 0x%02x", iforce.ErrParse, buf[inOffsetReportID])
	}
	buttons := binary.LittleEndian.Uint32(buf[inOffsetButtons : inOffsetButtons+4])
	return InputReport{
		Steering: binary.LittleEndian.Uint16(buf[inOffsetSteering : inOffsetSteering+2]),
		Throttle: buf[inOffsetThrottle],
		Brake:    buf[inOffsetBrake],
		Clutch:   buf[inOffsetClutch],
		Buttons:  buttons & 0x00FFFFFF,
		Hat:      uint8(buttons>>hatShift) & hatMask,
	}, nil
}
