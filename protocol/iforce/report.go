// Package iforce implements the legacy wheel protocol: the fixed input
// report layout and the outgoing command framing with its trailing checksum.
package iforce

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrParse indicates a malformed or undersized report. The report is
// dropped and translation continues.
var ErrParse = errors.New("iforce: malformed report")

// InputReport is the decoded 8-byte wheel input report.
type InputReport struct {
	Steering int16
	Throttle uint8
	Brake    uint8
	Clutch   uint8
	Buttons  uint16
	Hat      uint8
}

// DecodeInputReport parses a raw input report. Returns ErrParse when the
// buffer is not exactly InputReportSize bytes.
func DecodeInputReport(buf []byte) (InputReport, error) {
	if len(buf) != InputReportSize {
		return InputReport{}, fmt.Errorf("%w: got %d bytes, want %d", ErrParse, len(buf), InputReportSize)
	}
	return InputReport{
		Steering: int16(binary.LittleEndian.Uint16(buf[inOffsetSteeringLo : inOffsetSteeringHi+1])),
		Throttle: buf[inOffsetThrottle],
		Brake:    buf[inOffsetBrake],
		Clutch:   buf[inOffsetClutch],
		Buttons:  binary.LittleEndian.Uint16(buf[inOffsetButtonsLo : inOffsetButtonsHi+1]),
		Hat:      buf[inOffsetHat] & hatMask,
	}, nil
}

// EncodeInputReport builds the raw byte form of r. Decode then Encode
// round-trips to the identical byte sequence for any valid report.
func (r InputReport) EncodeInputReport() []byte {
	b := make([]byte, InputReportSize)
	binary.LittleEndian.PutUint16(b[inOffsetSteeringLo:inOffsetSteeringHi+1], uint16(r.Steering))
	b[inOffsetThrottle] = r.Throttle
	b[inOffsetBrake] = r.Brake
	b[inOffsetClutch] = r.Clutch
	binary.LittleEndian.PutUint16(b[inOffsetButtonsLo:inOffsetButtonsHi+1], r.Buttons)
	b[inOffsetHat] = r.Hat & hatMask
	return b
}
