package iforce

import "encoding/binary"

// Command is a single outgoing wheel command: opcode plus payload. The wire
// frame is [length, opcode, payload..., checksum] where length counts the
// opcode, payload and checksum bytes. The checksum is the XOR of every
// preceding frame byte and is recomputed on every Encode, never carried
// over from parsed input.
type Command struct {
	Opcode  uint8
	Payload []byte
}

// Encode builds the wire frame for c.
func (c Command) Encode() []byte {
	frame := make([]byte, 0, len(c.Payload)+3)
	frame = append(frame, uint8(len(c.Payload)+2))
	frame = append(frame, c.Opcode)
	frame = append(frame, c.Payload...)
	return append(frame, Checksum(frame))
}

// Checksum XORs all bytes of the frame so far.
func Checksum(frame []byte) uint8 {
	var sum uint8
	for _, b := range frame {
		sum ^= b
	}
	return sum
}

// ConstantForce builds a constant-force command for a slot. Duration is in
// milliseconds, 0 means infinite.
func ConstantForce(slot uint8, magnitude int16, duration uint16) Command {
	p := make([]byte, 5)
	p[0] = slot
	binary.LittleEndian.PutUint16(p[1:3], uint16(magnitude))
	binary.LittleEndian.PutUint16(p[3:5], duration)
	return Command{Opcode: OpConstant, Payload: p}
}

// PeriodicForce builds a periodic effect command for a slot.
func PeriodicForce(slot, waveform uint8, magnitude int16, period, phase uint16) Command {
	p := make([]byte, 8)
	p[0] = slot
	p[1] = waveform
	binary.LittleEndian.PutUint16(p[2:4], uint16(magnitude))
	binary.LittleEndian.PutUint16(p[4:6], period)
	binary.LittleEndian.PutUint16(p[6:8], phase)
	return Command{Opcode: OpPeriodic, Payload: p}
}

// ConditionForce builds a condition effect command for a slot.
func ConditionForce(slot, subtype uint8, positive, negative int16) Command {
	p := make([]byte, 6)
	p[0] = slot
	p[1] = subtype
	binary.LittleEndian.PutUint16(p[2:4], uint16(positive))
	binary.LittleEndian.PutUint16(p[4:6], uint16(negative))
	return Command{Opcode: OpCondition, Payload: p}
}

// RampForce builds a ramp effect command for a slot.
func RampForce(slot uint8, start, end int16, duration uint16) Command {
	p := make([]byte, 7)
	p[0] = slot
	binary.LittleEndian.PutUint16(p[1:3], uint16(start))
	binary.LittleEndian.PutUint16(p[3:5], uint16(end))
	binary.LittleEndian.PutUint16(p[5:7], duration)
	return Command{Opcode: OpRamp, Payload: p}
}

// SetRange builds the wheel initialization command selecting the rotation
// range in degrees.
func SetRange(degrees uint16) Command {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, degrees)
	return Command{Opcode: OpSetRange, Payload: p}
}

// Autocenter builds the autocenter spring command. Gain 0 disables the
// spring.
func Autocenter(gain uint8) Command {
	return Command{Opcode: OpAutocenter, Payload: []byte{gain}}
}
