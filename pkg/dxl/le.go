package dxl

import (
	"encoding/binary"
	"fmt"
)

// Register values wider than a byte travel little-endian.

// U16 decodes a little-endian 16-bit value.
func U16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// U32 decodes a little-endian 32-bit value.
func U32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// PutU16 encodes v into b.
func PutU16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// PutU32 encodes v into b.
func PutU32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// AppendU16 appends v to b.
func AppendU16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

// AppendU32 appends v to b.
func AppendU32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// DecodeLE decodes a register value of 1, 2 or 4 bytes.
func DecodeLE(b []byte) (uint32, error) {
	switch len(b) {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(U16(b)), nil
	case 4:
		return U32(b), nil
	}
	return 0, fmt.Errorf("unsupported register width %d", len(b))
}

// EncodeLE encodes v into b which is 1, 2 or 4 bytes long.
func EncodeLE(b []byte, v uint32) error {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		PutU16(b, uint16(v))
	case 4:
		PutU32(b, v)
	default:
		return fmt.Errorf("unsupported register width %d", len(b))
	}
	return nil
}

// AbsDiff returns |a - b| without overflow.
func AbsDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
