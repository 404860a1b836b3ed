package dxl

import "fmt"

// Version selects the wire protocol of a bus.
type Version byte

// Supported protocol versions.
const (
	Protocol1 Version = 1
	Protocol2 Version = 2
)

// IsValid checks if it's a supported protocol version.
func (v Version) IsValid() bool {
	return v == Protocol1 || v == Protocol2
}

// MaxParams returns the static capacity bound of instruction parameters.
func (v Version) MaxParams() int {
	if v == Protocol1 {
		return MaxParamsV1
	}
	return MaxParamsV2
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("protocol%d", byte(v))
}

const (
	// MaxParamsV1 is limited by the single length byte (params + 2).
	MaxParamsV1 = 0xff - 2
	// MaxParamsV2 bounds parameters of protocol 2 packets. The length field
	// could carry more, the bound keeps frame buffers small.
	MaxParamsV2 = 1024

	// BroadcastID addresses all devices on the bus. Devices never reply
	// to broadcast instructions other than ping.
	BroadcastID byte = 0xfe
)

// Instruction is the op-code of an instruction packet.
type Instruction byte

// Instruction op-codes.
const (
	Ping         Instruction = 0x01
	Read         Instruction = 0x02
	Write        Instruction = 0x03
	RegWrite     Instruction = 0x04
	Action       Instruction = 0x05
	FactoryReset Instruction = 0x06
	Reboot       Instruction = 0x08
	Clear        Instruction = 0x10
	// StatusReturn is stamped by protocol 2 devices on their replies.
	StatusReturn Instruction = 0x55
	SyncRead     Instruction = 0x82
	SyncWrite    Instruction = 0x83
	BulkRead     Instruction = 0x92
	BulkWrite    Instruction = 0x93
)

var instructionNames = map[Instruction]string{
	Ping:         "Ping",
	Read:         "Read",
	Write:        "Write",
	RegWrite:     "RegWrite",
	Action:       "Action",
	FactoryReset: "FactoryReset",
	Reboot:       "Reboot",
	Clear:        "Clear",
	StatusReturn: "StatusReturn",
	SyncRead:     "SyncRead",
	SyncWrite:    "SyncWrite",
	BulkRead:     "BulkRead",
	BulkWrite:    "BulkWrite",
}

// String implements fmt.Stringer.
func (i Instruction) String() string {
	if name, ok := instructionNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Instruction(0x%02x)", byte(i))
}

// ValidFor indicates whether the instruction exists in protocol v.
func (i Instruction) ValidFor(v Version) bool {
	if _, ok := instructionNames[i]; !ok {
		return false
	}
	switch i {
	case StatusReturn, Reboot, Clear:
		return v == Protocol2
	}
	return true
}

// StatusPacket is a reply parsed from the bus.
type StatusPacket struct {
	ID byte
	// Length is the raw length field of the frame.
	Length int
	Error  byte
	// Params aliases the buffer passed to Receive.
	Params []byte

	version Version
}

// Err returns a *ProtocolError if the device reported an error.
func (p *StatusPacket) Err() error {
	if p.Error == 0 {
		return nil
	}
	return &ProtocolError{Version: p.version, Status: p.Error}
}
