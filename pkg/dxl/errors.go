package dxl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWouldBlock is returned by a Transport when the operation cannot
	// complete yet. The Controller retries such operations.
	ErrWouldBlock = errors.New("would block")
	// ErrCRC indicates the checksum (protocol 1) or CRC (protocol 2) of a
	// received frame doesn't match its content.
	ErrCRC = errors.New("checksum mismatch")
	// ErrTooSmall indicates the buffer passed to Receive can't hold the
	// parameters declared by the frame.
	ErrTooSmall = errors.New("buffer too small")
	// ErrTooManyParams indicates the instruction parameters exceed what the
	// protocol version can carry.
	ErrTooManyParams = errors.New("too many params")
	// ErrInstructionReceived indicates a valid protocol 2 frame which is not
	// a status packet, usually the echo of an instruction just sent.
	ErrInstructionReceived = errors.New("instruction packet received")
	// ErrVersion indicates an unsupported protocol version.
	ErrVersion = errors.New("unsupported protocol version")
)

// CommunicationError wraps errors from the transport or the direction line.
type CommunicationError struct {
	Err error
}

// Error implements error.
func (e *CommunicationError) Error() string {
	return "communication error: " + e.Err.Error()
}

// Unwrap returns the transport error.
func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// Protocol 2 status causes, in the low 7 bits of the error byte.
const (
	StatusResultFail  byte = 0x01
	StatusInstruction byte = 0x02
	StatusCRC         byte = 0x03
	StatusDataRange   byte = 0x04
	StatusDataLength  byte = 0x05
	StatusDataLimit   byte = 0x06
	StatusAccess      byte = 0x07

	// StatusAlert is set when the device is in hardware error state.
	StatusAlert byte = 0x80
)

// Protocol 1 error bits.
const (
	ErrBitInputVoltage byte = 1 << iota
	ErrBitAngleLimit
	ErrBitOverheating
	ErrBitRange
	ErrBitChecksum
	ErrBitOverload
	ErrBitInstruction
)

var statusNames = map[byte]string{
	StatusResultFail:  "result fail",
	StatusInstruction: "instruction error",
	StatusCRC:         "crc error",
	StatusDataRange:   "data range error",
	StatusDataLength:  "data length error",
	StatusDataLimit:   "data limit error",
	StatusAccess:      "access error",
}

var errBitNames = []string{
	"input voltage",
	"angle limit",
	"overheating",
	"range",
	"checksum",
	"overload",
	"instruction",
}

// ProtocolError is the non-zero error byte reported by a device.
type ProtocolError struct {
	Version Version
	Status  byte
}

// Error implements error.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("device error 0x%02x: %s", e.Status, e.Cause())
}

// Cause describes the status code.
func (e *ProtocolError) Cause() string {
	if e.Version == Protocol1 {
		var msgs []string
		for n, name := range errBitNames {
			if e.Status&(1<<uint(n)) != 0 {
				msgs = append(msgs, name)
			}
		}
		if len(msgs) == 0 {
			return "unknown"
		}
		return strings.Join(msgs, ", ")
	}
	cause := "unknown"
	if code := e.Status &^ StatusAlert; code == 0 {
		cause = "ok"
	} else if name, ok := statusNames[code]; ok {
		cause = name
	}
	if e.Alert() {
		cause += " (hardware alert)"
	}
	return cause
}

// Alert indicates the protocol 2 hardware alert flag.
func (e *ProtocolError) Alert() bool {
	return e.Version == Protocol2 && e.Status&StatusAlert != 0
}

func communicationError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CommunicationError
	if errors.As(err, &ce) {
		return err
	}
	return &CommunicationError{Err: err}
}
