// Package dxltest simulates devices on a bus for tests.
package dxltest

import (
	"fmt"

	"github.com/robotalks/dxl.go/pkg/dxl"
)

// Device is a simulated device with a flat control table.
type Device struct {
	ID       byte
	Model    uint16
	Firmware byte
	Mem      [256]byte
	// Silent devices never reply.
	Silent bool
	// Tick runs before each instruction addressed to the device, e.g. to
	// simulate motion.
	Tick func(d *Device)

	registered []byte
}

// NewDevice creates a Device reporting model 1020.
func NewDevice(id byte) *Device {
	return &Device{ID: id, Model: 1020, Firmware: 0x2c}
}

// Line simulates devices sharing a line. It implements dxl.Transport:
// instruction packets flushed by the controller are executed by the
// addressed devices and their replies are queued for reading.
type Line struct {
	Codec   dxl.Codec
	Devices []*Device
	// Loopback queues every sent packet before the replies.
	Loopback bool
	// CorruptEcho flips the last byte of looped back packets.
	CorruptEcho bool

	// Instrs and Params record the instructions received.
	Instrs []dxl.Instruction
	Params [][]byte

	rx      []byte
	pending []byte
}

// NewLine creates a Line.
func NewLine(version dxl.Version, devices ...*Device) *Line {
	return &Line{Codec: dxl.Codec{Version: version}, Devices: devices}
}

// Device finds a device by id.
func (l *Line) Device(id byte) *Device {
	for _, d := range l.Devices {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Unread returns the number of queued bytes not read yet.
func (l *Line) Unread() int {
	return len(l.rx)
}

// Inject queues raw bytes for reading, e.g. a stale reply.
func (l *Line) Inject(data ...byte) {
	l.rx = append(l.rx, data...)
}

// RangeError is the error byte reported for an out of range access.
func (l *Line) RangeError() byte {
	if l.Codec.Version == dxl.Protocol1 {
		return dxl.ErrBitRange
	}
	return dxl.StatusDataRange
}

// ReadByte implements io.ByteReader.
func (l *Line) ReadByte() (byte, error) {
	if len(l.rx) == 0 {
		return 0, dxl.ErrWouldBlock
	}
	b := l.rx[0]
	l.rx = l.rx[1:]
	return b, nil
}

// WriteByte implements io.ByteWriter.
func (l *Line) WriteByte(b byte) error {
	l.pending = append(l.pending, b)
	return nil
}

// Flush executes the written packet.
func (l *Line) Flush() error {
	frame := l.pending
	l.pending = nil
	if l.Loopback && len(frame) > 0 {
		l.rx = append(l.rx, frame...)
		if l.CorruptEcho {
			l.rx[len(l.rx)-1] ^= 0xff
		}
	}
	id, instr, params, err := l.parse(frame)
	if err != nil {
		return err
	}
	l.Instrs = append(l.Instrs, instr)
	l.Params = append(l.Params, append([]byte(nil), params...))
	for _, d := range l.Devices {
		if d.ID != id && id != dxl.BroadcastID {
			continue
		}
		if d.Tick != nil {
			d.Tick(d)
		}
		status, reply := d.execute(l, instr, params)
		if d.Silent || (id == dxl.BroadcastID && instr != dxl.Ping) {
			continue
		}
		var out sink
		if err := l.Codec.EncodeStatus(&out, d.ID, status, reply); err != nil {
			return err
		}
		l.rx = append(l.rx, out...)
	}
	return nil
}

func (l *Line) parse(frame []byte) (byte, dxl.Instruction, []byte, error) {
	if l.Codec.Version == dxl.Protocol1 {
		if len(frame) < 6 {
			return 0, 0, nil, fmt.Errorf("malformed frame [% x]", frame)
		}
		return frame[2], dxl.Instruction(frame[4]), frame[5 : len(frame)-1], nil
	}
	if len(frame) < 10 {
		return 0, 0, nil, fmt.Errorf("malformed frame [% x]", frame)
	}
	return frame[4], dxl.Instruction(frame[7]), frame[8 : len(frame)-2], nil
}

func (l *Line) width() int {
	if l.Codec.Version == dxl.Protocol1 {
		return 1
	}
	return 2
}

func (l *Line) field(b []byte) int {
	if l.width() == 1 {
		return int(b[0])
	}
	return int(dxl.U16(b))
}

func (d *Device) execute(l *Line, instr dxl.Instruction, params []byte) (byte, []byte) {
	w := l.width()
	switch instr {
	case dxl.Ping:
		if l.Codec.Version == dxl.Protocol2 {
			return 0, []byte{byte(d.Model), byte(d.Model >> 8), d.Firmware}
		}
	case dxl.Read:
		if len(params) < 2*w {
			return l.RangeError(), nil
		}
		addr, n := l.field(params), l.field(params[w:])
		if addr+n > len(d.Mem) {
			return l.RangeError(), nil
		}
		return 0, d.Mem[addr : addr+n]
	case dxl.Write, dxl.RegWrite:
		if len(params) < w {
			return l.RangeError(), nil
		}
		addr, data := l.field(params), params[w:]
		if addr+len(data) > len(d.Mem) {
			return l.RangeError(), nil
		}
		if instr == dxl.RegWrite {
			d.registered = append([]byte(nil), params...)
			return 0, nil
		}
		copy(d.Mem[addr:], data)
	case dxl.Action:
		if d.registered != nil {
			d.execute(l, dxl.Write, d.registered)
			d.registered = nil
		}
	case dxl.SyncWrite:
		if len(params) < 2*w {
			return l.RangeError(), nil
		}
		addr, n := l.field(params), l.field(params[w:])
		for ents := params[2*w:]; len(ents) >= n+1; ents = ents[n+1:] {
			if ents[0] == d.ID && addr+n <= len(d.Mem) {
				copy(d.Mem[addr:], ents[1:n+1])
			}
		}
	}
	return 0, nil
}

type sink []byte

func (s *sink) WriteByte(b byte) error {
	*s = append(*s, b)
	return nil
}
