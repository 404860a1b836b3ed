// Package serialport adapts an OS serial port to a dxl.Transport.
package serialport

import (
	"bufio"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/dxl.go/pkg/dxl"
)

// DefaultReadTimeout bounds a single blocking read on the port. A read
// timing out is reported as dxl.ErrWouldBlock so the controller can check
// for cancellation.
const DefaultReadTimeout = 10 * time.Millisecond

// Config specifies how to open a port.
type Config struct {
	Name        string
	BaudRate    int
	ReadTimeout time.Duration
}

// Port is a buffered transport over a serial.Port.
type Port struct {
	port serial.Port
	w    *bufio.Writer

	rbuf [64]byte
	rpos int
	rlen int
}

// Open opens the port in 8N1 mode.
func Open(conf Config) (*Port, error) {
	if conf.BaudRate == 0 {
		conf.BaudRate = 1000000
	}
	if conf.ReadTimeout == 0 {
		conf.ReadTimeout = DefaultReadTimeout
	}
	mode := &serial.Mode{
		BaudRate: conf.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(conf.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Name, err)
	}
	if err := port.SetReadTimeout(conf.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", conf.Name, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		glog.Warningf("reset input of %s: %v", conf.Name, err)
	}
	glog.V(1).Infof("opened %s at %d baud", conf.Name, conf.BaudRate)
	return New(port), nil
}

// New wraps an opened port. The read timeout of port must already be set,
// otherwise ReadByte blocks until data arrives.
func New(port serial.Port) *Port {
	return &Port{port: port, w: bufio.NewWriterSize(port, 256)}
}

// ReadByte implements io.ByteReader.
func (p *Port) ReadByte() (byte, error) {
	if p.rpos >= p.rlen {
		n, err := p.port.Read(p.rbuf[:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, dxl.ErrWouldBlock
		}
		p.rpos, p.rlen = 0, n
	}
	b := p.rbuf[p.rpos]
	p.rpos++
	return b, nil
}

// WriteByte implements io.ByteWriter.
func (p *Port) WriteByte(b byte) error {
	return p.w.WriteByte(b)
}

// Flush writes buffered bytes and waits until they are transmitted, so the
// direction line is not released while the frame is still on the wire.
func (p *Port) Flush() error {
	if err := p.w.Flush(); err != nil {
		return err
	}
	return p.port.Drain()
}

// Close closes the port.
func (p *Port) Close() error {
	return p.port.Close()
}

// RTS returns the RTS line of the port as a direction control line.
// Set inverted for adapters driving the transceiver with active low RTS.
func (p *Port) RTS(inverted bool) dxl.Direction {
	return &rtsLine{port: p.port, active: !inverted}
}

type rtsLine struct {
	port   serial.Port
	active bool
}

func (l *rtsLine) Assert() error {
	return l.port.SetRTS(l.active)
}

func (l *rtsLine) Deassert() error {
	return l.port.SetRTS(!l.active)
}

// List returns the names of serial ports on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}
