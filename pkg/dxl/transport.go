package dxl

import (
	"bufio"
	"io"
)

// Transport is the byte stream of the bus.
// Any operation may return ErrWouldBlock if it can't complete yet.
type Transport interface {
	io.ByteReader
	io.ByteWriter
	// Flush pushes written bytes onto the line.
	Flush() error
}

// Direction controls the transmit direction of a half-duplex transceiver.
type Direction interface {
	// Assert switches the transceiver to transmit.
	Assert() error
	// Deassert switches the transceiver back to receive.
	Deassert() error
}

// NopDirection is used when TX and RX are not electrically separated.
type NopDirection struct{}

// Assert implements Direction.
func (NopDirection) Assert() error { return nil }

// Deassert implements Direction.
func (NopDirection) Deassert() error { return nil }

// StreamTransport adapts an io.ReadWriter, e.g. a serial port configured
// with a read timeout. A read returning no data is reported as ErrWouldBlock.
type StreamTransport struct {
	r   io.Reader
	w   *bufio.Writer
	buf [1]byte
}

// NewStreamTransport creates a StreamTransport.
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	return &StreamTransport{r: rw, w: bufio.NewWriterSize(rw, 64)}
}

// ReadByte implements io.ByteReader.
func (t *StreamTransport) ReadByte() (byte, error) {
	n, err := t.r.Read(t.buf[:])
	if n > 0 {
		return t.buf[0], nil
	}
	if err == nil {
		err = ErrWouldBlock
	}
	return 0, err
}

// WriteByte implements io.ByteWriter.
func (t *StreamTransport) WriteByte(b byte) error {
	return t.w.WriteByte(b)
}

// Flush implements Transport.
func (t *StreamTransport) Flush() error {
	return t.w.Flush()
}
