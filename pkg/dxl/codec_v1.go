package dxl

import "io"

// encodeV1 writes FF FF <id> <len> <code> <params...> <checksum>.
// code is the instruction of a request or the error byte of a reply.
func encodeV1(w io.ByteWriter, id, code byte, params []byte) error {
	if len(params) > MaxParamsV1 {
		return ErrTooManyParams
	}
	length := byte(len(params) + 2)
	if err := writeAll(w, headerV1[:]); err != nil {
		return err
	}
	if err := writeAll(w, []byte{id, length, code}); err != nil {
		return err
	}
	sum := id + length + code
	for _, b := range params {
		if err := w.WriteByte(b); err != nil {
			return err
		}
		sum += b
	}
	return w.WriteByte(^sum)
}

type stateV1 int

const (
	v1SeekHeader stateV1 = iota
	v1ReadID
	v1ReadLength
	v1ReadError
	v1ReadParams
	v1ReadChecksum
)

type decoderV1 struct {
	state   stateV1
	matched int
	buf     []byte
	pkt     StatusPacket
	recv    int
	sum     byte
}

// Reset implements Decoder.
func (d *decoderV1) Reset(buf []byte) {
	d.buf = buf
	d.resync()
}

// Packet implements Decoder.
func (d *decoderV1) Packet() StatusPacket {
	return d.pkt
}

// Parse implements Decoder.
func (d *decoderV1) Parse(b byte) (bool, error) {
	switch d.state {
	case v1SeekHeader:
		// no special case for 0xff inside a partial match: any byte not
		// extending the header restarts the search.
		if b != headerV1[d.matched] {
			d.matched = 0
			return false, nil
		}
		if d.matched++; d.matched == len(headerV1) {
			d.state = v1ReadID
		}
	case v1ReadID:
		d.pkt = StatusPacket{ID: b, version: Protocol1}
		d.sum = b
		d.state = v1ReadLength
	case v1ReadLength:
		if b < 2 {
			// can't be a frame, the header was part of something else.
			d.resync()
			return false, nil
		}
		count := int(b) - 2
		if count > len(d.buf) {
			d.resync()
			return false, ErrTooSmall
		}
		d.pkt.Length, d.pkt.Params = int(b), d.buf[:count]
		d.sum += b
		d.recv = 0
		d.state = v1ReadError
	case v1ReadError:
		d.pkt.Error = b
		d.sum += b
		d.state = v1ReadParams
		if len(d.pkt.Params) == 0 {
			d.state = v1ReadChecksum
		}
	case v1ReadParams:
		d.pkt.Params[d.recv] = b
		d.sum += b
		if d.recv++; d.recv >= len(d.pkt.Params) {
			d.state = v1ReadChecksum
		}
	case v1ReadChecksum:
		d.resync()
		if b != ^d.sum {
			return false, ErrCRC
		}
		return true, nil
	}
	return false, nil
}

func (d *decoderV1) resync() {
	d.state, d.matched = v1SeekHeader, 0
}
