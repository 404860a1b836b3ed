package dxl

import "io"

// Codec encodes and decodes frames of one protocol version.
type Codec struct {
	Version Version
	// Stuffing enables protocol 2 byte stuffing. The legacy wire format
	// doesn't stuff, so it's off unless the devices require it.
	Stuffing bool
}

// Decoder parses a status packet one byte at a time.
type Decoder interface {
	// Reset discards any partial frame. Parameters of the next packet are
	// stored in buf, len(buf) is the accepted parameter count.
	Reset(buf []byte)
	// Parse consumes one byte. It returns true when a valid packet is
	// complete. On error the partial frame is dropped and the decoder
	// starts seeking the next header.
	Parse(b byte) (bool, error)
	// Packet returns the last completed packet.
	Packet() StatusPacket
}

var (
	headerV1 = [...]byte{0xff, 0xff}
	headerV2 = [...]byte{0xff, 0xff, 0xfd, 0x00}
)

// EncodeInstruction writes an instruction packet.
func (c Codec) EncodeInstruction(w io.ByteWriter, id byte, instr Instruction, params []byte) error {
	switch c.Version {
	case Protocol1:
		return encodeV1(w, id, byte(instr), params)
	case Protocol2:
		return encodeV2(w, id, []byte{byte(instr)}, params, c.Stuffing)
	}
	return ErrVersion
}

// EncodeStatus writes a status packet as a device would reply.
func (c Codec) EncodeStatus(w io.ByteWriter, id, status byte, params []byte) error {
	switch c.Version {
	case Protocol1:
		return encodeV1(w, id, status, params)
	case Protocol2:
		return encodeV2(w, id, []byte{byte(StatusReturn), status}, params, c.Stuffing)
	}
	return ErrVersion
}

// NewDecoder creates a Decoder storing parameters into buf.
func (c Codec) NewDecoder(buf []byte) Decoder {
	var d Decoder
	if c.Version == Protocol1 {
		d = &decoderV1{}
	} else {
		d = &decoderV2{stuffing: c.Stuffing}
	}
	d.Reset(buf)
	return d
}

// Decode parses the first status packet from data and returns the number
// of bytes consumed. io.ErrUnexpectedEOF is returned if data ends before
// a packet completes.
func (c Codec) Decode(data, buf []byte) (StatusPacket, int, error) {
	if !c.Version.IsValid() {
		return StatusPacket{}, 0, ErrVersion
	}
	d := c.NewDecoder(buf)
	for n, b := range data {
		done, err := d.Parse(b)
		if err != nil {
			return StatusPacket{}, n + 1, err
		}
		if done {
			return d.Packet(), n + 1, nil
		}
	}
	return StatusPacket{}, len(data), io.ErrUnexpectedEOF
}

func writeAll(w io.ByteWriter, p []byte) error {
	for _, b := range p {
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
