package dxl

import "io"

// stuffed marks FF FF FD at the tail of the byte history. With stuffing on,
// an extra FD follows it on the wire.
const stuffed uint32 = 0xfffffd

// encodeV2 writes FF FF FD 00 <id> <len_lo> <len_hi> <lead...> <params...> <crc_lo> <crc_hi>.
// lead is the instruction, followed by the error byte for replies.
func encodeV2(w io.ByteWriter, id byte, lead, params []byte, stuffing bool) error {
	if len(params) > MaxParamsV2 {
		return ErrTooManyParams
	}
	length := len(lead) + len(params) + 2
	if stuffing {
		length += stuffCount(lead, params)
	}
	head := [...]byte{
		headerV2[0], headerV2[1], headerV2[2], headerV2[3],
		id, byte(length), byte(length >> 8),
	}
	if err := writeAll(w, head[:]); err != nil {
		return err
	}
	crc := crcUpdate(crcInit(), head[:]...)
	var tail uint32
	for _, seg := range [...][]byte{lead, params} {
		for _, b := range seg {
			if err := w.WriteByte(b); err != nil {
				return err
			}
			crc, tail = crcUpdate(crc, b), (tail<<8|uint32(b))&0xffffff
			if stuffing && tail == stuffed {
				if err := w.WriteByte(0xfd); err != nil {
					return err
				}
				crc, tail = crcUpdate(crc, 0xfd), (tail<<8|0xfd)&0xffffff
			}
		}
	}
	return writeAll(w, []byte{byte(crc), byte(crc >> 8)})
}

func stuffCount(segs ...[]byte) (n int) {
	var tail uint32
	for _, seg := range segs {
		for _, b := range seg {
			if tail = (tail<<8 | uint32(b)) & 0xffffff; tail == stuffed {
				n++
				tail = (tail<<8 | 0xfd) & 0xffffff
			}
		}
	}
	return
}

type stateV2 int

const (
	v2SeekHeader stateV2 = iota
	v2ReadID
	v2ReadLengthLo
	v2ReadLengthHi
	v2ReadInstruction
	v2ReadError
	v2ReadParams
	v2SkipBody
	v2ReadCRCLo
	v2ReadCRCHi
)

type decoderV2 struct {
	stuffing bool

	state   stateV2
	matched int
	buf     []byte
	pkt     StatusPacket
	recv    int
	remain  int // body bytes left before CRC
	foreign bool
	tail    uint32
	crc     uint16
	rxCRC   uint16
}

// Reset implements Decoder.
func (d *decoderV2) Reset(buf []byte) {
	d.buf = buf
	d.resync()
}

// Packet implements Decoder.
func (d *decoderV2) Packet() StatusPacket {
	return d.pkt
}

// Parse implements Decoder.
func (d *decoderV2) Parse(b byte) (bool, error) {
	switch d.state {
	case v2SeekHeader:
		d.seek(b)
	case v2ReadID:
		d.pkt = StatusPacket{ID: b, version: Protocol2}
		d.crc = crcUpdate(crcUpdate(crcInit(), headerV2[:]...), b)
		d.state = v2ReadLengthLo
	case v2ReadLengthLo:
		d.pkt.Length = int(b)
		d.crc = crcUpdate(d.crc, b)
		d.state = v2ReadLengthHi
	case v2ReadLengthHi:
		d.pkt.Length |= int(b) << 8
		if d.pkt.Length < 3 {
			d.resync()
			return false, nil
		}
		d.crc = crcUpdate(d.crc, b)
		d.remain = d.pkt.Length - 3
		d.state = v2ReadInstruction
	case v2ReadInstruction:
		d.crc, d.tail = crcUpdate(d.crc, b), uint32(b)
		if d.foreign = Instruction(b) != StatusReturn; d.foreign {
			d.state = v2SkipBody
			if d.remain == 0 {
				d.state = v2ReadCRCLo
			}
			return false, nil
		}
		if d.pkt.Length < 4 {
			d.resync()
			return false, nil
		}
		if !d.stuffing && d.pkt.Length-4 > len(d.buf) {
			d.resync()
			return false, ErrTooSmall
		}
		d.pkt.Params, d.recv = d.buf[:0], 0
		d.state = v2ReadError
	case v2ReadError:
		d.body(b)
		d.pkt.Error = b
		d.state = v2ReadParams
		if d.remain == 0 {
			d.state = v2ReadCRCLo
		}
	case v2ReadParams:
		if d.body(b) {
			if d.recv >= len(d.buf) {
				d.resync()
				return false, ErrTooSmall
			}
			d.buf[d.recv] = b
			d.recv++
			d.pkt.Params = d.buf[:d.recv]
		}
		if d.remain == 0 {
			d.state = v2ReadCRCLo
		}
	case v2SkipBody:
		if d.body(b); d.remain == 0 {
			d.state = v2ReadCRCLo
		}
	case v2ReadCRCLo:
		d.rxCRC = uint16(b)
		d.state = v2ReadCRCHi
	case v2ReadCRCHi:
		d.rxCRC |= uint16(b) << 8
		d.resync()
		if d.rxCRC != d.crc {
			return false, ErrCRC
		}
		if d.foreign {
			return false, ErrInstructionReceived
		}
		return true, nil
	}
	return false, nil
}

// body consumes one byte after the instruction and reports whether it's
// data rather than a stuffing byte.
func (d *decoderV2) body(b byte) bool {
	isStuffing := d.stuffing && d.tail == stuffed && b == 0xfd
	d.crc = crcUpdate(d.crc, b)
	d.tail = (d.tail<<8 | uint32(b)) & 0xffffff
	d.remain--
	return !isStuffing
}

func (d *decoderV2) seek(b byte) {
	switch {
	case b == headerV2[d.matched]:
		if d.matched++; d.matched == len(headerV2) {
			d.state = v2ReadID
		}
	case b == 0xff:
		// FF FF FF: the last two bytes still form the header prefix.
		if d.matched != 2 {
			d.matched = 1
		}
	default:
		d.matched = 0
	}
}

func (d *decoderV2) resync() {
	d.state, d.matched = v2SeekHeader, 0
}
