// Package dxl implements the packet engine for actuators sharing a single
// half-duplex serial line.
//
// Two sibling wire protocols are supported:
//
//	protocol 1: FF FF <id> <len> <instr> <params...> <checksum>
//	protocol 2: FF FF FD 00 <id> <len_lo> <len_hi> <instr> <params...> <crc_lo> <crc_hi>
//
// A Controller owns the transport and the direction-control line of one bus
// and is bound to one protocol version. Send writes an instruction packet,
// Receive reads exactly one status packet. Receive knows nothing about echo:
// when TX is looped back into RX, the caller discards EchoCount() frames
// before the authoritative reply (see package bus).
//
// Transports may report ErrWouldBlock instead of blocking. The Controller
// busy-polls such operations; the only way to bound the wait is the
// context.Context passed in by the caller.
package dxl
