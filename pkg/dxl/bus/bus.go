// Package bus provides register access to devices on a dxl bus.
package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/dxl.go/pkg/dxl"
)

var (
	// ErrReadOnly indicates a write to a read-only register.
	ErrReadOnly = errors.New("register is read-only")
	// ErrValueRange indicates a value doesn't fit the register width.
	ErrValueRange = errors.New("value out of range")
	// ErrAddressRange indicates an address or length the protocol can't encode.
	ErrAddressRange = errors.New("address out of range")
	// ErrShortReply indicates the reply carries fewer bytes than requested.
	ErrShortReply = errors.New("short reply")
	// ErrUnsupported indicates the instruction doesn't exist in the
	// protocol version of the bus.
	ErrUnsupported = errors.New("unsupported by protocol version")
	// ErrBroadcastPing indicates a broadcast ping passed to Transact or
	// Ping, which read a single reply. Use PingAll.
	ErrBroadcastPing = errors.New("broadcast ping has multiple replies")
)

// Bus performs transactions over a Controller. It's not safe for
// concurrent use, same as the Controller it wraps. Replies are received
// into a scratch buffer of the version capacity and copied out.
type Bus struct {
	ctrl    *dxl.Controller
	scratch []byte
	req     []byte
}

// New creates a Bus.
func New(ctrl *dxl.Controller) *Bus {
	capacity := ctrl.Version().MaxParams()
	return &Bus{
		ctrl:    ctrl,
		scratch: make([]byte, capacity),
		req:     make([]byte, 0, capacity),
	}
}

// Controller returns the wrapped Controller.
func (b *Bus) Controller() *dxl.Controller {
	return b.ctrl
}

// Version returns the protocol version of the bus.
func (b *Bus) Version() dxl.Version {
	return b.ctrl.Version()
}

// Transact sends an instruction, discards looped back packets and returns
// the parameters of the reply, copied into buf. Replies from other ids,
// e.g. late replies to an earlier transaction, are dropped. Broadcast
// instructions get no reply, except ping which is served by PingAll. A
// non-zero device error is returned as *dxl.ProtocolError along with the
// parameters.
func (b *Bus) Transact(ctx context.Context, id byte, instr dxl.Instruction, params, buf []byte) ([]byte, error) {
	if id == dxl.BroadcastID && instr == dxl.Ping {
		return nil, ErrBroadcastPing
	}
	if err := b.send(ctx, id, instr, params); err != nil {
		return nil, err
	}
	if id == dxl.BroadcastID {
		return nil, nil
	}
	for {
		pkt, err := b.ctrl.Receive(ctx, b.scratch)
		if err != nil {
			return nil, err
		}
		if pkt.ID != id {
			glog.V(4).Infof("drop reply of id=%d, waiting for id=%d", pkt.ID, id)
			continue
		}
		if len(pkt.Params) > len(buf) {
			return nil, dxl.ErrTooSmall
		}
		n := copy(buf, pkt.Params)
		return buf[:n], pkt.Err()
	}
}

// send writes the instruction and discards its echoes.
func (b *Bus) send(ctx context.Context, id byte, instr dxl.Instruction, params []byte) error {
	if err := b.ctrl.Send(ctx, id, instr, params); err != nil {
		return err
	}
	for n := byte(0); n < b.ctrl.EchoCount(); n++ {
		// echoes are known junk, whatever their state.
		if _, err := b.ctrl.Receive(ctx, b.scratch); err != nil {
			if ctx.Err() != nil {
				return err
			}
			glog.V(4).Infof("echo %d of id=%d: %v", n, id, err)
		}
	}
	return nil
}

// PingInfo is the reply to a ping.
type PingInfo struct {
	ID byte
	// Model and Firmware are reported by protocol 2 devices only.
	Model    uint16
	Firmware byte
}

// Ping checks the presence of a device.
func (b *Bus) Ping(ctx context.Context, id byte) (PingInfo, error) {
	var buf [3]byte
	info := PingInfo{ID: id}
	params, err := b.Transact(ctx, id, dxl.Ping, nil, buf[:])
	if err != nil {
		return info, err
	}
	if len(params) >= 3 {
		info.Model, info.Firmware = dxl.U16(params), params[2]
	}
	return info, nil
}

// PingAll broadcasts a ping and collects the replies until ctx is done,
// so ctx must carry a deadline. Only protocol 2 devices reply to a
// broadcast ping.
func (b *Bus) PingAll(ctx context.Context) ([]PingInfo, error) {
	if b.Version() != dxl.Protocol2 {
		return nil, ErrUnsupported
	}
	if err := b.send(ctx, dxl.BroadcastID, dxl.Ping, nil); err != nil {
		return nil, err
	}
	found := []PingInfo{}
	for {
		pkt, err := b.ctrl.Receive(ctx, b.scratch)
		if ctx.Err() != nil {
			return found, nil
		}
		if err != nil {
			var ce *dxl.CommunicationError
			if errors.As(err, &ce) {
				return found, err
			}
			// replies may collide.
			glog.V(4).Infof("ping reply dropped: %v", err)
			continue
		}
		info := PingInfo{ID: pkt.ID}
		if len(pkt.Params) >= 3 {
			info.Model, info.Firmware = dxl.U16(pkt.Params), pkt.Params[2]
		}
		found = append(found, info)
	}
}

// Read reads len(buf) bytes from addr.
func (b *Bus) Read(ctx context.Context, id byte, addr uint16, buf []byte) ([]byte, error) {
	req, err := b.appendAddress(b.req[:0], addr)
	if err != nil {
		return nil, err
	}
	if req, err = b.appendLength(req, len(buf)); err != nil {
		return nil, err
	}
	params, err := b.Transact(ctx, id, dxl.Read, req, buf)
	if err != nil {
		return params, err
	}
	if len(params) < len(buf) {
		return params, fmt.Errorf("%w: %d of %d bytes", ErrShortReply, len(params), len(buf))
	}
	return params, nil
}

// Write writes data at addr.
func (b *Bus) Write(ctx context.Context, id byte, addr uint16, data []byte) error {
	return b.write(ctx, id, dxl.Write, addr, data)
}

// RegWrite registers a write to be executed on Action.
func (b *Bus) RegWrite(ctx context.Context, id byte, addr uint16, data []byte) error {
	return b.write(ctx, id, dxl.RegWrite, addr, data)
}

// Action executes registered writes.
func (b *Bus) Action(ctx context.Context, id byte) error {
	_, err := b.Transact(ctx, id, dxl.Action, nil, nil)
	return err
}

// Reboot restarts a device.
func (b *Bus) Reboot(ctx context.Context, id byte) error {
	if b.Version() != dxl.Protocol2 {
		return ErrUnsupported
	}
	_, err := b.Transact(ctx, id, dxl.Reboot, nil, nil)
	return err
}

// ResetMode selects what FactoryReset keeps.
type ResetMode byte

// Reset modes of protocol 2. Protocol 1 always resets everything.
const (
	ResetAll          ResetMode = 0xff
	ResetExceptID     ResetMode = 0x01
	ResetExceptIDBaud ResetMode = 0x02
)

// FactoryReset restores the control table defaults.
func (b *Bus) FactoryReset(ctx context.Context, id byte, mode ResetMode) error {
	var params []byte
	if b.Version() == dxl.Protocol2 {
		params = append(b.req[:0], byte(mode))
	}
	_, err := b.Transact(ctx, id, dxl.FactoryReset, params, nil)
	return err
}

// clearMultiTurn is the fixed parameter sequence of the clear instruction.
var clearMultiTurn = []byte{0x01, 0x44, 0x58, 0x4c, 0x22}

// Clear resets the multi-turn revolution count.
func (b *Bus) Clear(ctx context.Context, id byte) error {
	if b.Version() != dxl.Protocol2 {
		return ErrUnsupported
	}
	_, err := b.Transact(ctx, id, dxl.Clear, clearMultiTurn, nil)
	return err
}

// SyncEntry is the data for one device in SyncWrite.
type SyncEntry struct {
	ID   byte
	Data []byte
}

// SyncWrite writes the same register range on multiple devices with one
// broadcast packet. All entries must carry width bytes.
func (b *Bus) SyncWrite(ctx context.Context, addr uint16, width int, entries ...SyncEntry) error {
	req, err := b.appendAddress(b.req[:0], addr)
	if err != nil {
		return err
	}
	if req, err = b.appendLength(req, width); err != nil {
		return err
	}
	for _, ent := range entries {
		if len(ent.Data) != width {
			return fmt.Errorf("%w: id %d carries %d bytes, want %d", ErrValueRange, ent.ID, len(ent.Data), width)
		}
		req = append(append(req, ent.ID), ent.Data...)
	}
	if len(req) > b.Version().MaxParams() {
		return dxl.ErrTooManyParams
	}
	b.req = req[:0]
	_, err = b.Transact(ctx, dxl.BroadcastID, dxl.SyncWrite, req, nil)
	return err
}

func (b *Bus) write(ctx context.Context, id byte, instr dxl.Instruction, addr uint16, data []byte) error {
	req, err := b.appendAddress(b.req[:0], addr)
	if err != nil {
		return err
	}
	req = append(req, data...)
	b.req = req[:0]
	_, err = b.Transact(ctx, id, instr, req, nil)
	return err
}

// appendAddress encodes addr as 1 byte (protocol 1) or 2 bytes LE (protocol 2).
func (b *Bus) appendAddress(req []byte, addr uint16) ([]byte, error) {
	if b.Version() == dxl.Protocol1 {
		if addr > 0xff {
			return nil, fmt.Errorf("%w: address %d", ErrAddressRange, addr)
		}
		return append(req, byte(addr)), nil
	}
	return dxl.AppendU16(req, addr), nil
}

func (b *Bus) appendLength(req []byte, n int) ([]byte, error) {
	if b.Version() == dxl.Protocol1 {
		if n > 0xff {
			return nil, fmt.Errorf("%w: length %d", ErrAddressRange, n)
		}
		return append(req, byte(n)), nil
	}
	if n > 0xffff {
		return nil, fmt.Errorf("%w: length %d", ErrAddressRange, n)
	}
	return dxl.AppendU16(req, uint16(n)), nil
}
