package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dxl.go/pkg/dxl"
	"github.com/robotalks/dxl.go/pkg/dxl/dxltest"
)

func newTestLine(v dxl.Version) *dxltest.Line {
	return dxltest.NewLine(v, dxltest.NewDevice(1))
}

func newTestBus(t *testing.T, dev *dxltest.Line, echo byte) *Bus {
	ctrl, err := dxl.NewController(dev, nil,
		dxl.WithVersion(dev.Codec.Version),
		dxl.WithEchoCount(echo))
	require.NoError(t, err)
	return New(ctrl)
}

func forVersions(t *testing.T, fn func(t *testing.T, dev *dxltest.Line, b *Bus)) {
	for _, v := range []dxl.Version{dxl.Protocol1, dxl.Protocol2} {
		for _, echo := range []byte{0, 1} {
			t.Run(v.String()+map[byte]string{0: "", 1: " echo"}[echo], func(t *testing.T) {
				dev := newTestLine(v)
				dev.Loopback = echo > 0
				fn(t, dev, newTestBus(t, dev, echo))
			})
		}
	}
}

func TestPing(t *testing.T) {
	forVersions(t, func(t *testing.T, dev *dxltest.Line, b *Bus) {
		info, err := b.Ping(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, byte(1), info.ID)
		if b.Version() == dxl.Protocol2 {
			require.Equal(t, uint16(1020), info.Model)
			require.Equal(t, byte(0x2c), info.Firmware)
		} else {
			require.Zero(t, info.Model)
		}
		require.Zero(t, dev.Unread())
	})
}

func TestPingTimeout(t *testing.T) {
	dev := newTestLine(dxl.Protocol2)
	b := newTestBus(t, dev, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := b.Ping(ctx, 2)
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestReadWrite(t *testing.T) {
	forVersions(t, func(t *testing.T, dev *dxltest.Line, b *Bus) {
		ctx := context.Background()
		require.NoError(t, b.Write(ctx, 1, 0x19, []byte{0x01}))
		require.Equal(t, byte(1), dev.Device(1).Mem[0x19])
		require.NoError(t, b.Write(ctx, 1, 0x20, []byte{0x34, 0x12}))

		buf := make([]byte, 3)
		data, err := b.Read(ctx, 1, 0x1f, buf)
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0x34, 0x12}, data)
		require.Zero(t, dev.Unread())
	})
}

func TestWriteDeviceError(t *testing.T) {
	forVersions(t, func(t *testing.T, dev *dxltest.Line, b *Bus) {
		err := b.Write(context.Background(), 1, 0xff, []byte{1, 2})
		var pe *dxl.ProtocolError
		require.True(t, errors.As(err, &pe))
		require.Equal(t, dev.RangeError(), pe.Status)
	})
}

func TestReadTooSmall(t *testing.T) {
	dev := newTestLine(dxl.Protocol1)
	b := newTestBus(t, dev, 0)
	_, err := b.Transact(context.Background(), 1, dxl.Read, []byte{0x00, 0x02}, make([]byte, 1))
	require.Equal(t, dxl.ErrTooSmall, err)
}

func TestAddressRange(t *testing.T) {
	dev := newTestLine(dxl.Protocol1)
	b := newTestBus(t, dev, 0)
	_, err := b.Read(context.Background(), 1, 0x100, make([]byte, 1))
	require.True(t, errors.Is(err, ErrAddressRange))
	require.Empty(t, dev.Instrs)
}

func TestRegWriteAction(t *testing.T) {
	forVersions(t, func(t *testing.T, dev *dxltest.Line, b *Bus) {
		ctx := context.Background()
		require.NoError(t, b.RegWrite(ctx, 1, 0x1e, []byte{0xff, 0x01}))
		require.Equal(t, byte(0), dev.Device(1).Mem[0x1e])
		require.NoError(t, b.Action(ctx, dxl.BroadcastID))
		require.Equal(t, []byte{0xff, 0x01}, dev.Device(1).Mem[0x1e:0x20])
		require.Zero(t, dev.Unread())
	})
}

func TestSyncWrite(t *testing.T) {
	forVersions(t, func(t *testing.T, dev *dxltest.Line, b *Bus) {
		ctx := context.Background()
		require.NoError(t, b.SyncWrite(ctx, 0x1e, 2,
			SyncEntry{ID: 1, Data: []byte{0x00, 0x02}},
			SyncEntry{ID: 2, Data: []byte{0x00, 0x03}}))
		require.Equal(t, []byte{0x00, 0x02}, dev.Device(1).Mem[0x1e:0x20])
		require.Equal(t, dxl.SyncWrite, dev.Instrs[0])

		err := b.SyncWrite(ctx, 0x1e, 2, SyncEntry{ID: 1, Data: []byte{1}})
		require.True(t, errors.Is(err, ErrValueRange))
	})
}

func TestRebootClearFactoryReset(t *testing.T) {
	ctx := context.Background()
	dev := newTestLine(dxl.Protocol2)
	b := newTestBus(t, dev, 0)
	require.NoError(t, b.Reboot(ctx, 1))
	require.NoError(t, b.Clear(ctx, 1))
	require.NoError(t, b.FactoryReset(ctx, 1, ResetExceptID))
	require.Equal(t, []dxl.Instruction{dxl.Reboot, dxl.Clear, dxl.FactoryReset}, dev.Instrs)
	require.Equal(t, clearMultiTurn, dev.Params[1])
	require.Equal(t, []byte{0x01}, dev.Params[2])

	dev = newTestLine(dxl.Protocol1)
	b = newTestBus(t, dev, 0)
	require.Equal(t, ErrUnsupported, b.Reboot(ctx, 1))
	require.Equal(t, ErrUnsupported, b.Clear(ctx, 1))
	require.NoError(t, b.FactoryReset(ctx, 1, ResetAll))
	require.Equal(t, []dxl.Instruction{dxl.FactoryReset}, dev.Instrs)
	require.Empty(t, dev.Params[0])
}

func TestPingAll(t *testing.T) {
	ctx := context.Background()
	dev := dxltest.NewLine(dxl.Protocol2, dxltest.NewDevice(1), dxltest.NewDevice(2))
	dev.Device(1).Mem[65], dev.Device(2).Mem[65] = 0x11, 0x22
	b := newTestBus(t, dev, 0)

	_, err := b.Ping(ctx, dxl.BroadcastID)
	require.Equal(t, ErrBroadcastPing, err)
	require.Empty(t, dev.Instrs)

	pctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	found, err := b.PingAll(pctx)
	require.NoError(t, err)
	require.Equal(t, []PingInfo{
		{ID: 1, Model: 1020, Firmware: 0x2c},
		{ID: 2, Model: 1020, Firmware: 0x2c},
	}, found)
	require.Zero(t, dev.Unread())

	led, _ := XSeries.Lookup("led")
	for _, id := range []byte{1, 2} {
		val, err := b.ReadRegister(ctx, id, led)
		require.NoError(t, err)
		require.Equal(t, uint32(id)*0x11, val)
	}

	_, err = newTestBus(t, newTestLine(dxl.Protocol1), 0).PingAll(pctx)
	require.Equal(t, ErrUnsupported, err)
}

func TestStaleReplyDropped(t *testing.T) {
	for _, v := range []dxl.Version{dxl.Protocol1, dxl.Protocol2} {
		dev := newTestLine(v)
		dev.Device(1).Mem[0x19] = 0x11
		b := newTestBus(t, dev, 0)
		// late ping reply of id 2, larger than the read buffer.
		var stale byteSink
		require.NoError(t, dev.Codec.EncodeStatus(&stale, 2, 0, []byte{0x06, 0x04, 0x26}))
		dev.Inject(stale...)

		data, err := b.Read(context.Background(), 1, 0x19, make([]byte, 1))
		require.NoError(t, err, v.String())
		require.Equal(t, []byte{0x11}, data)
		require.Zero(t, dev.Unread())
	}
}

func TestCorruptEchoDiscarded(t *testing.T) {
	for _, v := range []dxl.Version{dxl.Protocol1, dxl.Protocol2} {
		dev := newTestLine(v)
		dev.Loopback, dev.CorruptEcho = true, true
		dev.Device(1).Mem[0x19] = 0x5a
		b := newTestBus(t, dev, 1)

		data, err := b.Transact(context.Background(), 1, dxl.Read, readParams(v, 0x19, 1), make([]byte, 1))
		require.NoError(t, err, v.String())
		require.Equal(t, []byte{0x5a}, data)
		require.Zero(t, dev.Unread())
	}
}

func readParams(v dxl.Version, addr, n byte) []byte {
	if v == dxl.Protocol1 {
		return []byte{addr, n}
	}
	return []byte{addr, 0, n, 0}
}

type byteSink []byte

func (s *byteSink) WriteByte(b byte) error {
	*s = append(*s, b)
	return nil
}
