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

func TestTableLookup(t *testing.T) {
	tests := []struct {
		table Table
		name  string
		addr  uint16
		width int
	}{
		{AXSeries, "goal_position", 30, 2},
		{AXSeries, "LED", 25, 1},
		{XSeries, "goal_position", 116, 4},
		{XSeries, "Present_Position", 132, 4},
	}
	for _, test := range tests {
		reg, ok := test.table.Lookup(test.name)
		require.True(t, ok, test.name)
		require.Equal(t, test.addr, reg.Address)
		require.Equal(t, test.width, reg.Width)
	}
	_, ok := XSeries.Lookup("nothing")
	require.False(t, ok)
}

func TestRegisterMax(t *testing.T) {
	require.Equal(t, uint32(0xff), Register{Width: 1}.Max())
	require.Equal(t, uint32(0xffff), Register{Width: 2}.Max())
	require.Equal(t, uint32(0xffffffff), Register{Width: 4}.Max())
	require.Equal(t, "RW", ReadWrite.String())
	require.Equal(t, "R", ReadOnly.String())
}

func TestReadWriteRegister(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		version dxl.Version
		table   Table
		val     uint32
		mem     []byte
	}{
		{dxl.Protocol1, AXSeries, 0x1ff, []byte{0xff, 0x01}},
		{dxl.Protocol2, XSeries, 0x12345, []byte{0x45, 0x23, 0x01, 0x00}},
	}
	for _, test := range tests {
		dev := newTestLine(test.version)
		b := newTestBus(t, dev, 0)
		reg, ok := test.table.Lookup("goal_position")
		require.True(t, ok)
		require.NoError(t, b.WriteRegister(ctx, 1, reg, test.val))
		require.Equal(t, test.mem, dev.Device(1).Mem[reg.Address:int(reg.Address)+reg.Width])
		val, err := b.ReadRegister(ctx, 1, reg)
		require.NoError(t, err)
		require.Equal(t, test.val, val)

		led, _ := test.table.Lookup("led")
		err = b.WriteRegister(ctx, 1, led, 0x100)
		require.True(t, errors.Is(err, ErrValueRange))

		pos, _ := test.table.Lookup("present_position")
		err = b.WriteRegister(ctx, 1, pos, 1)
		require.True(t, errors.Is(err, ErrReadOnly))
	}
}

func TestWaitUntil(t *testing.T) {
	dev := newTestLine(dxl.Protocol2)
	b := newTestBus(t, dev, 0)
	reg, _ := XSeries.Lookup("present_position")
	dxl.PutU32(dev.Device(1).Mem[reg.Address:], 1000)

	val, err := b.WaitUntil(context.Background(), 1, reg, 1010, 10, time.Millisecond, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), val)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	val, err = b.WaitUntil(ctx, 1, reg, 2000, 10, time.Millisecond, 0)
	require.Equal(t, context.DeadlineExceeded, err)
	require.Equal(t, uint32(1000), val)
}

func TestWaitUntilOutlastsReadTimeout(t *testing.T) {
	dev := newTestLine(dxl.Protocol2)
	reg, _ := XSeries.Lookup("present_position")
	// each instruction moves the device 100 steps.
	dev.Device(1).Tick = func(d *dxltest.Device) {
		dxl.PutU32(d.Mem[reg.Address:], dxl.U32(d.Mem[reg.Address:])+100)
	}
	b := newTestBus(t, dev, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	val, err := b.WaitUntil(ctx, 1, reg, 1000, 0, 5*time.Millisecond, 2*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, uint32(1000), val)
	require.True(t, time.Since(start) > 2*time.Millisecond)
	require.Len(t, dev.Instrs, 10)

	dev.Device(1).Silent = true
	val, err = b.WaitUntil(ctx, 1, reg, 5000, 0, time.Millisecond, 5*time.Millisecond)
	require.Equal(t, context.DeadlineExceeded, err)
	require.Zero(t, val)
	require.NoError(t, ctx.Err())
}
