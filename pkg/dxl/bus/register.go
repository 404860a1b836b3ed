package bus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/dxl.go/pkg/dxl"
)

// Access is the access mode of a register.
type Access int

// Access modes.
const (
	ReadOnly Access = iota
	ReadWrite
)

// String implements fmt.Stringer.
func (a Access) String() string {
	if a == ReadWrite {
		return "RW"
	}
	return "R"
}

// Register describes one entry of a device control table.
type Register struct {
	Name    string
	Address uint16
	// Width is 1, 2 or 4 bytes.
	Width  int
	Access Access
}

// Max returns the largest value the register can hold.
func (r Register) Max() uint32 {
	if r.Width >= 4 {
		return 0xffffffff
	}
	return 1<<(8*uint(r.Width)) - 1
}

// Table is the control table of a device model.
type Table []Register

// Lookup finds a register by name, case insensitive.
func (t Table) Lookup(name string) (Register, bool) {
	for _, reg := range t {
		if strings.EqualFold(reg.Name, name) {
			return reg, true
		}
	}
	return Register{}, false
}

// ReadRegister reads the value of a register.
func (b *Bus) ReadRegister(ctx context.Context, id byte, reg Register) (uint32, error) {
	var buf [4]byte
	if reg.Width <= 0 || reg.Width > len(buf) {
		return 0, fmt.Errorf("register %s: unsupported width %d", reg.Name, reg.Width)
	}
	params, err := b.Read(ctx, id, reg.Address, buf[:reg.Width])
	if err != nil {
		return 0, err
	}
	return dxl.DecodeLE(params[:reg.Width])
}

// WriteRegister writes the value of a register.
func (b *Bus) WriteRegister(ctx context.Context, id byte, reg Register, val uint32) error {
	if reg.Access != ReadWrite {
		return fmt.Errorf("%w: %s", ErrReadOnly, reg.Name)
	}
	if val > reg.Max() {
		return fmt.Errorf("%w: %s holds at most %d", ErrValueRange, reg.Name, reg.Max())
	}
	var buf [4]byte
	if err := dxl.EncodeLE(buf[:reg.Width], val); err != nil {
		return fmt.Errorf("register %s: %v", reg.Name, err)
	}
	return b.Write(ctx, id, reg.Address, buf[:reg.Width])
}

// WaitUntil polls a register every interval until its value is within
// tolerance of goal. ctx bounds the whole wait, readTimeout bounds each
// read if positive. It returns the last value read successfully.
func (b *Bus) WaitUntil(ctx context.Context, id byte, reg Register, goal, tolerance uint32, interval, readTimeout time.Duration) (uint32, error) {
	var val uint32
	for {
		v, err := b.readWithin(ctx, id, reg, readTimeout)
		if err != nil {
			return val, err
		}
		val = v
		if dxl.AbsDiff(val, goal) <= tolerance {
			return val, nil
		}
		select {
		case <-ctx.Done():
			return val, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (b *Bus) readWithin(ctx context.Context, id byte, reg Register, timeout time.Duration) (uint32, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return b.ReadRegister(ctx, id, reg)
}
