package devices

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/dxl.go/pkg/dxl"
	"github.com/robotalks/dxl.go/pkg/dxl/bus"
)

// PingResult is printed by ping and scan.
type PingResult struct {
	ID       byte   `json:"id"`
	Model    uint16 `json:"model,omitempty"`
	Firmware byte   `json:"firmware,omitempty"`
}

func (r PingResult) String() string {
	if r.Model == 0 {
		return fmt.Sprintf("%d", r.ID)
	}
	return fmt.Sprintf("%d model=%d firmware=%d", r.ID, r.Model, r.Firmware)
}

// MemResult is printed by read.
type MemResult struct {
	ID      byte   `json:"id"`
	Address uint16 `json:"address"`
	Data    string `json:"data"`
}

func (r MemResult) String() string {
	return fmt.Sprintf("%d@%d: %s", r.ID, r.Address, r.Data)
}

// RegisterValue is printed by get and set.
type RegisterValue struct {
	ID       byte   `json:"id"`
	Register string `json:"register"`
	Value    uint32 `json:"value"`
}

func (r RegisterValue) String() string {
	return fmt.Sprintf("%d %s=%d", r.ID, r.Register, r.Value)
}

// RegisterInfo is printed by regs.
type RegisterInfo struct {
	Name    string `json:"name"`
	Address uint16 `json:"address"`
	Width   int    `json:"width"`
	Access  string `json:"access"`
}

func (r RegisterInfo) String() string {
	return fmt.Sprintf("%-24s %4d %d %s", r.Name, r.Address, r.Width, r.Access)
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseID(s string) (byte, error) {
	v, err := parseUint(s, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func parseResetMode(s string) (bus.ResetMode, error) {
	switch strings.ToLower(s) {
	case "all":
		return bus.ResetAll, nil
	case "except-id":
		return bus.ResetExceptID, nil
	case "except-id-baud":
		return bus.ResetExceptIDBaud, nil
	}
	return 0, fmt.Errorf("unknown reset mode %q", s)
}

// newContext creates the context of one transaction.
type newContext func() (context.Context, context.CancelFunc)

func ping(newCtx newContext, b *bus.Bus, id byte) (PingResult, error) {
	ctx, cancel := newCtx()
	defer cancel()
	info, err := b.Ping(ctx, id)
	return PingResult(info), err
}

// scan pings ids in [from, to] and collects the ones replying. Timeouts
// mean absence, other errors are returned.
func scan(newCtx newContext, b *bus.Bus, from, to byte) ([]PingResult, error) {
	found := []PingResult{}
	for id := int(from); id <= int(to) && id < int(dxl.BroadcastID); id++ {
		res, err := ping(newCtx, b, byte(id))
		switch {
		case err == nil:
			found = append(found, res)
		case errors.Is(err, context.DeadlineExceeded):
		default:
			return found, fmt.Errorf("ping %d: %w", id, err)
		}
	}
	return found, nil
}

func readMem(newCtx newContext, b *bus.Bus, id byte, addr uint16, n int) (MemResult, error) {
	ctx, cancel := newCtx()
	defer cancel()
	data, err := b.Read(ctx, id, addr, make([]byte, n))
	if err != nil {
		return MemResult{}, err
	}
	return MemResult{ID: id, Address: addr, Data: hex.EncodeToString(data)}, nil
}

func lookup(table bus.Table, name string) (bus.Register, error) {
	reg, ok := table.Lookup(name)
	if !ok {
		return reg, fmt.Errorf("unknown register %q", name)
	}
	return reg, nil
}

func getRegister(newCtx newContext, b *bus.Bus, table bus.Table, id byte, name string) (RegisterValue, error) {
	reg, err := lookup(table, name)
	if err != nil {
		return RegisterValue{}, err
	}
	ctx, cancel := newCtx()
	defer cancel()
	val, err := b.ReadRegister(ctx, id, reg)
	return RegisterValue{ID: id, Register: reg.Name, Value: val}, err
}

func setRegister(newCtx newContext, b *bus.Bus, table bus.Table, id byte, name string, val uint32) (RegisterValue, error) {
	reg, err := lookup(table, name)
	if err != nil {
		return RegisterValue{}, err
	}
	ctx, cancel := newCtx()
	defer cancel()
	return RegisterValue{ID: id, Register: reg.Name, Value: val}, b.WriteRegister(ctx, id, reg, val)
}

// DefaultWaitTimeout bounds the wait command unless given.
const DefaultWaitTimeout = 10 * time.Second

const waitInterval = 10 * time.Millisecond

// waitRegister polls a register within timeout, each read bounded by
// readTimeout.
func waitRegister(b *bus.Bus, table bus.Table, id byte, name string, goal, tolerance uint32, readTimeout, timeout time.Duration) (RegisterValue, error) {
	reg, err := lookup(table, name)
	if err != nil {
		return RegisterValue{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	val, err := b.WaitUntil(ctx, id, reg, goal, tolerance, waitInterval, readTimeout)
	return RegisterValue{ID: id, Register: reg.Name, Value: val}, err
}

func listRegisters(table bus.Table) []RegisterInfo {
	regs := make([]RegisterInfo, 0, len(table))
	for _, reg := range table {
		regs = append(regs, RegisterInfo{
			Name:    reg.Name,
			Address: reg.Address,
			Width:   reg.Width,
			Access:  reg.Access.String(),
		})
	}
	return regs
}
