package dxl

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/golang/glog"
)

// Controller owns one bus: the transport, the direction line and the
// protocol version.
type Controller struct {
	transport Transport
	dir       Direction
	codec     Codec
	echoCount byte
	decoder   Decoder
}

// Option configures a Controller.
type Option func(*Controller)

// WithVersion selects the protocol version. Default is Protocol2.
func WithVersion(v Version) Option {
	return func(c *Controller) {
		c.codec.Version = v
	}
}

// WithEchoCount sets how many of its own packets the Controller receives
// before the reply, when TX is looped back into RX.
func WithEchoCount(n byte) Option {
	return func(c *Controller) {
		c.echoCount = n
	}
}

// WithByteStuffing enables protocol 2 byte stuffing.
func WithByteStuffing(en bool) Option {
	return func(c *Controller) {
		c.codec.Stuffing = en
	}
}

// NewController creates a Controller. dir may be nil if the bus has no
// direction line.
func NewController(t Transport, dir Direction, opts ...Option) (*Controller, error) {
	if dir == nil {
		dir = NopDirection{}
	}
	c := &Controller{
		transport: t,
		dir:       dir,
		codec:     Codec{Version: Protocol2},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.codec.Version.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrVersion, byte(c.codec.Version))
	}
	c.decoder = c.codec.NewDecoder(nil)
	return c, nil
}

// Version returns the protocol version of the bus.
func (c *Controller) Version() Version {
	return c.codec.Version
}

// EchoCount returns the number of looped back packets preceding a reply.
func (c *Controller) EchoCount() byte {
	return c.echoCount
}

// Send writes an instruction packet. The direction line is asserted while
// writing and always deasserted on return.
func (c *Controller) Send(ctx context.Context, id byte, instr Instruction, params []byte) (err error) {
	if len(params) > c.codec.Version.MaxParams() {
		return ErrTooManyParams
	}
	defer func() {
		if derr := c.dir.Deassert(); derr != nil && err == nil {
			err = communicationError(derr)
		}
	}()
	if err = c.dir.Assert(); err != nil {
		return communicationError(err)
	}
	w := &pollWriter{ctx: ctx, t: c.transport}
	if err = c.codec.EncodeInstruction(w, id, instr, params); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if glog.V(3) {
		glog.Infof("TX id=%d %s params=[% x]", id, instr, params)
	}
	return nil
}

// Receive reads one status packet. Parameters are stored in buf and a
// frame declaring more than len(buf) parameters fails with ErrTooSmall.
// It blocks until a valid frame is read, an error occurs or ctx is done.
func (c *Controller) Receive(ctx context.Context, buf []byte) (StatusPacket, error) {
	c.decoder.Reset(buf)
	for {
		if err := ctx.Err(); err != nil {
			return StatusPacket{}, err
		}
		b, err := c.transport.ReadByte()
		if errors.Is(err, ErrWouldBlock) {
			runtime.Gosched()
			continue
		}
		if err != nil {
			return StatusPacket{}, communicationError(err)
		}
		done, err := c.decoder.Parse(b)
		if err != nil {
			glog.V(3).Infof("RX dropped: %v", err)
			return StatusPacket{}, err
		}
		if done {
			pkt := c.decoder.Packet()
			if glog.V(3) {
				glog.Infof("RX id=%d error=0x%02x params=[% x]", pkt.ID, pkt.Error, pkt.Params)
			}
			return pkt, nil
		}
	}
}

// pollWriter retries writes reporting ErrWouldBlock.
type pollWriter struct {
	ctx context.Context
	t   Transport
}

func (w *pollWriter) WriteByte(b byte) error {
	return w.poll(func() error { return w.t.WriteByte(b) })
}

func (w *pollWriter) Flush() error {
	return w.poll(w.t.Flush)
}

func (w *pollWriter) poll(op func() error) error {
	for {
		err := op()
		if !errors.Is(err, ErrWouldBlock) {
			return communicationError(err)
		}
		if err = w.ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
}
