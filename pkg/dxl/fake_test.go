package dxl

import "errors"

type testDirection struct {
	asserted bool
	events   []string
	fail     error
}

func (d *testDirection) Assert() error {
	d.events = append(d.events, "assert")
	if d.fail != nil {
		return d.fail
	}
	d.asserted = true
	return nil
}

func (d *testDirection) Deassert() error {
	d.events = append(d.events, "deassert")
	d.asserted = false
	return nil
}

// testLine is an in-memory half-duplex line.
type testLine struct {
	dir      *testDirection
	rx       []byte
	tx       []byte
	pending  []byte
	loopback bool
	// replies are queued into rx, one per flush.
	replies [][]byte
	// block makes every other operation report ErrWouldBlock.
	block    bool
	blocked  bool
	writeErr error
	readErr  error
	// badWrites counts bytes written while the line was not asserted.
	badWrites int
}

func (l *testLine) wouldBlock() bool {
	if !l.block {
		return false
	}
	l.blocked = !l.blocked
	return l.blocked
}

func (l *testLine) ReadByte() (byte, error) {
	if l.readErr != nil {
		return 0, l.readErr
	}
	if l.wouldBlock() || len(l.rx) == 0 {
		return 0, ErrWouldBlock
	}
	b := l.rx[0]
	l.rx = l.rx[1:]
	return b, nil
}

func (l *testLine) WriteByte(b byte) error {
	if l.writeErr != nil {
		return l.writeErr
	}
	if l.wouldBlock() {
		return ErrWouldBlock
	}
	if l.dir != nil && !l.dir.asserted {
		l.badWrites++
	}
	l.pending = append(l.pending, b)
	return nil
}

func (l *testLine) Flush() error {
	if l.wouldBlock() {
		return ErrWouldBlock
	}
	l.tx = append(l.tx, l.pending...)
	if l.loopback {
		l.rx = append(l.rx, l.pending...)
	}
	l.pending = nil
	if len(l.replies) > 0 {
		l.rx = append(l.rx, l.replies[0]...)
		l.replies = l.replies[1:]
	}
	return nil
}

var errLine = errors.New("line broken")

type byteBuffer struct {
	data []byte
}

func (b *byteBuffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}
