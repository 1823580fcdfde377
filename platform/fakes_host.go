//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"sync"

	"i2cbridge-fw/x/timex"
)

// HostI2C is an in-memory stand-in for the slave's I2C bus, the direct
// adaptation of the teacher's factories_host.go HostI2C. Responses are
// scripted through Program; with nothing programmed, Tx records the call
// and returns nil, matching the teacher's "no emulation necessary for
// current tests" default.
type HostI2C struct {
	mu     sync.Mutex
	LastTx struct {
		Addr uint16
		W    []byte
		Rn   int
	}
	program map[uint16]func(w, r []byte) error
}

// NewHostI2C returns an inert host I2C bus.
func NewHostI2C() *HostI2C { return &HostI2C{} }

// Program installs a scripted responder for one slave address.
func (h *HostI2C) Program(addr uint16, fn func(w, r []byte) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.program == nil {
		h.program = make(map[uint16]func(w, r []byte) error)
	}
	h.program[addr] = fn
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	h.LastTx.Addr = addr
	h.LastTx.W = append([]byte(nil), w...)
	h.LastTx.Rn = len(r)
	fn := h.program[addr]
	h.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(w, r)
}

// FakePin is an in-memory GPIO/IRQ line for host-side tests, adapted from
// the teacher's factories_host.go FakePin: it serves as both the reset
// line (ResetPin) and the slave IRQ line (IRQPin) in this repo, since both
// are single GPIO bits with no MCU-specific behaviour to fake separately.
type FakePin struct {
	mu      sync.RWMutex
	level   bool
	irqFunc func()
}

// NewFakePin returns a FakePin initially low.
func NewFakePin() *FakePin { return &FakePin{} }

// Set drives the line and fires any registered rising-edge handler, the
// same edge-detect-then-callback shape as the teacher's FakePin.Set.
func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	fn := p.irqFunc
	p.mu.Unlock()
	if !old && level && fn != nil {
		fn()
	}
}

// Get returns the current line level.
func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// Asserted implements IRQPin as a level read of the current pin state.
func (p *FakePin) Asserted() bool { return p.Get() }

// OnRisingEdge registers the handler the MCU build would wire to a real
// GPIO interrupt (i2c.Engine.SignalRxPending).
func (p *FakePin) OnRisingEdge(fn func()) {
	p.mu.Lock()
	p.irqFunc = fn
	p.mu.Unlock()
}

// simUART is an in-memory loopback UARTPort, adapted from the teacher's
// factories_host.go simUART, for exercising the full Supervisor/platform
// wiring on the host build without a real serial port.
type simUART struct {
	mu sync.Mutex
	rx []byte
	tx []byte
	rd chan struct{}
}

// NewSimUART returns an empty loopback port.
func NewSimUART() *simUART { return &simUART{rd: make(chan struct{}, 1)} }

func (s *simUART) WriteByte(b byte) error { return s.writeBytes([]byte{b}) }

func (s *simUART) Write(p []byte) (int, error) {
	if err := s.writeBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *simUART) writeBytes(p []byte) error {
	s.mu.Lock()
	s.tx = append(s.tx, p...)
	s.mu.Unlock()
	return nil
}

func (s *simUART) Buffered() int {
	s.mu.Lock()
	n := len(s.rx)
	s.mu.Unlock()
	return n
}

func (s *simUART) Read(p []byte) (int, error) {
	s.mu.Lock()
	n := copy(p, s.rx)
	s.rx = s.rx[n:]
	s.mu.Unlock()
	return n, nil
}

func (s *simUART) Readable() <-chan struct{} { return s.rd }

func (s *simUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if n := s.Buffered(); n > 0 {
		return s.Read(p)
	}
	select {
	case <-s.rd:
		return s.Read(p)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Inject appends bytes as if received from the host computer and wakes any
// RecvSomeContext waiter (test/demo helper; not part of UARTPort).
func (s *simUART) Inject(b []byte) {
	s.mu.Lock()
	s.rx = append(s.rx, b...)
	if len(s.rd) == 0 {
		select {
		case s.rd <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
}

// Sent returns and clears everything written so far (test/demo helper).
func (s *simUART) Sent() []byte {
	s.mu.Lock()
	out := s.tx
	s.tx = nil
	s.mu.Unlock()
	return out
}

// HostClock is a wall-clock-backed clock.Source for host demos and the
// hostsim CLI, where there is no 1ms tick ISR to drive clock.Monotonic.
// Truncating timex.NowMs to uint32 wraps the same way clock.Monotonic does,
// so Alarm's wrap-safe subtraction works identically on both builds.
type HostClock struct{}

// NewHostClock returns a wall-clock-backed clock.Source.
func NewHostClock() HostClock { return HostClock{} }

// NowMS returns the current wall-clock millisecond count, truncated to 32
// bits.
func (HostClock) NowMS() uint32 { return uint32(timex.NowMs()) }
