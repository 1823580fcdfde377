//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"

	"i2cbridge-fw/clock"
)

// NewSystemClock starts the 1ms tick source the spec requires ("now_ms()
// ... updated on a tick ISR", spec §4.A). TinyGo's own goroutine scheduler
// services a time.Ticker without an RTOS; this is the same minimal
// always-on background timer idiom the teacher uses for deadlines in
// services/hal/timerutil.go rather than a hand-rolled hardware alarm
// register, and it keeps clock.Monotonic's Tick/NowMS contract identical
// on both builds.
func NewSystemClock() *clock.Monotonic {
	c := &clock.Monotonic{}
	go func() {
		t := time.NewTicker(time.Millisecond)
		for range t.C {
			c.Tick()
		}
	}()
	return c
}

// NewI2C0Bus configures i2c0 at 400kHz with board-default pins, the same
// shape as the teacher's factories_rp2xxx.go DefaultI2CFactory, narrowed to
// the single bus this firmware needs. Returning drivers.I2C rather than the
// narrower I2CBus alias keeps the vendor driver type visible at the call
// site (spec §6 "vendor low-level I2C master driver"); i2c.Engine accepts
// it structurally since both interfaces share the same Tx method.
func NewI2C0Bus() drivers.I2C {
	bus := machine.I2C0
	_ = bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	return bus
}

// rp2Pin adapts a machine.Pin to ResetPin, grounded on factories_rp2xxx.go's
// rp2Pin; the slave IRQ line uses the separate rp2IRQPin below instead since
// it additionally needs interrupt registration.
type rp2Pin struct{ p machine.Pin }

// NewResetPin configures pin n as a push-pull output for the slave reset
// line (spec §4.E InitSlaveReset).
func NewResetPin(n int) ResetPin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.High()
	return rp2Pin{p: p}
}

func (r rp2Pin) Set(level bool) { r.p.Set(level) }
func (r rp2Pin) Get() bool      { return r.p.Get() }

// rp2IRQPin polls the slave IRQ line's level for the Comm FSM's entry rule
// and separately lets a caller register a rising-edge interrupt handler,
// the hardware half of spec §5's "a slave-IRQ ISR that only sets
// rx_pending=true" — the handler itself lives in bridge.Supervisor since
// the active *i2c.Engine it must signal is reconstructed on every mode
// switch (spec §4.E), matching rp2Pin.SetIRQ in factories_rp2xxx.go.
type rp2IRQPin struct{ p machine.Pin }

// NewIRQPin configures pin n as a pulled-down input.
func NewIRQPin(n int) EdgeIRQPin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return rp2IRQPin{p: p}
}

func (r rp2IRQPin) Asserted() bool { return r.p.Get() }

// OnRisingEdge registers the handler the supervisor uses to forward a
// slave-IRQ edge to whichever I2C engine is currently active.
func (r rp2IRQPin) OnRisingEdge(fn func()) {
	_ = r.p.SetInterrupt(machine.PinRising, func(machine.Pin) { fn() })
}

// rp2UART adapts a tinygo-uartx UART to platform.UARTPort, identical in
// shape to the teacher's factories_rp2xxx.go rp2UART.
type rp2UART struct{ u *uartx.UART }

func (r rp2UART) WriteByte(b byte) error      { return r.u.WriteByte(b) }
func (r rp2UART) Write(p []byte) (int, error) { return r.u.Write(p) }
func (r rp2UART) Buffered() int               { return r.u.Buffered() }
func (r rp2UART) Read(p []byte) (int, error)  { return r.u.Read(p) }
func (r rp2UART) Readable() <-chan struct{}   { return r.u.Readable() }
func (r rp2UART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	return r.u.RecvSomeContext(ctx, p)
}
func (r rp2UART) SetBaudRate(br uint32) { r.u.SetBaudRate(br) }
func (r rp2UART) SetFormat(db, sb, parity uint8) error {
	var pr uartx.UARTParity
	switch parity {
	case 1:
		pr = uartx.ParityEven
	case 2:
		pr = uartx.ParityOdd
	default:
		pr = uartx.ParityNone
	}
	return r.u.SetFormat(db, sb, pr)
}

// NewUART0 configures UART0 at the given baud rate and returns it as a
// UARTPort; PumpRx/PumpTx drain its ISR-fed ring from the cooperative loop
// (spec §5: byte-level I/O arrives via ISRs, decoding happens in the main
// loop).
func NewUART0(baud uint32) UARTPort {
	_ = uartx.UART0.Configure(uartx.UARTConfig{})
	u := rp2UART{u: uartx.UART0}
	u.SetBaudRate(baud)
	return u
}

// ResetDevice triggers a watchdog-forced system reset (spec §4.C device
// reset command): configure a very short watchdog timeout and let it
// expire rather than feed it again.
func ResetDevice() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
	}
}
