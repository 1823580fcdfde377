// Package platform supplies the dual-target capability objects described in
// spec §6: a machine-facing half wired to tinygo.org/x/drivers and
// github.com/jangala-dev/tinygo-uartx on the rp2040/rp2350 build
// (rp2.go), and an in-memory fake half for the host build
// (fakes_host.go), following the same split the teacher repo applies in
// services/hal/internal/platform (factories_host.go / factories_rp2xxx.go).
//
// The core engines (clock, byteq, arena, uart, i2c, bridge) never import
// this package; platform only adapts real or fake hardware to the small
// interfaces those engines already declare.
package platform

import (
	"context"

	"i2cbridge-fw/i2c"
)

// I2CBus is the vendor low-level I2C master driver (spec §6), identical in
// shape to tinygo.org/x/drivers.I2C and to i2c.Bus.
type I2CBus = i2c.Bus

// IRQPin reads the slave's interrupt-request line (spec §4.D). The MCU
// build additionally registers a rising-edge interrupt that calls
// i2c.Engine.SignalRxPending; IRQPin itself only exposes the polled level
// read the Comm FSM's entry rule consults.
type IRQPin = i2c.IRQPin

// ResetPin drives the slave's hardware reset line (spec §4.E
// InitSlaveReset / CheckSlaveResetComplete).
type ResetPin interface {
	Set(level bool)
	Get() bool
}

// EdgeIRQPin is the IRQ line as the platform layer actually constructs it:
// a polled level (IRQPin, consulted by the Comm FSM's entry rule) plus a
// rising-edge interrupt registration. The edge handler is registered by
// the caller (bridge.Supervisor.SignalSlaveIRQ) rather than baked in at
// construction, since the *i2c.Engine it must signal is reconstructed on
// every mode switch (spec §4.E) while the physical pin is not.
type EdgeIRQPin interface {
	IRQPin
	OnRisingEdge(fn func())
}

// UARTPort is the physical byte transport between the host computer and
// this firmware (spec §6), the same shape as the teacher's
// services/hal/internal/halcore.UARTPort so the pump helpers in pump.go
// work identically against the MCU UART and the host fakes.
type UARTPort interface {
	WriteByte(b byte) error
	Write(p []byte) (int, error)

	Buffered() int
	Read(p []byte) (int, error)
	Readable() <-chan struct{}
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

// UARTFormatter is the optional baud/format control a UARTPort may also
// implement; a no-op on the host build.
type UARTFormatter interface {
	SetBaudRate(br uint32)
	SetFormat(databits, stopbits, parity uint8) error // parity: 0 none, 1 even, 2 odd
}
