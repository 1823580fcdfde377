//go:build rp2040 || rp2350

// Command bridge-fw is the MCU entrypoint: it wires platform's real
// hardware capability objects to a bridge.Supervisor and drives its
// cooperative Tick loop forever, the single-threaded run loop spec §5
// describes sitting on top of the tick/UART-RX/slave-IRQ ISRs.
package main

import (
	"i2cbridge-fw/arena"
	"i2cbridge-fw/bridge"
	"i2cbridge-fw/config"
	"i2cbridge-fw/platform"
	"i2cbridge-fw/uart"
)

const (
	resetPinNumber = 15
	irqPinNumber   = 14
)

var firmwareVersion = uart.VersionInfo{Major: 1, Minor: 0, Update: 0}

func main() {
	cfg := config.Default()

	clk := platform.NewSystemClock()
	bus := platform.NewI2C0Bus()
	resetPin := platform.NewResetPin(resetPinNumber)
	irqPin := platform.NewIRQPin(irqPinNumber)
	uart0 := platform.NewUART0(cfg.BaudRate)

	sup := bridge.NewSupervisor(bridge.Config{
		Clock:        clk,
		Bus:          bus,
		IRQ:          irqPin,
		Arena:        arena.New(cfg.ArenaWords),
		ResetLineSet: resetPin.Set,
		DiagWrite:    func(line []byte) { uart0.Write(line) },
		DeviceReset:  platform.ResetDevice,
		Version:      firmwareVersion,
	})
	irqPin.OnRisingEdge(sup.SignalSlaveIRQ)

	for {
		sup.Tick()
		if e := sup.UART(); e != nil {
			platform.PumpRx(uart0, e)
			platform.PumpTx(uart0, e)
		}
	}
}
