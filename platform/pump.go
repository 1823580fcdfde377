package platform

import "i2cbridge-fw/uart"

// rxPumpChunk bounds a single PumpRx call's stack buffer; the UART-RX ISR
// path itself (spec §5 "a UART-RX ISR that calls process_received_byte
// directly") is the MCU build's real zero-allocation byte path — PumpRx is
// the drain loop that feeds HandleRxByte from whatever already-buffered
// bytes a UARTPort exposes, whether that buffering happened in a real ISR
// ring (tinygo-uartx on the MCU build) or in an in-memory fake (host
// build).
const rxPumpChunk = 64

// PumpRx feeds every currently-buffered inbound byte from port into
// engine's ISR byte path, one HandleRxByte call per byte, matching the
// byte-at-a-time contract uart.Engine.HandleRxByte documents.
func PumpRx(port UARTPort, engine *uart.Engine) {
	var buf [rxPumpChunk]byte
	for port.Buffered() > 0 {
		n, err := port.Read(buf[:])
		if err != nil {
			return
		}
		if n == 0 {
			return
		}
		for i := 0; i < n; i++ {
			engine.HandleRxByte(buf[i])
		}
	}
}

// PumpTx drains every queued outbound frame to the physical port. Each
// TxQueue record is already a complete framed byte sequence (spec §4.C
// encode), so one Write call per record is sufficient.
func PumpTx(port UARTPort, engine *uart.Engine) {
	for {
		frame, ok := engine.TxQueue().Dequeue()
		if !ok {
			return
		}
		port.Write(frame)
	}
}
