package main

import "i2cbridge-fw/uart"

// Decoder mirrors uart.Engine's RX state machine (uart/engine.go
// HandleRxByte) so hostsim can de-frame bytes arriving from the device
// without reaching into the firmware-only Engine type. It only de-escapes;
// it does not attempt to dispatch, since that belongs to the firmware.
type Decoder struct {
	state uart.RxState
	buf   []byte
}

// Feed processes one inbound byte and returns a completed frame's
// de-escaped payload whenever b closes a frame. A reply that carries a
// command keeps the EscapeByte marker the device's encoder writes before
// it (EscapeByte, command, data...); a slave-data frame is the data alone.
func (d *Decoder) Feed(b byte) (frame []byte, ok bool) {
	switch d.state {
	case uart.OutOfFrame:
		if b == uart.FrameByte {
			d.state = uart.InFrame
			d.buf = d.buf[:0]
		}
	case uart.InFrame:
		switch b {
		case uart.EscapeByte:
			d.state = uart.EscapeCharacter
		case uart.FrameByte:
			d.state = uart.OutOfFrame
			out := make([]byte, len(d.buf))
			copy(out, d.buf)
			return out, true
		default:
			d.buf = append(d.buf, b)
		}
	case uart.EscapeCharacter:
		d.buf = append(d.buf, b)
		d.state = uart.InFrame
	}
	return nil, false
}

// encodeCommand frames a host-to-device command the way the device's own
// HandleRxByte expects to receive it (uart/engine.go dispatch reads
// frame[0] directly as the command byte, so unlike the device's own TX
// encoder in uart/encode.go there is no doubled-escape command marker on
// this direction: every host->device frame always carries a command).
func encodeCommand(cmd byte, data []byte) []byte {
	out := make([]byte, 0, len(data)+4)
	put := func(b byte) {
		if b == uart.FrameByte || b == uart.EscapeByte {
			out = append(out, uart.EscapeByte)
		}
		out = append(out, b)
	}
	out = append(out, uart.FrameByte)
	put(cmd)
	for _, b := range data {
		put(b)
	}
	out = append(out, uart.FrameByte)
	return out
}
