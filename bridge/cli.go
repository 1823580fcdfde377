package bridge

import (
	"errors"

	"i2cbridge-fw/uart"
)

// errInvalidDebugCommand is returned when a debug line's first token is not
// exactly one ASCII byte (the bridge command code, spec §3).
var errInvalidDebugCommand = errors.New("bridge: debug command must be one ASCII byte")

// errDebugUnsupportedOnMCU is returned by the MCU build's InjectDebugLine:
// shlex tokenizing is a host-only bring-up convenience (spec §9 Cli
// ErrorMode, SPEC_FULL supplement 1 — the MCU build never imports shlex).
var errDebugUnsupportedOnMCU = errors.New("bridge: debug line injection requires the host build")

// feedDebugFrame re-encodes a decoded command/payload pair the same way
// the host-facing wire protocol would (spec §4.C), then drives it through
// the UART engine's normal ISR byte path. This lets a host-debug line
// exercise exactly the same dispatch table as a real framed host command,
// rather than calling internal dispatch directly.
//
// Unlike a device-to-host reply (uart/encode.go encodeTxRecord), a
// host-to-device frame never needs the doubled-escape command marker:
// HandleRxByte always treats the first in-frame byte as the command, so
// the command is written through feedEscaped exactly like any data byte,
// escaped only if it happens to collide with FrameByte/EscapeByte.
//
// Frozen E-family sub-command layout (spec §9 open question, resolved in
// SPEC_FULL.md; actual dispatch lives in uart/dispatch.go):
//   E 's'                         -- read tallies: four replies, one per
//                                    family, each E 's' family_tag count_be16
//   E 's' 0xFF                    -- reset all tallies (no reply)
//   E 'm' mode_byte                -- get (empty payload) or set ErrorMode;
//                                    replies E 'm' mode_byte
func (s *Supervisor) feedDebugFrame(cmd byte, data []byte) {
	if s.uart == nil {
		return
	}
	s.uart.HandleRxByte(uart.FrameByte)
	s.feedEscaped(cmd)
	for _, b := range data {
		s.feedEscaped(b)
	}
	s.uart.HandleRxByte(uart.FrameByte)
}

func (s *Supervisor) feedEscaped(b byte) {
	if b == uart.FrameByte || b == uart.EscapeByte {
		s.uart.HandleRxByte(uart.EscapeByte)
	}
	s.uart.HandleRxByte(b)
}
