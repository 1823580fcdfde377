package uart

import (
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// dispatch decodes a committed frame's first byte as the command and the
// remainder as its payload (spec §4.C dispatch table).
func (e *Engine) dispatch(frame []byte) {
	if len(frame) == 0 {
		return
	}
	cmd := Command(frame[0])
	payload := frame[1:]

	switch cmd {
	case CmdAck:
		e.EnqueueCommand(CmdAck, nil)

	case CmdError:
		e.handleErrorCommand(payload)

	case CmdSlaveAddress:
		if len(payload) >= 1 {
			e.ackProbeAddr = payload[0]
			if e.i2c != nil {
				e.i2c.SetSlaveAddress(payload[0])
			}
		}

	case CmdSlaveNak, CmdSlaveTimeout:
		// Source notes these should never arrive from the host; no-op.

	case CmdSlaveRead:
		if len(payload) < 1 || e.i2c == nil {
			return
		}
		length := byte(1)
		if len(payload) >= 2 {
			length = payload[1]
		}
		if !e.i2c.EnqueueRead(payload[0], length) {
			e.ReportError(errcode.FamilyUART, errcode.QueueFull,
				callsite.Make(callsite.EntryUARTProcessRx, 1, 0, 0), i2cstatus.Status(0).WithQueueFull())
		}

	case CmdLegacyVersion:
		baud := legacyBaud
		data := []byte{
			byte(e.version.Major), byte(e.version.Minor),
			byte(baud >> 24), byte(baud >> 16), byte(baud >> 8), byte(baud),
		}
		e.EnqueueCommand(CmdLegacyVersion, data)

	case CmdSlaveWrite:
		if len(payload) < 1 || e.i2c == nil {
			return
		}
		if !e.i2c.EnqueueWrite(payload[0], payload[1:]) {
			e.ReportError(errcode.FamilyUART, errcode.QueueFull,
				callsite.Make(callsite.EntryUARTProcessRx, 2, 0, 0), i2cstatus.Status(0).WithQueueFull())
		}

	case CmdSlaveAck:
		if e.i2c == nil {
			return
		}
		addr := e.ackProbeAddr
		if len(payload) >= 1 {
			addr = payload[0]
		}
		if e.i2c.AckProbe(addr, 2) {
			e.EnqueueCommand(CmdSlaveAck, nil)
		}

	case CmdReset:
		if e.resetFunc != nil {
			e.resetFunc()
		}

	case CmdVersion:
		v := e.version
		data := []byte{
			byte(v.Major >> 8), byte(v.Major),
			byte(v.Minor >> 8), byte(v.Minor),
			byte(v.Update >> 8), byte(v.Update),
		}
		e.EnqueueCommand(CmdVersion, data)

	case CmdSlaveUpdateLegacy:
		if e.i2c != nil && len(payload) >= 1 {
			e.i2c.EnqueueWrite(0x58, payload)
		}
	}
}

// handleErrorCommand implements the original E set/get plus the frozen
// stats/mode sub-commands (spec §9 open question, resolved in
// SPEC_FULL.md): an empty payload queries the current mode; a payload
// beginning with ASCII 's' addresses the stats sub-command; a payload
// beginning with ASCII 'm' explicitly gets/sets the mode; any other first
// byte is the original raw 0/nonzero set.
func (e *Engine) handleErrorCommand(payload []byte) {
	if len(payload) == 0 {
		e.EnqueueCommand(CmdError, []byte{byte(e.errorMode)})
		return
	}
	switch payload[0] {
	case 's':
		e.handleStatsCommand(payload[1:])
	case 'm':
		if len(payload) >= 2 {
			e.errorMode = ErrorMode(payload[1])
		}
		e.EnqueueCommand(CmdError, []byte{'m', byte(e.errorMode)})
	default:
		if payload[0] != 0 {
			e.errorMode = ErrorModeGlobal
		} else {
			e.errorMode = ErrorModeLegacy
		}
		e.EnqueueCommand(CmdError, []byte{byte(e.errorMode)})
	}
}

func (e *Engine) handleStatsCommand(args []byte) {
	if len(args) >= 1 && args[0] == 0xFF {
		e.stats = [4]uint16{}
		return
	}
	for tag := familyTagSystem; tag <= familyTagI2C; tag++ {
		count := e.stats[tag]
		e.EnqueueCommand(CmdError, []byte{'s', byte(tag), byte(count >> 8), byte(count)})
	}
}
