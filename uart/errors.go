package uart

import (
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
	"i2cbridge-fw/x/conv"
)

func familyTagOf(f errcode.Family) familyTag {
	switch f {
	case errcode.FamilyUpdater:
		return familyTagUpdater
	case errcode.FamilyUART:
		return familyTagUART
	case errcode.FamilyI2C:
		return familyTagI2C
	default:
		return familyTagSystem
	}
}

// ReportError implements ErrorSink. It tallies the error by family and, per
// the active ErrorMode, emits a wire message (spec §7):
//   - Legacy: only Timeout and NAK get a per-family single-letter reply
//     (T/N); other codes are tallied but otherwise silent, matching the
//     source's limited legacy vocabulary.
//   - Global: a single E-framed structured message: family tag, status
//     byte, 16-bit big-endian callsite.
//   - Cli: a short human-readable ASCII line behind the same E command,
//     built without allocation via x/conv.
func (e *Engine) ReportError(family errcode.Family, code errcode.Code, site callsite.ID, status i2cstatus.Status) {
	tag := familyTagOf(family)
	e.stats[tag]++

	switch e.errorMode {
	case ErrorModeLegacy:
		switch code {
		case errcode.TimedOut:
			e.EnqueueCommand(CmdSlaveTimeout, nil)
		case errcode.NAK:
			e.EnqueueCommand(CmdSlaveNak, nil)
		}
	case ErrorModeGlobal:
		data := []byte{
			byte(tag), status.Byte(),
			byte(site.Uint16() >> 8), byte(site.Uint16()),
		}
		e.EnqueueCommand(CmdError, data)
	case ErrorModeCli:
		e.EnqueueCommand(CmdError, cliErrorLine(family, code, site))
	}
}

// cliErrorLine renders "err <family> <code> callsite=0x1234" without
// allocating anything beyond the fixed-size line buffer.
func cliErrorLine(family errcode.Family, code errcode.Code, site callsite.ID) []byte {
	var buf [64]byte
	n := copy(buf[:], "err ")
	n += copy(buf[n:], string(family))
	buf[n] = ' '
	n++
	n += copy(buf[n:], string(code))
	n += copy(buf[n:], " callsite=0x")
	var hexbuf [8]byte
	hex := conv.U32Hex(hexbuf[:], uint32(site.Uint16()))
	n += copy(buf[n:], hex[4:]) // low 4 digits: site is a 16-bit value
	return buf[:n]
}
