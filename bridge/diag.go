package bridge

import (
	"i2cbridge-fw/x/conv"
)

// diagnosticLine renders the periodic *Failed diagnostic (spec §4.E, §7
// "Fatal conditions ... only emit periodic diagnostic messages") without
// allocating beyond the fixed line buffer, the same discipline
// uart.cliErrorLine uses for the Cli ErrorMode.
func (s *Supervisor) diagnosticLine(nowMS uint32) []byte {
	var buf [96]byte
	n := copy(buf[:], "fw fail state=")
	n += copy(buf[n:], stateName(s.state))
	n += copy(buf[n:], " reason=")
	n += copy(buf[n:], s.failReason)
	n += copy(buf[n:], " uptime_ms=")
	var scratch [20]byte
	n += copy(buf[n:], conv.Utoa(scratch[:], uint64(nowMS)))
	return buf[:n]
}

func stateName(st State) string {
	switch st {
	case HostCommFailed:
		return "host_comm_failed"
	case SlaveTranslatorFailed:
		return "slave_translator_failed"
	case SlaveUpdaterFailed:
		return "slave_updater_failed"
	default:
		return "unknown"
	}
}
