// Package errcode defines the stable error taxonomy shared by every engine
// in the bridge: transport failures from the I2C driver, semantic and
// capacity failures detected by the protocol engines themselves, lifecycle
// failures from modules that have not been activated, and bridge-level
// supervisor failures.
package errcode

// Code is a stable, wire-facing error identifier. It is a string newtype,
// comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

const (
	OK          Code = "ok"
	Busy        Code = "busy"
	Unsupported Code = "unsupported"
	Timeout     Code = "timeout"
	Error       Code = "error" // generic fallback

	// Transport (§7): failures reported by or inferred from the low-level
	// I2C/UART drivers.
	DriverError Code = "driver_error"
	NAK         Code = "nak"
	TimedOut    Code = "timed_out"
	LockedBus   Code = "locked_bus"

	// Semantic (§7): the engine itself detected a malformed exchange.
	InvalidRead  Code = "invalid_read"
	InvalidInput Code = "invalid_input"

	// Capacity (§7): a fixed-size structure could not accept more data.
	QueueFull           Code = "queue_full"
	InvalidScratchOffset Code = "invalid_scratch_offset"
	InvalidScratchBuffer Code = "invalid_scratch_buffer"

	// Lifecycle (§7): the module has not been (or is no longer) activated.
	Deactivated Code = "deactivated"

	// Bridge-level (§7): supervisor FSM failures.
	TranslatorError  Code = "translator_error"
	UpdaterError     Code = "updater_error"
	SlaveResetFailed Code = "slave_reset_failed"
	InvalidState     Code = "invalid_state"
)

// E keeps context and a cause alongside a stable Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Family groups codes for the tallying described in §7 ("every error is
// tallied by family").
type Family string

const (
	FamilySystem  Family = "system"
	FamilyUpdater Family = "updater"
	FamilyUART    Family = "uart"
	FamilyI2C     Family = "i2c"
)

// FamilyOf classifies a Code into the stats family it should be tallied
// under: the transport codes plus InvalidRead and QueueFull fall under
// FamilyI2C, UpdaterError under FamilyUpdater, and every other code
// (InvalidInput included) under FamilySystem.
func FamilyOf(c Code) Family {
	switch c {
	case DriverError, NAK, TimedOut, LockedBus, InvalidRead, QueueFull:
		return FamilyI2C
	case TranslatorError, InvalidState:
		return FamilySystem
	case UpdaterError:
		return FamilyUpdater
	default:
		return FamilySystem
	}
}
