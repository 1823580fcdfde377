package i2c

import (
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/clock"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// onBusBusy implements spec §4.D locked-bus detection: arm the 100ms
// detect alarm on first sighting, and once it elapses, flag the bus
// locked and start the 50ms continuous recovery alarm.
func (e *Engine) onBusBusy() {
	if !e.detectAlarm.Armed() {
		e.detectAlarm.Arm(e.clk, 100, clock.SingleNotification)
	}
	if !e.lockedBus && e.detectAlarm.HasElapsed(e.clk) {
		e.lockedBus = true
		e.recoverAlarm.Arm(e.clk, 50, clock.ContinuousNotification)
	}
	if e.errSink != nil {
		e.errSink.ReportError(errcode.FamilyI2C, errcode.DriverError,
			callsite.Make(callsite.EntryI2CProcess, 0, 0, 1), i2cstatus.Status(0).WithDriverError())
	}
}

// clearLockedBus resets every locked-bus counter and alarm, called after
// any successful non-busy transaction.
func (e *Engine) clearLockedBus() {
	if !e.lockedBus && !e.detectAlarm.Armed() && e.recoveryAttempts == 0 {
		return
	}
	e.lockedBus = false
	e.detectAlarm.Disarm()
	e.recoverAlarm.Disarm()
	e.recoveryAttempts = 0
}

// runLockedBusRecovery is the Process entry point while the bus is
// considered locked: every time the recovery alarm fires, attempt a
// stop/reinit/re-enable cycle followed by an ACK probe to the current
// slave (spec §4.D, scenario 4).
func (e *Engine) runLockedBusRecovery() {
	if !e.recoverAlarm.HasElapsed(e.clk) {
		return
	}
	// Continuous alarms re-elapse on every check once fired; re-arm from now
	// to keep the 50ms cadence (a successful AckProbe below disarms it).
	e.recoverAlarm.Arm(e.clk, 50, clock.ContinuousNotification)
	if r, ok := e.bus.(Reiniter); ok {
		_ = r.Reinit()
	}
	e.recoveryAttempts++
	if e.AckProbe(e.slaveAddr, 2) {
		// AckProbe's success path already cleared locked-bus state via
		// doTx/clearLockedBus.
		return
	}
	if e.recoveryAttempts >= e.recoveryCap {
		if e.errSink != nil {
			e.errSink.ReportError(errcode.FamilySystem, errcode.SlaveResetFailed,
				callsite.Make(callsite.EntryI2CProcess, 1, 0, 1), i2cstatus.Status(0).WithLockedBus())
		}
		if e.softReset != nil {
			e.softReset()
		}
	}
}
