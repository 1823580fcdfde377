package i2c

import (
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/clock"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// Process drives the Comm FSM for up to budgetMS milliseconds (0 means
// unbounded). It implements the entry rule of spec §4.D: a slave-asserted
// IRQ with rx_pending set takes priority over a non-empty host transfer
// queue.
func (e *Engine) Process(budgetMS uint32) {
	start := e.clk.NowMS()
	// Continuous, not single-shot: once the deadline passes it must keep
	// reporting elapsed for the rest of this Process call, not disarm
	// itself after the first check.
	e.timeoutAlarm.Arm(e.clk, budgetMS, clock.ContinuousNotification)
	defer e.timeoutAlarm.Disarm()

	if e.mode == modeInactive {
		return
	}

	if e.lockedBus {
		e.runLockedBusRecovery()
		e.state = Waiting
		return
	}

	if e.irq != nil && e.irq.Asserted() && e.rxPending.Load() {
		e.rxPending.Store(false)
		e.runReceivePipeline(start, budgetMS)
		e.state = Waiting
		return
	}
	if e.xferQueue != nil && !e.xferQueue.IsEmpty() {
		e.runTransferPipeline(start, budgetMS)
		e.state = Waiting
		return
	}
	e.state = Waiting
}

// budgetExceeded consults the shared timeout alarm rather than
// recomputing elapsed time, so that the RxProcessLength snooze (extending
// the budget for a long read) actually postpones the abort (spec §4.D
// step 4).
func (e *Engine) budgetExceeded(start, budgetMS uint32) bool {
	if budgetMS == 0 {
		return false
	}
	return e.timeoutAlarm.HasElapsed(e.clk)
}

// runReceivePipeline implements spec §4.D steps 1-8: RxPending through
// RxCheckComplete. Every completed read and every invalid_read reaches
// RxClearIrq; a busy bus or an exhausted time budget returns early without
// it, abandoning the transaction.
func (e *Engine) runReceivePipeline(start, budgetMS uint32) {
	e.state = RxPending
	invalidRead := false
	switchedThisAttempt := false

	for attempt := 0; attempt < 2; attempt++ {
		if !e.responseBufferKnown {
			e.state = RxSwitchToResponseBuffer
			if e.budgetExceeded(start, budgetMS) {
				return
			}
			if err := e.doTx(e.slaveAddr, []byte{responseBufferOffset}, nil); err != nil {
				if isBusyErr(err) {
					return
				}
				e.reportDriverError(0)
				e.finishReceive(start, budgetMS, true)
				return
			}
			e.responseBufferKnown = true
			switchedThisAttempt = true
		}

		e.state = RxReadLength
		if e.budgetExceeded(start, budgetMS) {
			return
		}
		if err := e.doTx(e.slaveAddr, nil, e.rxBuf[:2]); err != nil {
			if isBusyErr(err) {
				return
			}
			e.reportDriverError(1)
			e.finishReceive(start, budgetMS, true)
			return
		}

		e.state = RxProcessLength
		cmd := e.rxBuf[0] & 0x7F
		length := e.rxBuf[1]
		if cmd == 0 || length == 0xFF {
			if !switchedThisAttempt {
				e.responseBufferKnown = false
				continue
			}
			invalidRead = true
			break
		}

		pendingRxSize := 2 + int(length)
		if length > 0 {
			e.timeoutAlarm.Snooze(extendedTimeoutMS(pendingRxSize))
			e.state = RxReadExtraData
			if e.budgetExceeded(start, budgetMS) {
				return
			}
			if err := e.doTx(e.slaveAddr, nil, e.rxBuf[2:pendingRxSize]); err != nil {
				if isBusyErr(err) {
					return
				}
				e.reportDriverError(2)
				e.finishReceive(start, budgetMS, true)
				return
			}
		}

		e.state = RxProcessExtraData
		if e.rxCallback != nil {
			data := make([]byte, pendingRxSize)
			copy(data, e.rxBuf[:pendingRxSize])
			e.rxCallback.OnSlaveData(data)
		}
		break
	}

	e.finishReceive(start, budgetMS, invalidRead)
}

// finishReceive implements steps 7-8: write the IRQ-clear message unless
// the time budget is already spent, then report invalid_read if the
// pipeline detected one.
func (e *Engine) finishReceive(start, budgetMS uint32, invalidRead bool) {
	e.state = RxClearIrq
	if !e.budgetExceeded(start, budgetMS) {
		if err := e.doTx(e.slaveAddr, []byte{responseBufferOffset, 0x00}, nil); err != nil && !isBusyErr(err) {
			e.reportDriverError(3)
		}
	}
	if invalidRead && e.errSink != nil {
		e.errSink.ReportError(errcode.FamilyI2C, errcode.InvalidRead,
			callsite.Make(callsite.EntryI2CProcess, 4, 0, 2), i2cstatus.Status(0).WithInvalidRead())
	}
	e.state = RxCheckComplete
}

func (e *Engine) reportDriverError(subCall uint8) {
	if e.errSink == nil {
		return
	}
	e.errSink.ReportError(errcode.FamilyI2C, errcode.DriverError,
		callsite.Make(callsite.EntryI2CProcess, subCall, 0, 0), i2cstatus.Status(0).WithDriverError())
}
