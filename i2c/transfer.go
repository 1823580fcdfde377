package i2c

import (
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// runTransferPipeline implements spec §4.D's host-initiated transfer
// pipeline: XferDequeueAndAct, then XferRxCheckComplete or
// XferTxCheckComplete depending on direction.
func (e *Engine) runTransferPipeline(start, budgetMS uint32) {
	e.state = XferDequeueAndAct
	rec, ok := e.xferQueue.Dequeue()
	if !ok || len(rec) == 0 {
		return
	}
	desc := Descriptor(rec[0])
	addr := desc.Address()

	switch desc.Direction() {
	case DirRead:
		length := 1
		if len(rec) >= 2 {
			length = int(rec[1])
		}
		if length > len(e.rxBuf) {
			e.reportInvalidInput()
			return
		}
		e.timeoutAlarm.Snooze(extendedTimeoutMS(length))
		e.state = XferRxCheckComplete
		if e.budgetExceeded(start, budgetMS) {
			return
		}
		err := e.doTx(addr, nil, e.rxBuf[:length])
		if err != nil {
			if !isBusyErr(err) {
				e.reportDriverError(5)
			}
			return
		}
		if e.rxCallback != nil {
			data := make([]byte, length)
			copy(data, e.rxBuf[:length])
			e.rxCallback.OnSlaveData(data)
		}

	case DirWrite:
		data := rec[1:]
		e.timeoutAlarm.Snooze(extendedTimeoutMS(len(data)))
		e.state = XferTxCheckComplete
		if e.budgetExceeded(start, budgetMS) {
			return
		}
		if err := e.doTx(addr, data, nil); err != nil && !isBusyErr(err) {
			e.reportDriverError(6)
		}
	}
}

func (e *Engine) reportInvalidInput() {
	if e.errSink == nil {
		return
	}
	e.errSink.ReportError(errcode.FamilyI2C, errcode.InvalidInput,
		callsite.Make(callsite.EntryI2CProcess, 7, 0, 3), i2cstatus.Status(0))
}
