package i2c

import (
	"sync/atomic"

	"i2cbridge-fw/arena"
	"i2cbridge-fw/byteq"
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/clock"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// Bus is the vendor low-level I2C master driver (spec §6), adapted by the
// platform package from tinygo.org/x/drivers on the MCU build and from an
// in-memory fake on the host build. Its shape mirrors
// machine.I2C.Tx(addr uint16, w, r []byte) error.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Reiniter is an optional capability a Bus may implement to support
// locked-bus recovery (stop the block, clear status, re-init, re-enable).
type Reiniter interface {
	Reinit() error
}

// IRQPin reads the slave's interrupt-request GPIO line.
type IRQPin interface {
	Asserted() bool
}

// RxCallback receives bytes read from the slave's response buffer,
// forwarding them toward the host (spec §4.D step 6).
type RxCallback interface {
	OnSlaveData(data []byte)
}

// ErrorSink receives typed errors tallied by family; *uart.Engine
// implements this (structurally, no import needed in either direction).
type ErrorSink interface {
	ReportError(family errcode.Family, code errcode.Code, site callsite.ID, status i2cstatus.Status)
}

// Engine is the I2C master communication engine.
type Engine struct {
	bus Bus
	irq IRQPin
	clk clock.Source

	rxCallback RxCallback
	errSink    ErrorSink

	state     State
	rxPending atomic.Bool

	slaveAddr           byte
	responseBufferKnown bool

	xferQueue *byteq.Queue
	rxBuf     []byte
	claimed   int
	mode      mode

	timeoutAlarm clock.Alarm

	lockedBus        bool
	detectAlarm      clock.Alarm
	recoverAlarm     clock.Alarm
	recoveryAttempts int
	recoveryCap      int
	softReset        func()
}

// NewEngine builds an I2C engine. softReset is invoked if locked-bus
// recovery exhausts its attempt cap (spec §7 fatal conditions); it may be
// nil.
func NewEngine(bus Bus, irq IRQPin, clk clock.Source, rxCallback RxCallback, errSink ErrorSink, softReset func()) *Engine {
	return &Engine{
		bus:         bus,
		irq:         irq,
		clk:         clk,
		rxCallback:  rxCallback,
		errSink:     errSink,
		slaveAddr:   0x48,
		recoveryCap: defaultRecoveryCap,
		softReset:   softReset,
	}
}

// SignalRxPending is the slave-IRQ ISR's entire job (spec §5): it only
// sets this flag, nothing else runs in interrupt context.
func (e *Engine) SignalRxPending() { e.rxPending.Store(true) }

// SetSlaveAddress implements uart.SlaveTransfers.
func (e *Engine) SetSlaveAddress(addr byte) {
	e.slaveAddr = addr
	e.responseBufferKnown = false
}

// State exposes the current FSM step for tests and diagnostics.
func (e *Engine) State() State { return e.state }

// ActivateTranslator claims the translator I2C heap (an 8-record, 600-byte
// transfer queue plus a 260-byte raw RX buffer) from a, per spec §3/§4.D.
func (e *Engine) ActivateTranslator(a *arena.Arena) bool {
	if e.mode != modeInactive {
		return false
	}
	queueWords := wordsFor(translatorQueueBytes)
	rxWords := wordsFor(translatorRxBufBytes)
	queueBuf, ok := a.Take(queueWords)
	if !ok {
		return false
	}
	rxBuf, ok := a.Take(rxWords)
	if !ok {
		a.Release(queueWords)
		return false
	}
	e.xferQueue = byteq.New(queueBuf[:translatorQueueBytes], translatorQueueRecords)
	e.rxBuf = rxBuf[:translatorRxBufBytes]
	e.claimed = queueWords + rxWords
	e.mode = modeTranslator
	e.state = Waiting
	return true
}

// ActivateUpdater claims the updater I2C heap: a bare 32-byte RX buffer,
// no transfer queue (spec §3, §9 open question on the updater protocol).
func (e *Engine) ActivateUpdater(a *arena.Arena) bool {
	if e.mode != modeInactive {
		return false
	}
	rxWords := wordsFor(updaterRxBufBytes)
	rxBuf, ok := a.Take(rxWords)
	if !ok {
		return false
	}
	e.rxBuf = rxBuf[:updaterRxBufBytes]
	e.claimed = rxWords
	e.mode = modeUpdater
	e.state = Waiting
	return true
}

// Deactivate returns the claimed arena slice to a and resets the engine to
// its mutually-exclusive-with-activation idle state (spec §4.D "terminal
// state only on deactivate, which forces Waiting and disarms all alarms").
func (e *Engine) Deactivate(a *arena.Arena) {
	if e.mode == modeInactive {
		return
	}
	a.Release(e.claimed)
	e.xferQueue = nil
	e.rxBuf = nil
	e.claimed = 0
	e.mode = modeInactive
	e.state = Waiting
	e.timeoutAlarm.Disarm()
	e.detectAlarm.Disarm()
	e.recoverAlarm.Disarm()
	e.lockedBus = false
	e.recoveryAttempts = 0
}

// EnqueueRead implements uart.SlaveTransfers. In translator mode it pushes
// a read descriptor record onto the host transfer queue; in updater mode
// there is no queue, so it performs the read immediately against the
// bootloader (spec §9 supplemented feature 4: a minimal, unspecified
// handshake, relayed opaquely).
func (e *Engine) EnqueueRead(addr byte, length byte) bool {
	switch e.mode {
	case modeUpdater:
		if int(length) > len(e.rxBuf) {
			return false
		}
		if e.doTx(addr, nil, e.rxBuf[:length]) != nil {
			return false
		}
		if e.rxCallback != nil {
			data := make([]byte, length)
			copy(data, e.rxBuf[:length])
			e.rxCallback.OnSlaveData(data)
		}
		return true
	case modeTranslator:
		if e.xferQueue == nil {
			return false
		}
		return e.xferQueue.Enqueue([]byte{byte(MakeDescriptor(addr, DirRead)), length})
	default:
		return false
	}
}

// EnqueueWrite implements uart.SlaveTransfers.
func (e *Engine) EnqueueWrite(addr byte, data []byte) bool {
	switch e.mode {
	case modeUpdater:
		return e.doTx(addr, data, nil) == nil
	case modeTranslator:
		if e.xferQueue == nil {
			return false
		}
		rec := make([]byte, 1+len(data))
		rec[0] = byte(MakeDescriptor(addr, DirWrite))
		copy(rec[1:], data)
		return e.xferQueue.Enqueue(rec)
	default:
		return false
	}
}

// AckProbe implements uart.SlaveTransfers: a zero-length write used both
// for the 'a' command and for locked-bus recovery.
func (e *Engine) AckProbe(addr byte, timeoutMS uint32) bool {
	err := e.doTx(addr, []byte{}, nil)
	return err == nil
}

// doTx performs one blocking bus transaction and applies the locked-bus
// and success-clears-lock bookkeeping shared by every call site (spec §8
// "a successful non-busy transaction resets all locked-bus state").
func (e *Engine) doTx(addr byte, w, r []byte) error {
	err := e.bus.Tx(uint16(addr), w, r)
	if err == nil {
		e.clearLockedBus()
		return nil
	}
	if isBusyErr(err) {
		e.onBusBusy()
	}
	return err
}
