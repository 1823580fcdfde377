package uart

import (
	"i2cbridge-fw/byteq"
	"i2cbridge-fw/callsite"
	"i2cbridge-fw/clock"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2cstatus"
)

// SlaveTransfers is the capability the UART engine needs from the I2C
// engine to act on host commands (spec §9: capability objects passed at
// activation rather than global singletons).
type SlaveTransfers interface {
	SetSlaveAddress(addr byte)
	EnqueueRead(addr byte, length byte) bool
	EnqueueWrite(addr byte, data []byte) bool
	AckProbe(addr byte, timeoutMS uint32) bool
}

// ErrorSink receives typed errors tallied by family, from this engine or
// from the I2C engine, and is how both ultimately surface on the wire.
type ErrorSink interface {
	ReportError(family errcode.Family, code errcode.Code, site callsite.ID, status i2cstatus.Status)
}

// VersionInfo is the firmware version triad reported by the V/v commands.
type VersionInfo struct {
	Major  uint16
	Minor  uint16
	Update uint16
}

// Engine is the UART framing engine: ISR-side byte ingestion, command
// dispatch, and the transmit encoder.
type Engine struct {
	rx  *byteq.Queue
	tx  *byteq.Queue
	clk clock.Source

	rxState      RxState
	lastRxMS     uint32
	idleTimeout  uint32
	i2c          SlaveTransfers
	resetFunc    func()
	version      VersionInfo
	errorMode    ErrorMode
	stats        [4]uint16
	overflowFunc func()

	ackProbeAddr byte
}

// NewEngine builds a UART engine over rx/tx queues sized per spec §3's
// arena footprint (normal mode: two 8-record queues, RX 600B/TX 800B; the
// queues themselves are constructed by the caller against the active
// arena slice, see bridge.Supervisor.claimUARTHeap).
func NewEngine(rx, tx *byteq.Queue, clk clock.Source, i2c SlaveTransfers, resetFunc func()) *Engine {
	e := &Engine{
		rx:          rx,
		tx:          tx,
		clk:         clk,
		idleTimeout: defaultIdleTimeoutMS,
		i2c:          i2c,
		resetFunc:    resetFunc,
		ackProbeAddr: 0x48,
	}
	tx.RegisterEncodeCallback(encodeTxRecord)
	return e
}

// SetSlaveTransfers installs the I2C capability object after construction,
// resolving the construction-order cycle between the UART and I2C engines
// (spec §9 capability objects): the supervisor builds the I2C engine with
// this *Engine already usable as its RxCallback/ErrorSink, then closes the
// loop here.
func (e *Engine) SetSlaveTransfers(s SlaveTransfers) { e.i2c = s }

// SetVersion installs the version triad reported by V/v.
func (e *Engine) SetVersion(v VersionInfo) { e.version = v }

// SetErrorMode installs the active ErrorMode.
func (e *Engine) SetErrorMode(m ErrorMode) { e.errorMode = m }

// ErrorMode returns the active ErrorMode.
func (e *Engine) ErrorMode() ErrorMode { return e.errorMode }

// SetOverflowFunc installs a callback invoked whenever an inbound byte is
// dropped because the decoded-RX queue overflowed.
func (e *Engine) SetOverflowFunc(f func()) { e.overflowFunc = f }

// HandleRxByte processes one inbound host byte. It is safe to call directly
// from the UART-RX ISR (spec §5): it only ever calls enqueue_byte/finalize
// on the RX queue, never dequeue, so there is no concurrent-reader hazard
// with the main loop's ProcessRx.
func (e *Engine) HandleRxByte(b byte) {
	switch e.rxState {
	case OutOfFrame:
		if b == FrameByte {
			e.lastRxMS = e.clk.NowMS()
			e.rxState = InFrame
		}
		// bytes outside a frame are not data; nothing else to do.
	case InFrame:
		switch b {
		case EscapeByte:
			e.rxState = EscapeCharacter
		case FrameByte:
			e.rx.Finalize()
			e.rxState = OutOfFrame
		default:
			if !e.rx.EnqueueByte(b, false) && e.overflowFunc != nil {
				e.overflowFunc()
			}
		}
	case EscapeCharacter:
		if !e.rx.EnqueueByte(b, false) && e.overflowFunc != nil {
			e.overflowFunc()
		}
		e.rxState = InFrame
	}
}

// CheckIdle resets a stalled in-frame parse back to OutOfFrame once more
// than idle_timeout_ms have passed since the last byte (spec §4.C optional
// safety reset).
func (e *Engine) CheckIdle() {
	if e.rxState == OutOfFrame {
		return
	}
	if e.clk.NowMS()-e.lastRxMS > e.idleTimeout {
		e.rxState = OutOfFrame
	}
}

// ProcessRx dequeues and dispatches committed frames for up to budgetMS
// milliseconds.
func (e *Engine) ProcessRx(budgetMS uint32) {
	start := e.clk.NowMS()
	for e.clk.NowMS()-start < budgetMS {
		frame, ok := e.rx.Dequeue()
		if !ok {
			return
		}
		e.dispatch(frame)
	}
}

// ProcessTx is a placeholder budget hook: the transmit queue is drained by
// whatever owns the physical UART port (platform.UARTPort), this method
// exists so the supervisor's cooperative tick (spec §4.E) can account a
// uniform ms budget against TX the same way it does for RX and I2C. Actual
// byte flushing happens in platform.PumpTx via TxQueue().
func (e *Engine) ProcessTx(budgetMS uint32) {}

// TxQueue exposes the transmit queue so the platform layer can drain framed
// bytes onto the physical UART port.
func (e *Engine) TxQueue() *byteq.Queue { return e.tx }

// RxQueue exposes the decoded-RX queue, mainly for tests that want to
// inspect or prime committed frames directly.
func (e *Engine) RxQueue() *byteq.Queue { return e.rx }
