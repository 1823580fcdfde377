// Package bridge implements the top-level Bridge Supervisor FSM of spec
// §4.E: a cooperative scheduler that owns the shared arena, activates the
// UART and I2C engines into one of two mutually-exclusive heaps
// (translator or updater), and drives their budgeted process calls from a
// single-threaded Tick loop.
package bridge

import (
	"i2cbridge-fw/arena"
	"i2cbridge-fw/byteq"
	"i2cbridge-fw/clock"
	"i2cbridge-fw/errcode"
	"i2cbridge-fw/i2c"
	"i2cbridge-fw/uart"
)

// State is a step of the supervisor FSM (spec §4.E).
type State uint8

const (
	InitHostComm State = iota
	InitSlaveReset
	CheckSlaveResetComplete
	InitSlaveTranslator
	SlaveTranslator
	InitSlaveUpdater
	SlaveUpdater
	HostCommFailed
	SlaveTranslatorFailed
	SlaveUpdaterFailed
)

const (
	resetPulseMS  uint32 = 100
	diagPeriodMS  uint32 = 5000
	uartRxBudget  uint32 = 2
	i2cBudget     uint32 = 5
	uartTxBudget  uint32 = 3

	// Arena footprints (spec §3): the translator heap is an I2C transfer
	// queue + RX buffer plus a normal-mode two-queue UART heap; the
	// updater heap is a bare RX buffer plus a bootloader-skewed UART heap.
	uartTranslatorRxBytes = 600
	uartTranslatorTxBytes = 800
	uartTranslatorRecords = 8
	uartUpdaterRxBytes    = 2100
	uartUpdaterTxBytes    = 100
	uartUpdaterRecords    = 8

	// Slave address plan (spec §3): 0x48 application, 0x58 bootloader. The
	// I2C engine already defaults to 0x48 on construction; only the
	// updater transition needs to override it.
	bootloaderAddr = 0x58
)

func wordsFor(bytes int) int { return (bytes + 3) / 4 }

// Supervisor is the top-level FSM described in spec §4.E. It is not safe
// for concurrent use; Tick is meant to be called from a single cooperative
// loop, the same discipline uart.Engine and i2c.Engine apply to their own
// process calls.
type Supervisor struct {
	clk   clock.Source
	bus   i2c.Bus
	irq   i2c.IRQPin
	arena *arena.Arena

	resetLineSet     func(high bool)
	resetLinePresent func() bool
	diagWrite        func(line []byte)
	deviceReset      func()

	state       State
	resetAlarm  clock.Alarm
	lastDiagMS  uint32
	diagEmitted bool

	uart      *uart.Engine
	i2cEng    *i2c.Engine
	uartWords int

	version   uart.VersionInfo
	errorMode uart.ErrorMode

	requestTranslator bool
	requestUpdater    bool
	requestReset      bool
	i2cFatal          bool

	failReason string
}

// Config carries the constructor dependencies a Supervisor needs beyond
// the BridgeConfig values (platform capability objects, not data).
type Config struct {
	Clock            clock.Source
	Bus              i2c.Bus
	IRQ              i2c.IRQPin
	Arena            *arena.Arena
	ResetLineSet     func(high bool)
	ResetLinePresent func() bool // spec §9 open question; nil defaults to always-present
	DiagWrite        func(line []byte)
	DeviceReset      func()
	Version          uart.VersionInfo
}

// NewSupervisor builds a Supervisor at rest in InitHostComm. Arena must
// have already been sized by the caller from config.BridgeConfig.
func NewSupervisor(cfg Config) *Supervisor {
	resetPresent := cfg.ResetLinePresent
	if resetPresent == nil {
		resetPresent = func() bool { return true }
	}
	diagWrite := cfg.DiagWrite
	if diagWrite == nil {
		diagWrite = func([]byte) {}
	}
	return &Supervisor{
		clk:              cfg.Clock,
		bus:              cfg.Bus,
		irq:              cfg.IRQ,
		arena:            cfg.Arena,
		resetLineSet:     cfg.ResetLineSet,
		resetLinePresent: resetPresent,
		diagWrite:        diagWrite,
		deviceReset:      cfg.DeviceReset,
		version:          cfg.Version,
		state:            InitHostComm,
	}
}

// State exposes the current FSM step for tests and diagnostics.
func (s *Supervisor) State() State { return s.state }

// RequestTranslatorMode asks the supervisor to switch to translator mode
// once it next reaches a safe observation point (spec §4.E: "observed only
// between states; never preempt an in-flight I2C transaction").
func (s *Supervisor) RequestTranslatorMode() { s.requestTranslator = true }

// RequestUpdaterMode asks the supervisor to switch to updater mode.
func (s *Supervisor) RequestUpdaterMode() { s.requestUpdater = true }

// RequestReset asks the supervisor to pulse the slave reset line and
// re-enter translator mode.
func (s *Supervisor) RequestReset() { s.requestReset = true }

// UART exposes the active UART engine (nil when no mode is active), for
// platform wiring of the physical port and the ISR byte path.
func (s *Supervisor) UART() *uart.Engine { return s.uart }

// Tick advances the FSM by one step. It is the supervisor's entire run-loop
// contribution; callers invoke it as often as their scheduling model
// allows (spec §5: single-threaded cooperative loop on top of ISRs).
func (s *Supervisor) Tick() {
	switch s.state {
	case InitHostComm:
		s.doInitHostComm()
	case InitSlaveReset:
		s.doInitSlaveReset()
	case CheckSlaveResetComplete:
		s.doCheckSlaveResetComplete()
	case InitSlaveTranslator:
		s.doInitSlaveTranslator()
	case SlaveTranslator:
		s.doTickTranslator()
	case InitSlaveUpdater:
		s.doInitSlaveUpdater()
	case SlaveUpdater:
		s.doTickUpdater()
	case HostCommFailed, SlaveTranslatorFailed, SlaveUpdaterFailed:
		s.doTickFailed()
	}
}

func (s *Supervisor) doInitHostComm() {
	if !s.activateTranslatorUART() {
		s.state = HostCommFailed
		return
	}
	s.state = InitSlaveReset
}

// activateTranslatorUART claims the normal-mode UART heap and constructs a
// fresh Engine over it, recording TranslatorError on arena exhaustion.
func (s *Supervisor) activateTranslatorUART() bool {
	rx, tx, words, ok := s.claimUARTHeap(uartTranslatorRxBytes, uartTranslatorTxBytes, uartTranslatorRecords)
	if !ok {
		s.failReason = string(errcode.TranslatorError)
		return false
	}
	s.uart = uart.NewEngine(rx, tx, s.clk, nil, s.deviceReset)
	s.uart.SetVersion(s.version)
	s.uart.SetErrorMode(s.errorMode)
	s.uartWords = words
	return true
}

func (s *Supervisor) doInitSlaveReset() {
	// A plain request_reset from steady translator state leaves the UART
	// translator heap in place; returning here from updater mode (or from
	// HostCommFailed-style recovery) does not, so reclaim it if needed
	// before proceeding (spec §3: the arena holds exactly one of the two
	// combined heaps at a time).
	if s.uart == nil && !s.activateTranslatorUART() {
		s.state = HostCommFailed
		return
	}
	if !s.resetLinePresent() {
		s.resetAlarm.Disarm()
		s.state = InitSlaveTranslator
		return
	}
	if s.resetLineSet != nil {
		s.resetLineSet(false)
	}
	s.resetAlarm.Arm(s.clk, resetPulseMS, clock.SingleNotification)
	s.state = CheckSlaveResetComplete
}

func (s *Supervisor) doCheckSlaveResetComplete() {
	if s.resetAlarm.Armed() && !s.resetAlarm.HasElapsed(s.clk) {
		return
	}
	if s.resetLineSet != nil {
		s.resetLineSet(true)
	}
	s.state = InitSlaveTranslator
}

func (s *Supervisor) doInitSlaveTranslator() {
	s.i2cEng = i2c.NewEngine(s.bus, s.irq, s.clk, s.uart, s.uart, s.onI2CFatal)
	if !s.i2cEng.ActivateTranslator(s.arena) {
		s.teardown()
		s.failReason = string(errcode.TranslatorError)
		s.state = SlaveTranslatorFailed
		return
	}
	s.uart.SetSlaveTransfers(s.i2cEng)
	s.requestTranslator = false
	s.state = SlaveTranslator
}

func (s *Supervisor) doTickTranslator() {
	s.uart.ProcessRx(uartRxBudget)
	s.i2cEng.Process(i2cBudget)
	s.uart.ProcessTx(uartTxBudget)

	if s.i2cFatal {
		s.i2cFatal = false
		s.teardown()
		s.failReason = string(errcode.SlaveResetFailed)
		s.state = SlaveTranslatorFailed
		return
	}
	switch {
	case s.requestReset:
		s.requestReset = false
		s.deactivateI2C()
		s.state = InitSlaveReset
	case s.requestUpdater:
		s.requestUpdater = false
		s.deactivateI2C()
		s.deactivateUART()
		s.state = InitSlaveUpdater
	}
}

func (s *Supervisor) doInitSlaveUpdater() {
	rx, tx, words, ok := s.claimUARTHeap(uartUpdaterRxBytes, uartUpdaterTxBytes, uartUpdaterRecords)
	if !ok {
		s.failReason = string(errcode.UpdaterError)
		s.state = SlaveUpdaterFailed
		return
	}
	s.uart = uart.NewEngine(rx, tx, s.clk, nil, s.deviceReset)
	s.uart.SetVersion(s.version)
	s.uart.SetErrorMode(s.errorMode)
	s.uartWords = words

	s.i2cEng = i2c.NewEngine(s.bus, s.irq, s.clk, s.uart, s.uart, s.onI2CFatal)
	s.i2cEng.SetSlaveAddress(bootloaderAddr)
	if !s.i2cEng.ActivateUpdater(s.arena) {
		s.deactivateUART()
		s.failReason = string(errcode.UpdaterError)
		s.state = SlaveUpdaterFailed
		return
	}
	s.uart.SetSlaveTransfers(s.i2cEng)
	s.requestUpdater = false
	s.state = SlaveUpdater
}

func (s *Supervisor) doTickUpdater() {
	s.uart.ProcessRx(uartRxBudget)
	s.i2cEng.Process(i2cBudget)
	s.uart.ProcessTx(uartTxBudget)

	if s.i2cFatal {
		s.i2cFatal = false
		s.teardown()
		s.failReason = string(errcode.SlaveResetFailed)
		s.state = SlaveUpdaterFailed
		return
	}
	if s.requestTranslator {
		s.requestTranslator = false
		s.teardown()
		s.state = InitSlaveReset
	}
}

// doTickFailed implements the never-recover terminal states: periodically
// emit an ASCII diagnostic and otherwise do nothing (spec §4.E, §7 "Fatal
// conditions").
func (s *Supervisor) doTickFailed() {
	now := s.clk.NowMS()
	if s.diagEmitted && now-s.lastDiagMS < diagPeriodMS {
		return
	}
	s.diagEmitted = true
	s.lastDiagMS = now
	s.diagWrite(s.diagnosticLine(now))
}

// SignalSlaveIRQ forwards a slave-IRQ rising edge to whichever I2C engine
// is currently active (spec §5 "a slave-IRQ ISR that only sets
// rx_pending=true"). Platform wiring registers this as the pin's
// rising-edge handler once at boot; it stays valid across every mode
// switch because it resolves s.i2cEng at call time, not at registration
// time.
func (s *Supervisor) SignalSlaveIRQ() {
	if s.i2cEng != nil {
		s.i2cEng.SignalRxPending()
	}
}

// onI2CFatal is the I2C engine's soft-reset hook (spec §7 "repeated
// locked-bus beyond the recovery cap"): it cannot safely deactivate state
// from inside the I2C engine's own call stack, so it only raises a flag
// that Tick checks once the I2C engine's Process call has returned.
func (s *Supervisor) onI2CFatal() {
	s.i2cFatal = true
}

func (s *Supervisor) deactivateI2C() {
	if s.i2cEng != nil {
		s.i2cEng.Deactivate(s.arena)
		s.i2cEng = nil
	}
}

func (s *Supervisor) deactivateUART() {
	if s.uartWords > 0 {
		s.arena.Release(s.uartWords)
		s.uartWords = 0
	}
	s.uart = nil
}

// teardown releases both heaps in the LIFO order they were claimed in:
// I2C (claimed last) before UART (claimed first).
func (s *Supervisor) teardown() {
	s.deactivateI2C()
	s.deactivateUART()
}

func (s *Supervisor) claimUARTHeap(rxBytes, txBytes, records int) (*byteq.Queue, *byteq.Queue, int, bool) {
	rxWords := wordsFor(rxBytes)
	txWords := wordsFor(txBytes)
	rxBuf, ok := s.arena.Take(rxWords)
	if !ok {
		return nil, nil, 0, false
	}
	txBuf, ok := s.arena.Take(txWords)
	if !ok {
		s.arena.Release(rxWords)
		return nil, nil, 0, false
	}
	rx := byteq.New(rxBuf[:rxBytes], records)
	tx := byteq.New(txBuf[:txBytes], records)
	return rx, tx, rxWords + txWords, true
}
