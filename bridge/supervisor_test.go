package bridge

import (
	"testing"

	"i2cbridge-fw/arena"
)

type fakeClock struct{ ms uint32 }

func (f *fakeClock) NowMS() uint32 { return f.ms }

type fakeBus struct{}

func (fakeBus) Tx(addr uint16, w, r []byte) error { return nil }

type fakeIRQ struct{}

func (fakeIRQ) Asserted() bool { return false }

func newTestSupervisor(arenaWords int) (*Supervisor, *fakeClock) {
	clk := &fakeClock{}
	s := NewSupervisor(Config{
		Clock: clk,
		Bus:   fakeBus{},
		IRQ:   fakeIRQ{},
		Arena: arena.New(arenaWords),
	})
	return s, clk
}

func TestBootReachesSteadyTranslatorState(t *testing.T) {
	s, clk := newTestSupervisor(700)

	s.Tick() // InitHostComm -> InitSlaveReset
	if s.State() != InitSlaveReset {
		t.Fatalf("expected InitSlaveReset, got %v", s.State())
	}
	s.Tick() // InitSlaveReset -> CheckSlaveResetComplete
	if s.State() != CheckSlaveResetComplete {
		t.Fatalf("expected CheckSlaveResetComplete, got %v", s.State())
	}
	s.Tick() // alarm not yet elapsed: stays put
	if s.State() != CheckSlaveResetComplete {
		t.Fatalf("expected to remain in CheckSlaveResetComplete before the 100ms window, got %v", s.State())
	}

	clk.ms = 150
	s.Tick() // CheckSlaveResetComplete -> InitSlaveTranslator
	if s.State() != InitSlaveTranslator {
		t.Fatalf("expected InitSlaveTranslator, got %v", s.State())
	}
	s.Tick() // InitSlaveTranslator -> SlaveTranslator
	if s.State() != SlaveTranslator {
		t.Fatalf("expected SlaveTranslator, got %v", s.State())
	}
	if s.UART() == nil {
		t.Fatalf("expected an active UART engine in steady translator state")
	}

	s.Tick() // steady tick must not change state
	if s.State() != SlaveTranslator {
		t.Fatalf("expected steady state to hold, got %v", s.State())
	}
}

func driveToTranslator(t *testing.T, s *Supervisor, clk *fakeClock) {
	t.Helper()
	s.Tick()
	s.Tick()
	clk.ms += 150
	s.Tick()
	s.Tick()
	if s.State() != SlaveTranslator {
		t.Fatalf("setup: expected SlaveTranslator, got %v", s.State())
	}
}

func TestResetLineAbsentSkipsWaitWindow(t *testing.T) {
	clk := &fakeClock{}
	s := NewSupervisor(Config{
		Clock:            clk,
		Bus:              fakeBus{},
		IRQ:              fakeIRQ{},
		Arena:            arena.New(700),
		ResetLinePresent: func() bool { return false },
	})

	s.Tick() // InitHostComm -> InitSlaveReset
	s.Tick() // InitSlaveReset -> InitSlaveTranslator directly, no alarm wait
	if s.State() != InitSlaveTranslator {
		t.Fatalf("expected InitSlaveTranslator with no reset line, got %v", s.State())
	}
}

func TestRequestUpdaterSwitchesHeap(t *testing.T) {
	s, clk := newTestSupervisor(700)
	driveToTranslator(t, s, clk)

	s.RequestUpdaterMode()
	s.Tick() // observes request, tears down translator heap
	if s.State() != InitSlaveUpdater {
		t.Fatalf("expected InitSlaveUpdater, got %v", s.State())
	}
	s.Tick() // InitSlaveUpdater -> SlaveUpdater
	if s.State() != SlaveUpdater {
		t.Fatalf("expected SlaveUpdater, got %v", s.State())
	}

	s.RequestTranslatorMode()
	s.Tick() // observes request, tears down updater heap, back to reset cycle
	if s.State() != InitSlaveReset {
		t.Fatalf("expected InitSlaveReset on translator request, got %v", s.State())
	}
}

func TestHostCommFailedOnInsufficientArena(t *testing.T) {
	s, _ := newTestSupervisor(1)
	s.Tick()
	if s.State() != HostCommFailed {
		t.Fatalf("expected HostCommFailed with a 1-word arena, got %v", s.State())
	}
}

func TestFailedStateEmitsPeriodicDiagnostic(t *testing.T) {
	s, clk := newTestSupervisor(1)
	s.Tick() // -> HostCommFailed

	var lines [][]byte
	s.diagWrite = func(line []byte) {
		lines = append(lines, append([]byte{}, line...))
	}

	s.Tick()
	if len(lines) != 1 {
		t.Fatalf("expected one diagnostic on first failed tick, got %d", len(lines))
	}
	s.Tick()
	if len(lines) != 1 {
		t.Fatalf("expected no additional diagnostic before the 5s period elapses, got %d", len(lines))
	}
	clk.ms += 5000
	s.Tick()
	if len(lines) != 2 {
		t.Fatalf("expected a second diagnostic after 5s, got %d", len(lines))
	}
}

func TestDebugFrameInjectionReachesDispatch(t *testing.T) {
	s, clk := newTestSupervisor(700)
	driveToTranslator(t, s, clk)

	if err := s.InjectDebugLine("A"); err != nil {
		t.Fatalf("InjectDebugLine: %v", err)
	}
	s.UART().ProcessRx(1000)
	got, ok := s.UART().TxQueue().Dequeue()
	if !ok {
		t.Fatalf("expected an ack reply queued after debug injection")
	}
	want := []byte{0xAA, 0x55, 0x55, 'A', 0xAA}
	if string(got) != string(want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}
