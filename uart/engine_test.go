package uart

import (
	"testing"

	"i2cbridge-fw/byteq"
	"i2cbridge-fw/errcode"
)

type fakeClock struct{ ms uint32 }

func (f *fakeClock) NowMS() uint32 { return f.ms }

type fakeSlave struct {
	lastAddr       byte
	reads          [][2]byte
	writes         [][]byte
	ackProbeResult bool
	full           bool
}

func (f *fakeSlave) SetSlaveAddress(addr byte) { f.lastAddr = addr }
func (f *fakeSlave) EnqueueRead(addr byte, length byte) bool {
	if f.full {
		return false
	}
	f.reads = append(f.reads, [2]byte{addr, length})
	return true
}
func (f *fakeSlave) EnqueueWrite(addr byte, data []byte) bool {
	if f.full {
		return false
	}
	f.writes = append(f.writes, append([]byte{addr}, data...))
	return true
}
func (f *fakeSlave) AckProbe(addr byte, timeoutMS uint32) bool { return f.ackProbeResult }

func newTestEngine() (*Engine, *fakeSlave, *fakeClock) {
	rx := byteq.New(make([]byte, 600), 8)
	tx := byteq.New(make([]byte, 800), 8)
	slave := &fakeSlave{ackProbeResult: true}
	clk := &fakeClock{}
	resetCalled := false
	e := NewEngine(rx, tx, clk, slave, func() { resetCalled = true })
	_ = resetCalled
	return e, slave, clk
}

func feed(e *Engine, bytes ...byte) {
	for _, b := range bytes {
		e.HandleRxByte(b)
	}
}

func TestAckRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine()
	feed(e, FrameByte, 'A', FrameByte)
	e.ProcessRx(1000)
	got, ok := e.TxQueue().Dequeue()
	if !ok {
		t.Fatalf("expected a TX frame")
	}
	want := []byte{0xAA, 0x55, 0x55, 'A', 0xAA}
	if string(got) != string(want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestWriteToSlave(t *testing.T) {
	e, slave, _ := newTestEngine()
	feed(e, FrameByte, 'W', 0x48, 0x01, 0x02, 0x03, FrameByte)
	e.ProcessRx(1000)
	if len(slave.writes) != 1 {
		t.Fatalf("expected one write, got %d", len(slave.writes))
	}
	want := []byte{0x48, 0x01, 0x02, 0x03}
	if string(slave.writes[0]) != string(want) {
		t.Fatalf("got % X, want % X", slave.writes[0], want)
	}
}

func TestLegacyVersion(t *testing.T) {
	e, _, _ := newTestEngine()
	e.SetVersion(VersionInfo{Major: 2, Minor: 5})
	feed(e, FrameByte, 'V', FrameByte)
	e.ProcessRx(1000)
	got, ok := e.TxQueue().Dequeue()
	if !ok {
		t.Fatalf("expected TX frame")
	}
	want := []byte{0xAA, 0x55, 0x55, 'V', 2, 5, 0x00, 0x0F, 0x42, 0x40, 0xAA}
	if string(got) != string(want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestRepeatedFrameBytesIdempotentFraming(t *testing.T) {
	e, _, _ := newTestEngine()
	// Two back-to-back start/end markers with no body between them must
	// reset the parser without corrupting the following valid frame.
	feed(e, FrameByte, FrameByte, FrameByte, 'A', FrameByte)
	e.ProcessRx(1000)
	got, ok := e.TxQueue().Dequeue()
	if !ok {
		t.Fatalf("expected a TX frame from the valid trailing frame")
	}
	if string(got) != string([]byte{0xAA, 0x55, 0x55, 'A', 0xAA}) {
		t.Fatalf("unexpected frame: % X", got)
	}
}

func TestEscapedDataByteRoundTrips(t *testing.T) {
	e, slave, _ := newTestEngine()
	// W 48 <data containing 0xAA, escaped as 55 AA>
	feed(e, FrameByte, 'W', 0x48, 0x55, 0xAA, FrameByte)
	e.ProcessRx(1000)
	if len(slave.writes) != 1 {
		t.Fatalf("expected one write")
	}
	want := []byte{0x48, 0xAA}
	if string(slave.writes[0]) != string(want) {
		t.Fatalf("got % X, want % X", slave.writes[0], want)
	}
}

func TestSlaveAckProbeSuccess(t *testing.T) {
	e, slave, _ := newTestEngine()
	slave.ackProbeResult = true
	feed(e, FrameByte, 'a', 0x48, FrameByte)
	e.ProcessRx(1000)
	got, ok := e.TxQueue().Dequeue()
	if !ok || got[3] != 'a' {
		t.Fatalf("expected an ack reply, got %v ok=%v", got, ok)
	}
}

func TestSlaveAckProbeFailureNoReply(t *testing.T) {
	e, slave, _ := newTestEngine()
	slave.ackProbeResult = false
	feed(e, FrameByte, 'a', 0x48, FrameByte)
	e.ProcessRx(1000)
	if _, ok := e.TxQueue().Dequeue(); ok {
		t.Fatalf("failed ack probe must not enqueue a reply")
	}
}

func TestErrorModeSetAndGet(t *testing.T) {
	e, _, _ := newTestEngine()
	feed(e, FrameByte, 'E', 1, FrameByte)
	e.ProcessRx(1000)
	if e.ErrorMode() != ErrorModeGlobal {
		t.Fatalf("expected Global mode after nonzero set")
	}
	got, _ := e.TxQueue().Dequeue()
	if len(got) < 5 || got[4] != byte(ErrorModeGlobal) {
		t.Fatalf("expected mode echoed in reply, got % X", got)
	}
}

func TestGlobalErrorFrame(t *testing.T) {
	e, _, _ := newTestEngine()
	e.SetErrorMode(ErrorModeGlobal)
	e.ReportError(errcode.FamilyI2C, errcode.NAK, 0x1234, 0)
	got, ok := e.TxQueue().Dequeue()
	if !ok {
		t.Fatalf("expected E frame")
	}
	if got[3] != 'E' {
		t.Fatalf("expected E command byte")
	}
}

func TestResetInvokesCallback(t *testing.T) {
	rx := byteq.New(make([]byte, 64), 4)
	tx := byteq.New(make([]byte, 64), 4)
	called := false
	e := NewEngine(rx, tx, &fakeClock{}, &fakeSlave{}, func() { called = true })
	feed(e, FrameByte, 'r', FrameByte)
	e.ProcessRx(1000)
	if !called {
		t.Fatalf("expected reset callback to fire")
	}
}
