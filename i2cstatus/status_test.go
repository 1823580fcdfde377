package i2cstatus

import "testing"

func TestZeroValueHasNoError(t *testing.T) {
	var s Status
	if s.ErrorOccurred() {
		t.Fatalf("zero status must report no error")
	}
}

func TestSetAndHasIndividualBits(t *testing.T) {
	s := Status(0).WithNAK().WithTimeout()
	if !s.NAK() || !s.Timeout() {
		t.Fatalf("expected NAK and Timeout set, got %08b", s)
	}
	if s.LockedBus() || s.DriverError() || s.InvalidRead() || s.QueueFull() {
		t.Fatalf("unexpected bit set: %08b", s)
	}
	if !s.ErrorOccurred() {
		t.Fatalf("status with bits set must report an error occurred")
	}
}

func TestClearRemovesOnlyTargetedBit(t *testing.T) {
	s := Status(0).WithNAK().WithLockedBus()
	s = s.Clear(bitNAK)
	if s.NAK() {
		t.Fatalf("NAK bit should have been cleared")
	}
	if !s.LockedBus() {
		t.Fatalf("LockedBus bit should remain set")
	}
}

func TestByteRoundTrip(t *testing.T) {
	s := Status(0).WithQueueFull().WithInvalidRead()
	if Status(s.Byte()) != s {
		t.Fatalf("byte round-trip mismatch")
	}
}
