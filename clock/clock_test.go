package clock

import "testing"

type fakeSource struct{ ms uint32 }

func (f *fakeSource) NowMS() uint32 { return f.ms }

func TestAlarmSingleNotificationFiresOnceAndDisarms(t *testing.T) {
	clk := &fakeSource{ms: 1000}
	var a Alarm
	a.Arm(clk, 50, SingleNotification)

	clk.ms = 1030
	if a.HasElapsed(clk) {
		t.Fatalf("expected not yet elapsed at +30ms of a 50ms alarm")
	}

	clk.ms = 1050
	if !a.HasElapsed(clk) {
		t.Fatalf("expected elapsed at +50ms")
	}
	if a.Armed() {
		t.Fatalf("single-notification alarm must disarm after firing")
	}
	if a.HasElapsed(clk) {
		t.Fatalf("disarmed alarm must never report elapsed again")
	}
}

func TestAlarmContinuousNotificationStaysArmedAndRefires(t *testing.T) {
	clk := &fakeSource{ms: 0}
	var a Alarm
	a.Arm(clk, 10, ContinuousNotification)

	clk.ms = 10
	if !a.HasElapsed(clk) {
		t.Fatalf("expected elapsed at duration boundary")
	}
	if !a.Armed() {
		t.Fatalf("continuous alarm must remain armed")
	}
	// duration_ms was reset to 0 on fire, so it reports elapsed immediately again
	// until re-armed/snoozed.
	if !a.HasElapsed(clk) {
		t.Fatalf("continuous alarm with duration_ms==0 must report elapsed")
	}

	a.Snooze(20)
	clk.ms = 15
	if a.HasElapsed(clk) {
		t.Fatalf("snoozed alarm should not have elapsed yet")
	}
	clk.ms = 30
	if !a.HasElapsed(clk) {
		t.Fatalf("expected elapsed after snoozed duration")
	}
}

func TestAlarmZeroDurationMeansAlreadyElapsed(t *testing.T) {
	clk := &fakeSource{ms: 5}
	var a Alarm
	a.Arm(clk, 0, SingleNotification)
	if !a.HasElapsed(clk) {
		t.Fatalf("duration_ms==0 on an armed alarm must mean already elapsed")
	}
}

func TestAlarmDisarmedNeverElapses(t *testing.T) {
	clk := &fakeSource{ms: 100}
	var a Alarm
	if a.HasElapsed(clk) {
		t.Fatalf("zero-value alarm must not be armed")
	}
	a.Arm(clk, 5, SingleNotification)
	a.Disarm()
	clk.ms = 1000
	if a.HasElapsed(clk) {
		t.Fatalf("disarmed alarm must never report elapsed")
	}
}

func TestAlarmSnoozeSaturatesAtUint32Max(t *testing.T) {
	clk := &fakeSource{ms: 0}
	var a Alarm
	a.Arm(clk, ^uint32(0)-5, SingleNotification)
	a.Snooze(100)
	if a.durationMS != ^uint32(0) {
		t.Fatalf("snooze must saturate at uint32 max, got %d", a.durationMS)
	}
}

func TestAlarmWrapSafeComparison(t *testing.T) {
	// start_ms close to wraparound; now_ms wraps past zero.
	clk := &fakeSource{ms: ^uint32(0) - 10}
	var a Alarm
	a.Arm(clk, 20, SingleNotification)

	clk.ms = 15 // wrapped past 0, 26ms after start
	if !a.HasElapsed(clk) {
		t.Fatalf("expected wrap-safe elapsed computation to fire")
	}
}

func TestSnoozeOnDisarmedIsNoop(t *testing.T) {
	var a Alarm
	a.Snooze(10)
	if a.durationMS != 0 || a.armed {
		t.Fatalf("snooze on disarmed alarm must be a no-op")
	}
}
