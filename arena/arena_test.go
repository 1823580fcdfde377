package arena

import "testing"

func TestTakeClaimsAndShrinksFreeWords(t *testing.T) {
	a := New(10)
	if a.Words() != 10 || a.FreeWords() != 10 {
		t.Fatalf("expected 10 total/free words, got %d/%d", a.Words(), a.FreeWords())
	}
	b, ok := a.Take(4)
	if !ok || len(b) != 4*wordSize {
		t.Fatalf("take(4) failed or wrong length: %v %d", ok, len(b))
	}
	if a.FreeWords() != 6 {
		t.Fatalf("expected 6 free words remaining, got %d", a.FreeWords())
	}
}

func TestTakeRejectsOverCapacity(t *testing.T) {
	a := New(4)
	if _, ok := a.Take(5); ok {
		t.Fatalf("take beyond capacity must fail")
	}
	if a.FreeWords() != 4 {
		t.Fatalf("failed take must not change free words")
	}
}

func TestReleaseReturnsWordsToPool(t *testing.T) {
	a := New(8)
	a.Take(3)
	a.Take(2)
	if !a.Release(2) {
		t.Fatalf("release of last-taken slice should succeed")
	}
	if a.FreeWords() != 5 {
		t.Fatalf("expected 5 free words after release, got %d", a.FreeWords())
	}
	if _, ok := a.Take(6); ok {
		t.Fatalf("take beyond the now-5 free words must fail")
	}
	if _, ok := a.Take(5); !ok {
		t.Fatalf("take of exactly the reclaimed space should succeed")
	}
}

func TestReleaseRejectsMoreThanUsed(t *testing.T) {
	a := New(4)
	a.Take(1)
	if a.Release(2) {
		t.Fatalf("release of more words than are in use must fail")
	}
}

func TestResetReclaimsEverything(t *testing.T) {
	a := New(4)
	a.Take(4)
	if a.FreeWords() != 0 {
		t.Fatalf("arena should be fully claimed")
	}
	a.Reset()
	if a.FreeWords() != 4 {
		t.Fatalf("reset must reclaim all words")
	}
}

func TestModeExclusiveActivateDeactivateCycle(t *testing.T) {
	a := New(20)
	i2cHeap, ok := a.Take(12)
	if !ok {
		t.Fatalf("translator i2c heap activation failed")
	}
	uartHeap, ok := a.Take(8)
	if !ok {
		t.Fatalf("translator uart heap activation failed")
	}
	if a.FreeWords() != 0 {
		t.Fatalf("translator mode should consume the whole arena")
	}
	// deactivate: release both heaps, most recently taken first
	if !a.Release(len(uartHeap) / wordSize) {
		t.Fatalf("uart heap release failed")
	}
	if !a.Release(len(i2cHeap) / wordSize) {
		t.Fatalf("i2c heap release failed")
	}
	if a.FreeWords() != 20 {
		t.Fatalf("expected full reclaim after deactivation, got %d free", a.FreeWords())
	}
	// a new mode may now activate over the same words
	if _, ok := a.Take(20); !ok {
		t.Fatalf("updater mode should be able to claim the reclaimed arena")
	}
}
