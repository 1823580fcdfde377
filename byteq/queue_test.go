package byteq

import "testing"

func TestEmptyAndFullInvariants(t *testing.T) {
	q := New(make([]byte, 64), 2)
	if !q.IsEmpty() || q.IsFull() {
		t.Fatalf("new queue must be empty and not full")
	}
	if !q.Enqueue([]byte("a")) {
		t.Fatalf("enqueue should succeed")
	}
	if q.IsEmpty() || q.IsFull() {
		t.Fatalf("queue with 1/2 elements must be neither empty nor full")
	}
	if !q.Enqueue([]byte("b")) {
		t.Fatalf("enqueue should succeed")
	}
	if !q.IsFull() {
		t.Fatalf("queue at max_elements must report full")
	}
	if q.Enqueue([]byte("c")) {
		t.Fatalf("enqueue on a full queue must fail")
	}
}

func TestRoundTrip(t *testing.T) {
	q := New(make([]byte, 64), 4)
	want := [][]byte{[]byte("hello"), []byte("world"), []byte("!")}
	for _, w := range want {
		if !q.Enqueue(w) {
			t.Fatalf("enqueue %q failed", w)
		}
	}
	for _, w := range want {
		got, ok := q.Dequeue()
		if !ok {
			t.Fatalf("dequeue failed, expected %q", w)
		}
		if string(got) != string(w) {
			t.Fatalf("got %q, want %q", got, w)
		}
	}
	if !q.IsEmpty() {
		t.Fatalf("queue must be empty after draining all records")
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	q := New(make([]byte, 64), 2)
	q.Enqueue([]byte("x"))
	p1, ok := q.Peek()
	if !ok || string(p1) != "x" {
		t.Fatalf("peek failed")
	}
	p2, ok := q.Peek()
	if !ok || string(p2) != "x" {
		t.Fatalf("second peek must return same head")
	}
	if q.IsEmpty() {
		t.Fatalf("peek must not consume")
	}
}

func TestByteStreamingEquivalentToWholeEnqueue(t *testing.T) {
	whole := New(make([]byte, 64), 2)
	whole.Enqueue([]byte("abc"))

	streamed := New(make([]byte, 64), 2)
	streamed.EnqueueByte('a', false)
	streamed.EnqueueByte('b', false)
	streamed.EnqueueByte('c', true)

	w, _ := whole.Dequeue()
	s, _ := streamed.Dequeue()
	if string(w) != string(s) {
		t.Fatalf("streamed enqueue %q != whole enqueue %q", s, w)
	}
}

func TestEnqueueByteOverflowResetsPending(t *testing.T) {
	q := New(make([]byte, 2), 2)
	if !q.EnqueueByte('a', false) {
		t.Fatalf("first byte should fit")
	}
	if !q.EnqueueByte('b', false) {
		t.Fatalf("second byte should fit")
	}
	if q.EnqueueByte('c', true) {
		t.Fatalf("third byte must overflow the 2-byte arena")
	}
	if q.pendingSize != 0 || q.pendingOffset != 0 {
		t.Fatalf("pending state must reset to 0 after overflow")
	}
	if !q.IsEmpty() {
		t.Fatalf("failed streamed record must not be committed")
	}
}

func TestFinalizeWithNoPendingBytesFails(t *testing.T) {
	q := New(make([]byte, 16), 2)
	if q.Finalize() {
		t.Fatalf("finalize with no pending bytes must fail")
	}
}

func TestEnqueueRejectsZeroLength(t *testing.T) {
	q := New(make([]byte, 16), 2)
	if q.Enqueue(nil) {
		t.Fatalf("enqueue of zero-length record must fail")
	}
}

func TestOverflowLeavesStateUnchanged(t *testing.T) {
	q := New(make([]byte, 4), 2)
	if !q.Enqueue([]byte("ab")) {
		t.Fatalf("first enqueue should fit")
	}
	before := q.size
	if q.Enqueue([]byte("xyz")) {
		t.Fatalf("enqueue larger than remaining arena must fail")
	}
	if q.size != before {
		t.Fatalf("failed enqueue must not change element count")
	}
	got, ok := q.Dequeue()
	if !ok || string(got) != "ab" {
		t.Fatalf("queue state corrupted by failed enqueue, got %q", got)
	}
}

func TestArenaReclaimAfterFullDrain(t *testing.T) {
	q := New(make([]byte, 4), 2)
	if !q.Enqueue([]byte("abc")) {
		t.Fatalf("enqueue should fit")
	}
	q.Dequeue()
	// Arena is reclaimed to offset 0 only once the queue is fully empty, so
	// a second same-size record must still fit.
	if !q.Enqueue([]byte("def")) {
		t.Fatalf("enqueue after full drain should reuse reclaimed arena space")
	}
}

func TestEncodeCallbackAppliedOnEnqueue(t *testing.T) {
	q := New(make([]byte, 64), 2)
	q.RegisterEncodeCallback(func(dst, src []byte) int {
		for i, b := range src {
			dst[i] = b + 1
		}
		return len(src)
	})
	if !q.Enqueue([]byte("aaa")) {
		t.Fatalf("encoded enqueue failed")
	}
	got, _ := q.Dequeue()
	if string(got) != "bbb" {
		t.Fatalf("got %q, want bbb", got)
	}
	q.DeregisterEncodeCallback()
	q.Enqueue([]byte("zzz"))
	got, _ = q.Dequeue()
	if string(got) != "zzz" {
		t.Fatalf("after deregister, encode must no longer apply, got %q", got)
	}
}

func TestClearResetsQueue(t *testing.T) {
	q := New(make([]byte, 16), 2)
	q.Enqueue([]byte("x"))
	q.Clear()
	if !q.IsEmpty() {
		t.Fatalf("clear must empty the queue")
	}
	if !q.Enqueue([]byte("y")) {
		t.Fatalf("enqueue after clear should succeed")
	}
}
