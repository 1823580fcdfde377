// Package byteq implements the fixed-capacity, single-producer /
// single-consumer byte-region queue of spec §3/§4.B: a ring of
// (offset, size) element records backed by a shared arena slice, with
// optional streaming byte-at-a-time enqueue and an optional encode-on-enqueue
// transform.
//
// The arena is consumed as a simple bump allocator: the append offset for
// the next record is always immediately after the previous tail record, and
// is reclaimed (reset to 0) only when the queue drains completely.
package byteq

// EncodeFunc transforms src into dst, returning the number of bytes written
// to dst, or 0 if the transform could not fit its output (an overflow).
// dst is already sized to the remaining arena capacity.
type EncodeFunc func(dst, src []byte) int

type element struct {
	offset int
	size   int
}

// Queue is a fixed-capacity record queue over a caller-owned arena slice.
type Queue struct {
	data []byte
	ring []element
	head int
	tail int
	size int

	pendingOffset int
	pendingSize   int

	freeOffset int

	encode EncodeFunc
}

// New builds a queue over data (the arena slice it owns) with room for
// maxElements records.
func New(data []byte, maxElements int) *Queue {
	return &Queue{
		data: data,
		ring: make([]element, maxElements),
	}
}

// Clear logically empties the queue. The arena is not zeroed.
func (q *Queue) Clear() {
	q.head, q.tail, q.size = 0, 0, 0
	q.pendingOffset, q.pendingSize = 0, 0
	q.freeOffset = 0
}

// IsFull reports size == max_elements.
func (q *Queue) IsFull() bool { return q.size == len(q.ring) }

// IsEmpty reports size == 0.
func (q *Queue) IsEmpty() bool { return q.size == 0 }

// RegisterEncodeCallback installs the enqueue transform.
func (q *Queue) RegisterEncodeCallback(f EncodeFunc) { q.encode = f }

// DeregisterEncodeCallback removes the enqueue transform.
func (q *Queue) DeregisterEncodeCallback() { q.encode = nil }

// Peek returns the head record's bytes without dequeuing it. The returned
// slice aliases the arena and is only valid until the next mutating call.
func (q *Queue) Peek() ([]byte, bool) {
	if q.IsEmpty() {
		return nil, false
	}
	e := q.ring[q.head]
	return q.data[e.offset : e.offset+e.size], true
}

// Dequeue removes and returns the head record.
func (q *Queue) Dequeue() ([]byte, bool) {
	if q.IsEmpty() {
		return nil, false
	}
	e := q.ring[q.head]
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	if q.size == 0 {
		// Whole queue drained: reclaim the arena from the front.
		q.freeOffset = 0
	}
	return q.data[e.offset : e.offset+e.size], true
}

// Enqueue appends src as a single whole record. It rejects a full queue or
// a zero-length src. pending_partial_size is always reset to 0, win or lose.
func (q *Queue) Enqueue(src []byte) bool {
	defer func() { q.pendingOffset, q.pendingSize = 0, 0 }()

	if q.IsFull() || len(src) == 0 {
		return false
	}
	offset := q.freeOffset
	effLen, ok := q.write(offset, src)
	if !ok {
		return false
	}
	q.commit(offset, effLen)
	return true
}

// EnqueueByte streams one byte into the record currently being built. If
// last is true, it finalizes the record. Returns false on overflow (the
// byte, or the finalize, could not be committed).
func (q *Queue) EnqueueByte(b byte, last bool) bool {
	if q.pendingSize == 0 {
		q.pendingOffset = q.freeOffset
	}
	n, ok := q.write(q.pendingOffset+q.pendingSize, []byte{b})
	if !ok {
		q.pendingOffset, q.pendingSize = 0, 0
		return false
	}
	q.pendingSize += n
	if last {
		return q.Finalize()
	}
	return true
}

// Finalize commits the in-progress streamed record. Resets
// pending_partial_size to 0 regardless of outcome.
func (q *Queue) Finalize() bool {
	defer func() { q.pendingOffset, q.pendingSize = 0, 0 }()

	if q.IsFull() || q.pendingSize == 0 {
		return false
	}
	q.commit(q.pendingOffset, q.pendingSize)
	return true
}

func (q *Queue) commit(offset, size int) {
	q.ring[q.tail] = element{offset: offset, size: size}
	q.tail = (q.tail + 1) % len(q.ring)
	q.size++
	q.freeOffset = offset + size
}

// write appends src at offset, applying the encode transform if registered,
// and returns the effective written length. It never commits a ring
// element; callers decide when to commit.
func (q *Queue) write(offset int, src []byte) (int, bool) {
	if offset > len(q.data) {
		return 0, false
	}
	dst := q.data[offset:]
	if q.encode != nil {
		n := q.encode(dst, src)
		if n <= 0 {
			return 0, false
		}
		return n, true
	}
	if len(src) > len(dst) {
		return 0, false
	}
	copy(dst, src)
	return len(src), true
}
