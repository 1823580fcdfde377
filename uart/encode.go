package uart

// pending record wire layout used internally between EnqueueCommand/
// EnqueueRaw and the registered encode transform: byte 0 is 1 if a command
// byte is present, byte 1 is the command byte (ignored if byte 0 is 0),
// the remainder is the data payload.
func marshalPending(hasCommand bool, command byte, data []byte) []byte {
	buf := make([]byte, 2+len(data))
	if hasCommand {
		buf[0] = 1
		buf[1] = command
	}
	copy(buf[2:], data)
	return buf
}

// EnqueueCommand frames and queues a reply carrying command plus an
// optional data payload.
func (e *Engine) EnqueueCommand(command Command, data []byte) bool {
	return e.tx.Enqueue(marshalPending(true, byte(command), data))
}

// EnqueueRaw frames and queues data with no command byte, used for the
// asynchronous slave-initiated push described in spec §4.D scenario 3: the
// I2C engine's rx_callback forwards slave data with no host command
// attached.
func (e *Engine) EnqueueRaw(data []byte) bool {
	return e.tx.Enqueue(marshalPending(false, 0, data))
}

// OnSlaveData implements the I2C engine's RxCallback capability.
func (e *Engine) OnSlaveData(data []byte) { e.EnqueueRaw(data) }

// encodeTxRecord is the TX queue's registered encode-on-enqueue transform
// (spec §4.C transmit encoder): it turns a marshalPending record into
// framed wire bytes.
func encodeTxRecord(dst, src []byte) int {
	if len(src) < 2 {
		return 0
	}
	hasCommand := src[0] != 0
	command := src[1]
	data := src[2:]

	n := 0
	put := func(b byte) bool {
		if n >= len(dst) {
			return false
		}
		dst[n] = b
		n++
		return true
	}

	if !put(FrameByte) {
		return 0
	}
	if hasCommand {
		if !put(EscapeByte) || !put(EscapeByte) || !put(command) {
			return 0
		}
	}
	for _, b := range data {
		if b == FrameByte || b == EscapeByte {
			if !put(EscapeByte) {
				return 0
			}
		}
		if !put(b) {
			return 0
		}
	}
	if !put(FrameByte) {
		return 0
	}
	return n
}
