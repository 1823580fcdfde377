// Package i2cstatus implements the packed I2C status bitset of spec §7/§9:
// a single backing byte with named accessor methods standing in for the
// source's anonymous-union bitfield. Only the wire format (one status mask
// byte) is preserved, not the field-layout trick.
package i2cstatus

// Status is the packed single-byte status mask attached to the I2C errors
// the engines report.
type Status uint8

const (
	bitNAK Status = 1 << iota
	bitTimeout
	bitLockedBus
	bitDriverError
	bitInvalidRead
	bitQueueFull
)

// Has reports whether every bit in mask is set.
func (s Status) Has(mask Status) bool { return s&mask == mask }

// Set returns s with every bit in mask set.
func (s Status) Set(mask Status) Status { return s | mask }

// Clear returns s with every bit in mask cleared.
func (s Status) Clear(mask Status) Status { return s &^ mask }

// ErrorOccurred reports whether any error bit is set.
func (s Status) ErrorOccurred() bool { return s != 0 }

// NAK reports the slave-NAK'd bit.
func (s Status) NAK() bool { return s.Has(bitNAK) }

// Timeout reports the transfer-timed-out bit.
func (s Status) Timeout() bool { return s.Has(bitTimeout) }

// LockedBus reports the bus-held-low bit.
func (s Status) LockedBus() bool { return s.Has(bitLockedBus) }

// DriverError reports the generic low-level driver failure bit.
func (s Status) DriverError() bool { return s.Has(bitDriverError) }

// InvalidRead reports the malformed-response bit.
func (s Status) InvalidRead() bool { return s.Has(bitInvalidRead) }

// QueueFull reports the capacity-exceeded bit.
func (s Status) QueueFull() bool { return s.Has(bitQueueFull) }

// WithNAK, WithTimeout, WithLockedBus, WithDriverError, WithInvalidRead and
// WithQueueFull set the corresponding bit and return the updated mask, for
// building a Status up at the call site that detected the condition.
func (s Status) WithNAK() Status         { return s.Set(bitNAK) }
func (s Status) WithTimeout() Status     { return s.Set(bitTimeout) }
func (s Status) WithLockedBus() Status   { return s.Set(bitLockedBus) }
func (s Status) WithDriverError() Status { return s.Set(bitDriverError) }
func (s Status) WithInvalidRead() Status { return s.Set(bitInvalidRead) }
func (s Status) WithQueueFull() Status   { return s.Set(bitQueueFull) }

// Byte returns the wire-ready single-byte mask.
func (s Status) Byte() uint8 { return uint8(s) }
