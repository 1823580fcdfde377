// Package callsite implements the 16-bit packed error-tracing identifier of
// spec §3: high byte names the top-level public entry point, low byte packs
// a 4-bit sub-call index, 2 bits of private-path flags and a 2-bit
// low-level call code. An ID is built at each site that reports an error,
// naming its public entry and the branch that issued the failing call
// (spec §9), so a failing status can be traced without a stack trace.
package callsite

// ID is the packed 16-bit callsite identifier.
type ID uint16

// Entry is a top-level public entry point, stored in the high byte.
type Entry uint8

const (
	EntryNone Entry = iota
	EntryInit
	EntryUARTProcessRx
	EntryUARTProcessTx
	EntryI2CProcess
	EntryBridgeTick
	EntryActivateTranslator
	EntryActivateUpdater
	EntryDeactivate
)

// Make packs entry, a 4-bit subCall index, 2 bits of private-path flags and
// a 2-bit low-level call code into a single ID. Out-of-range fields are
// masked to their bit width rather than rejected, matching the packed
// bitfield's fixed-width hardware semantics.
func Make(entry Entry, subCall uint8, flags uint8, lowLevel uint8) ID {
	low := (subCall&0x0F)<<4 | (flags&0x03)<<2 | (lowLevel & 0x03)
	return ID(uint16(entry)<<8 | uint16(low))
}

// Entry returns the high-byte top-level entry point.
func (id ID) Entry() Entry { return Entry(id >> 8) }

// SubCall returns the 4-bit sub-call index.
func (id ID) SubCall() uint8 { return uint8(id>>4) & 0x0F }

// Flags returns the 2-bit private-path flags.
func (id ID) Flags() uint8 { return uint8(id>>2) & 0x03 }

// LowLevel returns the 2-bit low-level call code.
func (id ID) LowLevel() uint8 { return uint8(id) & 0x03 }

// Uint16 returns the wire-ready big-endian-agnostic packed value.
func (id ID) Uint16() uint16 { return uint16(id) }
