// Package config loads and validates the bridge's startup configuration,
// generalizing the teacher's services/config package (embedded JSON,
// defaulted then validated) from per-device pub-sub topics to a single
// flat BridgeConfig struct (spec §3, §6, §9).
//
// The teacher parses embedded JSON with github.com/andreyvit/tinyjson,
// whose Raw/Value() API is built around lazily walking an unknown JSON
// document and republishing each top-level key as its own bus message; it
// has no notion of unmarshalling into a fixed Go struct. BridgeConfig is
// exactly the opposite shape, a small number of known, typed fields, so
// stdlib encoding/json.Unmarshal onto a pre-populated default struct is the
// better fit here and is what Load uses.
package config

import (
	"encoding/json"
	"errors"

	"i2cbridge-fw/uart"
	"i2cbridge-fw/x/mathx"
)

// Slave address plan (spec §3): 0x48 application, 0x58 bootloader.
const (
	DefaultAppAddr        = 0x48
	DefaultBootloaderAddr = 0x58
	DefaultBaudRate       = 1_000_000
	DefaultArenaWords     = 700
	DefaultIdleTimeoutMS  = 2000
	DefaultRecoveryCap    = 10
)

// BridgeConfig is the bridge's full startup configuration (spec §3 arena
// size; §4.D recovery cap; §4.E reset/idle timing; §7 default ErrorMode).
type BridgeConfig struct {
	BaudRate       uint32 `json:"baud_rate"`
	AppAddr        byte   `json:"app_addr"`
	BootloaderAddr byte   `json:"bootloader_addr"`
	ArenaWords     int    `json:"arena_words"`
	IdleTimeoutMS  uint32 `json:"idle_timeout_ms"`
	RecoveryCap    int    `json:"recovery_cap"`
	ErrorMode      string `json:"error_mode"` // "legacy", "global", or "cli"
}

// Default returns the configuration this firmware ships with absent any
// override, the same role cfgPico plays for the teacher's embedded config.
func Default() BridgeConfig {
	return BridgeConfig{
		BaudRate:       DefaultBaudRate,
		AppAddr:        DefaultAppAddr,
		BootloaderAddr: DefaultBootloaderAddr,
		ArenaWords:     DefaultArenaWords,
		IdleTimeoutMS:  DefaultIdleTimeoutMS,
		RecoveryCap:    DefaultRecoveryCap,
		ErrorMode:      "legacy",
	}
}

// Load starts from Default() and overlays raw JSON on top of it, so a
// partial document only overrides the fields it names — "apply only
// valid, complete config" in the sense the teacher's embedded-config
// publisher assumes, just enforced here by Validate rather than by
// per-key topic publication.
func Load(raw []byte) (BridgeConfig, error) {
	cfg := Default()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return BridgeConfig{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return BridgeConfig{}, err
	}
	return cfg, nil
}

var (
	errZeroBaud      = errors.New("config: baud_rate out of range")
	errArenaTooSmall = errors.New("config: arena_words must be large enough for the translator heap")
	errRecoveryCap   = errors.New("config: recovery_cap out of range")
	errSameAddr      = errors.New("config: app_addr and bootloader_addr must differ")
	errUnknownMode   = errors.New("config: error_mode must be legacy, global, or cli")
)

// minBaudRate/maxBaudRate bound the UART bit rates tinygo-uartx's RP2040
// divider can realize cleanly; legacyBaud (uart.legacyBaud, 1Mbaud) sits
// well inside this range.
const (
	minBaudRate = 1200
	maxBaudRate = 3_000_000
)

// maxRecoveryCap bounds how many locked-bus recovery attempts (spec §4.D
// scenario 4) run before the I2C engine reports a fatal error and the
// supervisor moves to its failed state; large values just delay that.
const maxRecoveryCap = 255

// Validate rejects a config that would leave the supervisor unable to
// activate even its translator heap, or that names unknown or out-of-range
// values.
func (c BridgeConfig) Validate() error {
	if !mathx.Between(c.BaudRate, uint32(minBaudRate), uint32(maxBaudRate)) {
		return errZeroBaud
	}
	if !mathx.Between(c.RecoveryCap, 1, maxRecoveryCap) {
		return errRecoveryCap
	}
	if c.AppAddr == c.BootloaderAddr {
		return errSameAddr
	}
	if c.ArenaWords < minArenaWords {
		return errArenaTooSmall
	}
	switch c.ErrorMode {
	case "legacy", "global", "cli":
	default:
		return errUnknownMode
	}
	return nil
}

// minArenaWords is the translator heap (spec §3): UART queues of 150+200
// words plus I2C queues of 150+65 words, 565 in all. The updater heap
// (550+8 = 558 words) is smaller, so any arena that passes fits either one.
const minArenaWords = 565

// ParseErrorMode maps the validated string field to uart.ErrorMode.
func (c BridgeConfig) ParseErrorMode() uart.ErrorMode {
	switch c.ErrorMode {
	case "global":
		return uart.ErrorModeGlobal
	case "cli":
		return uart.ErrorModeCli
	default:
		return uart.ErrorModeLegacy
	}
}
