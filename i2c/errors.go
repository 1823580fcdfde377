package i2c

import "errors"

// ErrBusBusy and ErrNotReady are the sentinel errors a Bus implementation
// must return for the corresponding vendor-driver conditions (spec §4.D
// locked-bus detection); the platform adapter is responsible for
// translating whatever the concrete vendor driver returns into one of
// these two.
var (
	ErrBusBusy  = errors.New("i2c: bus busy")
	ErrNotReady = errors.New("i2c: not ready")
)

func isBusyErr(err error) bool {
	return errors.Is(err, ErrBusBusy) || errors.Is(err, ErrNotReady)
}
