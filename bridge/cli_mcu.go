//go:build rp2040 || rp2350

package bridge

// InjectDebugLine is unavailable on the MCU build: tokenizing a debug
// command line is a host bring-up convenience only, and the MCU build
// never imports shlex (SPEC_FULL.md supplement 1).
func (s *Supervisor) InjectDebugLine(line string) error {
	return errDebugUnsupportedOnMCU
}
