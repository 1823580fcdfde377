//go:build !rp2040 && !rp2350

package bridge

import (
	"github.com/google/shlex"

	"i2cbridge-fw/x/strconvx"
)

// InjectDebugLine tokenizes a human-typed line ("W 48 01 02 03") with
// shlex and replays it through the UART engine's normal wire path, the Cli
// ErrorMode bring-up convenience described in SPEC_FULL.md. shlex gives
// quoting/escaping for free, the same reason the teacher's tooling reaches
// for it rather than strings.Fields.
func (s *Supervisor) InjectDebugLine(line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens[0]) != 1 {
		return errInvalidDebugCommand
	}
	data := make([]byte, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		v, err := strconvx.ParseUint(tok, 16, 8)
		if err != nil {
			return err
		}
		data = append(data, byte(v))
	}
	s.feedDebugFrame(tokens[0][0], data)
	return nil
}
