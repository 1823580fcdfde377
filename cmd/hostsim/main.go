// Command hostsim is the host computer's side of the wire protocol (spec
// §6): it opens a real serial device with github.com/tarm/serial, lets a
// developer type bridge commands the same shlex-tokenized shorthand
// bridge.InjectDebugLine accepts on the in-process host build ("W 48 01 02
// 03"), frames them onto the wire, and decodes whatever the firmware sends
// back. It exercises the same bytes a real host driver would, against
// physical or loopback hardware, rather than the in-memory fakes the
// bridge package's own tests use.
package main

import (
	"bufio"
	"os"

	"github.com/google/shlex"

	"i2cbridge-fw/uart"
	"i2cbridge-fw/x/fmtx"
	"i2cbridge-fw/x/strconvx"
)

func main() {
	if len(os.Args) < 2 {
		fmtx.Printf("usage: hostsim <serial-device> [baud]\n")
		os.Exit(2)
	}
	dev := os.Args[1]
	baud := 115200
	if len(os.Args) >= 3 {
		v, err := strconvx.ParseUint(os.Args[2], 10, 32)
		if err != nil {
			fmtx.Printf("hostsim: bad baud %q: %v\n", os.Args[2], err)
			os.Exit(2)
		}
		baud = int(v)
	}

	port, err := OpenPort(dev, baud)
	if err != nil {
		fmtx.Printf("hostsim: open %s: %v\n", dev, err)
		os.Exit(1)
	}
	defer port.Close()

	fmtx.Printf("hostsim: connected to %s at %d baud\n", dev, baud)
	fmtx.Printf("type a command line (e.g. \"W 48 01 02 03\"), or 'quit'\n")

	var dec Decoder
	scanner := bufio.NewScanner(os.Stdin)
	for {
		drainReplies(port, &dec)

		fmtx.Printf("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "quit" || line == "exit" {
			return
		}
		if line == "" {
			continue
		}
		if err := sendLine(port, line); err != nil {
			fmtx.Printf("hostsim: %v\n", err)
		}

		drainReplies(port, &dec)
	}
}

// sendLine tokenizes line the same way bridge.InjectDebugLine does on the
// in-process host build (one ASCII command byte, then hex data bytes) and
// frames it onto the wire with encodeCommand.
func sendLine(port *Port, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens[0]) != 1 {
		return fmtx.Errorf("command must be one ASCII byte, got %q", tokens[0])
	}
	data := make([]byte, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		v, err := strconvx.ParseUint(tok, 16, 8)
		if err != nil {
			return err
		}
		data = append(data, byte(v))
	}
	port.Send(encodeCommand(tokens[0][0], data))
	return nil
}

// drainReplies decodes and prints whatever frames have arrived since the
// last poll.
func drainReplies(port *Port, dec *Decoder) {
	for _, b := range port.PollRx() {
		frame, ok := dec.Feed(b)
		if !ok {
			continue
		}
		printFrame(frame)
	}
}

func printFrame(frame []byte) {
	if len(frame) == 0 {
		fmtx.Printf("< (empty frame)\n")
		return
	}
	if len(frame) >= 2 && frame[0] == uart.EscapeByte {
		frame = frame[1:] // skip the command marker kept by Decoder.Feed
	}
	cmd := uart.Command(frame[0])
	payload := frame[1:]
	if len(payload) == 0 {
		fmtx.Printf("< %c\n", byte(cmd))
		return
	}
	fmtx.Printf("< %c % X\n", byte(cmd), payload)
}
