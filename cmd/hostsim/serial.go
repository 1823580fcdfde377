package main

import (
	"time"

	"github.com/tarm/serial"

	"i2cbridge-fw/x/fmtx"
	"i2cbridge-fw/x/shmring"
)

// Port is the host computer's side of the bridge's physical UART link
// (spec §6), opened with tarm/serial the same way the pack's
// driver/mjolnir/device.go opens a controller's serial connection.
type Port struct {
	port *serial.Port

	rxH, txH shmring.Handle
	rx, tx   *shmring.Ring
	quit     chan struct{}
}

// OpenPort opens dev at baud and starts the rx/tx pump goroutines. The
// shmring rings decouple the blocking serial.Port reads/writes from the
// CLI's single-threaded command loop, the same producer/goroutine-consumer
// split, including the register-on-open/Close-on-shutdown ring lifecycle,
// the teacher's services/hal/devices/serial_raw package applies between a
// device's I/O goroutines and its session consumer.
func OpenPort(dev string, baud int) (*Port, error) {
	cfg := &serial.Config{Name: dev, Baud: baud, ReadTimeout: 50 * time.Millisecond}
	sp, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	rxH, rxR := shmring.NewRegistered(4096)
	txH, txR := shmring.NewRegistered(4096)
	p := &Port{
		port: sp,
		rxH:  rxH,
		txH:  txH,
		rx:   rxR,
		tx:   txR,
		quit: make(chan struct{}),
	}
	go p.rxLoop()
	go p.txLoop()
	return p, nil
}

func (p *Port) rxLoop() {
	tmp := make([]byte, 256)
	for {
		select {
		case <-p.quit:
			return
		default:
		}
		n, err := p.port.Read(tmp)
		if n > 0 {
			if w := p.rx.TryWriteFrom(tmp[:n]); w < n {
				fmtx.Printf("hostsim: rx overflow, lost %d bytes\n", n-w)
			}
		}
		if err != nil {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (p *Port) txLoop() {
	tmp := make([]byte, 256)
	for {
		select {
		case <-p.tx.Readable():
		case <-p.quit:
			return
		}
		for {
			n := p.tx.TryReadInto(tmp)
			if n == 0 {
				break
			}
			_, _ = p.port.Write(tmp[:n])
		}
	}
}

// Send queues framed bytes for transmission to the device.
func (p *Port) Send(frame []byte) {
	if w := p.tx.TryWriteFrom(frame); w < len(frame) {
		fmtx.Printf("hostsim: tx overflow, lost %d bytes\n", len(frame)-w)
	}
}

// PollRx drains whatever has arrived from the device since the last call.
func (p *Port) PollRx() []byte {
	var out []byte
	var tmp [256]byte
	for {
		n := p.rx.TryReadInto(tmp[:])
		if n == 0 {
			return out
		}
		out = append(out, tmp[:n]...)
	}
}

// Close stops the pump goroutines, deregisters both rings, and closes the
// underlying port.
func (p *Port) Close() error {
	close(p.quit)
	shmring.Close(p.rxH)
	shmring.Close(p.txH)
	return p.port.Close()
}
