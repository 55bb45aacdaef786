//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
	"time"
)

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// uartSerial exposes a hardware UART. Read drains the RX ring and never blocks.
type uartSerial struct {
	uart *machine.UART
}

func (s *uartSerial) Buffered() int {
	if s.uart == nil {
		return 0
	}
	return s.uart.Buffered()
}

func (s *uartSerial) Read(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	if s.uart.Buffered() == 0 {
		return 0, nil
	}
	return s.uart.Read(p)
}

func (s *uartSerial) Write(p []byte) (int, error) {
	if s.uart == nil {
		return 0, ErrNotImplemented
	}
	return s.uart.Write(p)
}

// machinePin is a bank GPIO routed straight to the RP2040 pad.
type machinePin struct {
	name string
	pin  machine.Pin
	mode GPIOMode
}

func newMachinePin(name string, pin machine.Pin) *machinePin {
	p := &machinePin{name: name, pin: pin, mode: GPIOModeInput}
	pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	return p
}

func (p *machinePin) Name() string { return p.name }
func (p *machinePin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	cfg := machine.PinConfig{Mode: machine.PinInput}
	switch {
	case mode == GPIOModeOutput:
		cfg.Mode = machine.PinOutput
	case pull == GPIOPullUp:
		cfg.Mode = machine.PinInputPullup
	case pull == GPIOPullDown:
		cfg.Mode = machine.PinInputPulldown
	}
	p.pin.Configure(cfg)
	p.mode = mode
	return nil
}

func (p *machinePin) Read() (bool, error) { return p.pin.Get(), nil }

func (p *machinePin) Write(level bool) error {
	p.pin.Set(level)
	return nil
}

// usbPort frames USB CDC traffic as packets. The TinyGo CDC driver owns the
// endpoint buffers, so a packet write hands bytes to it whole.
type usbPort struct {
	cdc machine.Serialer
}

const usbPacketSize = 64

func (u usbPort) Connected() bool   { return u.cdc != nil && u.cdc.DTR() }
func (u usbPort) MaxPacketSize() int { return usbPacketSize }

func (u usbPort) TryWritePacket(p []byte) (bool, error) {
	if !u.Connected() {
		return false, nil
	}
	// The CDC driver buffers bytes and frames packets itself; it has no
	// call for an explicit zero-length packet. The empty packet that ends a
	// transfer is accepted here and dropped, so on the board the host sees
	// the end of a 64-byte multiple only when the driver flushes.
	if len(p) == 0 {
		return true, nil
	}
	if _, err := u.cdc.Write(p); err != nil {
		return false, err
	}
	return true, nil
}

func (u usbPort) TryReadPacket(p []byte) (int, bool, error) {
	if u.cdc == nil || u.cdc.Buffered() == 0 {
		return 0, false, nil
	}
	n := 0
	for n < len(p) && n < usbPacketSize && u.cdc.Buffered() > 0 {
		b, err := u.cdc.ReadByte()
		if err != nil {
			return n, n > 0, err
		}
		p[n] = b
		n++
	}
	return n, true, nil
}

// watchdogRebooter resets through the watchdog and reaches the bootloader
// through the boot ROM.
type watchdogRebooter struct{}

func (watchdogRebooter) Reset() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
	}
}

func (watchdogRebooter) EnterBootloader() {
	machine.EnterBootloader()
	for {
	}
}

func monotonicClock() func() time.Duration {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}
