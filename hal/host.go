//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	hostDisplayWidth  = 240
	hostDisplayHeight = 320
	hostLEDPin        = 25
)

// HostConfig selects the host stand-ins for the board peripherals.
type HostConfig struct {
	// UARTPort is a serial device path such as /dev/ttyUSB0. Empty uses stdin/stdout.
	UARTPort string
	UARTBaud int
	// USBAddr is the listen address of the websocket USB CDC stand-in. Empty disables it.
	USBAddr string
	// DisplayWidth and DisplayHeight size the emulated panel. Zero uses 240x320.
	DisplayWidth  int
	DisplayHeight int
	// NoDisplay leaves the panel unpopulated.
	NoDisplay bool
	// FlashPath is the file backing the emulated flash.
	FlashPath string
	// Verbosity is passed to commonlog.Configure.
	Verbosity int
	// FrameClock makes Clock advance by a fixed step per frame instead of wall time.
	FrameClock bool
	Hz         int
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	gpio   GPIO
	fb     *hostFramebuffer
	flash  *hostFlash
	uart   UART
	usb    PacketPort
	reboot *hostRebooter
	clock  *hostClock
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) (HAL, error) {
	commonlog.Configure(cfg.Verbosity, nil)
	logger := &hostLogger{log: commonlog.GetLogger("mlogpico")}

	led := &hostLED{logger: logger}
	var clock *hostClock
	if cfg.FrameClock {
		clock = newFrameClock(cfg.Hz)
	} else {
		clock = newWallClock()
	}

	pins := make([]GPIOPin, PinCount)
	for i := 2; i < PinCount; i++ {
		pins[i] = newVirtualPin(fmt.Sprintf("GP%d", i), GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown)
	}
	pins[hostLEDPin] = newLEDPin("LED", led)
	// Test signals for input programs.
	pins[26] = newSignalPin("SIG1HZ", clock.now, time.Second, 500*time.Millisecond)
	pins[27] = newSignalPin("SIG5HZ", clock.now, 200*time.Millisecond, 100*time.Millisecond)

	flash, err := newHostFlash(cfg.FlashPath)
	if err != nil {
		return nil, err
	}
	uart, err := newHostUART(cfg.UARTPort, cfg.UARTBaud)
	if err != nil {
		flash.close()
		return nil, err
	}

	var usb PacketPort = disconnectedPort{}
	if cfg.USBAddr != "" {
		ws, err := newHostUSB(cfg.USBAddr, logger)
		if err != nil {
			_ = uart.Close()
			flash.close()
			return nil, err
		}
		usb = ws
	}

	var fb *hostFramebuffer
	if !cfg.NoDisplay {
		w, h := cfg.DisplayWidth, cfg.DisplayHeight
		if w <= 0 || h <= 0 {
			w, h = hostDisplayWidth, hostDisplayHeight
		}
		fb = newHostFramebuffer(w, h)
	}

	return &hostHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO(pins),
		fb:     fb,
		flash:  flash,
		uart:   uart,
		usb:    usb,
		reboot: &hostRebooter{logger: logger},
		clock:  clock,
	}, nil
}

func (h *hostHAL) Logger() Logger              { return h.logger }
func (h *hostHAL) LED() LED                    { return h.led }
func (h *hostHAL) GPIO() GPIO                  { return h.gpio }
func (h *hostHAL) Display() Display            { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Flash() Flash                { return h.flash }
func (h *hostHAL) UART() UART                  { return h.uart }
func (h *hostHAL) USB() PacketPort             { return h.usb }
func (h *hostHAL) Rebooter() Rebooter          { return h.reboot }
func (h *hostHAL) Clock() func() time.Duration { return h.clock.now }

func (h *hostHAL) close() {
	if c, ok := h.uart.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := h.usb.(io.Closer); ok {
		_ = c.Close()
	}
	h.flash.close()
}

// disconnectedPort is the USB stand-in when no host address is configured.
type disconnectedPort struct{}

func (disconnectedPort) Connected() bool                         { return false }
func (disconnectedPort) MaxPacketSize() int                      { return 64 }
func (disconnectedPort) TryWritePacket([]byte) (bool, error)     { return false, nil }
func (disconnectedPort) TryReadPacket([]byte) (int, bool, error) { return 0, false, nil }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer {
	if d.fb == nil {
		return nil
	}
	return d.fb
}

type hostLogger struct {
	log commonlog.Logger
}

func (l *hostLogger) WriteLineString(s string) {
	l.log.Info(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.log.Info(string(b))
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() { l.set(true) }
func (l *hostLED) Low()  { l.set(false) }

func (l *hostLED) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on == on {
		return
	}
	l.on = on
	if on {
		l.logger.log.Debug("led: HIGH")
	} else {
		l.logger.log.Debug("led: LOW")
	}
}

// hostRebooter unwinds the runner with a panic carrying ErrReboot.
type hostRebooter struct {
	logger *hostLogger
}

func (r *hostRebooter) Reset() {
	r.logger.log.Notice("reset")
	panic(ErrReboot{})
}

func (r *hostRebooter) EnterBootloader() {
	r.logger.log.Notice("entering bootloader")
	panic(ErrReboot{Bootloader: true})
}

// recoverReboot converts a reboot panic into an error. Other panics are re-raised.
func recoverReboot(err *error) {
	v := recover()
	if v == nil {
		return
	}
	if rb, ok := v.(ErrReboot); ok {
		*err = rb
		return
	}
	panic(v)
}

// ExitCode maps a runner error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, err)
	if rb, ok := err.(ErrReboot); ok {
		if rb.Bootloader {
			return 3
		}
		return 2
	}
	return 1
}
