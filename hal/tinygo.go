//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	gpio   GPIO
	fb     Framebuffer
	flash  Flash
	uart   *uartSerial
	usb    usbPort
	clock  func() time.Duration
}

// New returns a Raspberry Pi Pico HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Display: ST7789 240x320 on SPI1, GP8-GP13.
// GP0, GP1 and GP8-GP13 are not exposed through GPIO.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pinLED{pin: ledPin}

	pins := make([]GPIOPin, PinCount)
	for i := 0; i < PinCount; i++ {
		switch {
		case i <= 1, i >= 8 && i <= 13:
			continue
		case machine.Pin(i) == machine.LED:
			pins[i] = newLEDPin("LED", led)
		default:
			pins[i] = newMachinePin(fmt.Sprintf("GP%d", i), machine.Pin(i))
		}
	}

	var fb Framebuffer
	if lcd, err := newST7789(); err != nil {
		logger.WriteLineString(err.Error())
	} else {
		fb = lcd
	}

	machine.USBCDC.Configure(machine.UARTConfig{})

	return &tinyGoHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO(pins),
		fb:     fb,
		flash:  newRP2Flash(),
		uart:   &uartSerial{uart: uart},
		usb:    usbPort{cdc: machine.USBCDC},
		clock:  monotonicClock(),
	}
}

func (h *tinyGoHAL) Logger() Logger              { return h.logger }
func (h *tinyGoHAL) LED() LED                    { return h.led }
func (h *tinyGoHAL) GPIO() GPIO                  { return h.gpio }
func (h *tinyGoHAL) Display() Display            { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Flash() Flash                { return h.flash }
func (h *tinyGoHAL) UART() UART                  { return h.uart }
func (h *tinyGoHAL) USB() PacketPort             { return h.usb }
func (h *tinyGoHAL) Rebooter() Rebooter          { return watchdogRebooter{} }
func (h *tinyGoHAL) Clock() func() time.Duration { return h.clock }
