package hal

import (
	"errors"
	"io"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb, little-endian in memory.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// UART is a streaming serial port.
//
// Read must not block when Buffered reports zero bytes.
type UART interface {
	io.ReadWriter
	Buffered() int
}

// PacketPort is a connection-oriented, packet-framed serial transport
// (USB CDC on the board).
//
// Both Try methods are non-blocking: false means "not now, retry later".
// A zero-length write sends an empty packet that terminates a transfer.
type PacketPort interface {
	Connected() bool
	MaxPacketSize() int
	TryWritePacket(p []byte) (sent bool, err error)
	TryReadPacket(p []byte) (n int, ok bool, err error)
}

// Rebooter resets the board. Neither method returns.
type Rebooter interface {
	// Reset restarts the firmware.
	Reset()
	// EnterBootloader restarts into the USB mass-storage bootloader.
	EnterBootloader()
}

// ErrReboot is the panic value of a host reset. The host runners return it
// as an error; the board never sees it.
type ErrReboot struct {
	Bootloader bool
}

func (e ErrReboot) Error() string {
	if e.Bootloader {
		return "reboot to bootloader requested"
	}
	return "reset requested"
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	GPIO() GPIO
	Display() Display
	Flash() Flash
	UART() UART
	USB() PacketPort
	Rebooter() Rebooter
	// Clock returns the time since boot.
	Clock() func() time.Duration
}
