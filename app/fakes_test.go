package app

import (
	"strings"
	"time"

	"mlogpico/hal"
)

type fakeHAL struct {
	log   *fakeLogger
	pins  []hal.GPIOPin
	fb    *fakeFramebuffer
	flash *fakeFlash
	uart  *fakeUART
	usb   *fakePort
	now   time.Duration
}

func newFakeHAL() *fakeHAL {
	h := &fakeHAL{
		log:   &fakeLogger{},
		pins:  make([]hal.GPIOPin, hal.PinCount),
		fb:    newFakeFramebuffer(64, 64),
		flash: newFakeFlash(4*4096, 4096),
		uart:  &fakeUART{},
		usb:   &fakePort{connected: true},
	}
	for i := 2; i < hal.PinCount; i++ {
		h.pins[i] = &fakePin{}
	}
	return h
}

func (h *fakeHAL) pin(i int) *fakePin { return h.pins[i].(*fakePin) }

func (h *fakeHAL) Logger() hal.Logger     { return h.log }
func (h *fakeHAL) LED() hal.LED           { return nil }
func (h *fakeHAL) GPIO() hal.GPIO         { return fakeBank(h.pins) }
func (h *fakeHAL) Flash() hal.Flash       { return h.flash }
func (h *fakeHAL) UART() hal.UART         { return h.uart }
func (h *fakeHAL) USB() hal.PacketPort    { return h.usb }
func (h *fakeHAL) Rebooter() hal.Rebooter { return fakeRebooter{} }

func (h *fakeHAL) Display() hal.Display {
	if h.fb == nil {
		return nil
	}
	return fakeDisplay{fb: h.fb}
}

func (h *fakeHAL) Clock() func() time.Duration {
	return func() time.Duration { return h.now }
}

type fakeDisplay struct{ fb *fakeFramebuffer }

func (d fakeDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type fakeBank []hal.GPIOPin

func (b fakeBank) PinCount() int          { return len(b) }
func (b fakeBank) Pin(id int) hal.GPIOPin { return b[id] }

// fakeRebooter unwinds like the host rebooter.
type fakeRebooter struct{}

func (fakeRebooter) Reset()           { panic(hal.ErrReboot{}) }
func (fakeRebooter) EnterBootloader() { panic(hal.ErrReboot{Bootloader: true}) }

// rebootOf runs fn and reports the reboot it requested, if any.
func rebootOf(fn func()) (rb hal.ErrReboot, ok bool) {
	defer func() {
		rb, ok = recover().(hal.ErrReboot)
	}()
	fn()
	return rb, false
}

type fakeLogger struct {
	lines []string
}

func (l *fakeLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *fakeLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *fakeLogger) contains(sub string) bool {
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type fakePin struct {
	mode  hal.GPIOMode
	pull  hal.GPIOPull
	level bool
}

func (p *fakePin) Name() string { return "fake" }

func (p *fakePin) Caps() hal.GPIOCaps {
	return hal.GPIOCapInput | hal.GPIOCapOutput | hal.GPIOCapPullUp | hal.GPIOCapPullDown
}

func (p *fakePin) Configure(mode hal.GPIOMode, pull hal.GPIOPull) error {
	p.mode, p.pull = mode, pull
	return nil
}

func (p *fakePin) Read() (bool, error) { return p.level, nil }

func (p *fakePin) Write(level bool) error {
	p.level = level
	return nil
}

type fakeUART struct {
	tx []byte
}

func (u *fakeUART) Buffered() int              { return 0 }
func (u *fakeUART) Read(p []byte) (int, error) { return 0, nil }

func (u *fakeUART) Write(p []byte) (int, error) {
	u.tx = append(u.tx, p...)
	return len(p), nil
}

type fakePort struct {
	connected bool
	sent      []byte
	inbox     [][]byte
}

func (p *fakePort) Connected() bool    { return p.connected }
func (p *fakePort) MaxPacketSize() int { return 64 }

func (p *fakePort) TryWritePacket(b []byte) (bool, error) {
	p.sent = append(p.sent, b...)
	return true, nil
}

func (p *fakePort) TryReadPacket(b []byte) (int, bool, error) {
	if len(p.inbox) == 0 {
		return 0, false, nil
	}
	n := copy(b, p.inbox[0])
	p.inbox = p.inbox[1:]
	return n, true, nil
}

type fakeFramebuffer struct {
	w, h     int
	buf      []byte
	presents int
	fail     error
}

func newFakeFramebuffer(w, h int) *fakeFramebuffer {
	return &fakeFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *fakeFramebuffer) Width() int              { return f.w }
func (f *fakeFramebuffer) Height() int             { return f.h }
func (f *fakeFramebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *fakeFramebuffer) StrideBytes() int        { return f.w * 2 }
func (f *fakeFramebuffer) Buffer() []byte          { return f.buf }

func (f *fakeFramebuffer) ClearRGB(r, g, b uint8) {
	px := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = byte(px)
		f.buf[i+1] = byte(px >> 8)
	}
}

func (f *fakeFramebuffer) Present() error {
	f.presents++
	return f.fail
}

// lit reports whether any pixel is not black.
func (f *fakeFramebuffer) lit() bool {
	for _, b := range f.buf {
		if b != 0 {
			return true
		}
	}
	return false
}

type fakeFlash struct {
	buf []byte
	bs  uint32
}

func newFakeFlash(size, bs uint32) *fakeFlash {
	f := &fakeFlash{buf: make([]byte, size), bs: bs}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}
	return f
}

func (f *fakeFlash) SizeBytes() uint32       { return uint32(len(f.buf)) }
func (f *fakeFlash) EraseBlockBytes() uint32 { return f.bs }

func (f *fakeFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.buf[off:]), nil
}

func (f *fakeFlash) WriteAt(p []byte, off uint32) (int, error) {
	return copy(f.buf[off:], p), nil
}

func (f *fakeFlash) Erase(off, size uint32) error {
	for i := off; i < off+size; i++ {
		f.buf[i] = 0xFF
	}
	return nil
}
