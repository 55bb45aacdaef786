package buildings

import (
	"testing"

	"mlogpico/hal"
	"mlogpico/logic"
	"mlogpico/logic/mlog"
)

// runProgram places dev at (1,0), links it to a processor running src and
// ticks the VM n times.
func runProgram(t *testing.T, src string, block *logic.Block, dev logic.Device, ticks int) *logic.VM {
	t.Helper()
	prog, err := mlog.Parse("test", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	vm, err := logic.New(
		logic.WithProcessor(Processor, logic.Point{}, logic.ProcessorConfig{
			IPT:   50,
			Code:  prog,
			Links: []logic.Link{{X: 1, Y: 0}},
		}),
		logic.WithBuilding(block, logic.Point{X: 1}, dev),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < ticks; i++ {
		vm.Tick(0, 1.0)
	}
	return vm
}

type fakePin struct {
	caps  hal.GPIOCaps
	mode  hal.GPIOMode
	pull  hal.GPIOPull
	level bool
	input bool // level seen in input mode
}

func (p *fakePin) Name() string       { return "fake" }
func (p *fakePin) Caps() hal.GPIOCaps { return p.caps }

func (p *fakePin) Write(level bool) error {
	p.level = level
	return nil
}

func (p *fakePin) Configure(mode hal.GPIOMode, pull hal.GPIOPull) error {
	p.mode = mode
	p.pull = pull
	return nil
}

func (p *fakePin) Read() (bool, error) {
	if p.mode == hal.GPIOModeOutput {
		return p.level, nil
	}
	return p.input, nil
}

// fakePort is a PacketPort that records sent packets and serves queued ones.
type fakePort struct {
	connected bool
	// budget is the number of packets accepted per write window; negative is unlimited.
	budget int
	sent   [][]byte
	inbox  [][]byte
}

func (p *fakePort) Connected() bool    { return p.connected }
func (p *fakePort) MaxPacketSize() int { return USBPacketSize }

func (p *fakePort) TryWritePacket(b []byte) (bool, error) {
	if !p.connected || p.budget == 0 {
		return false, nil
	}
	if p.budget > 0 {
		p.budget--
	}
	p.sent = append(p.sent, append([]byte{}, b...))
	return true, nil
}

func (p *fakePort) TryReadPacket(b []byte) (int, bool, error) {
	if len(p.inbox) == 0 {
		return 0, false, nil
	}
	pkt := p.inbox[0]
	p.inbox = p.inbox[1:]
	return copy(b, pkt), true, nil
}

func (p *fakePort) sizes() []int {
	out := make([]int, len(p.sent))
	for i, b := range p.sent {
		out[i] = len(b)
	}
	return out
}

type fakeUART struct {
	rx []byte
	tx []byte
}

func (u *fakeUART) Buffered() int { return len(u.rx) }

func (u *fakeUART) Read(p []byte) (int, error) {
	n := copy(p, u.rx)
	u.rx = u.rx[n:]
	return n, nil
}

func (u *fakeUART) Write(p []byte) (int, error) {
	u.tx = append(u.tx, p...)
	return len(p), nil
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

func (f *fakeFramebuffer) at(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}
