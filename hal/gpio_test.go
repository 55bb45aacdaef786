package hal

import "testing"

type fakeLED struct{ on bool }

func (l *fakeLED) High() { l.on = true }
func (l *fakeLED) Low()  { l.on = false }

func TestVirtualPinPulls(t *testing.T) {
	p := newVirtualPin("GP2", GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown)

	if err := p.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if level, _ := p.Read(); !level {
		t.Fatalf("Read() = %v, want true with pull-up", level)
	}
	if err := p.Configure(GPIOModeInput, GPIOPullDown); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if level, _ := p.Read(); level {
		t.Fatalf("Read() = %v, want false with pull-down", level)
	}
}

func TestVirtualPinLatchesLevel(t *testing.T) {
	p := newVirtualPin("GP3", GPIOCapInput|GPIOCapOutput)

	if err := p.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if level, _ := p.Read(); !level {
		t.Fatalf("Read() = %v, want latched true", level)
	}
	if err := p.Configure(GPIOModeInput, GPIOPullUp); err == nil {
		t.Fatal("Configure with unsupported pull-up succeeded")
	}
}

func TestLEDPinFollowsOutput(t *testing.T) {
	led := &fakeLED{}
	p := newLEDPin("LED", led)

	if err := p.Write(true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if led.on {
		t.Fatal("led on while pin is an input")
	}
	if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !led.on {
		t.Fatal("led off after switching a high pin to output")
	}
	if err := p.Write(false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if led.on {
		t.Fatal("led on after writing low")
	}
}

func TestVirtualGPIOPin(t *testing.T) {
	pins := make([]GPIOPin, PinCount)
	pins[4] = newVirtualPin("GP4", GPIOCapInput)
	g := newVirtualGPIO(pins)

	if g.PinCount() != PinCount {
		t.Fatalf("PinCount() = %d, want %d", g.PinCount(), PinCount)
	}
	if g.Pin(4) == nil {
		t.Fatal("Pin(4) = nil")
	}
	if g.Pin(5) != nil {
		t.Fatal("Pin(5) != nil for an unrouted slot")
	}
	if g.Pin(PinCount) != nil || g.Pin(-1) != nil {
		t.Fatal("Pin out of range != nil")
	}
}
