package hal

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// PinCount is the number of GPIO numbers on the RP2040 bank.
const PinCount = 30

// GPIO provides access to general-purpose IO pins by GPIO number.
//
// Pin returns nil for numbers that are not routed to a usable pin.
type GPIO interface {
	PinCount() int
	Pin(id int) GPIOPin
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

type nullGPIO struct{}

func (nullGPIO) PinCount() int      { return 0 }
func (nullGPIO) Pin(id int) GPIOPin { return nil }

type virtualGPIO struct {
	pins []GPIOPin
}

func newVirtualGPIO(pins []GPIOPin) GPIO {
	if len(pins) == 0 {
		return nullGPIO{}
	}
	return &virtualGPIO{pins: pins}
}

func (g *virtualGPIO) PinCount() int {
	if g == nil {
		return 0
	}
	return len(g.pins)
}

func (g *virtualGPIO) Pin(id int) GPIOPin {
	if g == nil || id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

type virtualPin struct {
	mu    sync.Mutex
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{
		name: name,
		caps: caps,
		mode: GPIOModeInput,
		pull: GPIOPullNone,
	}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

// modeCaps and pullCaps give the capability each setting needs.
var (
	modeCaps = map[GPIOMode]GPIOCaps{GPIOModeInput: GPIOCapInput, GPIOModeOutput: GPIOCapOutput}
	pullCaps = map[GPIOPull]GPIOCaps{GPIOPullUp: GPIOCapPullUp, GPIOPullDown: GPIOCapPullDown}
)

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	need, ok := modeCaps[mode]
	if !ok {
		return fmt.Errorf("gpio: pin %s: invalid mode %d", p.name, mode)
	}
	if pull != GPIOPullNone {
		pc, ok := pullCaps[pull]
		if !ok {
			return fmt.Errorf("gpio: pin %s: invalid pull %d", p.name, pull)
		}
		need |= pc
	}
	if p.caps&need != need {
		return fmt.Errorf("gpio: pin %s: mode %d pull %d unsupported", p.name, mode, pull)
	}
	p.mode = mode
	p.pull = pull
	return nil
}

// Read returns the driven level in output mode. In input mode an unconnected
// virtual pin follows its pull resistor, or keeps the last level when floating.
func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.mode {
	case GPIOModeOutput:
		return p.level, nil
	case GPIOModeInput:
		switch p.pull {
		case GPIOPullUp:
			return true, nil
		case GPIOPullDown:
			return false, nil
		}
		return p.level, nil
	}
	return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
}

// Write latches the output level. Like the RP2040 SIO, the level may be
// set before the pin is switched to output.
func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	return nil
}

// signalPin is an input-only square wave on the board clock. The host wires
// two of them so input programs have something to poll.
type signalPin struct {
	name   string
	clock  func() time.Duration
	period time.Duration
	high   time.Duration
}

// newSignalPin returns a pin that reads high for the first high of every
// period. It returns nil for a blank name or a nil clock.
func newSignalPin(name string, clock func() time.Duration, period, high time.Duration) GPIOPin {
	if strings.TrimSpace(name) == "" || clock == nil {
		return nil
	}
	if period <= 0 {
		period = time.Second
	}
	high = min(max(high, 0), period)
	return &signalPin{name: name, clock: clock, period: period, high: high}
}

func (p *signalPin) Name() string   { return p.name }
func (p *signalPin) Caps() GPIOCaps { return GPIOCapInput }

func (p *signalPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeInput || pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: input without pull only", p.name)
	}
	return nil
}

func (p *signalPin) Read() (bool, error) {
	t := p.clock()
	if t < 0 {
		t = 0
	}
	return t%p.period < p.high, nil
}

func (p *signalPin) Write(bool) error {
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

type ledPin struct {
	*virtualPin
	led LED
}

// newLEDPin wraps a virtual pin and mirrors its output level onto led.
func newLEDPin(name string, led LED) GPIOPin {
	if led == nil {
		return nil
	}
	return &ledPin{
		virtualPin: newVirtualPin(name, GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown),
		led:        led,
	}
}

func (p *ledPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := p.virtualPin.Configure(mode, pull); err != nil {
		return err
	}
	p.sync()
	return nil
}

func (p *ledPin) Write(level bool) error {
	if err := p.virtualPin.Write(level); err != nil {
		return err
	}
	p.sync()
	return nil
}

func (p *ledPin) sync() {
	p.mu.Lock()
	on := p.mode == GPIOModeOutput && p.level
	p.mu.Unlock()
	if on {
		p.led.High()
	} else {
		p.led.Low()
	}
}
