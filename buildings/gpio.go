package buildings

import (
	"errors"
	"fmt"

	"mlogpico/hal"
	"mlogpico/logic"
)

var (
	ErrDuplicatePin = errors.New("buildings: duplicate pin id")
	ErrPinIndex     = errors.New("buildings: pin id out of range")
)

// PinSlot places a pin at a GPIO number in the bank.
type PinSlot struct {
	ID  int
	Pin hal.GPIOPin
}

type pinSlot struct {
	pin  hal.GPIOPin
	pull hal.GPIOPull
}

// GPIO exposes up to hal.PinCount pins as memory addresses.
//
// read(i) switches pin i to input and returns its level as 1 or 0.
// write(i, v) drives pin i as an output; the pull follows v as well
// (null: none, truthy: up, falsy: down) when the pin supports it.
// Unpopulated or invalid addresses read as null and ignore writes.
type GPIO struct {
	logic.Unsupported
	pins [hal.PinCount]*pinSlot
}

// NewGPIO builds a pin bank. Slots with a nil pin are skipped.
func NewGPIO(slots []PinSlot) (*GPIO, error) {
	g := &GPIO{}
	for _, s := range slots {
		if s.Pin == nil {
			continue
		}
		if s.ID < 0 || s.ID >= len(g.pins) {
			return nil, fmt.Errorf("%w: %d", ErrPinIndex, s.ID)
		}
		if g.pins[s.ID] != nil {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePin, s.ID)
		}
		g.pins[s.ID] = &pinSlot{pin: s.Pin}
	}
	return g, nil
}

// SlotsFrom lists every routed pin of a HAL GPIO bank.
func SlotsFrom(bank hal.GPIO) []PinSlot {
	if bank == nil {
		return nil
	}
	var out []PinSlot
	for i := 0; i < bank.PinCount(); i++ {
		if p := bank.Pin(i); p != nil {
			out = append(out, PinSlot{ID: i, Pin: p})
		}
	}
	return out
}

func (g *GPIO) slot(addr logic.Value) *pinSlot {
	i, ok := addr.Index()
	if !ok || i >= len(g.pins) {
		return nil
	}
	return g.pins[i]
}

// Read switches the pin to input, keeping the last pull, and returns its level.
func (g *GPIO) Read(_ *logic.ProcessorState, _ *logic.VM, addr logic.Value) (logic.Value, bool) {
	s := g.slot(addr)
	if s == nil {
		return logic.Null, true
	}
	_ = s.pin.Configure(hal.GPIOModeInput, s.pull)
	level, err := s.pin.Read()
	if err != nil {
		return logic.Null, true
	}
	return logic.Bool(level), true
}

// Write drives the pin and then switches it to output. The pull follows the
// written level where the pin supports it; null clears it.
func (g *GPIO) Write(_ *logic.ProcessorState, _ *logic.VM, addr, v logic.Value) logic.Result {
	s := g.slot(addr)
	if s == nil {
		return logic.Ok
	}
	level := v.Truthy()
	pull := hal.GPIOPullNone
	switch {
	case v.IsNull():
	case level && s.pin.Caps()&hal.GPIOCapPullUp != 0:
		pull = hal.GPIOPullUp
	case !level && s.pin.Caps()&hal.GPIOCapPullDown != 0:
		pull = hal.GPIOPullDown
	}
	s.pull = pull
	if err := s.pin.Write(level); err != nil {
		return logic.Ok
	}
	_ = s.pin.Configure(hal.GPIOModeOutput, pull)
	return logic.Ok
}

// Sensor reports the slot count as @memoryCapacity.
func (g *GPIO) Sensor(_ *logic.ProcessorState, _ *logic.VM, a logic.Access) (logic.Value, bool) {
	if a == logic.AccessMemoryCapacity {
		return logic.Num(float64(len(g.pins))), true
	}
	return logic.Null, false
}
