// Package app wires the logic VM to the board. It places one building per
// peripheral next to a single processor, links them by name, and drives
// everything from the cooperative scheduler.
package app

import (
	"context"
	"fmt"

	"mlogpico/buildings"
	"mlogpico/config"
	"mlogpico/hal"
	"mlogpico/internal/buildinfo"
	"mlogpico/kernel"
	"mlogpico/logic"
)

// Building positions. Board files link to these.
var (
	ProcessorPos = logic.Point{X: 0, Y: 0}
	GPIOPos      = logic.Point{X: 1, Y: 0}
	UARTPos      = logic.Point{X: 2, Y: 0}
	SerialPos    = logic.Point{X: 3, Y: 0}
	DisplayPos   = logic.Point{X: 4, Y: 0}
	MemoryPos    = logic.Point{X: 5, Y: 0}
)

// Firmware is a booted VM together with its scheduler.
type Firmware struct {
	h     hal.HAL
	log   hal.Logger
	vm    *logic.VM
	sched *kernel.Scheduler

	gpio    *buildings.GPIO
	uart    *buildings.UART
	serial  *buildings.Serial
	display *buildings.Display
	memory  *buildings.Memory
}

// New builds the VM described by cfg on top of h.
func New(h hal.HAL, cfg config.Config) (*Firmware, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prog, err := LoadProgram(cfg.Program)
	if err != nil {
		return nil, err
	}

	f := &Firmware{h: h, log: h.Logger()}

	f.gpio, err = buildings.NewGPIO(buildings.SlotsFrom(h.GPIO()))
	if err != nil {
		return nil, fmt.Errorf("app: gpio: %w", err)
	}
	f.uart = buildings.NewUART(h.UART())
	f.serial = buildings.NewSerial()
	f.memory = buildings.NewMemory(cfg.MemoryCells)

	opts := []logic.Option{
		logic.WithBuilding(buildings.GPIOBlock, GPIOPos, f.gpio),
		logic.WithBuilding(buildings.UARTBlock, UARTPos, f.uart),
		logic.WithBuilding(buildings.SerialBlock, SerialPos, f.serial),
		logic.WithBuilding(buildings.MemoryBlock, MemoryPos, f.memory),
	}
	placed := map[logic.Point]bool{GPIOPos: true, UARTPos: true, SerialPos: true, MemoryPos: true}

	if fb := framebuffer(h); cfg.Display.Enabled && fb != nil {
		f.display, err = buildings.NewDisplay(fb)
		if err != nil {
			return nil, fmt.Errorf("app: display: %w", err)
		}
		opts = append(opts, logic.WithBuilding(buildings.DisplayBlock, DisplayPos, f.display))
		placed[DisplayPos] = true
	}

	links := make([]logic.Link, 0, len(cfg.Links))
	for _, l := range cfg.Links {
		p := logic.Point{X: l.X, Y: l.Y}
		if !placed[p] {
			f.logf("app: no building at %s, dropping link %q", p, l.Name)
			continue
		}
		links = append(links, logic.Link{Name: l.Name, X: l.X, Y: l.Y})
	}

	globals := make(map[string]logic.Value, len(cfg.Pins))
	for name, pin := range cfg.Pins {
		globals[name] = logic.Num(float64(pin))
	}

	opts = append(opts,
		logic.WithGlobals(globals),
		logic.WithProcessor(buildings.Processor, ProcessorPos, logic.ProcessorConfig{
			IPT:        cfg.IPT,
			Privileged: cfg.Privileged,
			Code:       prog,
			Links:      links,
			Hook:       rebootTrap(h.Rebooter()),
		}),
	)
	f.vm, err = logic.New(opts...)
	if err != nil {
		return nil, err
	}

	f.sched = kernel.NewScheduler(f.vm, kernel.Clock(h.Clock()))
	f.sched.AddFlush(f.uart.FlushRoutine(f.log))
	f.sched.AddFlush(f.serial.FlushRoutine(h.USB(), f.log))
	f.sched.AddBackground(f.serial.ReceiveRoutine(h.USB(), f.log))

	f.logf("mlog-pico %s: running %s (%d instructions, ipt %g)", buildinfo.Short(), cfg.Program, len(prog.Statements), cfg.IPT)
	return f, nil
}

// VM returns the logic VM.
func (f *Firmware) VM() *logic.VM { return f.vm }

// Scheduler returns the tick scheduler.
func (f *Firmware) Scheduler() *kernel.Scheduler { return f.sched }

// Display returns the display building, or nil on a board without a panel.
func (f *Firmware) Display() *buildings.Display { return f.display }

// Step runs one scheduler iteration. A panic is persisted and resets the board.
func (f *Firmware) Step() error {
	defer f.recoverPanic()
	f.sched.Step()
	return nil
}

// Run loops until ctx is canceled. A panic is persisted and resets the board.
func (f *Firmware) Run(ctx context.Context) error {
	defer f.recoverPanic()
	return f.sched.Run(ctx)
}

func (f *Firmware) recoverPanic() {
	v := recover()
	if v == nil {
		return
	}
	if _, ok := v.(hal.ErrReboot); ok {
		panic(v)
	}
	crash(f.h, v)
}

func (f *Firmware) logf(format string, args ...any) {
	if f.log != nil {
		f.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}

// rebootTrap turns stop into a reboot to the USB bootloader so the next
// program can be flashed.
func rebootTrap(r hal.Rebooter) logic.Hook {
	return func(ins *logic.Instruction, _ *logic.ProcessorState, _ *logic.VM) (logic.Result, bool) {
		if ins.Op != logic.OpStop {
			return logic.Ok, false
		}
		r.EnterBootloader()
		return logic.Yield, true
	}
}

func framebuffer(h hal.HAL) hal.Framebuffer {
	d := h.Display()
	if d == nil {
		return nil
	}
	return d.Framebuffer()
}
