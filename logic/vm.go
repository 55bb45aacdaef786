package logic

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrDuplicatePosition = errors.New("logic: duplicate building position")
	ErrUnknownLink       = errors.New("logic: link target not found")
	ErrNoProgram         = errors.New("logic: processor has no program")
)

// VM owns the buildings and runs every processor once per Tick.
type VM struct {
	byPos   map[Point]*Building
	procs   []*Processor
	pending []pendingProcessor
	globals map[string]Value

	elapsed time.Duration
	ticks   float64
}

type pendingProcessor struct {
	building *Building
	cfg      ProcessorConfig
}

// Option configures a VM under construction.
type Option func(*VM) error

// WithBuilding registers a device-backed building.
func WithBuilding(block *Block, pos Point, dev Device) Option {
	return func(vm *VM) error {
		_, err := vm.place(block, pos, dev)
		return err
	}
}

// WithProcessor registers a processor building. Links are resolved after all
// options have been applied, so linked buildings may be registered later.
func WithProcessor(block *Block, pos Point, cfg ProcessorConfig) Option {
	return func(vm *VM) error {
		if cfg.Code == nil {
			return fmt.Errorf("%w at %s", ErrNoProgram, pos)
		}
		b, err := vm.place(block, pos, nil)
		if err != nil {
			return err
		}
		vm.pending = append(vm.pending, pendingProcessor{building: b, cfg: cfg})
		return nil
	}
}

// WithGlobals adds named constants, such as pin numbers, to the global table.
func WithGlobals(globals map[string]Value) Option {
	return func(vm *VM) error {
		for k, v := range globals {
			vm.globals[k] = v
		}
		return nil
	}
}

// GlobalConstants returns the builtin constant table.
func GlobalConstants() map[string]Value {
	return map[string]Value{
		"true":      Num(1),
		"false":     Num(0),
		"null":      Null,
		"@pi":       Num(math.Pi),
		"π":         Num(math.Pi),
		"@e":        Num(math.E),
		"@degToRad": Num(math.Pi / 180),
		"@radToDeg": Num(180 / math.Pi),
	}
}

// New builds a VM from opts.
func New(opts ...Option) (*VM, error) {
	vm := &VM{
		byPos:   make(map[Point]*Building),
		globals: GlobalConstants(),
	}
	for _, opt := range opts {
		if err := opt(vm); err != nil {
			return nil, err
		}
	}
	for _, pp := range vm.pending {
		if err := vm.startProcessor(pp.building, pp.cfg); err != nil {
			return nil, err
		}
	}
	vm.pending = nil
	return vm, nil
}

func (vm *VM) place(block *Block, pos Point, dev Device) (*Building, error) {
	if _, ok := vm.byPos[pos]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePosition, pos)
	}
	b := &Building{Block: block, Position: pos, Device: dev}
	vm.byPos[pos] = b
	return b, nil
}

func (vm *VM) startProcessor(b *Building, cfg ProcessorConfig) error {
	p := &Processor{
		building:  b,
		ipt:       cfg.IPT,
		hook:      cfg.Hook,
		linkNames: make(map[string]*Building, len(cfg.Links)),
	}
	if p.ipt <= 0 {
		p.ipt = 1
	}
	counts := map[string]int{}
	for _, l := range cfg.Links {
		target, ok := vm.byPos[Point{X: l.X, Y: l.Y}]
		if !ok {
			return fmt.Errorf("%w: %q at (%d,%d)", ErrUnknownLink, l.Name, l.X, l.Y)
		}
		name := l.Name
		if name == "" {
			name = linkBaseName(target.Block)
			counts[name]++
			name = fmt.Sprintf("%s%d", name, counts[name])
		}
		p.links = append(p.links, target)
		p.linkNames[name] = target
	}

	c := &compiler{vm: vm, proc: p, slots: map[string]int{}}
	code, err := c.compile(cfg.Code)
	if err != nil {
		return fmt.Errorf("logic: processor at %s: %w", b.Position, err)
	}
	p.code = code
	b.proc = p
	vm.procs = append(vm.procs, p)
	return nil
}

func linkBaseName(block *Block) string {
	if block == nil || block.Name == "" {
		return "building"
	}
	name := block.Name
	if i := strings.LastIndexByte(name, '-'); i >= 0 && i+1 < len(name) {
		name = name[i+1:]
	}
	return name
}

// Tick advances every processor. elapsed is the time since start and delta
// the tick length in 60 Hz frames.
func (vm *VM) Tick(elapsed time.Duration, delta float64) {
	vm.elapsed = elapsed
	vm.ticks += delta
	for _, p := range vm.procs {
		p.tick(vm, delta)
	}
}

// Building returns the building at pos.
func (vm *VM) Building(pos Point) (*Building, bool) {
	b, ok := vm.byPos[pos]
	return b, ok
}
