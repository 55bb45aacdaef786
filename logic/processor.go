package logic

import (
	"time"
	"unicode/utf8"
)

// maxInstructionScale caps how many ticks of instructions can pile up in the accumulator.
const maxInstructionScale = 5

// Hook runs before every instruction. When it reports handled, the
// instruction itself is skipped and the returned Result is used instead.
type Hook func(ins *Instruction, st *ProcessorState, vm *VM) (r Result, handled bool)

// Link connects a processor to a building by position.
type Link struct {
	Name string
	X, Y int16
}

// ProcessorConfig configures a processor building.
type ProcessorConfig struct {
	// IPT is the number of instructions executed per tick.
	IPT        float64
	// Privileged is accepted for world files but grants no extra instructions.
	Privileged bool
	Code       *Program
	Links      []Link
	Hook       Hook
}

// ProcessorState is the per-processor execution state visible to devices.
type ProcessorState struct {
	counter int
	vars    []Value
	names   []string

	print     []byte
	printLen  int
	draw      []DrawCommand
	waiting   bool
	waitUntil time.Duration
}

// PrintBuffer returns the text queued by print instructions.
func (st *ProcessorState) PrintBuffer() string { return string(st.print) }

// DrawBuffer returns the commands queued by draw instructions.
func (st *ProcessorState) DrawBuffer() []DrawCommand { return st.draw }

// Counter returns the index of the next instruction.
func (st *ProcessorState) Counter() int { return st.counter }

// Variable looks up a processor variable by name.
func (st *ProcessorState) Variable(name string) (Value, bool) {
	for i, n := range st.names {
		if n == name {
			return st.vars[i], true
		}
	}
	return Null, false
}

func (st *ProcessorState) appendPrint(s string) {
	for _, r := range s {
		if st.printLen >= MaxPrintBuffer {
			return
		}
		st.print = utf8.AppendRune(st.print, r)
		st.printLen++
	}
}

func (st *ProcessorState) clearPrint() {
	st.print = st.print[:0]
	st.printLen = 0
}

func (st *ProcessorState) appendDraw(cmd DrawCommand) {
	if len(st.draw) < MaxDrawBuffer {
		st.draw = append(st.draw, cmd)
	}
}

func (st *ProcessorState) clearDraw() {
	for i := range st.draw {
		st.draw[i] = nil
	}
	st.draw = st.draw[:0]
}

// Processor executes a program inside a building.
type Processor struct {
	building *Building
	ipt      float64
	hook     Hook

	code        []Instruction
	links       []*Building
	linkNames   map[string]*Building
	accumulator float64
	state       ProcessorState
}

// State exposes the execution state, mainly for tests and diagnostics.
func (p *Processor) State() *ProcessorState { return &p.state }

func (p *Processor) tick(vm *VM, delta float64) {
	if len(p.code) == 0 {
		return
	}
	p.accumulator += delta * p.ipt
	if limit := maxInstructionScale * p.ipt; p.accumulator > limit {
		p.accumulator = limit
	}
	for p.accumulator >= 1 {
		p.accumulator--
		if p.step(vm) == Yield {
			break
		}
	}
}

func (p *Processor) step(vm *VM) Result {
	st := &p.state
	if st.counter < 0 || st.counter >= len(p.code) {
		st.counter = 0
	}
	ins := &p.code[st.counter]
	st.counter++

	var r Result
	handled := false
	if p.hook != nil {
		r, handled = p.hook(ins, st, vm)
	}
	if !handled {
		r = p.exec(ins, vm)
	}
	if st.counter < 0 || st.counter >= len(p.code) {
		st.counter = 0
	}
	return r
}

func (p *Processor) get(vm *VM, o *operand) Value {
	switch o.kind {
	case operandConst:
		return o.val
	case operandVar:
		return p.state.vars[o.slot]
	case operandCounter:
		return Num(float64(p.state.counter))
	case operandTime:
		return Num(float64(vm.elapsed) / float64(time.Millisecond))
	case operandTick:
		return Num(vm.ticks)
	case operandIPT:
		return Num(p.ipt)
	case operandLinks:
		return Num(float64(len(p.links)))
	case operandThis:
		return Obj(p.building)
	case operandThisX:
		return Num(float64(p.building.Position.X))
	case operandThisY:
		return Num(float64(p.building.Position.Y))
	}
	return Null
}

func (p *Processor) set(o *operand, v Value) {
	switch o.kind {
	case operandVar:
		p.state.vars[o.slot] = v
	case operandCounter:
		if i, ok := v.Index(); ok {
			p.state.counter = i
		}
	}
}

func (p *Processor) exec(ins *Instruction, vm *VM) Result {
	st := &p.state
	args := ins.args

	switch ins.Op {
	case OpNoop:
	case OpEnd:
		st.counter = 0
	case OpStop:
		st.counter--
		return Yield
	case OpSet:
		p.set(&args[0], p.get(vm, &args[1]))
	case OpOp:
		f, ok := operations[ins.sub]
		if !ok {
			return Ok
		}
		p.set(&args[0], f(p.get(vm, &args[1]), p.get(vm, &args[2])))
	case OpJump:
		if ins.target < 0 || ins.target >= len(p.code) {
			return Ok
		}
		if condition(ins.sub, p.get(vm, &args[0]), p.get(vm, &args[1])) {
			st.counter = ins.target
		}
	case OpRead:
		p.set(&args[0], p.read(vm, p.get(vm, &args[1]), p.get(vm, &args[2])))
	case OpWrite:
		if b := p.get(vm, &args[1]).Building(); b != nil && b.Device != nil {
			return b.Device.Write(st, vm, p.get(vm, &args[2]), p.get(vm, &args[0]))
		}
	case OpSensor:
		a := ins.access
		if a == AccessUnknown {
			if s, ok := p.get(vm, &args[2]).Text(); ok {
				a, _ = ParseAccess(s)
			}
		}
		p.set(&args[0], p.sensor(vm, p.get(vm, &args[1]).Building(), a))
	case OpPrint:
		st.appendPrint(p.get(vm, &args[0]).String())
	case OpPrintFlush:
		r := Ok
		if b := p.get(vm, &args[0]).Building(); b != nil && b.Device != nil {
			r = b.Device.PrintFlush(st, vm)
		}
		st.clearPrint()
		return r
	case OpDraw:
		p.draw(vm, ins)
	case OpDrawFlush:
		r := Ok
		if b := p.get(vm, &args[0]).Building(); b != nil && b.Device != nil {
			r = b.Device.DrawFlush(st, vm)
		}
		st.clearDraw()
		return r
	case OpWait:
		return p.wait(vm, p.get(vm, &args[0]).Num())
	case OpGetLink:
		var v Value
		if i, ok := p.get(vm, &args[1]).Index(); ok && i < len(p.links) {
			v = Obj(p.links[i])
		}
		p.set(&args[0], v)
	case OpPackColor:
		p.set(&args[0], Num(PackColor(
			p.get(vm, &args[1]).Num(),
			p.get(vm, &args[2]).Num(),
			p.get(vm, &args[3]).Num(),
			p.get(vm, &args[4]).Num(),
		)))
	}
	return Ok
}

func (p *Processor) read(vm *VM, target, addr Value) Value {
	b := target.Building()
	if b == nil {
		if s, ok := target.Text(); ok {
			if i, ok := addr.Index(); ok {
				r := []rune(s)
				if i < len(r) {
					return Num(float64(r[i]))
				}
			}
		}
		return Null
	}
	if b.Device != nil {
		if v, ok := b.Device.Read(&p.state, vm, addr); ok {
			return v
		}
	}
	if other := b.proc; other != nil {
		if name, ok := addr.Text(); ok {
			v, _ := other.state.Variable(name)
			return v
		}
	}
	return Null
}

func (p *Processor) sensor(vm *VM, b *Building, a Access) Value {
	if b == nil || a == AccessUnknown {
		return Null
	}
	if b.Device != nil {
		if v, ok := b.Device.Sensor(&p.state, vm, a); ok {
			return v
		}
	}
	switch a {
	case AccessX:
		return Num(float64(b.Position.X))
	case AccessY:
		return Num(float64(b.Position.Y))
	case AccessSize:
		if b.Block != nil {
			return Num(float64(b.Block.Size))
		}
	case AccessType, AccessName:
		if b.Block != nil {
			return Str(b.Block.Name)
		}
	case AccessEnabled:
		return Num(1)
	}
	return Null
}

func (p *Processor) wait(vm *VM, seconds float64) Result {
	st := &p.state
	if seconds <= 0 {
		st.waiting = false
		return Ok
	}
	if !st.waiting {
		st.waiting = true
		st.waitUntil = vm.elapsed + time.Duration(seconds*float64(time.Second))
	}
	if vm.elapsed < st.waitUntil {
		st.counter--
		return Yield
	}
	st.waiting = false
	return Ok
}

func (p *Processor) draw(vm *VM, ins *Instruction) {
	st := &p.state
	var n [6]float64
	for i := range ins.args {
		n[i] = p.get(vm, &ins.args[i]).Num()
	}
	i16 := func(i int) int16 { return clampInt16(n[i]) }

	switch ins.sub {
	case "clear":
		st.appendDraw(DrawClear{R: clampByte(n[0]), G: clampByte(n[1]), B: clampByte(n[2])})
	case "color":
		st.appendDraw(DrawColor{R: clampByte(n[0]), G: clampByte(n[1]), B: clampByte(n[2]), A: clampByte(n[3])})
	case "col":
		r, g, b, a := UnpackColor(p.get(vm, &ins.args[0]).Num())
		st.appendDraw(DrawColor{R: r, G: g, B: b, A: a})
	case "stroke":
		st.appendDraw(DrawStroke{Width: i16(0)})
	case "line":
		st.appendDraw(DrawLine{X1: i16(0), Y1: i16(1), X2: i16(2), Y2: i16(3)})
	case "rect", "lineRect":
		st.appendDraw(DrawRect{X: i16(0), Y: i16(1), Width: i16(2), Height: i16(3), Fill: ins.sub == "rect"})
	case "poly", "linePoly":
		st.appendDraw(DrawPoly{X: i16(0), Y: i16(1), Sides: i16(2), Radius: n[3], Rotation: n[4], Fill: ins.sub == "poly"})
	case "triangle":
		st.appendDraw(DrawTriangle{X1: i16(0), Y1: i16(1), X2: i16(2), Y2: i16(3), X3: i16(4), Y3: i16(5)})
	case "image":
		st.appendDraw(DrawImage{X: i16(0), Y: i16(1), Image: p.get(vm, &ins.args[2]), Size: n[3], Rotation: n[4]})
	case "print":
		st.appendDraw(DrawPrint{X: i16(0), Y: i16(1), Align: TextAlignment(n[2]), Text: st.PrintBuffer()})
		st.clearPrint()
	case "translate":
		st.appendDraw(DrawTranslate{X: i16(0), Y: i16(1)})
	case "scale":
		st.appendDraw(DrawScale{X: n[0], Y: n[1]})
	case "rotate":
		st.appendDraw(DrawRotate{Degrees: n[2]})
	case "reset":
		st.appendDraw(DrawReset{})
	}
}
