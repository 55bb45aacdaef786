package logic

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownInstruction = errors.New("logic: unknown instruction")
	ErrBadOperand         = errors.New("logic: bad operand")
)

// Opcode identifies an instruction.
type Opcode uint8

const (
	OpNoop Opcode = iota
	OpEnd
	OpStop
	OpSet
	OpOp
	OpJump
	OpRead
	OpWrite
	OpSensor
	OpPrint
	OpPrintFlush
	OpDraw
	OpDrawFlush
	OpWait
	OpGetLink
	OpPackColor
)

var opcodeNames = [...]string{
	OpNoop:       "noop",
	OpEnd:        "end",
	OpStop:       "stop",
	OpSet:        "set",
	OpOp:         "op",
	OpJump:       "jump",
	OpRead:       "read",
	OpWrite:      "write",
	OpSensor:     "sensor",
	OpPrint:      "print",
	OpPrintFlush: "printflush",
	OpDraw:       "draw",
	OpDrawFlush:  "drawflush",
	OpWait:       "wait",
	OpGetLink:    "getlink",
	OpPackColor:  "packcolor",
}

// operand counts, not including the sub-kind token of op, jump and draw.
var opcodeArgs = [...]int{
	OpNoop:       0,
	OpEnd:        0,
	OpStop:       0,
	OpSet:        2,
	OpOp:         3,
	OpJump:       2,
	OpRead:       3,
	OpWrite:      3,
	OpSensor:     3,
	OpPrint:      1,
	OpPrintFlush: 1,
	OpDraw:       6,
	OpDrawFlush:  1,
	OpWait:       1,
	OpGetLink:    2,
	OpPackColor:  5,
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// ParseOpcode resolves an instruction name.
func ParseOpcode(name string) (Opcode, bool) {
	for i, n := range opcodeNames {
		if n == name {
			return Opcode(i), true
		}
	}
	return OpNoop, false
}

type operandKind uint8

const (
	operandConst operandKind = iota
	operandVar
	operandCounter
	operandTime
	operandTick
	operandIPT
	operandLinks
	operandThis
	operandThisX
	operandThisY
)

type operand struct {
	kind operandKind
	val  Value
	slot int
}

// Instruction is a compiled statement.
type Instruction struct {
	Op   Opcode
	Line int

	sub    string
	target int
	access Access
	args   []operand
}

// Sub returns the sub-kind token of op, jump and draw instructions.
func (ins *Instruction) Sub() string { return ins.sub }

func (ins *Instruction) String() string {
	if ins.sub != "" {
		return ins.Op.String() + " " + ins.sub
	}
	return ins.Op.String()
}

var dynamicGlobals = map[string]operandKind{
	"@counter": operandCounter,
	"@time":    operandTime,
	"@tick":    operandTick,
	"@ipt":     operandIPT,
	"@links":   operandLinks,
	"@this":    operandThis,
	"@thisx":   operandThisX,
	"@thisy":   operandThisY,
}

type compiler struct {
	vm    *VM
	proc  *Processor
	slots map[string]int
}

func (c *compiler) compile(prog *Program) ([]Instruction, error) {
	code := make([]Instruction, 0, len(prog.Statements))
	for i, st := range prog.Statements {
		ins, err := c.statement(st)
		if err != nil {
			line := st.Line
			if line == 0 {
				line = i + 1
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		code = append(code, ins)
	}
	return code, nil
}

func (c *compiler) statement(st Statement) (Instruction, error) {
	op, ok := ParseOpcode(st.Op)
	if !ok {
		return Instruction{}, fmt.Errorf("%w %q", ErrUnknownInstruction, st.Op)
	}
	ins := Instruction{Op: op, Line: st.Line}
	args := st.Args

	switch op {
	case OpOp, OpDraw:
		if len(args) == 0 {
			return Instruction{}, fmt.Errorf("%w: %s without kind", ErrBadOperand, op)
		}
		ins.sub, args = args[0], args[1:]
	case OpJump:
		if len(args) < 2 {
			return Instruction{}, fmt.Errorf("%w: jump needs a target and a condition", ErrBadOperand)
		}
		target, err := strconv.Atoi(args[0])
		if err != nil {
			return Instruction{}, fmt.Errorf("%w: jump target %q", ErrBadOperand, args[0])
		}
		ins.target = target
		ins.sub, args = args[1], args[2:]
	case OpSensor:
		if len(args) >= 3 {
			if a, ok := ParseAccess(args[2]); ok && strings.HasPrefix(args[2], "@") {
				ins.access = a
			}
		}
	}

	n := opcodeArgs[op]
	ins.args = make([]operand, n)
	for i := 0; i < n; i++ {
		tok := "null"
		if i < len(args) {
			tok = args[i]
		}
		if op == OpDraw && ins.sub == "print" && i == 2 {
			if a, ok := ParseAlign(tok); ok {
				ins.args[i] = operand{kind: operandConst, val: Num(float64(a))}
				continue
			}
		}
		ins.args[i] = c.operand(tok)
	}
	return ins, nil
}

func (c *compiler) operand(tok string) operand {
	if v, ok := parseLiteral(tok); ok {
		return operand{kind: operandConst, val: v}
	}
	if v, ok := c.vm.globals[tok]; ok {
		return operand{kind: operandConst, val: v}
	}
	if k, ok := dynamicGlobals[tok]; ok {
		return operand{kind: k}
	}
	if b, ok := c.proc.linkNames[tok]; ok {
		return operand{kind: operandConst, val: Obj(b)}
	}
	if strings.HasPrefix(tok, "@") {
		return operand{kind: operandConst, val: Null}
	}
	slot, ok := c.slots[tok]
	if !ok {
		slot = len(c.proc.state.vars)
		c.slots[tok] = slot
		c.proc.state.vars = append(c.proc.state.vars, Null)
		c.proc.state.names = append(c.proc.state.names, tok)
	}
	return operand{kind: operandVar, slot: slot}
}

// parseLiteral parses strings, numbers and %rrggbb[aa] colors.
func parseLiteral(tok string) (Value, bool) {
	if tok == "" {
		return Null, false
	}
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return Str(strings.ReplaceAll(tok[1:len(tok)-1], `\n`, "\n")), true
	}
	if tok[0] == '%' {
		return parseColor(tok[1:])
	}
	c := tok[0]
	if !(c >= '0' && c <= '9') && c != '-' && c != '+' && c != '.' {
		return Null, false
	}
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "-0x"):
		n, err := strconv.ParseInt(strings.Replace(tok, "0x", "", 1), 16, 64)
		if err != nil {
			return Null, false
		}
		return Num(float64(n)), true
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "-0b"):
		n, err := strconv.ParseInt(strings.Replace(tok, "0b", "", 1), 2, 64)
		if err != nil {
			return Null, false
		}
		return Num(float64(n)), true
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(f, 0) {
		return Null, false
	}
	return Num(f), true
}

func parseColor(hex string) (Value, bool) {
	if len(hex) != 6 && len(hex) != 8 {
		return Null, false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Null, false
	}
	return Num(math.Float64frombits(n)), true
}
