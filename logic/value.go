package logic

import (
	"math"
	"strconv"
)

// Kind is the dynamic type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBuilding
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// Value is a logic variable value: null, a number, a string or a building.
type Value struct {
	kind Kind
	num  float64
	str  string
	obj  *Building
}

// Null is the null value.
var Null = Value{}

func Num(f float64) Value { return Value{kind: KindNumber, num: f} }
func Str(s string) Value  { return Value{kind: KindString, str: s} }

// Bool returns 1 or 0.
func Bool(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// Obj wraps a building. A nil building is null.
func Obj(b *Building) Value {
	if b == nil {
		return Null
	}
	return Value{kind: KindBuilding, obj: b}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Num returns the numeric view: null is 0, any other non-number object is 1.
func (v Value) Num() float64 {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0
		}
		return v.num
	case KindNull:
		return 0
	default:
		return 1
	}
}

// Truthy reports whether the value counts as true in conditions and writes.
func (v Value) Truthy() bool {
	return v.Num() != 0
}

// Int truncates the numeric view toward zero.
func (v Value) Int() int64 {
	return int64(v.Num())
}

// Index converts a number to a non-negative index.
// Null, strings, buildings and negative numbers are not indices.
func (v Value) Index() (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f := v.num
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Text returns the string payload of a string value.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Building returns the building payload, or nil.
func (v Value) Building() *Building {
	if v.kind != KindBuilding {
		return nil
	}
	return v.obj
}

// Equal implements the loose equality used by op equal and jump equal.
func (v Value) Equal(o Value) bool {
	if v.kind != KindNumber && o.kind != KindNumber {
		return v.StrictEqual(o)
	}
	return math.Abs(v.Num()-o.Num()) < 0.000001
}

// StrictEqual compares type and payload.
func (v Value) StrictEqual(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindBuilding:
		return v.obj == o.obj
	default:
		return true
	}
}

// String formats the value the way print does.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindBuilding:
		if v.obj == nil || v.obj.Block == nil {
			return "null"
		}
		return v.obj.Block.Name
	}
	return formatNumber(v.num)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "null"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if math.Abs(f-math.Round(f)) < 0.00001 && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(math.Round(f)), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
