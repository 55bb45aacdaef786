package logic

import (
	"math"
	"math/rand"
)

type binaryFunc func(a, b Value) Value

func numeric(f func(a, b float64) float64) binaryFunc {
	return func(a, b Value) Value { return Num(f(a.Num(), b.Num())) }
}

func integer(f func(a, b int64) int64) binaryFunc {
	return func(a, b Value) Value { return Num(float64(f(a.Int(), b.Int()))) }
}

func unary(f func(a float64) float64) binaryFunc {
	return func(a, _ Value) Value { return Num(f(a.Num())) }
}

func compare(f func(a, b Value) bool) binaryFunc {
	return func(a, b Value) Value { return Bool(f(a, b)) }
}

var operations = map[string]binaryFunc{
	"add": numeric(func(a, b float64) float64 { return a + b }),
	"sub": numeric(func(a, b float64) float64 { return a - b }),
	"mul": numeric(func(a, b float64) float64 { return a * b }),
	"div": func(a, b Value) Value {
		if b.Num() == 0 {
			return Null
		}
		return Num(a.Num() / b.Num())
	},
	"idiv": func(a, b Value) Value {
		if b.Num() == 0 {
			return Null
		}
		return Num(math.Floor(a.Num() / b.Num()))
	},
	"mod": func(a, b Value) Value {
		if b.Num() == 0 {
			return Null
		}
		return Num(math.Mod(a.Num(), b.Num()))
	},
	"emod": func(a, b Value) Value {
		y := b.Num()
		if y == 0 {
			return Null
		}
		m := math.Mod(a.Num(), y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return Num(m)
	},
	"pow":           numeric(math.Pow),
	"equal":         compare(func(a, b Value) bool { return a.Equal(b) }),
	"notEqual":      compare(func(a, b Value) bool { return !a.Equal(b) }),
	"land":          compare(func(a, b Value) bool { return a.Truthy() && b.Truthy() }),
	"lessThan":      compare(func(a, b Value) bool { return a.Num() < b.Num() }),
	"lessThanEq":    compare(func(a, b Value) bool { return a.Num() <= b.Num() }),
	"greaterThan":   compare(func(a, b Value) bool { return a.Num() > b.Num() }),
	"greaterThanEq": compare(func(a, b Value) bool { return a.Num() >= b.Num() }),
	"strictEqual":   compare(func(a, b Value) bool { return a.StrictEqual(b) }),
	"shl":           integer(func(a, b int64) int64 { return a << uint64(b&63) }),
	"shr":           integer(func(a, b int64) int64 { return a >> uint64(b&63) }),
	"or":            integer(func(a, b int64) int64 { return a | b }),
	"and":           integer(func(a, b int64) int64 { return a & b }),
	"xor":           integer(func(a, b int64) int64 { return a ^ b }),
	"not":           func(a, _ Value) Value { return Num(float64(^a.Int())) },
	"max":           numeric(math.Max),
	"min":           numeric(math.Min),
	"angle": numeric(func(a, b float64) float64 {
		deg := math.Atan2(b, a) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		return deg
	}),
	"len":   numeric(math.Hypot),
	"abs":   unary(math.Abs),
	"sign":  unary(sign),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(func(a float64) float64 { return math.Floor(a + 0.5) }),
	"sqrt":  unary(math.Sqrt),
	"rand":  unary(func(a float64) float64 { return rand.Float64() * a }),
	"sin":   unary(func(a float64) float64 { return math.Sin(a * math.Pi / 180) }),
	"cos":   unary(func(a float64) float64 { return math.Cos(a * math.Pi / 180) }),
	"tan":   unary(func(a float64) float64 { return math.Tan(a * math.Pi / 180) }),
	"asin":  unary(func(a float64) float64 { return math.Asin(a) * 180 / math.Pi }),
	"acos":  unary(func(a float64) float64 { return math.Acos(a) * 180 / math.Pi }),
	"atan":  unary(func(a float64) float64 { return math.Atan(a) * 180 / math.Pi }),
}

func sign(a float64) float64 {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}

// condition evaluates a jump condition. Unknown conditions are never taken.
func condition(cond string, a, b Value) bool {
	switch cond {
	case "always":
		return true
	case "equal":
		return a.Equal(b)
	case "notEqual":
		return !a.Equal(b)
	case "lessThan":
		return a.Num() < b.Num()
	case "lessThanEq":
		return a.Num() <= b.Num()
	case "greaterThan":
		return a.Num() > b.Num()
	case "greaterThanEq":
		return a.Num() >= b.Num()
	case "strictEqual":
		return a.StrictEqual(b)
	}
	return false
}
