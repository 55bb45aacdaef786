package logic

import "math"

const (
	// MaxDrawBuffer is the number of draw commands a processor can queue between flushes.
	MaxDrawBuffer = 256
	// MaxPrintBuffer is the number of characters a processor can queue between flushes.
	MaxPrintBuffer = 400
)

// DrawCommand is one queued display operation.
type DrawCommand interface {
	drawCommand()
}

type (
	DrawClear struct{ R, G, B uint8 }
	// DrawColor with A == 0 selects "no color".
	DrawColor  struct{ R, G, B, A uint8 }
	DrawStroke struct{ Width int16 }
	DrawLine   struct{ X1, Y1, X2, Y2 int16 }
	DrawRect   struct {
		X, Y          int16
		Width, Height int16
		Fill          bool
	}
	DrawPoly struct {
		X, Y     int16
		Sides    int16
		Radius   float64
		Rotation float64
		Fill     bool
	}
	DrawTriangle struct{ X1, Y1, X2, Y2, X3, Y3 int16 }
	DrawImage    struct {
		X, Y     int16
		Image    Value
		Size     float64
		Rotation float64
	}
	DrawPrint struct {
		X, Y  int16
		Align TextAlignment
		Text  string
	}
	DrawTranslate struct{ X, Y int16 }
	DrawScale     struct{ X, Y float64 }
	DrawRotate    struct{ Degrees float64 }
	DrawReset     struct{}
)

func (DrawClear) drawCommand()     {}
func (DrawColor) drawCommand()     {}
func (DrawStroke) drawCommand()    {}
func (DrawLine) drawCommand()      {}
func (DrawRect) drawCommand()      {}
func (DrawPoly) drawCommand()      {}
func (DrawTriangle) drawCommand()  {}
func (DrawImage) drawCommand()     {}
func (DrawPrint) drawCommand()     {}
func (DrawTranslate) drawCommand() {}
func (DrawScale) drawCommand()     {}
func (DrawRotate) drawCommand()    {}
func (DrawReset) drawCommand()     {}

// TextAlignment is a bit set of text anchor flags.
type TextAlignment uint8

const (
	AlignCenter TextAlignment = 1 << iota
	AlignTop
	AlignBottom
	AlignLeft
	AlignRight

	AlignTopLeft     = AlignTop | AlignLeft
	AlignTopRight    = AlignTop | AlignRight
	AlignBottomLeft  = AlignBottom | AlignLeft
	AlignBottomRight = AlignBottom | AlignRight
)

// Has reports whether all bits of f are set.
func (a TextAlignment) Has(f TextAlignment) bool { return a&f == f }

var alignNames = map[string]TextAlignment{
	"center":      AlignCenter,
	"top":         AlignTop,
	"bottom":      AlignBottom,
	"left":        AlignLeft,
	"right":       AlignRight,
	"topLeft":     AlignTopLeft,
	"topRight":    AlignTopRight,
	"bottomLeft":  AlignBottomLeft,
	"bottomRight": AlignBottomRight,
}

// ParseAlign resolves an alignment name such as "topLeft".
func ParseAlign(name string) (TextAlignment, bool) {
	if len(name) > 0 && name[0] == '@' {
		name = name[1:]
	}
	a, ok := alignNames[name]
	return a, ok
}

// PackColor packs 0..1 channel values into the number representation used by
// packcolor and %rrggbbaa literals.
func PackColor(r, g, b, a float64) float64 {
	rgba := uint32(channel(r))<<24 | uint32(channel(g))<<16 | uint32(channel(b))<<8 | uint32(channel(a))
	return math.Float64frombits(uint64(rgba))
}

// UnpackColor is the inverse of PackColor, returning 0..255 channels.
func UnpackColor(packed float64) (r, g, b, a uint8) {
	rgba := uint32(math.Float64bits(packed))
	return uint8(rgba >> 24), uint8(rgba >> 16), uint8(rgba >> 8), uint8(rgba)
}

func channel(f float64) uint8 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f * 255)
}

func clampByte(f float64) uint8 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f)
}

func clampInt16(f float64) int16 {
	switch {
	case math.IsNaN(f):
		return 0
	case f <= math.MinInt16:
		return math.MinInt16
	case f >= math.MaxInt16:
		return math.MaxInt16
	}
	return int16(f)
}
