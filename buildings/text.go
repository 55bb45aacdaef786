package buildings

import (
	"image/color"
	"strings"

	"mlogpico/logic"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// textLineHeight is the distance between baselines of consecutive lines.
const textLineHeight = 13

type fontMetrics struct {
	ascent, descent int
}

// measureFont derives the ascent and descent from a set of tall and
// descending glyphs.
func measureFont(f tinyfont.Fonter) fontMetrics {
	var m fontMetrics
	for _, r := range "AHMbdfghjklpqy|" {
		info := f.GetGlyph(r).Info()
		if a := -int(info.YOffset); a > m.ascent {
			m.ascent = a
		}
		if d := int(info.Height) + int(info.YOffset); d > m.descent {
			m.descent = d
		}
	}
	return m
}

type textRenderer struct {
	font    tinyfont.Fonter
	metrics fontMetrics
}

func newTextRenderer() textRenderer {
	f := &proggy.TinySZ8pt7b
	return textRenderer{font: f, metrics: measureFont(f)}
}

// draw renders text anchored at (x, y) in device coordinates. Horizontal
// alignment applies per line; the vertical anchor applies to the first line
// and following lines continue downward.
func (t textRenderer) draw(s *surface, x, y int, align logic.TextAlignment, text string, c color.RGBA) {
	var baseline int
	switch {
	case align.Has(logic.AlignBottom):
		baseline = y - t.metrics.descent
	case align.Has(logic.AlignTop):
		baseline = y + 1 + t.metrics.ascent
	default:
		baseline = y + (t.metrics.ascent-t.metrics.descent)/2
	}

	for _, line := range strings.Split(text, "\n") {
		if line != "" && baseline+t.metrics.descent >= 0 && baseline-t.metrics.ascent < s.h {
			_, w := tinyfont.LineWidth(t.font, line)
			width := int(w)
			x0 := x - width/2
			switch {
			case align.Has(logic.AlignLeft):
				x0 = x
			case align.Has(logic.AlignRight):
				// Right-aligned text ends one pixel left of the anchor.
				x0 = x - width
			}
			// Lines entirely off the surface are skipped before the
			// coordinates narrow to int16.
			if x0+width >= 0 && x0 < s.w {
				tinyfont.WriteLine(s, t.font, int16(x0), int16(baseline), line, c)
			}
		}
		baseline += textLineHeight
	}
}
