package app

import (
	"image/color"
	"strings"

	"mlogpico/hal"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// fbConsole adapts a hal.Framebuffer to tinyterm.
type fbConsole struct {
	fb hal.Framebuffer
}

func (d fbConsole) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbConsole) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	hal.PutRGB565(d.fb.Buffer(), iy*d.fb.StrideBytes()+ix*2, hal.RGB565(c))
}

func (d fbConsole) Display() error { return d.fb.Present() }

func (d fbConsole) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	for yy := y; yy < y+height; yy++ {
		for xx := x; xx < x+width; xx++ {
			d.SetPixel(xx, yy, c)
		}
	}
	return nil
}

func (d fbConsole) SetScroll(int16) {}

func (d fbConsole) SetRotation(drivers.Rotation) error { return hal.ErrNotImplemented }

// console is a terminal plus the size of its character grid. The adapter
// cannot scroll, so text written to it must fit the grid.
type console struct {
	*tinyterm.Terminal
	cols, rows int
}

// newConsole returns a terminal on fb, or nil when fb cannot host one.
func newConsole(fb hal.Framebuffer) *console {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 || fb.Buffer() == nil {
		return nil
	}
	font := &proggy.TinySZ8pt7b
	height, offset := consoleMetrics(font)
	_, cellWidth := tinyfont.LineWidth(font, "0")
	if cellWidth == 0 {
		return nil
	}
	fb.ClearRGB(0, 0, 0)
	t := tinyterm.NewTerminal(fbConsole{fb: fb})
	t.Configure(&tinyterm.Config{
		Font:       font,
		FontHeight: height,
		FontOffset: offset,
	})
	return &console{
		Terminal: t,
		cols:     fb.Width() / int(cellWidth),
		rows:     fb.Height() / int(height),
	}
}

// fit wraps s at the grid width and drops the lines below the last row.
func (c *console) fit(s string) string {
	return fitGrid(s, c.cols, c.rows)
}

func fitGrid(s string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	lines := make([]string, 0, rows)
	for _, line := range strings.Split(s, "\n") {
		r := []rune(strings.TrimRight(line, "\r"))
		for {
			if len(lines) == rows {
				return strings.Join(lines, "\n")
			}
			n := min(len(r), cols)
			lines = append(lines, string(r[:n]))
			r = r[n:]
			if len(r) == 0 {
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// consoleMetrics returns the cell height and baseline offset for f.
func consoleMetrics(f tinyfont.Fonter) (height, offset int16) {
	var ascent, descent int16
	for _, r := range "AHMgjpqy|" {
		info := f.GetGlyph(r).Info()
		if a := -int16(info.YOffset); a > ascent {
			ascent = a
		}
		if d := int16(info.Height) + int16(info.YOffset); d > descent {
			descent = d
		}
	}
	return ascent + descent + 1, ascent
}
