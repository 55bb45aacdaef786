package buildings

import (
	"errors"
	"fmt"
	"image/color"

	"mlogpico/hal"
	"mlogpico/logic"
)

var ErrDisplayFormat = errors.New("buildings: display needs an RGB565 framebuffer")

// resetColor is the background of a freshly placed logic display.
var resetColor = color.RGBA{R: 0x56, G: 0x56, B: 0x66, A: 0xFF}

// Display renders draw commands onto a framebuffer.
//
// Logic coordinates start at (1, 1) in the bottom-left corner; they are
// shifted by the current translation and flipped onto the device's
// top-left origin. Colors, stroke width and translation persist across
// flushes.
type Display struct {
	logic.Unsupported

	fb   hal.Framebuffer
	surf *surface
	text textRenderer

	ink         color.RGBA
	hasInk      bool
	strokeWidth int
	tx, ty      int
	operations  int
}

// NewDisplay clears fb and presents it. fb must be an RGB565 framebuffer
// with a backing buffer, otherwise ErrDisplayFormat is returned.
func NewDisplay(fb hal.Framebuffer) (*Display, error) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 || fb.Buffer() == nil {
		return nil, ErrDisplayFormat
	}
	d := &Display{
		fb:          fb,
		surf:        newSurface(fb),
		text:        newTextRenderer(),
		ink:         color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		hasInk:      true,
		strokeWidth: 1,
	}
	d.surf.clear(resetColor)
	if err := fb.Present(); err != nil {
		return nil, fmt.Errorf("buildings: display: %w", err)
	}
	return d, nil
}

// Operations returns the number of completed drawflush batches.
func (d *Display) Operations() int { return d.operations }

func (d *Display) point(x, y int) (int, int) {
	px := x + d.tx - 1
	py := y + d.ty - 1
	return px, d.surf.h - py - 1
}

// DrawFlush renders the draw buffer in order and presents the frame.
func (d *Display) DrawFlush(st *logic.ProcessorState, _ *logic.VM) logic.Result {
	for _, cmd := range st.DrawBuffer() {
		d.draw(cmd)
	}
	d.operations++
	if err := d.fb.Present(); err != nil {
		panic(fmt.Sprintf("display: present: %v", err))
	}
	return logic.Yield
}

func (d *Display) draw(cmd logic.DrawCommand) {
	pixel := hal.RGB565(d.ink)
	switch c := cmd.(type) {
	case logic.DrawClear:
		d.surf.clear(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	case logic.DrawColor:
		d.hasInk = c.A > 0
		d.ink = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	case logic.DrawStroke:
		d.strokeWidth = int(c.Width)
	case logic.DrawLine:
		if !d.hasInk {
			return
		}
		x1, y1 := d.point(int(c.X1), int(c.Y1))
		x2, y2 := d.point(int(c.X2), int(c.Y2))
		d.surf.line(x1, y1, x2, y2, d.strokeWidth, pixel)
	case logic.DrawRect:
		if !d.hasInk || c.Width <= 0 || c.Height <= 0 {
			return
		}
		// The anchor is the bottom-left corner; the device wants top-left.
		x, y := d.point(int(c.X), int(c.Y)+int(c.Height))
		x++
		if c.Fill {
			d.surf.fillRect(x, y, int(c.Width), int(c.Height), pixel)
		} else {
			d.surf.strokeRect(x, y, int(c.Width), int(c.Height), d.strokeWidth, pixel)
		}
	case logic.DrawTriangle:
		if !d.hasInk {
			return
		}
		x1, y1 := d.point(int(c.X1), int(c.Y1))
		x2, y2 := d.point(int(c.X2), int(c.Y2))
		x3, y3 := d.point(int(c.X3), int(c.Y3))
		d.surf.fillTriangle(vertex{x1, y1}, vertex{x2, y2}, vertex{x3, y3}, pixel)
	case logic.DrawPrint:
		if !d.hasInk || c.Text == "" {
			return
		}
		x, y := d.point(int(c.X)+1, int(c.Y)-2)
		d.text.draw(d.surf, x, y, c.Align, c.Text, d.ink)
	case logic.DrawTranslate:
		d.tx += int(c.X)
		d.ty += int(c.Y)
	case logic.DrawReset:
		d.tx, d.ty = 0, 0
	case logic.DrawPoly, logic.DrawImage, logic.DrawScale, logic.DrawRotate:
		// Not rendered.
	}
}

// Sensor reports the surface size and the drawflush count.
func (d *Display) Sensor(_ *logic.ProcessorState, _ *logic.VM, a logic.Access) (logic.Value, bool) {
	switch a {
	case logic.AccessDisplayWidth:
		return logic.Num(float64(d.surf.w)), true
	case logic.AccessDisplayHeight:
		return logic.Num(float64(d.surf.h)), true
	case logic.AccessOperations:
		return logic.Num(float64(d.operations)), true
	}
	return logic.Null, false
}
