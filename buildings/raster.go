package buildings

import (
	"image/color"
	"math"
	"sort"

	"mlogpico/hal"
)

// surface rasterizes into an RGB565 framebuffer. Every primitive is clipped
// to the buffer, so callers may pass any coordinates.
//
// It satisfies drivers.Displayer for tinyfont.
type surface struct {
	fb     hal.Framebuffer
	w, h   int
	stride int
}

func newSurface(fb hal.Framebuffer) *surface {
	return &surface{fb: fb, w: fb.Width(), h: fb.Height(), stride: fb.StrideBytes()}
}

func (s *surface) Size() (x, y int16) { return int16(s.w), int16(s.h) }

func (s *surface) SetPixel(x, y int16, c color.RGBA) {
	s.setPixel(int(x), int(y), hal.RGB565(c))
}

func (s *surface) Display() error { return nil }

func (s *surface) clear(c color.RGBA) {
	s.fb.ClearRGB(c.R, c.G, c.B)
}

func (s *surface) setPixel(x, y int, pixel uint16) {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return
	}
	hal.PutRGB565(s.fb.Buffer(), y*s.stride+x*2, pixel)
}

// fillRect fills [x0, x0+w) x [y0, y0+h).
func (s *surface) fillRect(x0, y0, w, h int, pixel uint16) {
	x1, y1 := x0+w, y0+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > s.w {
		x1 = s.w
	}
	if y1 > s.h {
		y1 = s.h
	}
	if x0 >= x1 || y0 >= y1 {
		return
	}
	buf := s.fb.Buffer()
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for y := y0; y < y1; y++ {
		row := y*s.stride + x0*2
		for off := row; off < row+(x1-x0)*2; off += 2 {
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

// strokeRect draws a rectangle outline of the given width centered on the
// rectangle's edge: width/2 pixels outside and the rest inside.
func (s *surface) strokeRect(x0, y0, w, h, width int, pixel uint16) {
	if width <= 0 || w <= 0 || h <= 0 {
		return
	}
	out := width / 2
	in := width - out
	ox, oy, ow, oh := x0-out, y0-out, w+2*out, h+2*out
	ix, iy, iw, ih := x0+in, y0+in, w-2*in, h-2*in
	if iw <= 0 || ih <= 0 {
		s.fillRect(ox, oy, ow, oh, pixel)
		return
	}
	s.fillRect(ox, oy, ow, iy-oy, pixel)
	s.fillRect(ox, iy+ih, ow, oy+oh-(iy+ih), pixel)
	s.fillRect(ox, iy, ix-ox, ih, pixel)
	s.fillRect(ix+iw, iy, ox+ow-(ix+iw), ih, pixel)
}

// line draws a Bresenham line with a square brush of the given width.
func (s *surface) line(x0, y0, x1, y1, width int, pixel uint16) {
	if width <= 0 {
		return
	}
	off := (width - 1) / 2
	// A brush never reaches width pixels past the line.
	if max(x0, x1)+width < 0 || min(x0, x1)-width >= s.w || max(y0, y1)+width < 0 || min(y0, y1)-width >= s.h {
		return
	}
	plot := func(x, y int) {
		if width == 1 {
			s.setPixel(x, y, pixel)
			return
		}
		s.fillRect(x-off, y-off, width, width, pixel)
	}

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

type vertex struct{ x, y int }

// fillTriangle scanline-fills the triangle including its edges.
func (s *surface) fillTriangle(a, b, c vertex, pixel uint16) {
	pts := []vertex{a, b, c}
	sort.Slice(pts, func(i, j int) bool { return pts[i].y < pts[j].y })
	top, mid, bot := pts[0], pts[1], pts[2]
	if bot.y == top.y {
		minX, maxX := top.x, top.x
		for _, p := range pts[1:] {
			minX = min(minX, p.x)
			maxX = max(maxX, p.x)
		}
		s.fillRect(minX, top.y, maxX-minX+1, 1, pixel)
		return
	}
	for y := max(top.y, 0); y <= bot.y && y < s.h; y++ {
		var xa, xb float64
		if y < mid.y {
			xa = edgeX(top, mid, y)
		} else {
			xa = edgeX(mid, bot, y)
		}
		xb = edgeX(top, bot, y)
		l, r := int(math.Round(xa)), int(math.Round(xb))
		if l > r {
			l, r = r, l
		}
		s.fillRect(l, y, r-l+1, 1, pixel)
	}
}

func edgeX(a, b vertex, y int) float64 {
	if b.y == a.y {
		return float64(b.x)
	}
	t := float64(y-a.y) / float64(b.y-a.y)
	return float64(a.x) + t*float64(b.x-a.x)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
