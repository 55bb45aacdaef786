package hal

import "image/color"

// RGB565 packs c into a PixelFormatRGB565 pixel. Alpha is ignored.
func RGB565(c color.RGBA) uint16 { return rgb565(c.R, c.G, c.B) }

// PutRGB565 stores pixel little-endian at byte offset off of buf. Offsets
// that do not fit are ignored.
func PutRGB565(buf []byte, off int, pixel uint16) {
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}
