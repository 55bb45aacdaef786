//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers/st7789"
)

const (
	st7789Width  = 240
	st7789Height = 320
	// Rows converted and sent per DrawRGBBitmap8 call.
	st7789Strip = 16
)

// st7789Framebuffer keeps a little-endian RGB565 copy in RAM and pushes it
// to the panel in strips on Present.
type st7789Framebuffer struct {
	dev   st7789.Device
	w, h  int
	buf   []byte
	strip []byte
}

// newST7789 wires a 240x320 ST7789 on SPI1 (SCK GP10, SDO GP11, CS GP9,
// DC GP8, RST GP12, BL GP13).
func newST7789() (*st7789Framebuffer, error) {
	if err := machine.SPI1.Configure(machine.SPIConfig{
		Frequency: 62_500_000,
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		Mode:      0,
	}); err != nil {
		return nil, fmt.Errorf("st7789: spi: %w", err)
	}
	dev := st7789.New(machine.SPI1, machine.GP12, machine.GP8, machine.GP9, machine.GP13)
	dev.Configure(st7789.Config{
		Width:    st7789Width,
		Height:   st7789Height,
		Rotation: st7789.NO_ROTATION,
	})
	return &st7789Framebuffer{
		dev:   dev,
		w:     st7789Width,
		h:     st7789Height,
		buf:   make([]byte, st7789Width*st7789Height*2),
		strip: make([]byte, st7789Width*st7789Strip*2),
	}, nil
}

func (f *st7789Framebuffer) Width() int          { return f.w }
func (f *st7789Framebuffer) Height() int         { return f.h }
func (f *st7789Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *st7789Framebuffer) StrideBytes() int    { return f.w * 2 }
func (f *st7789Framebuffer) Buffer() []byte      { return f.buf }

func (f *st7789Framebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *st7789Framebuffer) Present() error {
	stride := f.w * 2
	for y := 0; y < f.h; y += st7789Strip {
		rows := st7789Strip
		if y+rows > f.h {
			rows = f.h - y
		}
		src := f.buf[y*stride : (y+rows)*stride]
		dst := f.strip[:len(src)]
		// The panel takes big-endian pixels.
		for i := 0; i+1 < len(src); i += 2 {
			dst[i] = src[i+1]
			dst[i+1] = src[i]
		}
		if err := f.dev.DrawRGBBitmap8(0, int16(y), dst, int16(f.w), int16(rows)); err != nil {
			return fmt.Errorf("st7789: present rows %d-%d: %w", y, y+rows, err)
		}
	}
	return nil
}
