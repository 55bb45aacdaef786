//go:build !tinygo && cgo

package hal

import (
	"errors"
	"image"

	"mlogpico/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows the display framebuffer.
// It blocks until the window closes or the firmware resets.
func RunWindow(hostCfg HostConfig, newApp func(HAL) (func() error, error)) (err error) {
	if hostCfg.NoDisplay {
		return errors.New("window mode needs the display, use -headless")
	}
	hostCfg.FrameClock = false
	hh, err := NewHost(hostCfg)
	if err != nil {
		return err
	}
	h := hh.(*hostHAL)
	defer h.close()

	step, err := func() (step func() error, err error) {
		defer recoverReboot(&err)
		return newApp(h)
	}()
	if err != nil {
		return err
	}

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("mlog-pico (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	frame   uint64
	step    func() error
}

func (g *hostGame) Update() (err error) {
	defer recoverReboot(&err)
	if g.step != nil {
		return g.step()
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
		g.frame = 0
	}

	frame := fb.snapshotRGB565(g.scratch)
	if frame == g.frame {
		screen.DrawImage(g.fbImg, nil)
		return
	}
	g.frame = frame

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
