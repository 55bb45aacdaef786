//go:build !tinygo

package hal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

const (
	hostFlashDefaultPath = "mlogpico.flash"
	// hostFlashSizeBytes matches the data area left on a 2 MiB Pico after a
	// typical firmware image.
	hostFlashSizeBytes       = 256 * 1024
	hostFlashEraseBlockBytes = 4096
)

var ErrFlashWriteRequiresErase = errors.New("flash write requires erase")

// hostFlash is NOR flash emulated in a file: erase sets bits, writes may
// only clear them.
type hostFlash struct {
	mu     sync.Mutex
	f      *os.File
	size   uint32
	erased []byte
}

// newHostFlash opens or creates the image at path. An empty path falls back
// to $MLOGPICO_FLASH_PATH, then to mlogpico.flash.
func newHostFlash(path string) (*hostFlash, error) {
	if path == "" {
		path = os.Getenv("MLOGPICO_FLASH_PATH")
	}
	if path == "" {
		path = hostFlashDefaultPath
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("flash image: %w", err)
	}
	hf := &hostFlash{
		f:      f,
		size:   hostFlashSizeBytes,
		erased: bytes.Repeat([]byte{0xFF}, hostFlashEraseBlockBytes),
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flash image: %w", err)
	}
	switch {
	case st.Size() == 0:
		if err := hf.eraseLocked(0, hf.size); err != nil {
			_ = f.Close()
			return nil, err
		}
	case st.Size() != int64(hf.size):
		_ = f.Close()
		return nil, fmt.Errorf("flash image %s: size %d, want %d", path, st.Size(), hf.size)
	}
	return hf, nil
}

func (f *hostFlash) SizeBytes() uint32       { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 { return hostFlashEraseBlockBytes }

func (f *hostFlash) check(op string, off uint32, n int) error {
	if f.f == nil {
		return fmt.Errorf("flash %s: %w", op, os.ErrClosed)
	}
	if uint64(off)+uint64(n) > uint64(f.size) {
		return fmt.Errorf("flash %s at %d+%d: %w", op, off, n, os.ErrInvalid)
	}
	return nil
}

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("read", off, len(p)); err != nil {
		return 0, err
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("write", off, len(p)); err != nil {
		return 0, err
	}
	cur := make([]byte, len(p))
	if _, err := f.f.ReadAt(cur, int64(off)); err != nil {
		return 0, fmt.Errorf("flash write at %d: %w", off, err)
	}
	for i := range p {
		if cur[i]&p[i] != p[i] {
			return 0, ErrFlashWriteRequiresErase
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("erase", off, int(size)); err != nil {
		return err
	}
	if off%hostFlashEraseBlockBytes != 0 || size%hostFlashEraseBlockBytes != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	return f.eraseLocked(off, size)
}

func (f *hostFlash) eraseLocked(off, size uint32) error {
	for end := off + size; off < end; off += hostFlashEraseBlockBytes {
		if _, err := f.f.WriteAt(f.erased, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
	}
	return nil
}

func (f *hostFlash) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f != nil {
		_ = f.f.Close()
		f.f = nil
	}
}
