//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
)

// rp2Flash is the flash data area after the firmware image. machine.Flash
// offsets already start past the image, so offset 0 is the first free block.
type rp2Flash struct {
	size  uint32
	block uint32
}

func newRP2Flash() Flash {
	return &rp2Flash{
		size:  clampU32(machine.Flash.Size()),
		block: clampU32(machine.Flash.EraseBlockSize()),
	}
}

func clampU32(v int64) uint32 {
	switch {
	case v <= 0:
		return 0
	case v > int64(^uint32(0)):
		return ^uint32(0)
	}
	return uint32(v)
}

func (f *rp2Flash) SizeBytes() uint32       { return f.size }
func (f *rp2Flash) EraseBlockBytes() uint32 { return f.block }

func (f *rp2Flash) ReadAt(p []byte, off uint32) (int, error) {
	if uint64(off)+uint64(len(p)) > uint64(f.size) {
		return 0, fmt.Errorf("flash read at %d+%d: out of range", off, len(p))
	}
	return machine.Flash.ReadAt(p, int64(off))
}

func (f *rp2Flash) WriteAt(p []byte, off uint32) (int, error) {
	if uint64(off)+uint64(len(p)) > uint64(f.size) {
		return 0, fmt.Errorf("flash write at %d+%d: out of range", off, len(p))
	}
	return machine.Flash.WriteAt(p, int64(off))
}

func (f *rp2Flash) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	if f.block == 0 {
		return ErrNotImplemented
	}
	if off%f.block != 0 || size%f.block != 0 || uint64(off)+uint64(size) > uint64(f.size) {
		return fmt.Errorf("flash erase off=%d size=%d: misaligned or out of range", off, size)
	}
	return machine.Flash.EraseBlocks(int64(off/f.block), int64(size/f.block))
}
