package hal

import (
	"strings"
	"testing"
	"time"
)

type memFlash struct {
	buf []byte
	bs  uint32
}

func newMemFlash(size, bs uint32) *memFlash {
	f := &memFlash{buf: make([]byte, size), bs: bs}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.buf)) }
func (f *memFlash) EraseBlockBytes() uint32 { return f.bs }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.buf[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	for i := range p {
		if f.buf[int(off)+i]&p[i] != p[i] {
			return i, ErrFlashWriteRequiresErase
		}
		f.buf[int(off)+i] = p[i]
	}
	return len(p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	for i := off; i < off+size; i++ {
		f.buf[i] = 0xFF
	}
	return nil
}

func TestPanicRoundTrip(t *testing.T) {
	f := newMemFlash(4*4096, 4096)

	if _, ok, err := TakePanic(f); err != nil || ok {
		t.Fatalf("TakePanic() on blank flash = %v, %v", ok, err)
	}

	want := PanicRecord{Message: "index out of range", Uptime: 3 * time.Second}
	if err := SavePanic(f, want); err != nil {
		t.Fatalf("SavePanic: %v", err)
	}
	got, ok, err := TakePanic(f)
	if err != nil || !ok {
		t.Fatalf("TakePanic() = %v, %v", ok, err)
	}
	if got != want {
		t.Fatalf("TakePanic() = %+v, want %+v", got, want)
	}
	if _, ok, _ := TakePanic(f); ok {
		t.Fatal("record reported twice")
	}
}

func TestPanicTruncatesLongMessage(t *testing.T) {
	f := newMemFlash(2*256, 256)

	if err := SavePanic(f, PanicRecord{Message: strings.Repeat("é", 400)}); err != nil {
		t.Fatalf("SavePanic: %v", err)
	}
	got, ok, err := TakePanic(f)
	if err != nil || !ok {
		t.Fatalf("TakePanic() = %v, %v", ok, err)
	}
	if len(got.Message) == 0 || len(got.Message) > 256 {
		t.Fatalf("len(Message) = %d, want 1..256", len(got.Message))
	}
	if !strings.HasPrefix(strings.Repeat("é", 400), got.Message) {
		t.Fatal("truncated message is not a prefix")
	}
}

func TestPanicNoSector(t *testing.T) {
	if err := SavePanic(nil, PanicRecord{}); err != ErrNoPanicSector {
		t.Fatalf("SavePanic(nil) = %v, want %v", err, ErrNoPanicSector)
	}
}
