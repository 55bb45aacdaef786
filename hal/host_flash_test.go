//go:build !tinygo

package hal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHostFlashNOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.flash")
	f, err := newHostFlash(path)
	if err != nil {
		t.Fatalf("newHostFlash: %v", err)
	}
	defer f.close()

	b := make([]byte, 2)
	if _, err := f.ReadAt(b, 0); err != nil || b[0] != 0xFF || b[1] != 0xFF {
		t.Fatalf("fresh image = % x, %v, want erased", b, err)
	}
	if _, err := f.WriteAt([]byte{0x0F}, 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xF0}, 0); !errors.Is(err, ErrFlashWriteRequiresErase) {
		t.Fatalf("WriteAt(set bits) = %v, want %v", err, ErrFlashWriteRequiresErase)
	}
	if err := f.Erase(1, hostFlashEraseBlockBytes); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("Erase(unaligned) = %v, want %v", err, os.ErrInvalid)
	}
	if _, err := f.ReadAt(b, f.SizeBytes()-1); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("ReadAt(past end) = %v, want %v", err, os.ErrInvalid)
	}
}

func TestHostFlashKeepsPanicAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.flash")
	f, err := newHostFlash(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SavePanic(f, PanicRecord{Message: "boom", Uptime: time.Second}); err != nil {
		t.Fatalf("SavePanic: %v", err)
	}
	f.close()

	f, err = newHostFlash(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.close()
	rec, ok, err := TakePanic(f)
	if err != nil || !ok || rec.Message != "boom" {
		t.Fatalf("TakePanic() = %+v, %v, %v, want boom", rec, ok, err)
	}
}

func TestHostFlashRejectsForeignImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.flash")
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := newHostFlash(path); err == nil {
		t.Fatal("newHostFlash(short image) = nil error")
	}
}
