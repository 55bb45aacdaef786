package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mlogpico/config"
	"mlogpico/logic"
	"mlogpico/logic/mlog"
)

func boot(t *testing.T, h *fakeHAL, cfg config.Config) *Firmware {
	t.Helper()
	f, err := New(h, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func withProgram(t *testing.T, src string) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Program = path
	cfg.IPT = 50
	return cfg
}

func TestBlink(t *testing.T) {
	h := newFakeHAL()
	cfg := config.Default()
	cfg.Program = "blink"
	f := boot(t, h, cfg)

	led := h.pin(25)
	f.Step()
	if !led.level {
		t.Fatal("LED low after the first instruction, want high")
	}
	f.Step()
	if !led.level {
		t.Fatal("LED changed while waiting")
	}
	h.now = 600 * time.Millisecond
	f.Step()
	f.Step()
	if led.level {
		t.Fatal("LED high after the wait, want low")
	}
}

func TestEchoUSB(t *testing.T) {
	h := newFakeHAL()
	h.usb.inbox = [][]byte{{104, 105}}
	cfg := config.Default()
	cfg.Program = "echo_usb"
	cfg.IPT = 50
	f := boot(t, h, cfg)

	f.Step()
	f.Step()
	if got, want := string(h.usb.sent), "rx 104 105\n"; got != want {
		t.Fatalf("sent %q, want %q", got, want)
	}
	if !h.pin(25).level {
		t.Fatal("LED not lit while data flows")
	}
}

func TestPrintUART(t *testing.T) {
	h := newFakeHAL()
	cfg := config.Default()
	cfg.Program = "print"
	cfg.IPT = 50
	f := boot(t, h, cfg)

	f.Step()
	if got, want := string(h.uart.tx), "mlog-pico 1\n"; got != want {
		t.Fatalf("uart tx = %q, want %q", got, want)
	}
}

func TestDisplayProgram(t *testing.T) {
	h := newFakeHAL()
	cfg := config.Default()
	cfg.Program = "display"
	cfg.IPT = 100
	f := boot(t, h, cfg)

	f.Step()
	if f.Display() == nil || f.Display().Operations() != 1 {
		t.Fatal("display program did not flush a frame")
	}
	if !h.fb.lit() {
		t.Fatal("framebuffer is black after a frame")
	}
}

func TestStopEntersBootloader(t *testing.T) {
	h := newFakeHAL()
	f := boot(t, h, withProgram(t, "set a 1\nstop\n"))

	rb, ok := rebootOf(func() { f.Step() })
	if !ok || !rb.Bootloader {
		t.Fatalf("Step() reboot = %v, %v, want bootloader", rb, ok)
	}
	if _, ok := rebootOf(func() { ReportPanic(h) }); ok {
		t.Fatal("a bootloader request left a panic record")
	}
}

func TestPanicPersistedAndReported(t *testing.T) {
	panicReportDelay = 0
	h := newFakeHAL()
	f := boot(t, h, withProgram(t, "draw clear 0 0 0\ndrawflush display1\n"))

	h.fb.fail = errors.New("spi timeout")
	h.now = 3 * time.Second
	rb, ok := rebootOf(func() { f.Step() })
	if !ok || rb.Bootloader {
		t.Fatalf("Step() reboot = %v, %v, want reset", rb, ok)
	}
	if !h.log.contains("spi timeout") {
		t.Fatalf("log %q does not name the failure", h.log.lines)
	}

	h.fb.fail = nil
	if _, ok := rebootOf(func() { ReportPanic(h) }); !ok {
		t.Fatal("ReportPanic() did not reset")
	}
	if !strings.Contains(string(h.uart.tx), "spi timeout") || !strings.HasSuffix(string(h.uart.tx), "\r\n") {
		t.Fatalf("uart tx = %q, want the panic message", h.uart.tx)
	}
	if !h.fb.lit() {
		t.Fatal("panic report not drawn")
	}

	// The record is consumed by the report.
	if _, ok := rebootOf(func() { ReportPanic(h) }); ok {
		t.Fatal("second ReportPanic() reset again")
	}
}

func TestLinksToMissingBuildingsDropped(t *testing.T) {
	h := newFakeHAL()
	h.fb = nil
	cfg := config.Default()
	f := boot(t, h, cfg)

	if !h.log.contains(`dropping link "display1"`) {
		t.Fatalf("log %q, want the display link dropped", h.log.lines)
	}
	if f.Display() != nil {
		t.Fatal("Display() without a framebuffer")
	}
	if _, ok := f.VM().Building(DisplayPos); ok {
		t.Fatal("display building placed without a framebuffer")
	}
}

func TestNewErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Program = "nope"
	if _, err := New(newFakeHAL(), cfg); !errors.Is(err, ErrUnknownProgram) {
		t.Fatalf("New(unknown program) = %v, want %v", err, ErrUnknownProgram)
	}

	cfg = withProgram(t, "read x missing 0\n")
	cfg.Links = append(cfg.Links, config.Link{Name: "cell1", X: 5, Y: 0})
	if _, err := New(newFakeHAL(), cfg); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("New(duplicate link) = %v, want %v", err, config.ErrInvalid)
	}
}

func TestLoadProgram(t *testing.T) {
	names := Programs()
	if len(names) != 5 {
		t.Fatalf("Programs() = %v, want 5 programs", names)
	}
	for _, name := range names {
		if _, err := LoadProgram(name); err != nil {
			t.Fatalf("LoadProgram(%q): %v", name, err)
		}
	}

	prog, err := LoadProgram("blink")
	if err != nil {
		t.Fatal(err)
	}
	blob, err := logic.MarshalProgram(prog)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "blink.bin")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram(.bin): %v", err)
	}
	if len(got.Statements) != len(prog.Statements) {
		t.Fatalf("decoded %d statements, want %d", len(got.Statements), len(prog.Statements))
	}

	if _, err := LoadProgram(filepath.Join(t.TempDir(), "missing.mlog")); err == nil {
		t.Fatal("LoadProgram(missing file) = nil error")
	}
}

// The embedded blobs must match their sources; run go generate after editing
// a program.
func TestEmbeddedProgramsMatchSources(t *testing.T) {
	for _, name := range Programs() {
		src, err := os.ReadFile(filepath.Join("programs", name+".mlog"))
		if err != nil {
			t.Fatalf("%s: source missing: %v", name, err)
		}
		want, err := mlog.Parse(name, string(src))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := LoadProgram(name)
		if err != nil {
			t.Fatalf("LoadProgram(%q): %v", name, err)
		}
		wantBlob, err := logic.MarshalProgram(want)
		if err != nil {
			t.Fatal(err)
		}
		gotBlob, err := logic.MarshalProgram(got)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(gotBlob, wantBlob) {
			t.Fatalf("programs/%s.bin is stale, run go generate ./app", name)
		}
	}
}
