package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Program != "blink" || cfg.IPT != 1 {
		t.Fatalf("Default() program=%q ipt=%v, want blink/1", cfg.Program, cfg.IPT)
	}
	if cfg.Pins["@pinLED"] != 25 {
		t.Fatalf("@pinLED = %d, want 25", cfg.Pins["@pinLED"])
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if len(cfg.Links) != len(Default().Links) {
		t.Fatalf("links = %v, want defaults", cfg.Links)
	}
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "board.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Program != "print_usb" || cfg.IPT != 2.5 {
		t.Fatalf("program=%q ipt=%v, want print_usb/2.5", cfg.Program, cfg.IPT)
	}
	if cfg.Display.Enabled {
		t.Fatal("display enabled, want disabled by file")
	}
	if cfg.Display.Width != 240 {
		t.Fatalf("display width = %d, want default 240", cfg.Display.Width)
	}
	if cfg.Serial.USB != "127.0.0.1:7070" || cfg.Serial.UARTBaud != 115200 {
		t.Fatalf("serial = %+v", cfg.Serial)
	}
	if len(cfg.Links) != 2 || cfg.Links[1].Name != "" || cfg.Links[1].X != 3 {
		t.Fatalf("links = %+v, want the file's two links", cfg.Links)
	}
	if cfg.Pins["@pinButton"] != 15 || cfg.Pins["@pinLED"] != 25 {
		t.Fatalf("pins = %v, want file pins merged over defaults", cfg.Pins)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "board.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Program != "echo_usb" || cfg.MemoryCells != 16 {
		t.Fatalf("program=%q cells=%d, want echo_usb/16", cfg.Program, cfg.MemoryCells)
	}
	if cfg.Serial.UART != "/dev/ttyUSB0" || cfg.Serial.UARTBaud != 9600 {
		t.Fatalf("serial = %+v", cfg.Serial)
	}
	if cfg.Pins["@pinLED"] != 2 {
		t.Fatalf("@pinLED = %d, want 2", cfg.Pins["@pinLED"])
	}
	if len(cfg.Links) != len(Default().Links) {
		t.Fatalf("links = %v, want defaults", cfg.Links)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "bad_link.yaml")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("bad link: err = %v, want %v", err, ErrInvalid)
	}

	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("json: err = %v, want %v", err, ErrUnknownFormat)
	}

	if _, err := Load(filepath.Join("testdata", "missing.toml")); err == nil {
		t.Fatal("missing file: err = nil")
	}
}

func TestValidatePins(t *testing.T) {
	cfg := Default()
	cfg.Pins = map[string]int{"pinLED": 25}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("missing @: err = %v, want %v", err, ErrInvalid)
	}
	cfg.Pins = map[string]int{"@pinLED": 30}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("pin 30: err = %v, want %v", err, ErrInvalid)
	}
}
