// Package config describes the board layout: which program runs, how fast,
// which buildings the processor links to, and the named pin constants.
//
// Board files are TOML or YAML, chosen by extension. Firmware builds only
// carry Default.
package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid")
)

// pinCount is the size of the RP2040 GPIO bank.
const pinCount = 30

// Config is the board description.
type Config struct {
	// Program is an embedded program name or a path to a .mlog or .bin file.
	Program    string  `toml:"program" yaml:"program"`
	IPT        float64 `toml:"ipt" yaml:"ipt"`
	Privileged bool    `toml:"privileged" yaml:"privileged"`

	Display Display `toml:"display" yaml:"display"`
	Serial  Serial  `toml:"serial" yaml:"serial"`
	// MemoryCells sizes the memory-cell building.
	MemoryCells int `toml:"memory_cells" yaml:"memory_cells"`

	// Links overrides the processor's link list. Names may be empty.
	Links []Link `toml:"links" yaml:"links"`
	// Pins are extra global constants such as "@pinLED" = 25.
	Pins map[string]int `toml:"pins" yaml:"pins"`
}

type Display struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	Width   int  `toml:"width" yaml:"width"`
	Height  int  `toml:"height" yaml:"height"`
}

type Serial struct {
	// UART is the host serial device standing in for UART0. Empty is stdin/stdout.
	UART     string `toml:"uart" yaml:"uart"`
	UARTBaud int    `toml:"uart_baud" yaml:"uart_baud"`
	// USB is the websocket listen address standing in for USB CDC. Empty disables it.
	USB string `toml:"usb" yaml:"usb"`
}

type Link struct {
	Name string `toml:"name" yaml:"name"`
	X    int16  `toml:"x" yaml:"x"`
	Y    int16  `toml:"y" yaml:"y"`
}

// Default returns the layout compiled into the firmware.
func Default() Config {
	return Config{
		Program: "blink",
		IPT:     1,
		Display: Display{Enabled: true, Width: 240, Height: 320},
		Serial:  Serial{UARTBaud: 115200},

		MemoryCells: 64,
		Links: []Link{
			{Name: "gpio", X: 1, Y: 0},
			{Name: "uart0", X: 2, Y: 0},
			{Name: "serial", X: 3, Y: 0},
			{Name: "display1", X: 4, Y: 0},
			{Name: "cell1", X: 5, Y: 0},
		},
		Pins: map[string]int{"@pinLED": 25},
	}
}

// Normalize fills zero values that have a sensible default.
func (c *Config) Normalize() {
	if c.IPT <= 0 {
		c.IPT = 1
	}
	if c.MemoryCells <= 0 {
		c.MemoryCells = 64
	}
	if c.Serial.UARTBaud <= 0 {
		c.Serial.UARTBaud = 115200
	}
	if c.Display.Width <= 0 {
		c.Display.Width = 240
	}
	if c.Display.Height <= 0 {
		c.Display.Height = 320
	}
	c.Program = strings.TrimSpace(c.Program)
}

// Validate reports the first configuration error.
func (c Config) Validate() error {
	if c.Program == "" {
		return fmt.Errorf("%w: program is empty", ErrInvalid)
	}
	seen := map[[2]int16]bool{}
	for _, l := range c.Links {
		p := [2]int16{l.X, l.Y}
		if p == [2]int16{} {
			return fmt.Errorf("%w: link %q points at the processor", ErrInvalid, l.Name)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate link to (%d,%d)", ErrInvalid, l.X, l.Y)
		}
		seen[p] = true
	}
	for name, pin := range c.Pins {
		if !strings.HasPrefix(name, "@") {
			return fmt.Errorf("%w: pin constant %q must start with @", ErrInvalid, name)
		}
		if pin < 0 || pin >= pinCount {
			return fmt.Errorf("%w: pin constant %s = %d out of range", ErrInvalid, name, pin)
		}
	}
	return nil
}
