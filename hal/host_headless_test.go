//go:build !tinygo

package hal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testHostConfig(t *testing.T) HostConfig {
	return HostConfig{FlashPath: filepath.Join(t.TempDir(), "test.flash"), NoDisplay: true}
}

func TestRunHeadlessTicks(t *testing.T) {
	var steps int
	var seen []time.Duration
	err := RunHeadless(context.Background(), testHostConfig(t), func(h HAL) (func() error, error) {
		if h.Display().Framebuffer() != nil {
			t.Error("NoDisplay host has a framebuffer")
		}
		clock := h.Clock()
		return func() error {
			steps++
			seen = append(seen, clock())
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000, Ticks: 3, StepBudget: 2})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 6 {
		t.Fatalf("steps = %d, want 6", steps)
	}
	if seen[0] != time.Millisecond || seen[5] != 3*time.Millisecond {
		t.Fatalf("frame clock = %v, want 1ms steps", seen)
	}
}

func TestRunHeadlessReboot(t *testing.T) {
	err := RunHeadless(context.Background(), testHostConfig(t), func(h HAL) (func() error, error) {
		return func() error {
			h.Rebooter().EnterBootloader()
			return nil
		}, nil
	}, HeadlessConfig{Hz: 1000})
	rb, ok := err.(ErrReboot)
	if !ok || !rb.Bootloader {
		t.Fatalf("RunHeadless() = %v, want a bootloader reboot", err)
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("ExitCode() = %d, want 3", code)
	}
	if code := ExitCode(ErrReboot{}); code != 2 {
		t.Fatalf("ExitCode(reset) = %d, want 2", code)
	}
}
