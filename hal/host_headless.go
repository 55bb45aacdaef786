//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	// StepBudget is the number of firmware loop iterations per tick.
	StepBudget int
}

// RunHeadless runs the firmware without opening a window.
//
// newApp is called once with the HAL and returns the per-iteration step.
func RunHeadless(ctx context.Context, hostCfg HostConfig, newApp func(HAL) (func() error, error), cfg HeadlessConfig) (err error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}
	hostCfg.Hz = cfg.Hz
	hostCfg.FrameClock = true

	hh, err := NewHost(hostCfg)
	if err != nil {
		return err
	}
	h := hh.(*hostHAL)
	defer h.close()
	defer recoverReboot(&err)

	step, err := newApp(h)
	if err != nil {
		return err
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.clock.step(1)
			for i := 0; i < cfg.StepBudget; i++ {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
