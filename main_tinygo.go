//go:build tinygo && baremetal && (rp2040 || rp2350)

package main

import (
	"context"

	"mlogpico/app"
	"mlogpico/config"
	"mlogpico/hal"
)

func main() {
	h := hal.New()
	app.ReportPanic(h)

	cfg := config.Default()
	cfg.Program = app.ProgramName
	fw, err := app.New(h, cfg)
	if err != nil {
		panic(err)
	}
	_ = fw.Run(context.Background())
}
