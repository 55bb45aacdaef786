//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"mlogpico/app"
	"mlogpico/config"
	"mlogpico/hal"
	"mlogpico/internal/buildinfo"
)

func main() {
	var headless hal.HeadlessConfig
	var hostCfg hal.HostConfig
	var configPath, program string
	var ipt float64
	var list, version bool
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&headless.StepBudget, "steps", 1, "Scheduler iterations per headless tick.")
	flag.StringVar(&configPath, "config", "", "Board file (.toml, .yaml).")
	flag.StringVar(&program, "program", "", "Embedded program name, or a .mlog/.bin file.")
	flag.Float64Var(&ipt, "ipt", 0, "Instructions per tick (overrides the board file).")
	flag.StringVar(&hostCfg.UARTPort, "uart", "", "Serial device for UART0 (default stdin/stdout).")
	flag.StringVar(&hostCfg.USBAddr, "usb", "", "Listen address of the websocket USB serial port.")
	flag.StringVar(&hostCfg.FlashPath, "flash", "", "Flash image backing panic records.")
	flag.IntVar(&hostCfg.Verbosity, "v", 0, "Log verbosity.")
	flag.BoolVar(&list, "list", false, "List the embedded programs.")
	flag.BoolVar(&version, "version", false, "Print the build version.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}
	if list {
		fmt.Println(strings.Join(app.Programs(), "\n"))
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if program != "" {
		cfg.Program = program
	}
	if ipt > 0 {
		cfg.IPT = ipt
	}
	if hostCfg.UARTPort == "" {
		hostCfg.UARTPort = cfg.Serial.UART
	}
	if hostCfg.USBAddr == "" {
		hostCfg.USBAddr = cfg.Serial.USB
	}
	hostCfg.UARTBaud = cfg.Serial.UARTBaud
	hostCfg.DisplayWidth = cfg.Display.Width
	hostCfg.DisplayHeight = cfg.Display.Height
	hostCfg.NoDisplay = !cfg.Display.Enabled

	newApp := func(h hal.HAL) (func() error, error) {
		app.ReportPanic(h)
		fw, err := app.New(h, cfg)
		if err != nil {
			return nil, err
		}
		return fw.Step, nil
	}

	if headless.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, hostCfg, newApp, headless)
		if errors.Is(err, context.Canceled) {
			return
		}
		stop()
		os.Exit(hal.ExitCode(err))
	}

	os.Exit(hal.ExitCode(hal.RunWindow(hostCfg, newApp)))
}
