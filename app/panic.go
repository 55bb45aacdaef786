package app

import (
	"fmt"
	"io"
	"time"

	"mlogpico/hal"
)

// panicReportDelay keeps a boot panic report on screen before the reset.
var panicReportDelay = time.Second

// crash persists v as the panic record and resets the board.
func crash(h hal.HAL, v any) {
	rec := hal.PanicRecord{Message: fmt.Sprint(v), Uptime: h.Clock()()}
	if l := h.Logger(); l != nil {
		l.WriteLineString("panic: " + rec.Message)
	}
	if err := hal.SavePanic(h.Flash(), rec); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("panic: cannot persist record: " + err.Error())
		}
	}
	h.Rebooter().Reset()
}

// ReportPanic reports a panic persisted by the previous boot on the UART and
// the display, then resets. It returns only when there is nothing to report.
func ReportPanic(h hal.HAL) {
	rec, ok, err := hal.TakePanic(h.Flash())
	if err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("panic record: " + err.Error())
		}
		return
	}
	if !ok {
		return
	}

	if u := h.UART(); u != nil {
		_, _ = io.WriteString(u, rec.Message+"\r\n")
	}
	if fb := framebuffer(h); fb != nil {
		if c := newConsole(fb); c != nil {
			report := fmt.Sprintf("panic after %s\n\n%s", rec.Uptime.Round(time.Millisecond), rec.Message)
			fmt.Fprint(c, "\x1b[31m"+c.fit(report)+"\x1b[0m")
			_ = fb.Present()
		}
	}

	time.Sleep(panicReportDelay)
	h.Rebooter().Reset()
}
