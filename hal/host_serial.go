//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tarm/serial"
)

const hostUARTRxLimit = 4096

// hostUART buffers whatever a background reader receives so Read never blocks.
type hostUART struct {
	mu     sync.Mutex
	rx     []byte
	w      io.Writer
	closer io.Closer
}

// newHostUART opens port with tarm/serial. An empty port maps the UART to stdin/stdout.
func newHostUART(port string, baud int) (*hostUART, error) {
	if port == "" {
		u := &hostUART{w: os.Stdout}
		go u.readLoop(os.Stdin)
		return u, nil
	}
	if baud <= 0 {
		baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	u := &hostUART{w: p, closer: p}
	go u.readLoop(p)
	return u, nil
}

func (u *hostUART) readLoop(r io.Reader) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			u.mu.Lock()
			u.rx = append(u.rx, buf[:n]...)
			// Drop the oldest bytes like a hardware FIFO overrun would.
			if over := len(u.rx) - hostUARTRxLimit; over > 0 {
				u.rx = append(u.rx[:0], u.rx[over:]...)
			}
			u.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (u *hostUART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

func (u *hostUART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := copy(p, u.rx)
	u.rx = append(u.rx[:0], u.rx[n:]...)
	return n, nil
}

func (u *hostUART) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.w.Write(p)
}

func (u *hostUART) Close() error {
	if u.closer == nil {
		return nil
	}
	return u.closer.Close()
}
