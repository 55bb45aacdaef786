//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	hostUSBPacketSize = 64
	hostUSBQueue      = 32
)

var ErrPacketTooLarge = errors.New("packet exceeds max packet size")

// hostUSB stands in for USB CDC: one websocket client is the host, each
// binary frame is one packet.
type hostUSB struct {
	logger   *hostLogger
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader

	mu   sync.Mutex
	peer *usbPeer

	rx chan []byte
}

type usbPeer struct {
	conn *websocket.Conn
	tx   chan []byte
	done chan struct{}
}

func newHostUSB(addr string, logger *hostLogger) (*hostUSB, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("usb: listen %s: %w", addr, err)
	}
	u := &hostUSB{
		logger: logger,
		ln:     ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rx: make(chan []byte, hostUSBQueue),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", u.handle)
	u.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = u.srv.Serve(ln) }()
	logger.log.Noticef("usb: listening on ws://%s/", ln.Addr())
	return u, nil
}

func (u *hostUSB) handle(rw http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	busy := u.peer != nil
	u.mu.Unlock()
	if busy {
		http.Error(rw, "usb host already attached", http.StatusConflict)
		return
	}

	conn, err := u.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	p := &usbPeer{conn: conn, tx: make(chan []byte, hostUSBQueue), done: make(chan struct{})}
	u.mu.Lock()
	if u.peer != nil {
		u.mu.Unlock()
		_ = conn.Close()
		return
	}
	u.peer = p
	u.mu.Unlock()
	u.logger.log.Info("usb: host attached", "remote", r.RemoteAddr)

	go p.writeLoop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		for len(msg) > hostUSBPacketSize {
			if !u.deliver(msg[:hostUSBPacketSize], p.done) {
				break
			}
			msg = msg[hostUSBPacketSize:]
		}
		if !u.deliver(msg, p.done) {
			break
		}
	}

	u.mu.Lock()
	u.peer = nil
	u.mu.Unlock()
	close(p.done)
	_ = conn.Close()
	u.logger.log.Info("usb: host detached", "remote", r.RemoteAddr)
}

// deliver blocks while the receive queue is full, which pushes back on the client.
func (u *hostUSB) deliver(pkt []byte, done <-chan struct{}) bool {
	select {
	case u.rx <- pkt:
		return true
	case <-done:
		return false
	}
}

func (p *usbPeer) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case b := <-p.tx:
			_ = p.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
				_ = p.conn.Close()
				return
			}
		}
	}
}

func (u *hostUSB) Connected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.peer != nil
}

func (u *hostUSB) MaxPacketSize() int { return hostUSBPacketSize }

func (u *hostUSB) TryWritePacket(p []byte) (bool, error) {
	if len(p) > hostUSBPacketSize {
		return false, ErrPacketTooLarge
	}
	u.mu.Lock()
	peer := u.peer
	u.mu.Unlock()
	if peer == nil {
		return false, nil
	}
	pkt := append([]byte(nil), p...)
	select {
	case peer.tx <- pkt:
		return true, nil
	default:
		return false, nil
	}
}

func (u *hostUSB) TryReadPacket(p []byte) (int, bool, error) {
	select {
	case pkt := <-u.rx:
		return copy(p, pkt), true, nil
	default:
		return 0, false, nil
	}
}

func (u *hostUSB) Close() error {
	return u.srv.Close()
}
