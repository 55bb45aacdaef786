package buildings

import (
	"mlogpico/hal"
	"mlogpico/kernel"
	"mlogpico/logic"
)

// USBPacketSize is the full-speed CDC bulk packet size and the receive queue capacity.
const USBPacketSize = 64

// outbox is the printflush side shared by both serial bindings: the VM puts
// the printbuffer into a single-slot mailbox and a flush routine drains it.
type outbox struct {
	mail *kernel.Cell[kernel.Mailbox]
}

func newOutbox(name string) outbox {
	return outbox{mail: kernel.NewCell(name+".tx", kernel.Mailbox{})}
}

func (o outbox) put(msg string) {
	o.mail.With(func(m *kernel.Mailbox) { m.Put(msg) })
}

func (o outbox) take() (msg string, ok bool) {
	o.mail.With(func(m *kernel.Mailbox) { msg, ok = m.Take() })
	return msg, ok
}

// Serial is the USB CDC serial building.
//
// printflush hands the printbuffer to the flush routine and yields. Received
// packets land in a 64-byte queue: read(i) drops the i bytes in front of
// index i and pops the byte at i, or returns null without touching the queue
// when i is past the end.
type Serial struct {
	logic.Unsupported
	out outbox
	rx  *kernel.Cell[kernel.Ring]
}

// NewSerial returns a USB serial building with an empty receive queue.
func NewSerial() *Serial {
	return &Serial{
		out: newOutbox("serial"),
		rx:  kernel.NewCell("serial.rx", kernel.MakeRing(USBPacketSize)),
	}
}

// Read returns the byte at offset addr of the receive queue and drops every
// byte in front of it. Reads past the end return null and leave the queue alone.
func (s *Serial) Read(_ *logic.ProcessorState, _ *logic.VM, addr logic.Value) (logic.Value, bool) {
	v := logic.Null
	s.rx.With(func(q *kernel.Ring) {
		i, ok := addr.Index()
		if !ok || i >= q.Len() {
			return
		}
		q.Discard(i)
		if b, ok := q.Pop(); ok {
			v = logic.Num(float64(b))
		}
	})
	return v, true
}

// PrintFlush queues the print buffer for the flush routine.
func (s *Serial) PrintFlush(st *logic.ProcessorState, _ *logic.VM) logic.Result {
	s.out.put(st.PrintBuffer())
	return logic.Yield
}

// Sensor reports the packet size as @memoryCapacity and the queued byte
// count as @bufferSize.
func (s *Serial) Sensor(_ *logic.ProcessorState, _ *logic.VM, a logic.Access) (logic.Value, bool) {
	switch a {
	case logic.AccessMemoryCapacity:
		return logic.Num(USBPacketSize), true
	case logic.AccessBufferSize:
		n := 0
		s.rx.With(func(q *kernel.Ring) { n = q.Len() })
		return logic.Num(float64(n)), true
	}
	return logic.Null, false
}

// FlushRoutine sends pending messages over port.
func (s *Serial) FlushRoutine(port hal.PacketPort, log hal.Logger) kernel.Routine {
	return &serialFlush{out: s.out, port: port, log: log}
}

// ReceiveRoutine moves packets from port into the read queue.
func (s *Serial) ReceiveRoutine(port hal.PacketPort, log hal.Logger) kernel.Routine {
	return &serialReceive{rx: s.rx, port: port, log: log}
}

// serialFlush writes one message in packet-sized chunks. A message whose
// length is an exact multiple of the packet size (including zero) ends with
// an empty packet so the host sees the transfer complete.
type serialFlush struct {
	out  outbox
	port hal.PacketPort
	log  hal.Logger

	connected bool
	msg       []byte
	off       int
	active    bool
	trailer   bool
}

func (f *serialFlush) Step(*kernel.Context) {
	if !f.active {
		msg, ok := f.out.take()
		if !ok {
			return
		}
		f.msg = append(f.msg[:0], msg...)
		f.off = 0
		f.active = true
		f.trailer = len(f.msg)%f.packetSize() == 0
	}
	if !f.connected {
		if !f.port.Connected() {
			return
		}
		f.connected = true
	}

	size := f.packetSize()
	for f.off < len(f.msg) {
		n := len(f.msg) - f.off
		if n > size {
			n = size
		}
		sent, err := f.port.TryWritePacket(f.msg[f.off : f.off+n])
		if err != nil {
			f.fail(err)
			return
		}
		if !sent {
			return
		}
		f.off += n
	}
	if f.trailer {
		// The board's CDC driver cannot emit a zero-length packet and
		// reports it sent; the websocket port sends an empty frame.
		sent, err := f.port.TryWritePacket(nil)
		if err != nil {
			f.fail(err)
			return
		}
		if !sent {
			return
		}
		f.trailer = false
	}
	f.active = false
}

func (f *serialFlush) packetSize() int {
	if n := f.port.MaxPacketSize(); n > 0 {
		return n
	}
	return USBPacketSize
}

func (f *serialFlush) fail(err error) {
	if f.log != nil {
		f.log.WriteLineString("serial: write: " + err.Error())
	}
	f.active = false
}

// serialReceive holds a received packet until the read queue is empty, so a
// packet is never split across queue generations.
type serialReceive struct {
	rx   *kernel.Cell[kernel.Ring]
	port hal.PacketPort
	log  hal.Logger

	buf     [USBPacketSize]byte
	n       int
	holding bool
}

func (r *serialReceive) Step(*kernel.Context) {
	if !r.holding {
		if !r.port.Connected() {
			return
		}
		n, ok, err := r.port.TryReadPacket(r.buf[:])
		if err != nil {
			if r.log != nil {
				r.log.WriteLineString("serial: read: " + err.Error())
			}
			return
		}
		if !ok {
			return
		}
		r.n = n
		r.holding = true
	}
	r.rx.With(func(q *kernel.Ring) {
		if !q.Empty() {
			return
		}
		q.PushAll(r.buf[:r.n])
		r.holding = false
	})
}

// UART is the hardware UART building.
//
// read(0) returns the next received byte when one is ready, otherwise null.
// printflush queues the printbuffer for the flush routine and yields.
type UART struct {
	logic.Unsupported
	out  outbox
	port hal.UART
}

// UARTBufferSize is the receive buffer reported by @memoryCapacity.
const UARTBufferSize = 64

// NewUART wraps port. A nil port reads null and discards output.
func NewUART(port hal.UART) *UART {
	return &UART{out: newOutbox("uart"), port: port}
}

// Read pops one byte from the port when addr is 0.
func (u *UART) Read(_ *logic.ProcessorState, _ *logic.VM, addr logic.Value) (logic.Value, bool) {
	if addr.Int() != 0 || u.port == nil || u.port.Buffered() == 0 {
		return logic.Null, true
	}
	var b [1]byte
	if n, err := u.port.Read(b[:]); err != nil || n == 0 {
		return logic.Null, true
	}
	return logic.Num(float64(b[0])), true
}

// PrintFlush queues the print buffer for the flush routine.
func (u *UART) PrintFlush(st *logic.ProcessorState, _ *logic.VM) logic.Result {
	u.out.put(st.PrintBuffer())
	return logic.Yield
}

// Sensor reports UARTBufferSize and whether any byte is waiting.
func (u *UART) Sensor(_ *logic.ProcessorState, _ *logic.VM, a logic.Access) (logic.Value, bool) {
	switch a {
	case logic.AccessMemoryCapacity:
		return logic.Num(UARTBufferSize), true
	case logic.AccessBufferSize:
		return logic.Bool(u.port != nil && u.port.Buffered() > 0), true
	}
	return logic.Null, false
}

// FlushRoutine writes each pending message to the UART in full.
func (u *UART) FlushRoutine(log hal.Logger) kernel.Routine {
	return kernel.RoutineFunc(func(*kernel.Context) {
		msg, ok := u.out.take()
		if !ok || u.port == nil {
			return
		}
		p := []byte(msg)
		for len(p) > 0 {
			n, err := u.port.Write(p)
			if err != nil {
				if log != nil {
					log.WriteLineString("uart: write: " + err.Error())
				}
				return
			}
			if n == 0 {
				return
			}
			p = p[n:]
		}
	})
}
