package kernel

// Ring is a bounded byte FIFO with a fixed capacity.
// It is designed for bare-metal use: no allocations after MakeRing.
type Ring struct {
	buf  []byte
	head int
	n    int
}

// MakeRing returns an empty ring with room for capacity bytes.
func MakeRing(capacity int) Ring {
	if capacity < 0 {
		capacity = 0
	}
	return Ring{buf: make([]byte, capacity)}
}

func (r *Ring) Len() int    { return r.n }
func (r *Ring) Empty() bool { return r.n == 0 }

// Push appends b, returning false if the ring is full.
func (r *Ring) Push(b byte) bool {
	if r.n >= len(r.buf) {
		return false
	}
	r.buf[(r.head+r.n)%len(r.buf)] = b
	r.n++
	return true
}

// PushAll appends as many bytes of p as fit and returns how many were stored.
func (r *Ring) PushAll(p []byte) int {
	var n int
	for _, b := range p {
		if !r.Push(b) {
			break
		}
		n++
	}
	return n
}

// Pop removes and returns the front byte.
func (r *Ring) Pop() (byte, bool) {
	if r.n == 0 {
		return 0, false
	}
	b := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return b, true
}

// Discard drops up to n bytes from the front and returns how many were dropped.
func (r *Ring) Discard(n int) int {
	if n > r.n {
		n = r.n
	}
	if n <= 0 {
		return 0
	}
	r.head = (r.head + n) % len(r.buf)
	r.n -= n
	return n
}
