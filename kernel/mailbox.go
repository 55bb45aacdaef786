package kernel

// Mailbox is a single-slot message holder with last-write-wins semantics.
//
// A Put while a message is pending replaces it; the older message is dropped.
type Mailbox struct {
	msg  string
	full bool
	seq  uint32
}

// Put stores msg and bumps the sequence counter.
func (m *Mailbox) Put(msg string) uint32 {
	m.msg = msg
	m.full = true
	m.seq++
	return m.seq
}

// Take removes and returns the pending message, if any.
func (m *Mailbox) Take() (string, bool) {
	if !m.full {
		return "", false
	}
	msg := m.msg
	m.msg = ""
	m.full = false
	return msg, true
}

// Pending reports whether a message is waiting.
func (m *Mailbox) Pending() bool { return m.full }

// Seq returns the number of Put calls so far.
func (m *Mailbox) Seq() uint32 { return m.seq }
