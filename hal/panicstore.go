package hal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
)

// PanicRecord is the message persisted across a panic reset.
type PanicRecord struct {
	Message string        `cbor:"1,keyasint"`
	Uptime  time.Duration `cbor:"2,keyasint"`
}

var panicMagic = [4]byte{'M', 'P', 'N', 'C'}

const panicHeaderBytes = 6

var ErrNoPanicSector = errors.New("flash has no panic sector")

// panicSector returns the offset and size of the last erase block.
func panicSector(f Flash) (uint32, uint32, error) {
	if f == nil {
		return 0, 0, ErrNoPanicSector
	}
	bs := f.EraseBlockBytes()
	size := f.SizeBytes()
	if bs == 0 || size < bs {
		return 0, 0, ErrNoPanicSector
	}
	return size - bs, bs, nil
}

// SavePanic writes rec into the panic sector, replacing any earlier record.
// Long messages are truncated to fit the sector.
func SavePanic(f Flash, rec PanicRecord) error {
	off, bs, err := panicSector(f)
	if err != nil {
		return err
	}
	limit := int(bs) - panicHeaderBytes
	var body []byte
	for {
		body, err = cbor.Marshal(rec)
		if err != nil {
			return fmt.Errorf("panic record: %w", err)
		}
		if len(body) <= limit || rec.Message == "" {
			break
		}
		cut := len(rec.Message) - (len(body) - limit)
		if cut < 0 {
			cut = 0
		}
		for cut > 0 && !utf8.RuneStart(rec.Message[cut]) {
			cut--
		}
		rec.Message = rec.Message[:cut]
	}
	if len(body) > limit {
		return fmt.Errorf("panic record: %d bytes exceeds sector", len(body))
	}

	buf := make([]byte, panicHeaderBytes+len(body))
	copy(buf, panicMagic[:])
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(body)))
	copy(buf[panicHeaderBytes:], body)

	if err := f.Erase(off, bs); err != nil {
		return fmt.Errorf("panic sector erase: %w", err)
	}
	if _, err := f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("panic sector write: %w", err)
	}
	return nil
}

// TakePanic returns the persisted record, if any, and clears the sector.
func TakePanic(f Flash) (PanicRecord, bool, error) {
	var rec PanicRecord
	off, bs, err := panicSector(f)
	if err != nil {
		return rec, false, err
	}
	var hdr [panicHeaderBytes]byte
	if _, err := f.ReadAt(hdr[:], off); err != nil {
		return rec, false, fmt.Errorf("panic sector read: %w", err)
	}
	if !bytes.Equal(hdr[:4], panicMagic[:]) {
		return rec, false, nil
	}
	n := int(binary.LittleEndian.Uint16(hdr[4:]))
	if n > int(bs)-panicHeaderBytes {
		return rec, false, f.Erase(off, bs)
	}
	body := make([]byte, n)
	if _, err := f.ReadAt(body, off+panicHeaderBytes); err != nil {
		return rec, false, fmt.Errorf("panic sector read: %w", err)
	}
	if err := f.Erase(off, bs); err != nil {
		return rec, false, fmt.Errorf("panic sector erase: %w", err)
	}
	if err := cbor.Unmarshal(body, &rec); err != nil {
		return rec, false, fmt.Errorf("panic record: %w", err)
	}
	return rec, true, nil
}
