package logic

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ProgramVersion is the current bytecode blob format.
const ProgramVersion = 1

var ErrProgramVersion = errors.New("logic: unsupported program version")

// Program is a pre-parsed instruction list with labels already resolved.
type Program struct {
	Version    int         `cbor:"1,keyasint"`
	Name       string      `cbor:"2,keyasint,omitempty"`
	Statements []Statement `cbor:"3,keyasint"`
}

// Statement is one instruction: an opcode name plus raw operand tokens.
type Statement struct {
	Op   string   `cbor:"1,keyasint"`
	Args []string `cbor:"2,keyasint,omitempty"`
	Line int      `cbor:"3,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("logic: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalProgram deserializes a Program from CBOR bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("logic: unmarshal program: %w", err)
	}
	if p.Version != ProgramVersion {
		return nil, fmt.Errorf("%w: %d", ErrProgramVersion, p.Version)
	}
	return &p, nil
}
