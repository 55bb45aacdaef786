//go:build tinygo

package app

import (
	"errors"

	"mlogpico/logic"
)

var errNoAssembler = errors.New("app: .mlog sources need a host build, compile them with mlogc")

func assemble(string) (*logic.Program, error) {
	return nil, errNoAssembler
}
