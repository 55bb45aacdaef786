//go:build !tinygo

package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mlogpico/logic"
	"mlogpico/logic/mlog"
)

// assemble reads an .mlog source from disk. Only host builds carry the
// assembler; firmware programs are compiled ahead of time.
func assemble(path string) (*logic.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return mlog.Parse(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), string(src))
}
