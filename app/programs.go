package app

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"mlogpico/logic"
)

// ProgramName selects the embedded program on boards without a board file.
// Set it with -ldflags "-X mlogpico/app.ProgramName=print".
var ProgramName = "blink"

var ErrUnknownProgram = errors.New("app: unknown program")

// The embedded programs are the compiled blobs. Edit the .mlog sources next
// to them and regenerate.
//
//go:generate go run ../cmd/mlogc -out programs programs
//go:embed programs/*.bin
var programFS embed.FS

// Programs returns the names of the embedded programs.
func Programs() []string {
	entries, err := fs.ReadDir(programFS, "programs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".bin"))
	}
	sort.Strings(names)
	return names
}

// LoadProgram resolves name to a program. Names ending in .mlog are
// assembled from disk, names ending in .bin are decoded as compiled blobs,
// and anything else is looked up among the embedded blobs.
func LoadProgram(name string) (*logic.Program, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mlog":
		return assemble(name)
	case ".bin":
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return logic.UnmarshalProgram(b)
	}

	b, err := programFS.ReadFile(path.Join("programs", name+".bin"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownProgram, name, strings.Join(Programs(), ", "))
	}
	return logic.UnmarshalProgram(b)
}
