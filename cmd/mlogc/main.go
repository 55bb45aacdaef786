//go:build !tinygo

// Command mlogc assembles .mlog sources into the CBOR program blobs the
// firmware loads with -program file.bin.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mlogpico/logic"
	"mlogpico/logic/mlog"
)

func main() {
	var outDir string
	var check bool
	flag.StringVar(&outDir, "out", "", "Output directory (default: next to each source).")
	flag.BoolVar(&check, "check", false, "Only assemble, do not write blobs.")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: mlogc [-out dir] [-check] file.mlog|dir ...")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	sources, err := collect(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	failed := false
	for _, src := range sources {
		out, n, err := compile(src, outDir, check)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			failed = true
			continue
		}
		if check {
			fmt.Printf("%s: %d instructions\n", src, n)
		} else {
			fmt.Printf("%s -> %s (%d instructions)\n", src, out, n)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// collect expands directories into the .mlog files below them.
func collect(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(path), ".mlog") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", arg, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

func compile(src, outDir string, check bool) (string, int, error) {
	b, err := os.ReadFile(src)
	if err != nil {
		return "", 0, err
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	prog, err := mlog.Parse(name, string(b))
	if err != nil {
		return "", 0, err
	}
	if check {
		return "", len(prog.Statements), nil
	}
	blob, err := logic.MarshalProgram(prog)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", src, err)
	}

	dir := filepath.Dir(src)
	if outDir != "" {
		dir = outDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, err
		}
	}
	out := filepath.Join(dir, name+".bin")
	if err := os.WriteFile(out, blob, 0o644); err != nil {
		return "", 0, err
	}
	return out, len(prog.Statements), nil
}
