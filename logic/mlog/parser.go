// Package mlog assembles mlog source text into a logic.Program.
package mlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mlogpico/logic"
)

var (
	ErrUnterminatedString = errors.New("mlog: unterminated string")
	ErrUnknownLabel       = errors.New("mlog: unknown label")
	ErrDuplicateLabel     = errors.New("mlog: duplicate label")
)

// Parse assembles src. Labels are resolved to instruction indices.
func Parse(name, src string) (*logic.Program, error) {
	type pendingJump struct {
		stmt  int
		label string
		line  int
	}

	prog := &logic.Program{Version: logic.ProgramVersion, Name: name}
	labels := map[string]int{}
	var jumps []pendingJump

	for lineNo, line := range strings.Split(src, "\n") {
		for _, part := range splitStatements(line) {
			toks, err := tokenize(part)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, lineNo+1, err)
			}
			if len(toks) == 0 {
				continue
			}
			if len(toks) == 1 && strings.HasSuffix(toks[0], ":") && !strings.HasPrefix(toks[0], `"`) {
				label := strings.TrimSuffix(toks[0], ":")
				if _, dup := labels[label]; dup {
					return nil, fmt.Errorf("%s:%d: %w %q", name, lineNo+1, ErrDuplicateLabel, label)
				}
				labels[label] = len(prog.Statements)
				continue
			}
			st := logic.Statement{Op: toks[0], Args: toks[1:], Line: lineNo + 1}
			if st.Op == "jump" && len(st.Args) > 0 {
				if _, err := strconv.Atoi(st.Args[0]); err != nil {
					jumps = append(jumps, pendingJump{stmt: len(prog.Statements), label: st.Args[0], line: lineNo + 1})
				}
			}
			prog.Statements = append(prog.Statements, st)
		}
	}

	for _, j := range jumps {
		target, ok := labels[j.label]
		if !ok {
			return nil, fmt.Errorf("%s:%d: %w %q", name, j.line, ErrUnknownLabel, j.label)
		}
		if target >= len(prog.Statements) {
			target = 0
		}
		prog.Statements[j.stmt].Args[0] = strconv.Itoa(target)
	}
	return prog, nil
}

// splitStatements splits a line on ';' outside strings and drops '#' comments.
func splitStatements(line string) []string {
	var parts []string
	inString := false
	start := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inString = !inString
		case c == '#' && !inString:
			return append(parts, line[start:i])
		case c == ';' && !inString:
			parts = append(parts, line[start:i])
			start = i + 1
		}
	}
	return append(parts, line[start:])
}

func tokenize(s string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\r' {
			i++
			continue
		}
		j := i
		if c == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, ErrUnterminatedString
			}
			j = i + 1 + end + 1
		} else {
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\r' {
				j++
			}
		}
		toks = append(toks, s[i:j])
		i = j
	}
	return toks, nil
}
