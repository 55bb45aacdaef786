package app

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFitGrid(t *testing.T) {
	tests := []struct {
		in         string
		cols, rows int
		want       string
	}{
		{"abcdef\nxy\n1\n2", 4, 3, "abcd\nef\nxy"},
		{"abcd", 4, 1, "abcd"},
		{"ab\r\n\ncd", 4, 5, "ab\n\ncd"},
		{"héllo wörld", 5, 9, "héllo\n wörl\nd"},
		{"anything", 0, 3, ""},
		{"anything", 3, 0, ""},
	}
	for _, tt := range tests {
		if got := fitGrid(tt.in, tt.cols, tt.rows); got != tt.want {
			t.Fatalf("fitGrid(%q, %d, %d) = %q, want %q", tt.in, tt.cols, tt.rows, got, tt.want)
		}
	}
}

func TestConsoleFitsLongReport(t *testing.T) {
	fb := newFakeFramebuffer(64, 64)
	c := newConsole(fb)
	if c == nil {
		t.Fatal("newConsole() = nil")
	}
	if c.cols <= 0 || c.rows <= 0 {
		t.Fatalf("grid = %dx%d, want non-empty", c.cols, c.rows)
	}

	long := strings.Repeat("goroutine stack frame\n", 200)
	lines := strings.Split(c.fit(long), "\n")
	if len(lines) != c.rows {
		t.Fatalf("fit() kept %d lines, want %d", len(lines), c.rows)
	}
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > c.cols {
			t.Fatalf("line %q has %d runes, want at most %d", l, n, c.cols)
		}
	}
}

func TestNewConsoleRejectsMissingBuffer(t *testing.T) {
	if newConsole(nil) != nil {
		t.Fatal("newConsole(nil) != nil")
	}
	if newConsole(&fakeFramebuffer{w: 8, h: 8}) != nil {
		t.Fatal("newConsole(no buffer) != nil")
	}
}
