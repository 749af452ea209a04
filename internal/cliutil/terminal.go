package cliutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"
)

// ColorMode controls syntax highlighting of converted output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always, or never)", s)
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// ShouldColor resolves mode against w. NO_COLOR disables auto mode.
func ShouldColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(w)
}

// lexers maps format identifiers to chroma lexer names where they differ.
var lexers = map[string]string{
	"yml": "yaml",
}

// Highlight writes text to w with terminal syntax highlighting for format.
// Unknown formats fall back to plain text.
func Highlight(w io.Writer, text, format string) error {
	lexer := strings.ToLower(format)
	if alias, ok := lexers[lexer]; ok {
		lexer = alias
	}
	return quick.Highlight(w, text, lexer, "terminal256", "monokai")
}

// NewLogger creates a structured logger writing to w. When w is a terminal
// it uses slog.TextHandler for human-readable output; otherwise
// slog.JSONHandler so that scripts can parse it.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if IsTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
