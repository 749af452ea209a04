package codec

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/erraggy/dataconv/converrors"
)

// lineCol converts a byte offset in text to a 1-based line and a 1-based
// column counted in runes. Offsets past the end map to the end of text.
func lineCol(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	line, lineStart := 1, 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(text[lineStart:offset]) + 1
}

var linePattern = regexp.MustCompile(`line (\d+)(?:, column (\d+))?`)

// positionFromMessage extracts "line N, column M" from a parser message.
// Messages that carry a context position first report the error position
// last, so the last match wins.
func positionFromMessage(msg string) (line, col int) {
	all := linePattern.FindAllStringSubmatch(msg, -1)
	if len(all) == 0 {
		return 0, 0
	}
	m := all[len(all)-1]
	line, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		col, _ = strconv.Atoi(m[2])
	}
	return line, col
}

func syntaxErr(format string, line, col int, msg string, cause error) *converrors.SyntaxError {
	return &converrors.SyntaxError{Format: format, Line: line, Column: col, Message: msg, Cause: cause}
}

func shapeErr(format, path, msg string) *converrors.UnsupportedShapeError {
	return &converrors.UnsupportedShapeError{Format: format, Path: path, Message: msg}
}
