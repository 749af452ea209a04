// Package textenc turns raw payload bytes into text at the library boundary.
package textenc

import (
	"bytes"
	"unicode/utf8"

	"github.com/erraggy/dataconv/converrors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	utf16BE = []byte{0xFE, 0xFF}
	utf16LE = []byte{0xFF, 0xFE}
)

// Decode validates b as UTF-8 and returns it as a string with any leading
// byte order mark removed. Invalid input yields a *converrors.EncodingError
// carrying the offset of the first bad byte.
func Decode(b []byte) (string, error) {
	if bytes.HasPrefix(b, utf16BE) || bytes.HasPrefix(b, utf16LE) {
		return "", &converrors.EncodingError{Offset: 0, Message: "UTF-16 byte order mark; input must be UTF-8"}
	}
	if off := InvalidOffset(b); off >= 0 {
		return "", &converrors.EncodingError{Offset: off, Message: "invalid UTF-8 sequence"}
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), b)
	if err != nil {
		return "", &converrors.EncodingError{Message: err.Error()}
	}
	return string(out), nil
}

// InvalidOffset returns the byte offset of the first invalid UTF-8 sequence
// in b, or -1 if b is valid.
func InvalidOffset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
