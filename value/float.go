package value

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f as the shortest text that parses back to the same
// float. The result always contains '.', 'e', or one of the special tokens
// "nan", "inf", "-inf", so it never reads as an integer.
//
// Numbers with magnitude in [1e-6, 1e21) use plain decimal notation; others
// use an exponent, with the exponent's leading zeros removed (1e-07 → 1e-7).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 1e-07 → 1e-7
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		return s
	}
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
