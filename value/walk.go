package value

import (
	"errors"
	"strconv"
	"strings"
)

// SkipChildren can be returned from a WalkFunc to skip the children of the
// current sequence or mapping.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for each node visited by Walk. path is a JSONPath-like
// location such as "$.servers[0].name".
type WalkFunc func(path string, v Value) error

// Walk visits v and its descendants depth-first in order, calling fn for each
// node before its children. Walking stops at the first error other than
// SkipChildren, which is returned.
func Walk(v Value, fn WalkFunc) error {
	err := walk("$", v, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(path string, v Value, fn WalkFunc) error {
	if err := fn(path, v); err != nil {
		return err
	}
	switch x := v.(type) {
	case Sequence:
		for i, item := range x {
			if err := walk(IndexPath(path, i), item, fn); err != nil && !errors.Is(err, SkipChildren) {
				return err
			}
		}
	case *Mapping:
		for k, item := range x.All() {
			if err := walk(KeyPath(path, k), item, fn); err != nil && !errors.Is(err, SkipChildren) {
				return err
			}
		}
	}
	return nil
}

// KeyPath appends a mapping key to path. Keys that are not plain
// identifiers are written in bracket form: $["a b"].
func KeyPath(path, key string) string {
	if isPlainKey(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

// IndexPath appends a sequence index to path.
func IndexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	return strings.IndexFunc(key, func(r rune) bool {
		return !(r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0
}

// Stats summarizes the size and shape of a tree.
type Stats struct {
	// Nodes is the total number of values, containers included.
	Nodes int
	// Depth is the maximum nesting depth; a scalar root has depth 1.
	Depth int
	// Mappings is the number of mapping nodes.
	Mappings int
	// Sequences is the number of sequence nodes.
	Sequences int
	// Scalars is the number of non-container nodes.
	Scalars int
}

// Measure computes Stats for v.
func Measure(v Value) Stats {
	var s Stats
	_ = Walk(v, func(path string, node Value) error {
		s.Nodes++
		if d := pathDepth(path); d > s.Depth {
			s.Depth = d
		}
		switch node.(type) {
		case *Mapping:
			s.Mappings++
		case Sequence:
			s.Sequences++
		default:
			s.Scalars++
		}
		return nil
	})
	return s
}

// pathDepth counts path segments. Quoted keys may contain '.' or '[', so the
// scan skips over quoted sections.
func pathDepth(path string) int {
	depth := 1
	inQuote := false
	for i := 1; i < len(path); i++ {
		c := path[i]
		switch {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '.' || c == '[':
			depth++
		}
	}
	return depth
}
