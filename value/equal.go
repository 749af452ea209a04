package value

import "math"

// Equal reports whether a and b are the same tree.
//
// Sequences compare element by element. Mappings compare as sets of entries;
// key order does not matter. An Integer never equals a Float, even when they
// hold the same number. Two NaN floats are considered equal so that a tree
// always equals itself.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Integer:
		y, ok := b.(Integer)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
			return true
		}
		return x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Sequence:
		y, ok := b.(Sequence)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for k, xv := range x.All() {
			yv, found := y.Get(k)
			if !found || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualOrdered is like Equal but also requires mapping keys in the same order.
func EqualOrdered(a, b Value) bool {
	if !Equal(a, b) {
		return false
	}
	switch x := a.(type) {
	case Sequence:
		y := b.(Sequence)
		for i := range x {
			if !EqualOrdered(x[i], y[i]) {
				return false
			}
		}
	case *Mapping:
		y := b.(*Mapping)
		for i := 0; i < x.Len(); i++ {
			xk, xv := x.At(i)
			yk, yv := y.At(i)
			if xk != yk || !EqualOrdered(xv, yv) {
				return false
			}
		}
	}
	return true
}
