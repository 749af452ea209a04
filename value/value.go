package value

import (
	"fmt"
	"strconv"
)

// Kind identifies which of the seven shapes a Value has.
type Kind int

const (
	// KindNull is the absence of a value.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindInteger is a signed 64-bit integer.
	KindInteger
	// KindFloat is an IEEE-754 double.
	KindFloat
	// KindString is Unicode text.
	KindString
	// KindSequence is an ordered list of values.
	KindSequence
	// KindMapping is an insertion-ordered map from string keys to values.
	KindMapping
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindString:   "string",
	KindSequence: "sequence",
	KindMapping:  "mapping",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a node of the intermediate tree.
type Value interface {
	Kind() Kind
	// sealed restricts implementations to this package.
	sealed()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Integer is a signed 64-bit integer value.
type Integer int64

// Float is a double precision floating point value.
type Float float64

// String is a text value.
type String string

// Sequence is an ordered list of values.
type Sequence []Value

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Kind implements Value.
func (Integer) Kind() Kind { return KindInteger }

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Kind implements Value.
func (Sequence) Kind() Kind { return KindSequence }

func (Null) sealed()     {}
func (Bool) sealed()     {}
func (Integer) sealed()  {}
func (Float) sealed()    {}
func (String) sealed()   {}
func (Sequence) sealed() {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

func (f Float) String() string { return FormatFloat(float64(f)) }

func (s Sequence) String() string { return fmt.Sprintf("sequence(%d)", len(s)) }

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// IsScalar reports whether v is neither a Sequence nor a Mapping.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Sequence, *Mapping:
		return false
	}
	return true
}
