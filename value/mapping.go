package value

import (
	"fmt"
	"iter"
)

// Mapping is a string-keyed map that remembers insertion order.
//
// The zero value is an empty mapping ready to use. A Mapping is not safe for
// concurrent mutation.
type Mapping struct {
	keys   []string
	values []Value
	index  map[string]int
}

// NewMapping returns an empty mapping with room for n entries.
func NewMapping(n int) *Mapping {
	return &Mapping{
		keys:   make([]string, 0, n),
		values: make([]Value, 0, n),
		index:  make(map[string]int, n),
	}
}

// Kind implements Value.
func (*Mapping) Kind() Kind { return KindMapping }

func (*Mapping) sealed() {}

// String returns a short description for debugging.
func (m *Mapping) String() string {
	return fmt.Sprintf("mapping(%d)", m.Len())
}

// Set stores v under key. An existing key keeps its position and has its
// value replaced. A nil v is stored as Null.
func (m *Mapping) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.values[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// At returns the i-th entry. It panics if i is out of range.
func (m *Mapping) At(i int) (string, Value) {
	return m.keys[i], m.values[i]
}

// All iterates the entries in order.
func (m *Mapping) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}
