package value

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// FromAny converts a decoded Go value into a Value.
//
// It accepts the shapes produced by the standard decoders: nil, bool, the
// integer and float types, string, []byte, time.Time, []any, map[string]any,
// and Value itself. Plain maps carry no order, so their keys are sorted.
// Unsigned integers above math.MaxInt64 become Floats.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Integer(t), nil
	case int8:
		return Integer(t), nil
	case int16:
		return Integer(t), nil
	case int32:
		return Integer(t), nil
	case int64:
		return Integer(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Integer(t), nil
	case uint16:
		return Integer(t), nil
	case uint32:
		return Integer(t), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return String(t), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		return String(t.String()), nil
	case []any:
		seq := make(Sequence, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq = append(seq, v)
		}
		return seq, nil
	case []map[string]any:
		seq := make(Sequence, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq = append(seq, v)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		m := NewMapping(len(t))
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m.Set(k, v)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported type %T", x)
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Integer(int64(u))
}
