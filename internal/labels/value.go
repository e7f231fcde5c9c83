package labels

import "strconv"

// ValueKind discriminates the typed variants a label cell can hold.
type ValueKind int

const (
	ValueInt ValueKind = iota + 1
	ValueText
)

// Value is one label cell. The zero Value is invalid; an absent cell is
// expressed by the lack of a Value, never by a sentinel.
type Value struct {
	Kind ValueKind
	Int  int64
	Text string
}

// Int builds an integer cell value.
func Int(v int) Value {
	return Value{Kind: ValueInt, Int: int64(v)}
}

// Text builds a text cell value.
func Text(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// Valid reports whether the value carries a recognized kind.
func (v Value) Valid() bool {
	return v.Kind == ValueInt || v.Kind == ValueText
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueInt:
		return v.Int == other.Int
	case ValueText:
		return v.Text == other.Text
	default:
		return true
	}
}

// String renders the value for display and CSV export.
func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueText:
		return v.Text
	default:
		return ""
	}
}
