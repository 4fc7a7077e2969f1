package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindFloat
	KindInt
	KindBool
	KindSequence
	KindTimestamp
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Value is a single table cell. Raw files carry no schema, so one column can
// mix strings, sequences and absent markers until a conversion normalises it.
// The zero Value is absent.
type Value struct {
	kind Kind
	s    string
	f    float64
	i    int64
	b    bool
	seq  []Value
	t    time.Time
}

// Absent returns the explicit "no data" marker
func Absent() Value { return Value{} }

// String wraps a string cell
func String(s string) Value { return Value{kind: KindString, s: s} }

// Float wraps a float cell. NaN is absent.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// Int wraps an integer cell
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Bool wraps a boolean cell
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Sequence wraps an ordered list of values. The slice is copied.
func Sequence(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, seq: cp}
}

// Timestamp wraps a point in time
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// Kind reports the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent marker
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string payload
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Float64 returns the numeric payload; integers are widened.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Int64 returns the integer payload
func (v Value) Int64() (int64, bool) {
	return v.i, v.kind == KindInt
}

// BoolValue returns the boolean payload
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Items returns a copy of the sequence payload
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	cp := make([]Value, len(v.seq))
	copy(cp, v.seq)
	return cp, true
}

// Len returns the number of items of a sequence, 0 otherwise
func (v Value) Len() int {
	return len(v.seq)
}

// Time returns the timestamp payload
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindTimestamp
}

// IsNumeric reports whether v is an int or a float
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

// Equal reports deep equality. Int and Float never compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return v.s == o.s
	case KindFloat:
		return v.f == o.f
	case KindInt:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	case KindTimestamp:
		return v.t.Equal(o.t)
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for display. Sequences use the literal list syntax the
// raw files use, so a rendered list parses back to the same value.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return ""
	case KindString:
		return v.s
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTimestamp:
		return v.t.Format(time.RFC3339)
	case KindSequence:
		return v.Literal()
	}
	return ""
}

// Literal renders v as a list literal element: strings single-quoted,
// absent as None, booleans as True/False.
func (v Value) Literal() string {
	switch v.kind {
	case KindAbsent:
		return "None"
	case KindString:
		return quoteLiteral(v.s)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") && !math.IsInf(v.f, 0) {
			s += ".0"
		}
		return s
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindTimestamp:
		return quoteLiteral(v.t.Format(time.RFC3339))
	case KindSequence:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.Literal())
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return v.String()
}

// Key identifies v for hashing; values with equal keys are Equal
func (v Value) Key() string {
	if v.kind == KindTimestamp {
		return "t:" + strconv.FormatInt(v.t.UnixNano(), 10)
	}
	return strconv.Itoa(int(v.kind)) + ":" + v.Literal()
}

func quoteLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// MarshalJSON encodes absent as null and sequences as arrays
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.s)
	case KindFloat:
		if math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindInt:
		return json.Marshal(v.i)
	case KindBool:
		return json.Marshal(v.b)
	case KindTimestamp:
		return json.Marshal(v.t.Format(time.RFC3339))
	case KindSequence:
		return json.Marshal(v.seq)
	}
	return []byte("null"), nil
}

// kindRank orders kinds for Compare; numbers share a rank.
func kindRank(k Kind) int {
	switch k {
	case KindBool:
		return 0
	case KindInt, KindFloat:
		return 1
	case KindString:
		return 2
	case KindTimestamp:
		return 3
	case KindSequence:
		return 4
	}
	return 5
}

// Compare orders two values: booleans, then numbers, strings, timestamps,
// sequences and finally absent. It returns -1, 0 or +1.
func Compare(a, b Value) int {
	ra, rb := kindRank(a.kind), kindRank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		}
		return 1
	case KindInt, KindFloat:
		if a.kind == KindInt && b.kind == KindInt {
			return cmpOrdered(a.i, b.i)
		}
		fa, _ := a.Float64()
		fb, _ := b.Float64()
		return cmpOrdered(fa, fb)
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindTimestamp:
		return a.t.Compare(b.t)
	case KindSequence:
		return strings.Compare(a.Literal(), b.Literal())
	}
	return 0
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
