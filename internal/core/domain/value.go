package domain

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	// ValueUnit is the "no value" literal `()`.
	ValueUnit ValueKind = iota
	// ValueString is a double-quoted string.
	ValueString
	// ValueBool is true or false.
	ValueBool
	// ValueInteger is a signed 64-bit integer.
	ValueInteger
	// ValueArray is an ordered list of values.
	ValueArray
)

func (k ValueKind) String() string {
	switch k {
	case ValueUnit:
		return "unit"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	case ValueInteger:
		return "integer"
	case ValueArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is the closed set of values a recipe binding can hold.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	Int  int64
	List []Value
}

// UnitValue returns the unit value.
func UnitValue() Value { return Value{Kind: ValueUnit} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// IntValue returns an integer value.
func IntValue(i int64) Value { return Value{Kind: ValueInteger, Int: i} }

// ArrayValue returns an array value.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: ValueArray, List: items}
}

// StringsValue returns an array of string values.
func StringsValue(items []string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = StringValue(s)
	}
	return ArrayValue(list...)
}

// OptionalStringValue returns a string value, or unit when s is empty.
func OptionalStringValue(s string) Value {
	if s == "" {
		return UnitValue()
	}
	return StringValue(s)
}

// IsUnit reports whether v is the unit value.
func (v Value) IsUnit() bool { return v.Kind == ValueUnit }

// AsStrings returns the array items as strings. ok is false if v is not an
// array of strings.
func (v Value) AsStrings() ([]string, bool) {
	if v.Kind != ValueArray {
		return nil, false
	}
	out := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item.Kind != ValueString {
			return nil, false
		}
		out = append(out, item.Str)
	}
	return out, true
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == o.Str
	case ValueBool:
		return v.Bool == o.Bool
	case ValueInteger:
		return v.Int == o.Int
	case ValueArray:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
	}
	return true
}

// Literal renders v in recipe source syntax.
func (v Value) Literal() string {
	var b strings.Builder
	v.writeLiteral(&b)
	return b.String()
}

func (v Value) writeLiteral(b *strings.Builder) {
	switch v.Kind {
	case ValueUnit:
		b.WriteString("()")
	case ValueString:
		b.WriteString(Quote(v.Str))
	case ValueBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case ValueInteger:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case ValueArray:
		b.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			item.writeLiteral(b)
		}
		b.WriteByte(']')
	}
}

func (v Value) String() string {
	if v.Kind == ValueString {
		return v.Str
	}
	return v.Literal()
}

// Quote renders s as a double-quoted recipe string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
