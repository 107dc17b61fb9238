package core

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind is the closed type set of a query result cell.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueInt
	ValueFloat
	ValueText
)

// Value is one typed cell of a rectangular query result.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Text  string
}

func NullValue() Value            { return Value{Kind: ValueNull} }
func IntValue(v int64) Value      { return Value{Kind: ValueInt, Int: v} }
func FloatValue(v float64) Value  { return Value{Kind: ValueFloat, Float: v} }
func TextValue(v string) Value    { return Value{Kind: ValueText, Text: v} }

// ValueOf converts a database/sql scan target into a typed Value.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntValue(t)
	case float64:
		return FloatValue(t)
	case bool:
		if t {
			return IntValue(1)
		}
		return IntValue(0)
	case string:
		return TextValue(t)
	case []byte:
		return TextValue(string(t))
	case time.Time:
		return TextValue(t.Format("2006-01-02"))
	default:
		return TextValue(fmt.Sprintf("%v", t))
	}
}

// String renders the value the way the export sinks expect: nulls become
// empty strings, numbers use dot-decimal notation.
func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return ""
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Text
	}
}

// ResultSet is a rectangular typed query result.
type ResultSet struct {
	Columns []string
	Rows    [][]Value
}

// Empty reports whether the result holds no data rows.
func (rs ResultSet) Empty() bool {
	return len(rs.Rows) == 0
}
