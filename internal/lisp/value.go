package lisp

import (
	"strconv"
	"strings"
)

// ValueType represents the type of a value
type ValueType int

const (
	// ValueTypeNumber represents a number value
	ValueTypeNumber ValueType = iota
	// ValueTypeString represents a string value
	ValueTypeString
	// ValueTypeBool represents a boolean value
	ValueTypeBool
	// ValueTypeSymbol represents a symbol value
	ValueTypeSymbol
	// ValueTypeList represents a list value
	ValueTypeList
	// ValueTypeBuiltin represents a builtin function value
	ValueTypeBuiltin
	// ValueTypeLambda represents a user-defined function value
	ValueTypeLambda
	// ValueTypeUnspecified represents the result of a form evaluated for
	// effect only, such as define. REPL output suppresses it.
	ValueTypeUnspecified
)

// String returns the string representation of the value type
func (vt ValueType) String() string {
	switch vt {
	case ValueTypeNumber:
		return "number"
	case ValueTypeString:
		return "string"
	case ValueTypeBool:
		return "boolean"
	case ValueTypeSymbol:
		return "symbol"
	case ValueTypeList:
		return "list"
	case ValueTypeBuiltin:
		return "builtin"
	case ValueTypeLambda:
		return "lambda"
	case ValueTypeUnspecified:
		return "unspecified"
	default:
		return "unknown"
	}
}

// Value represents a runtime value in the evaluator
type Value interface {
	Type() ValueType
	String() string
}

// Number represents a numeric value
type Number float64

func (n Number) Type() ValueType { return ValueTypeNumber }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Str represents a string value
type Str string

func (s Str) Type() ValueType { return ValueTypeString }
func (s Str) String() string  { return strconv.Quote(string(s)) }

// Bool represents a boolean value
type Bool bool

func (b Bool) Type() ValueType { return ValueTypeBool }
func (b Bool) String() string {
	if b {
		return "#t"
	}
	return "#f"
}

// Symbol represents an identifier
type Symbol string

func (s Symbol) Type() ValueType { return ValueTypeSymbol }
func (s Symbol) String() string  { return string(s) }

// List represents a proper list
type List []Value

func (l List) Type() ValueType { return ValueTypeList }
func (l List) String() string {
	parts := make([]string, len(l))
	for i, item := range l {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Builtin represents a function implemented in Go
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (b *Builtin) Type() ValueType { return ValueTypeBuiltin }
func (b *Builtin) String() string  { return "#<builtin " + b.Name + ">" }

// Lambda represents a user-defined function with its closure environment
type Lambda struct {
	Name   string
	Params []string
	Body   []Value
	Env    *Env
}

func (l *Lambda) Type() ValueType { return ValueTypeLambda }
func (l *Lambda) String() string {
	name := l.Name
	if name == "" {
		name = "anonymous"
	}
	return "#<lambda " + name + ">"
}

type unspecified struct{}

func (unspecified) Type() ValueType { return ValueTypeUnspecified }
func (unspecified) String() string  { return "#<unspecified>" }

// Unspecified is the value of forms evaluated for effect only.
var Unspecified Value = unspecified{}

// Truthy reports whether a value counts as true in a conditional.
// Only #f is false.
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return !ok || bool(b)
}
