package core

import (
	"strconv"
	"strings"
)

// Kind discriminates the closed set of runtime value variants.
type Kind int

const (
	// KindNull is the absence of a value (unset agent properties).
	KindNull Kind = iota
	// KindString is a UTF-8 string value.
	KindString
	// KindNumber is a numeric value (AgentScript numbers are float64).
	KindNumber
	// KindBool is a boolean value.
	KindBool
	// KindAgent is a reference to a live agent.
	KindAgent
	// KindToolSpec is a single tool binding (name plus optional routing targets).
	KindToolSpec
	// KindToolSet is an ordered collection of tool bindings.
	KindToolSet
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindAgent:
		return "agent"
	case KindToolSpec:
		return "tool"
	case KindToolSet:
		return "tool set"
	default:
		return "unknown"
	}
}

// Value is the closed tagged union over all runtime values. Values are
// immutable once produced by expression evaluation; only environment slots
// and agent property maps act as mutable cells.
type Value interface {
	// Kind returns the variant tag for exhaustive dispatch.
	Kind() Kind
	// Format renders the value in AgentScript surface syntax (used by print
	// and string interpolation).
	Format() string
}

// String is a string value.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Format implements Value.
func (s String) Format() string { return string(s) }

// Number is a numeric value. Integers render without a fractional part.
type Number float64

// Kind implements Value.
func (Number) Kind() Kind { return KindNumber }

// Format implements Value.
func (n Number) Format() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Bool is a boolean value.
type Bool bool

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Format implements Value.
func (b Bool) Format() string {
	if b {
		return "true"
	}
	return "false"
}

// Null is the null value. Reading an unset agent property yields Null, not
// an error.
type Null struct{}

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Format implements Value.
func (Null) Format() string { return "null" }

// AgentRef points to a live agent by id. Name is carried for display only;
// the id is the stable handle.
type AgentRef struct {
	ID   string
	Name string
}

// Kind implements Value.
func (AgentRef) Kind() Kind { return KindAgent }

// Format implements Value.
func (a AgentRef) Format() string { return "agent " + a.Name }

// ToolSpec is a single tool binding. Routes is non-empty only for routing
// tools bound to a fixed list of target agent names.
type ToolSpec struct {
	Name   string
	Routes []string
}

// Kind implements Value.
func (ToolSpec) Kind() Kind { return KindToolSpec }

// Format implements Value.
func (t ToolSpec) Format() string {
	if len(t.Routes) == 0 {
		return t.Name
	}
	return t.Name + "{ " + strings.Join(t.Routes, ", ") + " }"
}

// ToolSet is an ordered set of tool bindings. Order is preserved across
// append-mode assignments.
type ToolSet []ToolSpec

// Kind implements Value.
func (ToolSet) Kind() Kind { return KindToolSet }

// Format implements Value.
func (ts ToolSet) Format() string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Format()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Contains reports whether the set holds a binding with the given tool name.
func (ts ToolSet) Contains(name string) bool {
	for _, t := range ts {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Merge returns a new set holding the receiver's bindings plus every binding
// from other whose name is not already present. Neither input is mutated.
func (ts ToolSet) Merge(other ToolSet) ToolSet {
	merged := make(ToolSet, len(ts), len(ts)+len(other))
	copy(merged, ts)
	for _, t := range other {
		if !merged.Contains(t.Name) {
			merged = append(merged, t)
		}
	}
	return merged
}

// Truthy reports whether the value is a boolean true. Only booleans are
// truthy; every other kind returns false together with ok=false so callers
// can raise a TypeError instead of coercing.
func Truthy(v Value) (val, ok bool) {
	b, isBool := v.(Bool)
	if !isBool {
		return false, false
	}
	return bool(b), true
}
