// Package ast defines the typed syntax tree for AgentScript programs. The
// tree is a closed set of node variants: one struct per declaration,
// statement, expression and literal kind, each carrying its source position
// for diagnostics. Construction happens in the parser; no node performs
// semantic work.
package ast

import "github.com/hupe1980/agentscript/core"

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the position of the node's first token.
	Pos() core.Position
	node()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Statements []Stmt
}

// Pos implements Node.
func (p *Program) Pos() core.Position {
	if len(p.Statements) == 0 {
		return core.Position{}
	}
	return p.Statements[0].Pos()
}
func (*Program) node() {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// ImportStatement brings stdlib symbols into scope:
//
//	import agentscript.stdlib.tools { WebSearch, Calculator }
type ImportStatement struct {
	Position core.Position
	Module   []string // dotted module path segments
	Names    []string // imported symbol names
}

func (s *ImportStatement) Pos() core.Position { return s.Position }
func (*ImportStatement) node()                {}
func (*ImportStatement) stmt()                {}

// ConfigPair is a key/value entry inside a spawn constructor.
type ConfigPair struct {
	Key   string
	Value Expr
}

// AgentDeclaration spawns a named agent:
//
//	agent a = spawn Agent{ openai/gpt-4o, temperature: 0.7 }
type AgentDeclaration struct {
	Position core.Position
	Name     string
	Model    string // opaque "provider/name" descriptor
	Config   []ConfigPair
}

func (s *AgentDeclaration) Pos() core.Position { return s.Position }
func (*AgentDeclaration) node()                {}
func (*AgentDeclaration) stmt()                {}

// AssignMode selects between replacing and merging an agent property.
type AssignMode int

const (
	// AssignSet replaces the property value (`=`).
	AssignSet AssignMode = iota
	// AssignAppend merges into a list-like property value (`+=`).
	AssignAppend
)

func (m AssignMode) String() string {
	if m == AssignAppend {
		return "+="
	}
	return "="
}

// PropertyAssignment writes an agent property:
//
//	*a->goal = "research"
//	*a->tools += { Calculator }
type PropertyAssignment struct {
	Position core.Position
	Agent    string
	Property string
	Mode     AssignMode
	Value    Expr
}

func (s *PropertyAssignment) Pos() core.Position { return s.Position }
func (*PropertyAssignment) node()                {}
func (*PropertyAssignment) stmt()                {}

// VarAssignment binds a plain variable in the current environment:
//
//	answer = a.ask("question")
type VarAssignment struct {
	Position core.Position
	Name     string
	Value    Expr
}

func (s *VarAssignment) Pos() core.Position { return s.Position }
func (*VarAssignment) node()                {}
func (*VarAssignment) stmt()                {}

// PrintStatement evaluates its expression and writes the formatted result.
type PrintStatement struct {
	Position core.Position
	Value    Expr
}

func (s *PrintStatement) Pos() core.Position { return s.Position }
func (*PrintStatement) node()                {}
func (*PrintStatement) stmt()                {}

// IfStatement executes Then (and optionally Else) in a nested scope.
type IfStatement struct {
	Position core.Position
	Cond     Expr
	Then     []Stmt
	Else     []Stmt // nil when no else block is present
}

func (s *IfStatement) Pos() core.Position { return s.Position }
func (*IfStatement) node()                {}
func (*IfStatement) stmt()                {}

// ExpressionStatement evaluates an expression for its side effects.
type ExpressionStatement struct {
	Position core.Position
	Value    Expr
}

func (s *ExpressionStatement) Pos() core.Position { return s.Position }
func (*ExpressionStatement) node()                {}
func (*ExpressionStatement) stmt()                {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Identifier is a bare name resolved against the environment chain.
type Identifier struct {
	Position core.Position
	Name     string
}

func (e *Identifier) Pos() core.Position { return e.Position }
func (*Identifier) node()                {}
func (*Identifier) expr()                {}

// PropertyAccess reads `receiver.property`.
type PropertyAccess struct {
	Position core.Position
	Receiver Expr
	Property string
}

func (e *PropertyAccess) Pos() core.Position { return e.Position }
func (*PropertyAccess) node()                {}
func (*PropertyAccess) expr()                {}

// NamedArg is a `name=value` argument in a method call.
type NamedArg struct {
	Name  string
	Value Expr
}

// MethodCall invokes a method on a receiver:
//
//	a.ask("question", timeout=5)
type MethodCall struct {
	Position core.Position
	Receiver Expr
	Method   string
	Args     []Expr
	Named    []NamedArg
}

func (e *MethodCall) Pos() core.Position { return e.Position }
func (*MethodCall) node()                {}
func (*MethodCall) expr()                {}

// BinaryOp enumerates boolean and comparison operators.
type BinaryOp int

const (
	OpEq BinaryOp = iota // ==
	OpNeq                // !=
	OpLt                 // <
	OpGt                 // >
	OpLeq                // <=
	OpGeq                // >=
	OpAnd                // and
	OpOr                 // or
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLeq:
		return "<="
	case OpGeq:
		return ">="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// BinaryExpr is a boolean or comparison expression.
type BinaryExpr struct {
	Position core.Position
	Op       BinaryOp
	Left     Expr
	Right    Expr
}

func (e *BinaryExpr) Pos() core.Position { return e.Position }
func (*BinaryExpr) node()                {}
func (*BinaryExpr) expr()                {}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

// StringLit is a plain string literal with escapes already resolved.
type StringLit struct {
	Position core.Position
	Value    string
}

func (e *StringLit) Pos() core.Position { return e.Position }
func (*StringLit) node()                {}
func (*StringLit) expr()                {}

// NumberLit is a numeric literal.
type NumberLit struct {
	Position core.Position
	Value    float64
}

func (e *NumberLit) Pos() core.Position { return e.Position }
func (*NumberLit) node()                {}
func (*NumberLit) expr()                {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Position core.Position
	Value    bool
}

func (e *BoolLit) Pos() core.Position { return e.Position }
func (*BoolLit) node()                {}
func (*BoolLit) expr()                {}

// InterpSegment is one piece of an interpolated string: either literal text
// (Expr nil) or an embedded expression (Text empty).
type InterpSegment struct {
	Text string
	Expr Expr
}

// InterpString is an f-string literal: an ordered sequence of literal text
// and embedded expressions, evaluated left to right at runtime.
type InterpString struct {
	Position core.Position
	Segments []InterpSegment
}

func (e *InterpString) Pos() core.Position { return e.Position }
func (*InterpString) node()                {}
func (*InterpString) expr()                {}

// ToolSpecExpr names a single tool binding inside a tool list. Routes holds
// the target agent names for routing-style bindings (`AgentRouting{ x, y }`).
type ToolSpecExpr struct {
	Position core.Position
	Name     string
	Routes   []string
}

func (e *ToolSpecExpr) Pos() core.Position { return e.Position }
func (*ToolSpecExpr) node()                {}
func (*ToolSpecExpr) expr()                {}

// ToolListExpr is a `{ Tool, Tool{...} }` literal used in tools assignments.
type ToolListExpr struct {
	Position core.Position
	Specs    []*ToolSpecExpr
}

func (e *ToolListExpr) Pos() core.Position { return e.Position }
func (*ToolListExpr) node()                {}
func (*ToolListExpr) expr()                {}
