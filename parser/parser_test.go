package parser

import (
	"reflect"
	"testing"

	"github.com/hupe1980/agentscript/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProgram = `
import agentscript.stdlib.tools { WebSearch, Calculator, AgentRouting }

// spawn the crew
agent researcher = spawn Agent{ openai/gpt-4o, temperature: 0.7 }
agent writer = spawn Agent{ anthropic/claude-3-5-sonnet }

*researcher->goal = "Collect facts."
*researcher->tools = { WebSearch }
*researcher->tools += { Calculator }

answer = researcher.ask("What is new?", timeout=5)
print(f"got: {answer} from {researcher.status}")

if researcher.has_tool("Calculator") {
	result = researcher.execute_tool("Calculator", "2 + 2 * 3")
	print(result)
} else {
	print("no calculator")
}
`

func TestParse_Determinism(t *testing.T) {
	first, err := Parse(sampleProgram)
	require.NoError(t, err)
	second, err := Parse(sampleProgram)
	require.NoError(t, err)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-parsing the same source produced a different tree")
	}
	assert.Len(t, first.Statements, 9)
}

func TestParse_AgentDeclaration(t *testing.T) {
	prog, err := Parse(`agent a = spawn Agent{ openai/gpt-4o, temperature: 0.7 }`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	decl, ok := prog.Statements[0].(*ast.AgentDeclaration)
	require.True(t, ok, "expected AgentDeclaration, got %T", prog.Statements[0])
	assert.Equal(t, "a", decl.Name)
	assert.Equal(t, "openai/gpt-4o", decl.Model)
	require.Len(t, decl.Config, 1)
	assert.Equal(t, "temperature", decl.Config[0].Key)
	num, ok := decl.Config[0].Value.(*ast.NumberLit)
	require.True(t, ok)
	assert.Equal(t, 0.7, num.Value)
	assert.Equal(t, 1, decl.Pos().Line)
	assert.Equal(t, 1, decl.Pos().Column)
}

func TestParse_ModelNameWithDash(t *testing.T) {
	// '-' continues the identifier inside a model name but still lexes as
	// the arrow in property assignments.
	prog, err := Parse("agent a = spawn Agent{ openai/gpt-4o-mini }\n*a->goal = \"x\"")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	decl := prog.Statements[0].(*ast.AgentDeclaration)
	assert.Equal(t, "openai/gpt-4o-mini", decl.Model)

	pa := prog.Statements[1].(*ast.PropertyAssignment)
	assert.Equal(t, "a", pa.Agent)
	assert.Equal(t, "goal", pa.Property)
	assert.Equal(t, ast.AssignSet, pa.Mode)
}

func TestParse_ToolListWithRoutes(t *testing.T) {
	prog, err := Parse(`*coordinator->tools = { WebSearch, AgentRouting{ x, y } }`)
	require.NoError(t, err)

	pa := prog.Statements[0].(*ast.PropertyAssignment)
	assert.Equal(t, "tools", pa.Property)
	list, ok := pa.Value.(*ast.ToolListExpr)
	require.True(t, ok)
	require.Len(t, list.Specs, 2)
	assert.Equal(t, "WebSearch", list.Specs[0].Name)
	assert.Empty(t, list.Specs[0].Routes)
	assert.Equal(t, "AgentRouting", list.Specs[1].Name)
	assert.Equal(t, []string{"x", "y"}, list.Specs[1].Routes)
}

func TestParse_AppendMode(t *testing.T) {
	prog, err := Parse(`*a->tools += { Calculator }`)
	require.NoError(t, err)
	pa := prog.Statements[0].(*ast.PropertyAssignment)
	assert.Equal(t, ast.AssignAppend, pa.Mode)
}

func TestParse_MethodCallNamedArgs(t *testing.T) {
	prog, err := Parse(`answer = a.ask("hello", timeout=5)`)
	require.NoError(t, err)

	va := prog.Statements[0].(*ast.VarAssignment)
	assert.Equal(t, "answer", va.Name)
	call, ok := va.Value.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "ask", call.Method)
	require.Len(t, call.Args, 1)
	require.Len(t, call.Named, 1)
	assert.Equal(t, "timeout", call.Named[0].Name)
	recv, ok := call.Receiver.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "a", recv.Name)
}

func TestParse_InterpString(t *testing.T) {
	prog, err := Parse(`print(f"status: {a.status}, done")`)
	require.NoError(t, err)

	ps := prog.Statements[0].(*ast.PrintStatement)
	interp, ok := ps.Value.(*ast.InterpString)
	require.True(t, ok)
	require.Len(t, interp.Segments, 3)

	assert.Equal(t, "status: ", interp.Segments[0].Text)
	assert.Nil(t, interp.Segments[0].Expr)

	access, ok := interp.Segments[1].Expr.(*ast.PropertyAccess)
	require.True(t, ok)
	assert.Equal(t, "status", access.Property)

	assert.Equal(t, ", done", interp.Segments[2].Text)
}

func TestParse_IfElse(t *testing.T) {
	prog, err := Parse("if a.status == \"idle\" {\n\tprint(\"idle\")\n} else {\n\tprint(\"busy\")\n}")
	require.NoError(t, err)

	ifStmt := prog.Statements[0].(*ast.IfStatement)
	cond, ok := ifStmt.Cond.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpEq, cond.Op)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParse_BooleanPrecedence(t *testing.T) {
	// or binds looser than and.
	prog, err := Parse(`ok = a == b and c == d or e == f`)
	require.NoError(t, err)

	va := prog.Statements[0].(*ast.VarAssignment)
	or, ok := va.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpOr, or.Op)
	and, ok := or.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, and.Op)
}

func TestParse_Import(t *testing.T) {
	prog, err := Parse(`import agentscript.stdlib.tools { WebSearch, Calculator }`)
	require.NoError(t, err)

	imp := prog.Statements[0].(*ast.ImportStatement)
	assert.Equal(t, []string{"agentscript", "stdlib", "tools"}, imp.Module)
	assert.Equal(t, []string{"WebSearch", "Calculator"}, imp.Names)
}

func TestParse_CommentsIgnored(t *testing.T) {
	prog, err := Parse("// leading comment\nagent a = spawn Agent{ m } // trailing\n// done\n")
	require.NoError(t, err)
	assert.Len(t, prog.Statements, 1)
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	_, err := Parse("agent a spawn Agent{ m }")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
	assert.Equal(t, 9, se.Column)
	assert.NotEmpty(t, se.Expected)
	assert.Contains(t, se.Error(), "1:9")
}

func TestParse_SyntaxErrorSecondLine(t *testing.T) {
	_, err := Parse("agent a = spawn Agent{ m }\n*a->goal =")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := Parse("*a->goal = \"never closed")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
}

func TestParse_UnterminatedFStringExpr(t *testing.T) {
	_, err := Parse("print(f\"oops {a.status\")")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
}

func TestParse_EmptyFStringExpr(t *testing.T) {
	for _, src := range []string{
		"print(f\"before {} after\")",
		"print(f\"{  }\")",
	} {
		_, err := Parse(src)
		require.Error(t, err, src)

		var se *SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "an expression", se.Expected)
	}
}

func TestParse_EmbeddedExprErrorRebased(t *testing.T) {
	_, err := Parse("print(f\"x {*} y\")")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	// The error points into the enclosing literal, not at 1:1 of the
	// embedded substring.
	assert.Equal(t, 1, se.Line)
	assert.Greater(t, se.Column, 10)
}

func TestParse_EmptyProgram(t *testing.T) {
	prog, err := Parse("\n\n// nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Statements)
}
