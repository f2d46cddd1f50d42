// Package parser turns AgentScript source text into the typed syntax tree
// defined in package ast. The front-end is a hand-written scanner plus a
// recursive-descent parser; both track 1-based line/column positions and
// surface malformed input as *SyntaxError with an expected-vs-found message.
//
// Parsing is deterministic and performs no semantic work: name resolution,
// tool validation and agent lookups all happen later in the interpreter.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/agentscript/ast"
	"github.com/hupe1980/agentscript/core"
)

// SyntaxError describes malformed source with its position. It aborts
// parsing only; nothing has been executed when it is returned.
type SyntaxError struct {
	Line     int
	Column   int
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: expected %s, found %s", e.Line, e.Column, e.Expected, e.Found)
}

// Parse scans and parses source into a program. The returned tree is
// structurally identical for identical input.
func Parse(source string) (*ast.Program, error) {
	toks, err := newLexer(source).scanAll()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

type parser struct {
	toks []token
	idx  int
}

func (p *parser) cur() token { return p.toks[p.idx] }

func (p *parser) at(t tokenType) bool { return p.cur().typ == t }

func (p *parser) advance() token {
	tok := p.toks[p.idx]
	if tok.typ != tokEOF {
		p.idx++
	}
	return tok
}

func (p *parser) expect(t tokenType) (token, error) {
	if !p.at(t) {
		return token{}, p.errExpected(t.String())
	}
	return p.advance(), nil
}

func (p *parser) errExpected(expected string) error {
	tok := p.cur()
	return &SyntaxError{Line: tok.pos.Line, Column: tok.pos.Column, Expected: expected, Found: tok.describe()}
}

func (p *parser) skipNewlines() {
	for p.at(tokNewline) {
		p.advance()
	}
}

// endStatement consumes the statement terminator: a newline, EOF or a
// closing brace left for the enclosing block.
func (p *parser) endStatement() error {
	switch p.cur().typ {
	case tokNewline:
		p.advance()
		return nil
	case tokEOF, tokRBrace:
		return nil
	default:
		return p.errExpected("newline")
	}
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		p.skipNewlines()
		if p.at(tokEOF) {
			return prog, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseStatement() (ast.Stmt, error) {
	switch p.cur().typ {
	case tokImport:
		return p.parseImport()
	case tokAgent:
		return p.parseAgentDeclaration()
	case tokStar:
		return p.parsePropertyAssignment()
	case tokPrint:
		return p.parsePrint()
	case tokIf:
		return p.parseIf()
	case tokIdent:
		// Lookahead distinguishes `name = expr` from an expression statement.
		if p.toks[p.idx+1].typ == tokAssign {
			return p.parseVarAssignment()
		}
		return p.parseExpressionStatement()
	default:
		return nil, p.errExpected("a statement")
	}
}

// parseImport handles `import dotted.module.path { Name, Name }`.
func (p *parser) parseImport() (ast.Stmt, error) {
	kw := p.advance()
	var module []string
	seg, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	module = append(module, seg.lit)
	for p.at(tokDot) {
		p.advance()
		seg, err = p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		module = append(module, seg.lit)
	}
	names, err := p.parseNameList()
	if err != nil {
		return nil, err
	}
	return &ast.ImportStatement{Position: kw.pos, Module: module, Names: names}, nil
}

// parseNameList parses a braced, comma-separated identifier list.
func (p *parser) parseNameList() ([]string, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var names []string
	for !p.at(tokRBrace) {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, name.lit)
		p.skipNewlines()
		if p.at(tokComma) {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return names, nil
}

// parseAgentDeclaration handles
//
//	agent a = spawn Agent{ openai/gpt-4o, temperature: 0.7 }
func (p *parser) parseAgentDeclaration() (ast.Stmt, error) {
	kw := p.advance()
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSpawn); err != nil {
		return nil, err
	}
	ctor, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if ctor.lit != "Agent" {
		return nil, &SyntaxError{Line: ctor.pos.Line, Column: ctor.pos.Column, Expected: "'Agent'", Found: ctor.describe()}
	}
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	p.skipNewlines()

	model, err := p.parseModelDescriptor()
	if err != nil {
		return nil, err
	}

	var config []ast.ConfigPair
	p.skipNewlines()
	for p.at(tokComma) {
		p.advance()
		p.skipNewlines()
		key, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		config = append(config, ast.ConfigPair{Key: key.lit, Value: value})
		p.skipNewlines()
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return &ast.AgentDeclaration{Position: kw.pos, Name: name.lit, Model: model, Config: config}, nil
}

// parseModelDescriptor glues `provider/name/...` segments into the opaque
// model string.
func (p *parser) parseModelDescriptor() (string, error) {
	seg, err := p.expect(tokIdent)
	if err != nil {
		return "", err
	}
	parts := []string{seg.lit}
	for p.at(tokSlash) {
		p.advance()
		seg, err = p.expect(tokIdent)
		if err != nil {
			return "", err
		}
		parts = append(parts, seg.lit)
	}
	return strings.Join(parts, "/"), nil
}

// parsePropertyAssignment handles `*agent->prop = value` and `+=` append
// mode. Tool-list literals are only valid here.
func (p *parser) parsePropertyAssignment() (ast.Stmt, error) {
	star := p.advance()
	agent, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokArrow); err != nil {
		return nil, err
	}
	prop, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}

	mode := ast.AssignSet
	switch p.cur().typ {
	case tokAssign:
		p.advance()
	case tokPlusAssign:
		mode = ast.AssignAppend
		p.advance()
	default:
		return nil, p.errExpected("'=' or '+='")
	}

	var value ast.Expr
	if p.at(tokLBrace) {
		value, err = p.parseToolList()
	} else {
		value, err = p.parseExpr()
	}
	if err != nil {
		return nil, err
	}
	return &ast.PropertyAssignment{Position: star.pos, Agent: agent.lit, Property: prop.lit, Mode: mode, Value: value}, nil
}

// parseToolList parses `{ WebSearch, AgentRouting{ x, y } }`.
func (p *parser) parseToolList() (ast.Expr, error) {
	open, err := p.expect(tokLBrace)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	list := &ast.ToolListExpr{Position: open.pos}
	for !p.at(tokRBrace) {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		spec := &ast.ToolSpecExpr{Position: name.pos, Name: name.lit}
		if p.at(tokLBrace) {
			routes, err := p.parseNameList()
			if err != nil {
				return nil, err
			}
			spec.Routes = routes
		}
		list.Specs = append(list.Specs, spec)
		p.skipNewlines()
		if p.at(tokComma) {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) parsePrint() (ast.Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return &ast.PrintStatement{Position: kw.pos, Value: value}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	kw := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Position: kw.pos, Cond: cond, Then: then}
	if p.at(tokElse) {
		p.advance()
		stmt.Else, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for {
		p.skipNewlines()
		if p.at(tokRBrace) {
			p.advance()
			return stmts, nil
		}
		if p.at(tokEOF) {
			return nil, p.errExpected("'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if err := p.endStatement(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseVarAssignment() (ast.Stmt, error) {
	name := p.advance()
	p.advance() // '='
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarAssignment{Position: name.pos, Name: name.lit, Value: value}, nil
}

func (p *parser) parseExpressionStatement() (ast.Stmt, error) {
	pos := p.cur().pos
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Position: pos, Value: value}, nil
}

// ---------------------------------------------------------------------------
// Expressions (precedence: or < and < comparison < postfix/primary)
// ---------------------------------------------------------------------------

func (p *parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(tokOr) {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: op.pos, Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(tokAnd) {
		op := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Position: op.pos, Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[tokenType]ast.BinaryOp{
	tokEq:  ast.OpEq,
	tokNeq: ast.OpNeq,
	tokLt:  ast.OpLt,
	tokGt:  ast.OpGt,
	tokLeq: ast.OpLeq,
	tokGeq: ast.OpGeq,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.cur().typ]; ok {
		tok := p.advance()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Position: tok.pos, Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

// parsePostfix parses a primary expression followed by any chain of
// `.property` accesses and `.method(...)` calls.
func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(tokDot) {
		dot := p.advance()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if p.at(tokLParen) {
			args, named, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.MethodCall{Position: dot.pos, Receiver: expr, Method: name.lit, Args: args, Named: named}
			continue
		}
		expr = &ast.PropertyAccess{Position: dot.pos, Receiver: expr, Property: name.lit}
	}
	return expr, nil
}

// parseCallArgs parses `( expr, name=expr, ... )`. Named arguments may be
// interleaved with positional ones; the interpreter validates names.
func (p *parser) parseCallArgs() (args []ast.Expr, named []ast.NamedArg, err error) {
	if _, err = p.expect(tokLParen); err != nil {
		return nil, nil, err
	}
	p.skipNewlines()
	for !p.at(tokRParen) {
		if p.at(tokIdent) && p.toks[p.idx+1].typ == tokAssign {
			name := p.advance()
			p.advance() // '='
			value, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			named = append(named, ast.NamedArg{Name: name.lit, Value: value})
		} else {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
		}
		p.skipNewlines()
		if p.at(tokComma) {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	if _, err = p.expect(tokRParen); err != nil {
		return nil, nil, err
	}
	return args, named, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.typ {
	case tokString:
		p.advance()
		return &ast.StringLit{Position: tok.pos, Value: tok.lit}, nil
	case tokFString:
		p.advance()
		return p.buildInterpString(tok)
	case tokNumber:
		p.advance()
		value, err := strconv.ParseFloat(tok.lit, 64)
		if err != nil {
			return nil, &SyntaxError{Line: tok.pos.Line, Column: tok.pos.Column, Expected: "number", Found: "'" + tok.lit + "'"}
		}
		return &ast.NumberLit{Position: tok.pos, Value: value}, nil
	case tokTrue:
		p.advance()
		return &ast.BoolLit{Position: tok.pos, Value: true}, nil
	case tokFalse:
		p.advance()
		return &ast.BoolLit{Position: tok.pos, Value: false}, nil
	case tokIdent:
		p.advance()
		return &ast.Identifier{Position: tok.pos, Name: tok.lit}, nil
	case tokLParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errExpected("an expression")
	}
}

// buildInterpString converts a scanned f-string token into an InterpString
// node, parsing each embedded expression with a nested parse anchored at
// the segment's source position.
func (p *parser) buildInterpString(tok token) (ast.Expr, error) {
	node := &ast.InterpString{Position: tok.pos}
	for _, seg := range tok.segments {
		if !seg.isExpr {
			node.Segments = append(node.Segments, ast.InterpSegment{Text: seg.text})
			continue
		}
		expr, err := parseEmbeddedExpr(seg.expr, seg.exprPos)
		if err != nil {
			return nil, err
		}
		node.Segments = append(node.Segments, ast.InterpSegment{Expr: expr})
	}
	return node, nil
}

// parseEmbeddedExpr parses a single expression substring from an f-string.
// Reported positions are rebased onto the enclosing literal's location.
func parseEmbeddedExpr(src string, base core.Position) (ast.Expr, error) {
	toks, err := newLexer(src).scanAll()
	if err != nil {
		return nil, rebaseSyntaxError(err, base)
	}
	sub := &parser{toks: toks}
	expr, err := sub.parseExpr()
	if err != nil {
		return nil, rebaseSyntaxError(err, base)
	}
	if !sub.at(tokEOF) {
		return nil, &SyntaxError{Line: base.Line, Column: base.Column, Expected: "'}'", Found: sub.cur().describe()}
	}
	return expr, nil
}

func rebaseSyntaxError(err error, base core.Position) error {
	se, ok := err.(*SyntaxError)
	if !ok {
		return err
	}
	// Embedded expressions are single-line; shift columns onto the literal.
	return &SyntaxError{Line: base.Line, Column: base.Column + se.Column - 1, Expected: se.Expected, Found: se.Found}
}
