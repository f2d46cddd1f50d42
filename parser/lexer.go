package parser

import (
	"strings"

	"github.com/hupe1980/agentscript/core"
)

// lexer scans AgentScript source text into tokens. It tracks 1-based line
// and column positions and folds `//` line comments into the surrounding
// whitespace.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// scanAll tokenizes the whole input, appending a trailing EOF token.
func (l *lexer) scanAll() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) pos() core.Position { return core.Position{Line: l.line, Column: l.col} }

func (l *lexer) peek() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) peekAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance() byte {
	ch := l.src[l.off]
	l.off++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentPart(ch byte) bool { return isLetter(ch) || isDigit(ch) }

func (l *lexer) next() (token, error) {
	// Skip horizontal whitespace and comments; newlines are tokens.
	for l.off < len(l.src) {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}
		if ch == '/' && l.peekAt(1) == '/' {
			for l.off < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}

	pos := l.pos()
	if l.off >= len(l.src) {
		return token{typ: tokEOF, pos: pos}, nil
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return token{typ: tokNewline, pos: pos}, nil
	case isLetter(ch):
		return l.scanIdent(pos)
	case isDigit(ch):
		return l.scanNumber(pos), nil
	case ch == '"':
		return l.scanString(pos)
	}

	l.advance()
	switch ch {
	case '*':
		return token{typ: tokStar, pos: pos}, nil
	case '{':
		return token{typ: tokLBrace, pos: pos}, nil
	case '}':
		return token{typ: tokRBrace, pos: pos}, nil
	case '(':
		return token{typ: tokLParen, pos: pos}, nil
	case ')':
		return token{typ: tokRParen, pos: pos}, nil
	case '.':
		return token{typ: tokDot, pos: pos}, nil
	case ',':
		return token{typ: tokComma, pos: pos}, nil
	case ':':
		return token{typ: tokColon, pos: pos}, nil
	case '/':
		return token{typ: tokSlash, pos: pos}, nil
	case '-':
		if l.peek() == '>' {
			l.advance()
			return token{typ: tokArrow, pos: pos}, nil
		}
		return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "'->'", Found: "'-'"}
	case '+':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokPlusAssign, pos: pos}, nil
		}
		return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "'+='", Found: "'+'"}
	case '=':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokEq, pos: pos}, nil
		}
		return token{typ: tokAssign, pos: pos}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokNeq, pos: pos}, nil
		}
		return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "'!='", Found: "'!'"}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokLeq, pos: pos}, nil
		}
		return token{typ: tokLt, pos: pos}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return token{typ: tokGeq, pos: pos}, nil
		}
		return token{typ: tokGt, pos: pos}, nil
	}
	return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "a token", Found: "'" + string(ch) + "'"}
}

// scanIdent scans identifiers, keywords and f-string prefixes. A '-' is part
// of an identifier only when followed by a letter or digit, so model names
// like gpt-4o lex as one token while a->goal still yields the arrow.
func (l *lexer) scanIdent(pos core.Position) (token, error) {
	start := l.off
	l.advance()
	for l.off < len(l.src) {
		ch := l.peek()
		if isIdentPart(ch) {
			l.advance()
			continue
		}
		if ch == '-' && isIdentPart(l.peekAt(1)) {
			l.advance()
			continue
		}
		break
	}
	lit := l.src[start:l.off]

	if lit == "f" && l.peek() == '"' {
		return l.scanFString(pos)
	}

	if kw, ok := keywords[lit]; ok {
		return token{typ: kw, lit: lit, pos: pos}, nil
	}
	return token{typ: tokIdent, lit: lit, pos: pos}, nil
}

func (l *lexer) scanNumber(pos core.Position) token {
	start := l.off
	for l.off < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for l.off < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}
	return token{typ: tokNumber, lit: l.src[start:l.off], pos: pos}
}

func (l *lexer) scanString(pos core.Position) (token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.off >= len(l.src) || l.peek() == '\n' {
			return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "closing '\"'", Found: "end of line"}
		}
		ch := l.advance()
		if ch == '"' {
			return token{typ: tokString, lit: sb.String(), pos: pos}, nil
		}
		if ch == '\\' {
			if l.off >= len(l.src) {
				return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "escape sequence", Found: "end of input"}
			}
			esc := l.advance()
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(ch)
	}
}

// scanFString scans an interpolated string literal `f"..{expr}.."` into raw
// segments. Embedded expressions stay unparsed; the parser turns them into
// syntax trees with a nested parse.
func (l *lexer) scanFString(pos core.Position) (token, error) {
	l.advance() // opening quote
	var segs []fsegment
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			segs = append(segs, fsegment{text: text.String()})
			text.Reset()
		}
	}
	for {
		if l.off >= len(l.src) || l.peek() == '\n' {
			return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "closing '\"'", Found: "end of line"}
		}
		ch := l.advance()
		switch ch {
		case '"':
			flush()
			return token{typ: tokFString, pos: pos, segments: segs}, nil
		case '\\':
			if l.off >= len(l.src) {
				return token{}, &SyntaxError{Line: pos.Line, Column: pos.Column, Expected: "escape sequence", Found: "end of input"}
			}
			esc := l.advance()
			switch esc {
			case '"':
				text.WriteByte('"')
			case '\\':
				text.WriteByte('\\')
			case 'n':
				text.WriteByte('\n')
			case 't':
				text.WriteByte('\t')
			default:
				text.WriteByte('\\')
				text.WriteByte(esc)
			}
		case '{':
			flush()
			exprPos := l.pos()
			var expr strings.Builder
			for {
				if l.off >= len(l.src) || l.peek() == '\n' || l.peek() == '"' {
					return token{}, &SyntaxError{Line: exprPos.Line, Column: exprPos.Column, Expected: "closing '}'", Found: "end of string"}
				}
				c := l.advance()
				if c == '}' {
					break
				}
				expr.WriteByte(c)
			}
			if strings.TrimSpace(expr.String()) == "" {
				return token{}, &SyntaxError{Line: exprPos.Line, Column: exprPos.Column, Expected: "an expression", Found: "'}'"}
			}
			segs = append(segs, fsegment{isExpr: true, expr: expr.String(), exprPos: exprPos})
		default:
			text.WriteByte(ch)
		}
	}
}
