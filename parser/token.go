package parser

import "github.com/hupe1980/agentscript/core"

// tokenType enumerates the lexical token kinds of AgentScript.
type tokenType int

const (
	tokEOF tokenType = iota
	tokNewline
	tokIdent
	tokNumber
	tokString
	tokFString

	// keywords
	tokAgent
	tokSpawn
	tokImport
	tokPrint
	tokIf
	tokElse
	tokTrue
	tokFalse
	tokAnd
	tokOr

	// punctuation & operators
	tokStar       // *
	tokArrow      // ->
	tokAssign     // =
	tokPlusAssign // +=
	tokLBrace     // {
	tokRBrace     // }
	tokLParen     // (
	tokRParen     // )
	tokDot        // .
	tokComma      // ,
	tokColon      // :
	tokSlash      // /
	tokEq         // ==
	tokNeq        // !=
	tokLt         // <
	tokGt         // >
	tokLeq        // <=
	tokGeq        // >=
)

var tokenNames = map[tokenType]string{
	tokEOF:        "end of input",
	tokNewline:    "newline",
	tokIdent:      "identifier",
	tokNumber:     "number",
	tokString:     "string",
	tokFString:    "f-string",
	tokAgent:      "'agent'",
	tokSpawn:      "'spawn'",
	tokImport:     "'import'",
	tokPrint:      "'print'",
	tokIf:         "'if'",
	tokElse:       "'else'",
	tokTrue:       "'true'",
	tokFalse:      "'false'",
	tokAnd:        "'and'",
	tokOr:         "'or'",
	tokStar:       "'*'",
	tokArrow:      "'->'",
	tokAssign:     "'='",
	tokPlusAssign: "'+='",
	tokLBrace:     "'{'",
	tokRBrace:     "'}'",
	tokLParen:     "'('",
	tokRParen:     "')'",
	tokDot:        "'.'",
	tokComma:      "','",
	tokColon:      "':'",
	tokSlash:      "'/'",
	tokEq:         "'=='",
	tokNeq:        "'!='",
	tokLt:         "'<'",
	tokGt:         "'>'",
	tokLeq:        "'<='",
	tokGeq:        "'>='",
}

func (t tokenType) String() string {
	if n, ok := tokenNames[t]; ok {
		return n
	}
	return "unknown token"
}

var keywords = map[string]tokenType{
	"agent":  tokAgent,
	"spawn":  tokSpawn,
	"import": tokImport,
	"print":  tokPrint,
	"if":     tokIf,
	"else":   tokElse,
	"true":   tokTrue,
	"false":  tokFalse,
	"and":    tokAnd,
	"or":     tokOr,
}

/// fsegment is one raw piece of an f-string: literal text or an embedded
// expression substring (still unparsed).
type fsegment struct {
	isExpr  bool
	text    string
	expr    string
	exprPos core.Position
}

// token is a single lexical unit with its source position.
type token struct {
	typ      tokenType
	lit      string // identifier text, decoded string value, number literal
	pos      core.Position
	segments []fsegment // f-string segments only
}

// describe renders the token for expected-vs-found diagnostics.
func (t token) describe() string {
	switch t.typ {
	case tokIdent:
		return "identifier '" + t.lit + "'"
	case tokNumber, tokString:
		return t.typ.String() + " '" + t.lit + "'"
	default:
		return t.typ.String()
	}
}
