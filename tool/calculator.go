package tool

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/agentscript/core"
)

// calculatorTool evaluates arithmetic expressions passed as strings, e.g.
// "2 + 2 * 3" yields 8. It supports + - * / with standard precedence,
// parentheses and unary minus.
type calculatorTool struct{}

// NewCalculatorTool constructs the Calculator tool.
func NewCalculatorTool() Tool { return &calculatorTool{} }

func (t *calculatorTool) Name() string { return ToolCalculator }

func (t *calculatorTool) Description() string {
	return "Evaluate an arithmetic expression and return the numeric result."
}

func (t *calculatorTool) Call(_ *Context, args []core.Value) (core.Value, error) {
	expr, err := argString(args, 0, t.Name())
	if err != nil {
		return nil, err
	}
	result, err := evalArithmetic(expr)
	if err != nil {
		return nil, fmt.Errorf("Calculator: %w", err)
	}
	return core.Number(result), nil
}

// evalArithmetic is a small precedence-climbing evaluator over a token
// stream of numbers, parentheses and the four basic operators.
func evalArithmetic(input string) (float64, error) {
	p := &calcParser{src: strings.TrimSpace(input)}
	v, err := p.parseAddSub()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.src) {
		return 0, fmt.Errorf("unexpected %q in expression", p.src[p.pos:])
	}
	return v, nil
}

type calcParser struct {
	src string
	pos int
}

func (p *calcParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *calcParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *calcParser) parseAddSub() (float64, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *calcParser) parseMulDiv() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *calcParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *calcParser) parsePrimary() (float64, error) {
	ch := p.peek()
	if ch == '(' {
		p.pos++
		v, err := p.parseAddSub()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected a number at position %d", start)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.src[start:p.pos])
	}
	return v, nil
}
