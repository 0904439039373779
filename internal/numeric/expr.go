package numeric

import (
	"math"
	"strconv"
	"strings"
)

// EvalExpression evaluates a restricted arithmetic expression such as
// "3*3" or "2,5*4" as typed into a quantity field. Input is rejected
// unless every character is a digit, one of "+-*/().," or whitespace;
// commas are treated as decimal points. There is no dynamic code
// execution: a small recursive-descent parser handles the grammar
//
//	expr   = term { ("+"|"-") term }
//	term   = unary { ("*"|"/") unary }
//	unary  = [ "-" | "+" ] factor
//	factor = number | "(" expr ")"
//
// The second return value is false for malformed input or a non-finite
// result.
func EvalExpression(input string) (float64, bool) {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return 0, false
	}
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '*' || r == '/':
		case r == '(' || r == ')' || r == '.' || r == ',':
		case r == ' ' || r == '\t':
		default:
			return 0, false
		}
	}

	normalized := strings.ReplaceAll(cleaned, ",", ".")
	p := &exprParser{src: strings.ReplaceAll(strings.ReplaceAll(normalized, " ", ""), "\t", "")}

	v, ok := p.parseExpr()
	if !ok || p.pos != len(p.src) {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// QuantityFromInput resolves a quantity field to a usable number:
// the evaluated expression when valid and positive, otherwise 1.
func QuantityFromInput(input string) float64 {
	v, ok := EvalExpression(input)
	if !ok || v <= 0 {
		return 1
	}
	return v
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parseExpr() (float64, bool) {
	v, ok := p.parseTerm()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, ok := p.parseTerm()
			if !ok {
				return 0, false
			}
			v += rhs
		case '-':
			p.pos++
			rhs, ok := p.parseTerm()
			if !ok {
				return 0, false
			}
			v -= rhs
		default:
			return v, true
		}
	}
}

func (p *exprParser) parseTerm() (float64, bool) {
	v, ok := p.parseUnary()
	if !ok {
		return 0, false
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, ok := p.parseUnary()
			if !ok {
				return 0, false
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, ok := p.parseUnary()
			if !ok {
				return 0, false
			}
			v /= rhs
		default:
			return v, true
		}
	}
}

func (p *exprParser) parseUnary() (float64, bool) {
	switch p.peek() {
	case '-':
		p.pos++
		v, ok := p.parseUnary()
		return -v, ok
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parseFactor()
}

func (p *exprParser) parseFactor() (float64, bool) {
	if p.peek() == '(' {
		p.pos++
		v, ok := p.parseExpr()
		if !ok || p.peek() != ')' {
			return 0, false
		}
		p.pos++
		return v, true
	}

	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
