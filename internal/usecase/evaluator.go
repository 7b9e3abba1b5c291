package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sparradar/backend/internal/domain"
)

// Evaluator is a narrow arithmetic evaluator for price calculations.
// It supports decimal literals, the four basic operators, unary minus
// and parentheses. Anything else is rejected with a tagged error; the
// evaluator never panics into its caller.
//
// Arithmetic runs on decimal values so currency expressions like
// "2 * 1.29" come out exact.
type Evaluator struct{}

// NewEvaluator creates a new expression evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate parses and computes the expression. All failures are
// captured in the returned EvalResult, never raised.
func (e *Evaluator) Evaluate(expression string) domain.EvalResult {
	p := &exprParser{input: expression}
	value, err := p.parseExpression()
	if err == nil {
		p.skipSpaces()
		if p.pos < len(p.input) {
			err = fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
		}
	}
	if err != nil {
		return domain.EvalResult{Error: fmt.Sprintf("invalid expression: %v", err)}
	}

	result, _ := value.Float64()
	return domain.EvalResult{Result: &result}
}

// exprParser is a recursive-descent parser over the grammar:
//
//	expression = term { ("+" | "-") term }
//	term       = unary { ("*" | "/") unary }
//	unary      = [ "-" ] primary
//	primary    = number | "(" expression ")"
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpression() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.peek() == '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Add(right)
		case p.peek() == '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Sub(right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseUnary()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.peek() == '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			left = left.Mul(right)
		case p.peek() == '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return decimal.Zero, err
			}
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero")
			}
			left = left.Div(right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (decimal.Decimal, error) {
	p.skipSpaces()
	if p.peek() == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return decimal.Zero, err
		}
		return value.Neg(), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (decimal.Decimal, error) {
	p.skipSpaces()

	if p.peek() == '(' {
		p.pos++
		value, err := p.parseExpression()
		if err != nil {
			return decimal.Zero, err
		}
		p.skipSpaces()
		if p.peek() != ')' {
			return decimal.Zero, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		if p.pos >= len(p.input) {
			return decimal.Zero, fmt.Errorf("unexpected end of expression")
		}
		return decimal.Zero, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}

	literal := p.input[start:p.pos]
	if strings.Count(literal, ".") > 1 || literal == "." {
		return decimal.Zero, fmt.Errorf("malformed number %q", literal)
	}

	value, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed number %q", literal)
	}
	return value, nil
}

// peek returns the current byte or 0 at end of input
func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
