// Package calculator implements the built-in arithmetic tool (spec §4.4
// step 2.a's calculator example, §8 scenario 2 "compute 2 + 3 * 4" -> "14").
package calculator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

var expressionPattern = regexp.MustCompile(`[0-9+\-*/().\s]+`)

// Tool evaluates a single arithmetic expression. It carries no external
// dependency: the teacher's corpus has no arithmetic-expression library, and
// a four-operator recursive-descent evaluator is small enough that
// hand-rolling it does not defeat the point of reusing ecosystem code.
type Tool struct {
	// cancelled is set true if Execute observes its context cancelled before
	// returning, letting tests assert on cooperative cancellation (spec §8
	// scenario 4).
	cancelled bool
}

// New constructs a calculator tool.
func New() *Tool { return &Tool{} }

// Cancelled reports whether the most recent Execute call was cancelled
// before producing a result.
func (t *Tool) Cancelled() bool { return t.cancelled }

func (t *Tool) Meta() toolhub.Meta {
	return toolhub.Meta{
		Capabilities: []string{"calculate"},
		Description:  "evaluates arithmetic expressions",
		Reliability:  "high",
		Timeliness:   "high",
		ExampleInput: "2 + 3 * 4",
	}
}

func (t *Tool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	expr := ExtractExpression(input)
	if expr == "" {
		return toolhub.Result{}, errs.New(errs.KindToolInvalidInput, "no arithmetic expression found in input")
	}
	select {
	case <-ctx.Done():
		t.cancelled = true
		return toolhub.Result{}, ctx.Err()
	default:
	}
	value, err := Eval(expr)
	if err != nil {
		return toolhub.Result{}, errs.New(errs.KindToolExecution, err.Error())
	}
	return toolhub.Result{Success: true, Result: formatNumber(value)}, nil
}

// ExtractExpression pulls the first arithmetic subexpression out of a free
// text instruction, per spec §4.4 step 2.a.
func ExtractExpression(input string) string {
	return strings.TrimSpace(expressionPattern.FindString(input))
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Eval evaluates a four-operator arithmetic expression with parentheses and
// standard precedence via recursive descent.
func Eval(expr string) (float64, error) {
	p := &parser{tokens: tokenize(expr)}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("unexpected token %q", p.tokens[p.pos])
	}
	return v, nil
}

type parser struct {
	tokens []string
	pos    int
}

func tokenize(expr string) []string {
	var tokens []string
	var num strings.Builder
	flush := func() {
		if num.Len() > 0 {
			tokens = append(tokens, num.String())
			num.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == ' ' || r == '\t':
			flush()
		case strings.ContainsRune("0123456789.", r):
			num.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.tokens[p.pos]
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (p *parser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.peek() == "*" || p.peek() == "/" {
		op := p.tokens[p.pos]
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		}
	}
	return v, nil
}

func (p *parser) parseFactor() (float64, error) {
	tok := p.peek()
	switch {
	case tok == "-":
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	case tok == "(":
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ")" {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		p.pos++
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", tok)
		}
		return v, nil
	}
}
