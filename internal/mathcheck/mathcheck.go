// Package mathcheck decides whether two math answers are equivalent.
//
// Answers are evaluated as exact rational expressions: integers, decimals,
// fractions, percentages, parentheses, the four operators and integer powers
// (written ^ or **). Anything that does not evaluate, such as symbolic
// algebra, is compared as text instead.
package mathcheck

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	maxExponent = 64
	// maxPowerBits bounds the size of a power's numerator plus denominator.
	maxPowerBits = 4096
)

// Equal reports whether student and correct denote the same value.
func Equal(student, correct string) bool {
	a, errA := Eval(student)
	b, errB := Eval(correct)
	if errA == nil && errB == nil {
		return a.Cmp(b) == 0
	}

	return normalizeText(student) == normalizeText(correct)
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Eval evaluates s exactly.
func Eval(s string) (*big.Rat, error) {
	p := &parser{src: strings.ReplaceAll(strings.TrimSpace(s), "**", "^")}
	if p.src == "" {
		return nil, fmt.Errorf("mathcheck: empty expression")
	}

	v, err := p.expr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("mathcheck: unexpected %q at %d", p.src[p.pos], p.pos)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// expr := term (('+' | '-') term)*
func (p *parser) expr() (*big.Rat, error) {
	v, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++

		r, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == '+' {
			v.Add(v, r)
		} else {
			v.Sub(v, r)
		}
	}
}

// term := unary (('*' | '/' | implicit) unary)*
func (p *parser) term() (*big.Rat, error) {
	v, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		switch {
		case op == '*' || op == '/':
			p.pos++
		case op == '(':
			op = '*'
		default:
			return v, nil
		}

		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == '*' {
			v.Mul(v, r)
			continue
		}
		if r.Sign() == 0 {
			return nil, fmt.Errorf("mathcheck: division by zero")
		}
		v.Quo(v, r)
	}
}

// unary := ('-' | '+') unary | power
func (p *parser) unary() (*big.Rat, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		return v.Neg(v), nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.power()
}

// power := primary ('^' unary)?
func (p *parser) power() (*big.Rat, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}

	if p.peek() != '^' {
		return base, nil
	}
	p.pos++

	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return pow(base, exp)
}

func pow(base, exp *big.Rat) (*big.Rat, error) {
	if !exp.IsInt() || exp.Num().CmpAbs(big.NewInt(maxExponent)) > 0 {
		return nil, fmt.Errorf("mathcheck: unsupported exponent %s", exp.RatString())
	}

	n := exp.Num().Int64()
	if n < 0 {
		if base.Sign() == 0 {
			return nil, fmt.Errorf("mathcheck: division by zero")
		}
		base = new(big.Rat).Inv(base)
		n = -n
	}

	if int64(base.Num().BitLen()+base.Denom().BitLen())*n > maxPowerBits {
		return nil, fmt.Errorf("mathcheck: power too large")
	}

	e := big.NewInt(n)
	num := new(big.Int).Exp(base.Num(), e, nil)
	den := new(big.Int).Exp(base.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den), nil
}

// primary := number '%'? | '(' expr ')'
func (p *parser) primary() (*big.Rat, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("mathcheck: missing ')'")
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.src) && (unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '.' || p.src[p.pos] == ',') {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("mathcheck: expected a number at %d", start)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(p.src[start:p.pos], ",", ""))
	if err != nil {
		return nil, fmt.Errorf("mathcheck: %w", err)
	}
	v := d.Rat()

	if p.peek() == '%' {
		p.pos++
		v.Quo(v, big.NewRat(100, 1))
	}
	return v, nil
}
