package rational

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrDivisionByZero is returned when a denominator of zero would be constructed.
var ErrDivisionByZero = errors.New("division by zero")

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// Rational is an exact fraction p/q in canonical form.
// The shared big.Int values are never mutated after construction.
type Rational struct {
	p *big.Int
	q *big.Int
}

// Common constants.
var (
	Zero = Rational{}
	One  = FromInt(1)
)

// New creates p/q in canonical form.
func New(p, q int64) (Rational, error) {
	return canonical(big.NewInt(p), big.NewInt(q))
}

// NewBig creates p/q in canonical form. The arguments are copied.
func NewBig(p, q *big.Int) (Rational, error) {
	return canonical(new(big.Int).Set(p), new(big.Int).Set(q))
}

// MustNew is like New but panics on a zero denominator.
// Intended for constants.
func MustNew(p, q int64) Rational {
	r, err := New(p, q)
	if err != nil {
		panic(fmt.Sprintf("rational.MustNew(%d, %d): %v", p, q, err))
	}
	return r
}

// FromInt creates n/1.
func FromInt(n int64) Rational {
	if n == 0 {
		return Zero
	}
	return Rational{p: big.NewInt(n), q: bigOne}
}

// FromBigInt creates n/1. The argument is copied.
func FromBigInt(n *big.Int) Rational {
	if n.Sign() == 0 {
		return Zero
	}
	return Rational{p: new(big.Int).Set(n), q: bigOne}
}

// canonical takes ownership of p and q and reduces them.
func canonical(p, q *big.Int) (Rational, error) {
	if q.Sign() == 0 {
		return Rational{}, ErrDivisionByZero
	}
	if p.Sign() == 0 {
		return Zero, nil
	}
	if q.Sign() < 0 {
		p.Neg(p)
		q.Neg(q)
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(p), q)
	if g.Cmp(bigOne) != 0 {
		p.Quo(p, g)
		q.Quo(q, g)
	}
	return Rational{p: p, q: q}, nil
}

// mustCanonical is used where q is known to be non-zero.
func mustCanonical(p, q *big.Int) Rational {
	r, err := canonical(p, q)
	if err != nil {
		panic("rational: internal zero denominator")
	}
	return r
}

// Num returns a copy of the numerator.
func (r Rational) Num() *big.Int { return new(big.Int).Set(r.num()) }

// Denom returns a copy of the denominator.
func (r Rational) Denom() *big.Int { return new(big.Int).Set(r.den()) }

func (r Rational) num() *big.Int {
	if r.p == nil {
		return bigZero
	}
	return r.p
}

func (r Rational) den() *big.Int {
	if r.q == nil {
		return bigOne
	}
	return r.q
}

// Add returns r + b.
func (r Rational) Add(b Rational) Rational {
	x := new(big.Int).Mul(r.num(), b.den())
	y := new(big.Int).Mul(b.num(), r.den())
	return mustCanonical(x.Add(x, y), new(big.Int).Mul(r.den(), b.den()))
}

// Sub returns r - b.
func (r Rational) Sub(b Rational) Rational {
	x := new(big.Int).Mul(r.num(), b.den())
	y := new(big.Int).Mul(b.num(), r.den())
	return mustCanonical(x.Sub(x, y), new(big.Int).Mul(r.den(), b.den()))
}

// Mul returns r * b.
func (r Rational) Mul(b Rational) Rational {
	return mustCanonical(
		new(big.Int).Mul(r.num(), b.num()),
		new(big.Int).Mul(r.den(), b.den()),
	)
}

// Div returns r / b, or ErrDivisionByZero when b is zero.
func (r Rational) Div(b Rational) (Rational, error) {
	return canonical(
		new(big.Int).Mul(r.num(), b.den()),
		new(big.Int).Mul(r.den(), b.num()),
	)
}

// Negate returns -r.
func (r Rational) Negate() Rational {
	if r.IsZero() {
		return Zero
	}
	return Rational{p: new(big.Int).Neg(r.num()), q: r.den()}
}

// Invert returns 1/r, or ErrDivisionByZero when r is zero.
func (r Rational) Invert() (Rational, error) {
	return canonical(new(big.Int).Set(r.den()), new(big.Int).Set(r.num()))
}

// Floor rounds toward negative infinity.
func (r Rational) Floor() Rational {
	// Euclidean division with a positive divisor is floor division.
	return FromBigInt(new(big.Int).Div(r.num(), r.den()))
}

// Abs returns |r|.
func (r Rational) Abs() Rational {
	if r.Sign() >= 0 {
		return r
	}
	return r.Negate()
}

// Sign returns -1, 0 or +1.
func (r Rational) Sign() int { return r.num().Sign() }

// IsZero reports whether r == 0.
func (r Rational) IsZero() bool { return r.Sign() == 0 }

// IsInteger reports whether the denominator is 1.
func (r Rational) IsInteger() bool { return r.den().Cmp(bigOne) == 0 }

// Cmp compares by cross-multiplication and returns -1, 0 or +1.
func (r Rational) Cmp(b Rational) int {
	x := new(big.Int).Mul(r.num(), b.den())
	y := new(big.Int).Mul(b.num(), r.den())
	return x.Cmp(y)
}

// Less reports whether r < b.
func (r Rational) Less(b Rational) bool { return r.Cmp(b) < 0 }

// Equal compares canonical (p, q) pairs.
func (r Rational) Equal(b Rational) bool {
	return r.num().Cmp(b.num()) == 0 && r.den().Cmp(b.den()) == 0
}

// Clamp returns min if r < min, max if max < r, otherwise r.
func (r Rational) Clamp(min, max Rational) Rational {
	if r.Less(min) {
		return min
	}
	if max.Less(r) {
		return max
	}
	return r
}

// Min returns the smaller of a and b.
func Min(a, b Rational) Rational {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Rational) Rational {
	if a.Less(b) {
		return b
	}
	return a
}

// Fraction renders "p" when the denominator is 1, otherwise "p/q".
func (r Rational) Fraction() string {
	if r.IsInteger() {
		return r.num().String()
	}
	return r.num().String() + "/" + r.den().String()
}

// String implements fmt.Stringer using the fraction form.
func (r Rational) String() string { return r.Fraction() }

// MarshalText encodes r as fraction text.
func (r Rational) MarshalText() ([]byte, error) {
	return []byte(r.Fraction()), nil
}

// UnmarshalText parses fraction or decimal text.
func (r *Rational) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
