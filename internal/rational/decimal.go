package rational

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Precision is the fixed scale used when converting non-integer floats.
const Precision = 10000

// ErrNotFinite is returned by FromDecimal for NaN and infinities.
var ErrNotFinite = errors.New("value is not finite")

// repeating maps a fixed-precision approximation of a repeating fraction
// (numerator over Precision) to the exact fraction it stands for.
// Built once at package initialization and read-only afterwards.
var repeating = buildRepeatingTable()

func buildRepeatingTable() map[int64]Rational {
	type entry struct {
		rounded, floored int64
		exact            Rational
	}
	var entries []entry
	for q := int64(2); q < 100; q++ {
		for p := int64(1); p < q; p++ {
			v := float64(p) / float64(q)
			if len(strconv.FormatFloat(v, 'f', -1, 64)) < 10 {
				continue
			}
			entries = append(entries, entry{
				rounded: int64(math.Round(v * Precision)),
				floored: int64(math.Floor(v * Precision)),
				exact:   MustNew(p, q),
			})
		}
	}

	// A rounded approximation owns its key over another fraction's floored one.
	table := make(map[int64]Rational, 2*len(entries))
	for _, e := range entries {
		table[e.rounded] = e.exact
	}
	for _, e := range entries {
		if _, ok := table[e.floored]; !ok {
			table[e.floored] = e.exact
		}
	}
	return table
}

// FromDecimal converts a float to an exact fraction.
//
// Integers are taken as-is. Anything else is scaled by Precision and rounded,
// unless the fractional part matches the approximation of a repeating fraction
// with a denominator below 100, in which case the exact fraction is used.
func FromDecimal(value float64) (Rational, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Rational{}, fmt.Errorf("from decimal %v: %w", value, ErrNotFinite)
	}
	if value == math.Trunc(value) {
		return fromWholeFloat(value), nil
	}

	abs := math.Abs(value)
	whole := math.Floor(abs)
	key := int64(math.Round((abs - whole) * Precision))

	var r Rational
	if exact, ok := repeating[key]; ok {
		r = fromWholeFloat(whole).Add(exact)
	} else {
		scaled := fromWholeFloat(math.Round(abs * Precision))
		r = mustCanonical(scaled.Num(), big.NewInt(Precision))
	}
	if value < 0 {
		return r.Negate(), nil
	}
	return r, nil
}

func fromWholeFloat(v float64) Rational {
	n, _ := new(big.Float).SetFloat64(v).Int(nil)
	return FromBigInt(n)
}

// Parse reads "p", "p/q" or decimal text.
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, fmt.Errorf("parse rational: empty input")
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		p, okP := new(big.Int).SetString(strings.TrimSpace(num), 10)
		q, okQ := new(big.Int).SetString(strings.TrimSpace(den), 10)
		if !okP || !okQ {
			return Rational{}, fmt.Errorf("parse rational %q: invalid fraction", s)
		}
		r, err := canonical(p, q)
		if err != nil {
			return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
		}
		return r, nil
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return FromBigInt(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
	}
	return FromDecimal(f)
}

// DefaultDigits is the number of fractional digits Decimal renders.
const DefaultDigits = 3

// RoundingFactor returns 5/10^(digits+1), the bias that rounds half up at
// the last rendered digit.
func RoundingFactor(digits int) Rational {
	q := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)+1), nil)
	return mustCanonical(big.NewInt(5), q)
}

// Decimal renders r with up to DefaultDigits fractional digits.
func (r Rational) Decimal() string {
	return r.DecimalWith(DefaultDigits, RoundingFactor(DefaultDigits))
}

// DecimalWith renders r by long division after adding the rounding bias to
// its magnitude. Trailing zero digits are dropped, and so is the decimal
// point when no digits remain. A value that rounds to zero has no sign.
func (r Rational) DecimalWith(maxDigits int, rounding Rational) string {
	a := r.Abs().Add(rounding)

	ten := big.NewInt(10)
	whole, rem := new(big.Int).QuoRem(a.num(), a.den(), new(big.Int))
	digits := make([]byte, 0, maxDigits)
	d := new(big.Int)
	for i := 0; i < maxDigits; i++ {
		rem.Mul(rem, ten)
		d.QuoRem(rem, a.den(), rem)
		digits = append(digits, byte('0'+d.Int64()))
	}
	frac := strings.TrimRight(string(digits), "0")

	var b strings.Builder
	if r.Sign() < 0 && (whole.Sign() != 0 || frac != "") {
		b.WriteByte('-')
	}
	b.WriteString(whole.String())
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
