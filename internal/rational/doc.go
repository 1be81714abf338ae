// Package rational provides the exact fraction type used for every quantity
// in the calculator.
//
// A Rational is always canonical: the denominator is positive, numerator and
// denominator share no common factor, and zero is 0/1. Because of this two
// equal values always carry identical (p, q) pairs, so equality and ordering
// never need floating-point arithmetic.
//
// Key constraints:
//   - Values are immutable; every operation returns a new Rational
//   - The zero value of Rational is a valid 0/1
//   - Floats are accepted only as an input format (FromDecimal)
//   - Division by zero surfaces as ErrDivisionByZero, never a panic
package rational
