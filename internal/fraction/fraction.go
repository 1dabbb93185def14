// Package fraction provides an exact rational number type over int64.
package fraction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidArgument is returned when an operation receives an operand it cannot use.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrZeroDenominator is returned when a fraction is built with a zero denominator.
	ErrZeroDenominator = fmt.Errorf("%w: the denominator of a fraction can't be zero", ErrInvalidArgument)
	// ErrDivisionByZero is returned when an operation produces a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
)

// Fraction is a numerator/denominator pair.
//
// Values built with New keep the numerator and denominator exactly as given,
// including a negative denominator. Only the results of arithmetic are
// reduced to lowest terms. The zero value has a zero denominator and is
// rejected by every arithmetic method.
type Fraction struct {
	num int64
	den int64
}

// New returns the fraction num/den.
func New(num, den int64) (Fraction, error) {
	if den == 0 {
		return Fraction{}, ErrZeroDenominator
	}

	return Fraction{num: num, den: den}, nil
}

// MustNew is like New but panics if den is zero.
func MustNew(num, den int64) Fraction {
	f, err := New(num, den)
	if err != nil {
		panic(err)
	}

	return f
}

// FromInt returns the whole number n as n/1.
func FromInt(n int64) Fraction {
	return Fraction{num: n, den: 1}
}

// Num returns the numerator.
func (f Fraction) Num() int64 {
	return f.num
}

// Den returns the denominator.
func (f Fraction) Den() int64 {
	return f.den
}

// SetNumerator overwrites the numerator in place.
func (f *Fraction) SetNumerator(num int64) {
	f.num = num
}

// SetDenominator overwrites the denominator in place.
func (f *Fraction) SetDenominator(den int64) error {
	if den == 0 {
		return ErrZeroDenominator
	}

	f.den = den

	return nil
}

// IsValid reports whether f has a non-zero denominator.
func (f Fraction) IsValid() bool {
	return f.den != 0
}

// IsZero reports whether f is a valid fraction equal to zero.
func (f Fraction) IsZero() bool {
	return f.den != 0 && f.num == 0
}

// Add returns f + other in lowest terms.
func (f Fraction) Add(other Fraction) (Fraction, error) {
	a, b, err := operands(f, other)
	if err != nil {
		return Fraction{}, err
	}

	l := lcd(a.den, b.den)

	return reduce(a.num*(l/a.den)+b.num*(l/b.den), l)
}

// Subtract returns f - other in lowest terms.
func (f Fraction) Subtract(other Fraction) (Fraction, error) {
	a, b, err := operands(f, other)
	if err != nil {
		return Fraction{}, err
	}

	l := lcd(a.den, b.den)

	return reduce(a.num*(l/a.den)-b.num*(l/b.den), l)
}

// Multiply returns f * other in lowest terms.
func (f Fraction) Multiply(other Fraction) (Fraction, error) {
	if _, _, err := operands(f, other); err != nil {
		return Fraction{}, err
	}

	return reduce(f.num*other.num, f.den*other.den)
}

// Divide returns f / other in lowest terms.
// Dividing by a fraction whose numerator is zero returns ErrDivisionByZero.
func (f Fraction) Divide(other Fraction) (Fraction, error) {
	if _, _, err := operands(f, other); err != nil {
		return Fraction{}, err
	}

	if other.IsZero() {
		return Fraction{}, ErrDivisionByZero
	}

	return reduce(f.num*other.den, f.den*other.num)
}

// Simplify returns f in lowest terms with the sign carried by the numerator.
func (f Fraction) Simplify() (Fraction, error) {
	return reduce(f.num, f.den)
}

// Equal reports whether f and other have identical numerators and
// denominators. 1/2 and 2/4 are not equal unless both are simplified first.
func (f Fraction) Equal(other Fraction) bool {
	return f.num == other.num && f.den == other.den
}

// String renders f. Whole values are written as plain integers (4/2 is "2",
// -4/1 is "-4", 0/5 is "0"), improper positive fractions as mixed numbers
// (15/8 is "1_7/8") and everything else as "num/den" with the sign on the
// numerator.
func (f Fraction) String() string {
	if f.den == 0 {
		return strconv.FormatInt(f.num, 10) + "/0"
	}

	num, den := normalize(f.num, f.den)

	if num%den == 0 {
		return strconv.FormatInt(num/den, 10)
	}

	var b strings.Builder

	if num > den {
		b.WriteString(strconv.FormatInt(num/den, 10))
		b.WriteByte('_')
		b.WriteString(strconv.FormatInt(num%den, 10))
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(den, 10))

		return b.String()
	}

	b.WriteString(strconv.FormatInt(num, 10))
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(den, 10))

	return b.String()
}

// operands checks both sides of a binary operation and returns them with
// positive denominators.
func operands(a, b Fraction) (Fraction, Fraction, error) {
	if !a.IsValid() {
		return Fraction{}, Fraction{}, fmt.Errorf("%w: left operand has a zero denominator", ErrInvalidArgument)
	}

	if !b.IsValid() {
		return Fraction{}, Fraction{}, fmt.Errorf("%w: right operand has a zero denominator", ErrInvalidArgument)
	}

	an, ad := normalize(a.num, a.den)
	bn, bd := normalize(b.num, b.den)

	return Fraction{num: an, den: ad}, Fraction{num: bn, den: bd}, nil
}

func reduce(num, den int64) (Fraction, error) {
	if den == 0 {
		return Fraction{}, ErrDivisionByZero
	}

	num, den = normalize(num, den)

	if num == 0 {
		return Fraction{num: 0, den: 1}, nil
	}

	d := gcd(max(abs(num), den), min(abs(num), den))

	return Fraction{num: num / d, den: den / d}, nil
}

// normalize moves the sign of den onto num.
func normalize(num, den int64) (int64, int64) {
	if den < 0 {
		return -num, -den
	}

	return num, den
}

// lcd expects positive denominators.
func lcd(a, b int64) int64 {
	return a * b / gcd(max(a, b), min(a, b))
}

// gcd is Euclid's algorithm; inputs must be non-negative and not both zero.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
