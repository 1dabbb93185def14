// Package equation parses and evaluates single binary fraction equations
// such as "1_1/2 * -3/4".
package equation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sivchari/fracalc/internal/fraction"
)

var (
	// ErrUnparseable is returned when text does not match the operand or
	// equation grammar.
	ErrUnparseable = errors.New("unparseable input")
	// ErrUnknownOperator is returned by Evaluate for a symbol outside + - * /.
	ErrUnknownOperator = fmt.Errorf("%w: unknown operator", ErrUnparseable)
)

var (
	integerPattern     = regexp.MustCompile(`^-?[0-9]+$`)
	fractionPattern    = regexp.MustCompile(`^-?[0-9]+/[0-9]+$`)
	mixedNumberPattern = regexp.MustCompile(`^-?[0-9]+_[0-9]+/[0-9]+$`)
)

// Equation is a validated "<operand> <operator> <operand>" triple.
type Equation struct {
	Left     string
	Operator Operator
	Right    string
}

// Tokens returns the three tokens in input order.
func (e Equation) Tokens() []string {
	return []string{e.Left, string(e.Operator), e.Right}
}

func (e Equation) String() string {
	return strings.Join(e.Tokens(), " ")
}

// IsInteger reports whether s is an optionally negative run of digits.
func IsInteger(s string) bool {
	return integerPattern.MatchString(s)
}

// IsFraction reports whether s is "n/d" where only n may carry a minus sign.
func IsFraction(s string) bool {
	return fractionPattern.MatchString(s)
}

// IsMixedNumber reports whether s is "w_n/d" where only w may carry a minus sign.
func IsMixedNumber(s string) bool {
	return mixedNumberPattern.MatchString(s)
}

// IsOperand reports whether s is a mixed number, a fraction or an integer.
func IsOperand(s string) bool {
	return IsMixedNumber(s) || IsFraction(s) || IsInteger(s)
}

// ParseFraction converts an operand token into a Fraction.
//
// Mixed numbers are assembled as whole + fraction and come back simplified;
// note that "-1_1/2" is therefore -1 + 1/2. Plain fractions are returned
// exactly as written. Text outside the grammar yields ErrUnparseable; a zero
// denominator yields fraction.ErrInvalidArgument.
func ParseFraction(text string) (fraction.Fraction, error) {
	switch {
	case IsMixedNumber(text):
		wholeText, rest, _ := strings.Cut(text, "_")

		whole, err := parseInt(wholeText)
		if err != nil {
			return fraction.Fraction{}, err
		}

		part, err := buildFraction(rest)
		if err != nil {
			return fraction.Fraction{}, err
		}

		return fraction.FromInt(whole).Add(part)
	case IsFraction(text):
		return buildFraction(text)
	case IsInteger(text):
		n, err := parseInt(text)
		if err != nil {
			return fraction.Fraction{}, err
		}

		return fraction.FromInt(n), nil
	default:
		return fraction.Fraction{}, fmt.Errorf("%w: %q is not a fraction, mixed number or integer", ErrUnparseable, text)
	}
}

// ParseEquation splits text on runs of whitespace and validates that it holds
// exactly an operand, an operator and an operand.
func ParseEquation(text string) (Equation, error) {
	tokens := strings.Fields(text)
	if len(tokens) != 3 {
		return Equation{}, fmt.Errorf("%w: expected 3 tokens, got %d", ErrUnparseable, len(tokens))
	}

	if !IsOperand(tokens[0]) || !IsOperand(tokens[2]) {
		return Equation{}, fmt.Errorf("%w: invalid operand in %q", ErrUnparseable, text)
	}

	op, ok := ParseOperator(tokens[1])
	if !ok {
		return Equation{}, fmt.Errorf("%w: invalid operator %q", ErrUnparseable, tokens[1])
	}

	return Equation{Left: tokens[0], Operator: op, Right: tokens[2]}, nil
}

// Evaluate applies the operator written as symbol to first and second.
func Evaluate(first, second fraction.Fraction, symbol string) (fraction.Fraction, error) {
	op, ok := ParseOperator(symbol)
	if !ok {
		return fraction.Fraction{}, fmt.Errorf("%w %q", ErrUnknownOperator, symbol)
	}

	return Apply(first, second, op)
}

// Apply dispatches op to the matching Fraction method.
func Apply(first, second fraction.Fraction, op Operator) (fraction.Fraction, error) {
	switch op {
	case OperatorAdd:
		return first.Add(second)
	case OperatorSubtract:
		return first.Subtract(second)
	case OperatorMultiply:
		return first.Multiply(second)
	case OperatorDivide:
		return first.Divide(second)
	default:
		return fraction.Fraction{}, fmt.Errorf("%w %q", ErrUnknownOperator, string(op))
	}
}

// Result is an evaluated equation.
type Result struct {
	Equation Equation
	Left     fraction.Fraction
	Right    fraction.Fraction
	Value    fraction.Fraction
}

// EvaluateEquation parses both operands of eq and applies its operator.
func EvaluateEquation(eq Equation) (Result, error) {
	left, err := ParseFraction(eq.Left)
	if err != nil {
		return Result{}, fmt.Errorf("left operand: %w", err)
	}

	right, err := ParseFraction(eq.Right)
	if err != nil {
		return Result{}, fmt.Errorf("right operand: %w", err)
	}

	value, err := Apply(left, right, eq.Operator)
	if err != nil {
		return Result{}, err
	}

	return Result{Equation: eq, Left: left, Right: right, Value: value}, nil
}

func buildFraction(text string) (fraction.Fraction, error) {
	numText, denText, _ := strings.Cut(text, "/")

	num, err := parseInt(numText)
	if err != nil {
		return fraction.Fraction{}, err
	}

	den, err := parseInt(denText)
	if err != nil {
		return fraction.Fraction{}, err
	}

	return fraction.New(num, den)
}

func parseInt(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	return n, nil
}
