package equation

// Operator is one of the four arithmetic operators an equation may use.
type Operator string

const (
	// OperatorAdd adds the operands.
	OperatorAdd Operator = "+"
	// OperatorSubtract subtracts the right operand from the left.
	OperatorSubtract Operator = "-"
	// OperatorMultiply multiplies the operands.
	OperatorMultiply Operator = "*"
	// OperatorDivide divides the left operand by the right.
	OperatorDivide Operator = "/"
)

var operators = []Operator{OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide}

// Operators returns every recognized operator in display order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)

	return out
}

// ParseOperator returns the operator written as symbol.
func ParseOperator(symbol string) (Operator, bool) {
	for _, op := range operators {
		if string(op) == symbol {
			return op, true
		}
	}

	return "", false
}

// Symbol returns the textual symbol of the operator.
func (o Operator) Symbol() string {
	return string(o)
}

func (o Operator) String() string {
	return string(o)
}

// Name returns a lowercase word for the operator.
func (o Operator) Name() string {
	switch o {
	case OperatorAdd:
		return "add"
	case OperatorSubtract:
		return "subtract"
	case OperatorMultiply:
		return "multiply"
	case OperatorDivide:
		return "divide"
	default:
		return "unknown"
	}
}
