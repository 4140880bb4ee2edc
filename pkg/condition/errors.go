package condition

import "errors"

var (
	// ErrNonNumericOperand is returned by GREATER_THAN/LESS_THAN when
	// either side cannot be parsed as a float (§4.6: "error on
	// non-numeric").
	ErrNonNumericOperand = errors.New("condition: operand is not numeric")
	// ErrNotCollection is returned by IN/NOT_IN when the expected value is
	// not a collection or array (§4.6).
	ErrNotCollection = errors.New("condition: expected value is not a collection")
)
