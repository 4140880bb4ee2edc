package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// Evaluate implements EdgeConditionEvaluator.evaluate (§4.6): true if cond
// is nil, otherwise the expressions combined by cond.EffectiveOperator.
func Evaluate(cond *types.Condition, ctx *execctx.ExecutionContext) (bool, error) {
	if cond == nil {
		return true, nil
	}
	if err := cond.Validate(); err != nil {
		return false, err
	}

	switch cond.EffectiveOperator() {
	case types.ConditionOperatorOr:
		for _, expr := range cond.Expressions {
			ok, err := evaluateExpression(expr, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default: // AND
		for _, expr := range cond.Expressions {
			ok, err := evaluateExpression(expr, ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

func evaluateExpression(e types.Expression, ctx *execctx.ExecutionContext) (bool, error) {
	value, present := ctx.Get(e.Port)

	switch e.Operation {
	case types.OpIsNull:
		return !present, nil
	case types.OpIsNotNull:
		return present, nil
	case types.OpIsTrue:
		return truthy(value), nil
	case types.OpIsFalse:
		// IS_FALSE(null) = true (§4.6).
		if !present {
			return true, nil
		}
		return !truthy(value), nil
	case types.OpEquals:
		return reflect.DeepEqual(value, e.Value), nil
	case types.OpNotEquals:
		return !reflect.DeepEqual(value, e.Value), nil
	case types.OpGreaterThan:
		a, b, err := numericPair(value, e.Value)
		if err != nil {
			return false, err
		}
		return a > b, nil
	case types.OpLessThan:
		a, b, err := numericPair(value, e.Value)
		if err != nil {
			return false, err
		}
		return a < b, nil
	case types.OpContains:
		return strings.Contains(stringify(value), stringify(e.Value)), nil
	case types.OpStartsWith:
		return strings.HasPrefix(stringify(value), stringify(e.Value)), nil
	case types.OpIn:
		return membership(e.Value, value)
	case types.OpNotIn:
		ok, err := membership(e.Value, value)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("%w: %s", types.ErrUnknownConditionOp, e.Operation)
	}
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0", "":
			return false
		}
		return false
	case int, int32, int64, float32, float64:
		f, _ := toFloat(v)
		return f != 0
	default:
		return false
	}
}

func numericPair(a, b interface{}) (float64, float64, error) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, 0, ErrNonNumericOperand
	}
	return af, bf, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func membership(expected interface{}, value interface{}) (bool, error) {
	switch coll := expected.(type) {
	case []interface{}:
		for _, el := range coll {
			if reflect.DeepEqual(el, value) {
				return true, nil
			}
		}
		return false, nil
	case string:
		for _, part := range strings.Split(coll, ",") {
			if strings.TrimSpace(part) == stringify(value) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, ErrNotCollection
	}
}
