package condition

import (
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func TestEvaluateNilConditionIsTrue(t *testing.T) {
	ok, err := Evaluate(nil, execctx.New())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !ok {
		t.Error("expected absent condition to evaluate true")
	}
}

func TestEvaluateEqualsBranch(t *testing.T) {
	ctx := execctx.New()
	_ = ctx.Put("status", "OK")
	cond := &types.Condition{Expressions: []types.Expression{
		{Port: "status", Operation: types.OpEquals, Value: "OK", HasValue: true},
	}}
	ok, err := Evaluate(cond, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !ok {
		t.Error("expected status==OK to pass")
	}

	ctx2 := execctx.New()
	_ = ctx2.Put("status", "FAIL")
	ok, err = Evaluate(cond, ctx2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if ok {
		t.Error("expected status==FAIL to fail against the OK condition")
	}
}

func TestEvaluateDefaultOperatorIsAnd(t *testing.T) {
	ctx := execctx.New()
	_ = ctx.Put("a", "1")
	_ = ctx.Put("b", "2")
	cond := &types.Condition{Expressions: []types.Expression{
		{Port: "a", Operation: types.OpEquals, Value: "1", HasValue: true},
		{Port: "b", Operation: types.OpEquals, Value: "nope", HasValue: true},
	}}
	ok, err := Evaluate(cond, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if ok {
		t.Error("expected AND of a true and a false expression to be false")
	}
}

func TestIsFalseOnNullIsTrue(t *testing.T) {
	cond := &types.Condition{Expressions: []types.Expression{
		{Port: "missing", Operation: types.OpIsFalse},
	}}
	ok, err := Evaluate(cond, execctx.New())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !ok {
		t.Error("expected IS_FALSE(null) to be true per spec")
	}
}

func TestGreaterThanNonNumericErrors(t *testing.T) {
	ctx := execctx.New()
	_ = ctx.Put("n", "not-a-number")
	cond := &types.Condition{Expressions: []types.Expression{
		{Port: "n", Operation: types.OpGreaterThan, Value: 5, HasValue: true},
	}}
	if _, err := Evaluate(cond, ctx); err == nil {
		t.Error("expected GREATER_THAN on a non-numeric operand to error")
	}
}

func TestInMembership(t *testing.T) {
	ctx := execctx.New()
	_ = ctx.Put("color", "red")
	cond := &types.Condition{Expressions: []types.Expression{
		{Port: "color", Operation: types.OpIn, Value: []interface{}{"red", "blue"}, HasValue: true},
	}}
	ok, err := Evaluate(cond, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !ok {
		t.Error("expected color=red to be IN [red, blue]")
	}
}

func TestValidateRejectsEmptyCondition(t *testing.T) {
	cond := &types.Condition{}
	if _, err := Evaluate(cond, execctx.New()); err == nil {
		t.Error("expected empty condition to be rejected")
	}
}
