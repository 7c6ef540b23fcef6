// Package condition defines how conditional form rules are evaluated. A rule
// is a boolean expression over the object that owns the field being checked,
// so a field can be required or skipped depending on a sibling discriminant.
package condition

// Evaluator determines whether a rule holds for the object found at
// fieldPath's parent.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context carries the values a rule can reference. Values is the object that
// owns the field; Extras holds caller supplied context.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}
