package expr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-connector-builder/pkg/condition"
)

// Evaluator evaluates rules with expr-lang. The owning object is exposed as
// `value` and caller context as `extras`, e.g.
//
//	value.type == "DatetimeStreamSlicer"
//	value.inject_into != "path"
//
// Compiled programs are cached per rule and the evaluator is safe for
// concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// New returns an Evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

// Eval implements condition.Evaluator. An empty rule always holds.
func (e *Evaluator) Eval(fieldPath, rule string, ctx condition.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	program, err := e.compile(trimmed)
	if err != nil {
		return false, fmt.Errorf("condition %q for %s: compile: %w", trimmed, fieldPath, err)
	}

	result, err := expr.Run(program, env(ctx))
	if err != nil {
		return false, fmt.Errorf("condition %q for %s: %w", trimmed, fieldPath, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("condition %q for %s: result is %T, not bool", trimmed, fieldPath, result)
	}
	return ok, nil
}

// CacheSize returns the number of compiled rules.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func (e *Evaluator) compile(rule string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(rule,
		expr.Env(env(condition.Context{})),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[rule] = program
	e.mu.Unlock()
	return program, nil
}

func env(ctx condition.Context) map[string]any {
	values := ctx.Values
	if values == nil {
		values = map[string]any{}
	}
	extras := ctx.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	return map[string]any{
		"value":  values,
		"extras": extras,
	}
}
