package validation

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/condition"
	exprcond "github.com/goliatone/go-connector-builder/pkg/condition/expr"
)

// Validator checks builder form values against the form's conditional rules.
// Validation never fails: every violation is reported in the Result.
type Validator struct {
	evaluator condition.Evaluator
	rules     shape
}

// Option customises a Validator.
type Option func(*Validator)

// WithEvaluator replaces the condition evaluator. The default compiles rules
// with expr-lang.
func WithEvaluator(evaluator condition.Evaluator) Option {
	return func(v *Validator) {
		if evaluator != nil {
			v.evaluator = evaluator
		}
	}
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{
		evaluator: exprcond.New(),
		rules:     formShape(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate checks form values decoded into generic JSON values.
func (v *Validator) Validate(values map[string]any) Result {
	w := &walker{evaluator: v.evaluator}
	if values == nil {
		values = map[string]any{}
	}
	w.apply("", v.rules, values)
	return Result{Valid: len(w.issues) == 0, Issues: w.issues}
}

// ValidateForm checks typed form values.
func (v *Validator) ValidateForm(values builder.BuilderFormValues) Result {
	generic, err := toGeneric(values)
	if err != nil {
		return Result{Issues: []Issue{{Code: CodeInvalid, Message: err.Error()}}}
	}
	return v.Validate(generic)
}

// ValidateStreamSlicer checks a single slicer object, reporting paths relative
// to it.
func (v *Validator) ValidateStreamSlicer(slicer map[string]any) Result {
	w := &walker{evaluator: v.evaluator}
	if slicer == nil {
		slicer = map[string]any{}
	}
	w.apply("", streamSlicerShape(), slicer)
	return Result{Valid: len(w.issues) == 0, Issues: w.issues}
}

var defaultValidator = New()

// Validate checks generic form values with the default Validator.
func Validate(values map[string]any) Result {
	return defaultValidator.Validate(values)
}

// ValidateForm checks typed form values with the default Validator.
func ValidateForm(values builder.BuilderFormValues) Result {
	return defaultValidator.ValidateForm(values)
}

func toGeneric(values builder.BuilderFormValues) (map[string]any, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("validation: encode form values: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: decode form values: %w", err)
	}
	return out, nil
}
