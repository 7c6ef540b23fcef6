package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-connector-builder/pkg/condition"
)

// check validates a value found at path. present is false when the owning
// object has no entry for the field.
type check func(w *walker, path string, value any, present bool)

// rule applies then when the condition holds for the owning object, and
// otherwise when it does not. A nil otherwise strips the field: it is not
// validated at all.
type rule struct {
	field     string
	when      string
	then      check
	otherwise check
}

type shape []rule

type walker struct {
	evaluator condition.Evaluator
	issues    []Issue
}

func (w *walker) report(path, code, message string) {
	w.issues = append(w.issues, Issue{Path: path, Code: code, Message: message})
}

func joinPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

func indexPath(parent string, idx int) string {
	return parent + "[" + strconv.Itoa(idx) + "]"
}

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

// stringValue mirrors form casting: scalars are accepted as their string form.
func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func requiredString() check {
	return stringField(true, nil)
}

func optionalString() check {
	return stringField(false, nil)
}

func stringField(required bool, pattern *regexp.Regexp) check {
	return func(w *walker, path string, value any, present bool) {
		if isEmpty(value, present) {
			if required {
				w.report(path, CodeEmpty, "")
			}
			return
		}
		s, ok := stringValue(value)
		if !ok {
			w.report(path, CodeInvalid, fmt.Sprintf("expected a string, got %T", value))
			return
		}
		if pattern != nil && !pattern.MatchString(s) {
			w.report(path, CodePattern, "")
		}
	}
}

func numberField(required bool) check {
	return func(w *walker, path string, value any, present bool) {
		if isEmpty(value, present) {
			if required {
				w.report(path, CodeEmpty, "")
			}
			return
		}
		if _, ok := numberValue(value); !ok {
			w.report(path, CodeInvalid, fmt.Sprintf("expected a number, got %v", value))
		}
	}
}

func oneOf(values ...string) check {
	return func(w *walker, path string, value any, present bool) {
		if !present || value == nil {
			return
		}
		s, _ := value.(string)
		for _, candidate := range values {
			if s == candidate {
				return
			}
		}
		w.report(path, CodeInvalid, fmt.Sprintf("must be one of %s", strings.Join(values, ", ")))
	}
}

func arrayOf(item check) check {
	return func(w *walker, path string, value any, present bool) {
		if !present || value == nil {
			return
		}
		items, ok := sliceValue(value)
		if !ok {
			w.report(path, CodeInvalid, fmt.Sprintf("expected an array, got %T", value))
			return
		}
		for idx, entry := range items {
			item(w, indexPath(path, idx), entry, true)
		}
	}
}

// either accepts the value when any of the checks reports nothing.
func either(checks ...check) check {
	return func(w *walker, path string, value any, present bool) {
		var first []Issue
		for idx, c := range checks {
			probe := &walker{evaluator: w.evaluator}
			c(probe, path, value, present)
			if len(probe.issues) == 0 {
				return
			}
			if idx == 0 {
				first = probe.issues
			}
		}
		w.issues = append(w.issues, first...)
	}
}

func sliceValue(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case [][]string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func mapValue(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

// object validates a nested object. An optional object is skipped when
// absent; a required one is validated as an empty object.
func object(fields shape, optional bool) check {
	return func(w *walker, path string, value any, present bool) {
		if !present || value == nil {
			if optional {
				return
			}
			value = map[string]any{}
		}
		m, ok := mapValue(value)
		if !ok {
			w.report(path, CodeInvalid, fmt.Sprintf("expected an object, got %T", value))
			return
		}
		w.apply(path, fields, m)
	}
}

func (w *walker) apply(path string, fields shape, values map[string]any) {
	for _, r := range fields {
		fieldPath := joinPath(path, r.field)
		value, present := values[r.field]

		holds := true
		if r.when != "" {
			ok, err := w.evaluator.Eval(fieldPath, r.when, condition.Context{Values: values})
			if err != nil {
				w.report(fieldPath, CodeInvalid, err.Error())
				continue
			}
			holds = ok
		}

		next := r.then
		if !holds {
			next = r.otherwise
		}
		if next != nil {
			next(w, fieldPath, value, present)
		}
	}
}

func jsonText(code string) check {
	return func(w *walker, path string, value any, present bool) {
		if isEmpty(value, present) {
			return
		}
		s, ok := value.(string)
		if !ok {
			w.report(path, CodeInvalid, fmt.Sprintf("expected a string, got %T", value))
			return
		}
		if !json.Valid([]byte(s)) {
			w.report(path, code, "")
		}
	}
}
