package testingvalues

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
	"github.com/goliatone/go-connector-builder/pkg/validation"
)

// Issue codes reported by Check.
const (
	CodeInvalidValue = "connectorBuilder.invalidTestingValue"
	CodeInvalidSpec  = "connectorBuilder.invalidSpec"
)

// Check validates values against spec. Every violation is reported; the
// result is valid when there are none.
func Check(ctx context.Context, spec manifest.ConnectionSpecification, values map[string]any) validation.Result {
	if err := ctx.Err(); err != nil {
		return failed(validation.Issue{Code: CodeInvalidValue, Message: err.Error()})
	}

	schema, err := compile(spec)
	if err != nil {
		return failed(validation.Issue{Code: CodeInvalidSpec, Message: err.Error()})
	}
	document, err := normalize(values)
	if err != nil {
		return failed(validation.Issue{Code: CodeInvalidValue, Message: err.Error()})
	}

	if err := schema.VisitJSON(document, openapi3.MultiErrors()); err != nil {
		return failed(issuesFromError(err)...)
	}
	return validation.Result{Valid: true}
}

// CheckManifest validates values against the connection specification of m.
// A manifest without a spec accepts any values.
func CheckManifest(ctx context.Context, m manifest.Manifest, values map[string]any) validation.Result {
	if m.Spec == nil {
		if err := ctx.Err(); err != nil {
			return failed(validation.Issue{Code: CodeInvalidValue, Message: err.Error()})
		}
		return validation.Result{Valid: true}
	}
	return Check(ctx, m.Spec.ConnectionSpecification, values)
}

func failed(issues ...validation.Issue) validation.Result {
	return validation.Result{Valid: false, Issues: issues}
}

func compile(spec manifest.ConnectionSpecification) (*openapi3.Schema, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("testingvalues: encode spec: %w", err)
	}
	var schema openapi3.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("testingvalues: compile spec: %w", err)
	}
	return &schema, nil
}

// normalize turns values into the generic JSON shape the schema visitor
// expects (float64 numbers, map[string]any objects, []any arrays).
func normalize(values map[string]any) (any, error) {
	if values == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("testingvalues: encode values: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("testingvalues: decode values: %w", err)
	}
	return out, nil
}

func issuesFromError(err error) []validation.Issue {
	switch e := err.(type) {
	case openapi3.MultiError:
		out := make([]validation.Issue, 0, len(e))
		for _, item := range e {
			out = append(out, issuesFromError(item)...)
		}
		return out
	case *openapi3.SchemaError:
		return []validation.Issue{{
			Path:    fieldPath(e.JSONPointer()),
			Code:    CodeInvalidValue,
			Message: strings.TrimSpace(e.Reason),
		}}
	default:
		return []validation.Issue{{Code: CodeInvalidValue, Message: strings.TrimSpace(err.Error())}}
	}
}

// fieldPath renders pointer segments the way form paths are written:
// `tokens[0].name`.
func fieldPath(segments []string) string {
	var b strings.Builder
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if isIndex(segment) {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func isIndex(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
