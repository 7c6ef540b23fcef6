package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
	"github.com/goliatone/go-connector-builder/pkg/validation"
)

type stubPrompter struct {
	name    string
	confirm bool
	asked   int
}

func (p *stubPrompter) ConnectorName(context.Context, string) (string, error) {
	p.asked++
	return p.name, nil
}

func (p *stubPrompter) Confirm(context.Context, string) (bool, error) {
	p.asked++
	return p.confirm, nil
}

func runCLI(t *testing.T, prompter Prompter, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr, prompter)
	return stdout.String(), stderr.String(), err
}

func TestFormToManifestAndBack(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "example.yaml")

	_, _, err := runCLI(t, &stubPrompter{}, "-input", filepath.Join("testdata", "form.json"), "-output", manifestPath)
	if err != nil {
		t.Fatalf("to-manifest failed: %v", err)
	}
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.HasPrefix(string(raw), "type: DeclarativeSource") {
		t.Fatalf("expected YAML manifest, got:\n%s", raw)
	}

	prompter := &stubPrompter{name: "Prompted"}
	stdout, _, err := runCLI(t, prompter, "-direction", "to-form", "-input", manifestPath, "-prompt")
	if err != nil {
		t.Fatalf("to-form failed: %v", err)
	}
	values, err := builder.Decode([]byte(stdout))
	if err != nil {
		t.Fatalf("decode form output: %v", err)
	}
	if values.Global.ConnectorName != "Prompted" || prompter.asked != 1 {
		t.Fatalf("expected prompted connector name, got %q after %d prompts", values.Global.ConnectorName, prompter.asked)
	}
	if len(values.Streams) != 1 || values.Streams[0].Name != "users" {
		t.Fatalf("unexpected streams %+v", values.Streams)
	}
}

func TestFormToManifestJSON(t *testing.T) {
	stdout, _, err := runCLI(t, nil, "-input", filepath.Join("testdata", "form.json"), "-format", "json")
	if err != nil {
		t.Fatalf("to-manifest failed: %v", err)
	}
	m, err := manifest.Decode([]byte(stdout))
	if err != nil {
		t.Fatalf("decode manifest output: %v", err)
	}
	if len(m.Streams) != 1 || m.Spec == nil {
		t.Fatalf("unexpected manifest %+v", m)
	}
}

func TestInvalidFormIsConvertedUnlessStrict(t *testing.T) {
	input := filepath.Join("testdata", "invalid_form.json")

	stdout, stderr, err := runCLI(t, nil, "-input", input, "-format", "json")
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if !strings.Contains(stdout, `"DeclarativeSource"`) {
		t.Fatalf("expected manifest output, got %q", stdout)
	}
	if !strings.Contains(stderr, "validation issue") {
		t.Fatalf("expected issues to be logged, got %q", stderr)
	}

	if _, _, err := runCLI(t, nil, "-input", input, "-strict"); err == nil {
		t.Fatalf("expected strict mode to refuse invalid form")
	}

	declined := &stubPrompter{confirm: false}
	if _, _, err := runCLI(t, declined, "-input", input, "-strict", "-prompt"); err == nil || declined.asked != 1 {
		t.Fatalf("expected declined confirmation to refuse conversion, err=%v asked=%d", err, declined.asked)
	}

	accepted := &stubPrompter{confirm: true}
	if _, _, err := runCLI(t, accepted, "-input", input, "-strict", "-prompt", "-format", "json"); err != nil {
		t.Fatalf("expected confirmed conversion to succeed, got %v", err)
	}
}

func TestValidateReportsIssues(t *testing.T) {
	stdout, _, err := runCLI(t, nil, "-direction", "validate", "-input", filepath.Join("testdata", "invalid_form.json"), "-log-level", "error")
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected errInvalid, got %v", err)
	}
	var result validation.Result
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if _, ok := result.IssueAt("global.connectorName"); !ok {
		t.Fatalf("expected connectorName issue, got %+v", result.Issues)
	}
}

func TestCheckTestingValues(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "example.json")
	if _, _, err := runCLI(t, nil, "-input", filepath.Join("testdata", "form.json"), "-output", manifestPath); err != nil {
		t.Fatalf("to-manifest failed: %v", err)
	}

	valuesPath := filepath.Join(dir, "values.json")
	if err := os.WriteFile(valuesPath, []byte(`{"api_key": 42}`), 0o644); err != nil {
		t.Fatalf("write values: %v", err)
	}
	_, _, err := runCLI(t, nil, "-direction", "check", "-input", manifestPath, "-values", valuesPath, "-log-level", "error")
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected errInvalid, got %v", err)
	}

	if err := os.WriteFile(valuesPath, []byte(`{"api_key": "secret"}`), 0o644); err != nil {
		t.Fatalf("write values: %v", err)
	}
	if _, _, err := runCLI(t, nil, "-direction", "check", "-input", manifestPath, "-values", valuesPath); err != nil {
		t.Fatalf("expected valid testing values, got %v", err)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	if _, _, err := runCLI(t, nil); err == nil {
		t.Fatalf("expected missing -input error")
	}
	if _, _, err := runCLI(t, nil, "-input", "x", "-direction", "sideways"); err == nil {
		t.Fatalf("expected unknown direction error")
	}
	if _, _, err := runCLI(t, nil, "-input", "x", "-log-format", "xml"); err == nil {
		t.Fatalf("expected unknown log format error")
	}
}
