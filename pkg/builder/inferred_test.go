package builder

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

func inputKeys(inputs []BuilderFormInput) []string {
	keys := make([]string, 0, len(inputs))
	for _, input := range inputs {
		keys = append(keys, input.Key)
	}
	return keys
}

func TestInferredInputsByAuthenticator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		auth     Authenticator
		keys     []string
		required bool
	}{
		{name: "no auth", auth: manifest.NoAuth{}, keys: []string{}},
		{name: "api key", auth: manifest.APIKeyAuthenticator{Header: "X-Key"}, keys: []string{"api_key"}, required: true},
		{name: "bearer", auth: manifest.BearerAuthenticator{}, keys: []string{"api_key"}, required: true},
		{name: "basic", auth: manifest.BasicHTTPAuthenticator{}, keys: []string{"username", "password"}, required: true},
		{name: "oauth", auth: OAuthAuthenticator{}, keys: []string{"client_id", "client_secret", "refresh_token"}, required: true},
		{name: "session", auth: manifest.SessionTokenAuthenticator{}, keys: []string{"username", "password", "session_token"}},
		{name: "nil", auth: nil, keys: []string{}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			inputs := InferredInputs(GlobalSettings{Authenticator: tc.auth}, nil)
			if diff := cmp.Diff(tc.keys, inputKeys(inputs)); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
			for _, input := range inputs {
				if input.Required != tc.required {
					t.Fatalf("input %s: expected required=%v", input.Key, tc.required)
				}
			}
		})
	}
}

func TestInferredInputsOverrideMergesDefinition(t *testing.T) {
	t.Parallel()

	global := GlobalSettings{Authenticator: OAuthAuthenticator{}}
	overrides := map[string]map[string]any{
		"client_id": {"title": "Application ID", "pattern": "^[a-z]+$"},
		"unknown":   {"title": "ignored"},
	}

	inputs := InferredInputs(global, overrides)
	want := []BuilderFormInput{
		{
			Key:      "client_id",
			Required: true,
			Definition: map[string]any{
				"type":           "string",
				"title":          "Application ID",
				"pattern":        "^[a-z]+$",
				"airbyte_secret": true,
			},
		},
		{
			Key:      "client_secret",
			Required: true,
			Definition: map[string]any{
				"type":           "string",
				"title":          "Client secret",
				"airbyte_secret": true,
			},
		},
		{
			Key:      "refresh_token",
			Required: true,
			Definition: map[string]any{
				"type":           "string",
				"title":          "Refresh token",
				"airbyte_secret": true,
			},
		},
	}
	if diff := cmp.Diff(want, inputs); diff != "" {
		t.Fatalf("inferred inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestInferredInputsDoNotAliasOverrides(t *testing.T) {
	t.Parallel()

	enum := []any{"a", "b"}
	overrides := map[string]map[string]any{"api_key": {"enum": enum}}
	inputs := InferredInputs(GlobalSettings{Authenticator: manifest.BearerAuthenticator{}}, overrides)

	inputs[0].Definition["enum"].([]any)[0] = "changed"
	if enum[0] != "a" {
		t.Fatalf("expected override value to be copied, got %v", enum)
	}
}

func TestInferredSessionTokenDescription(t *testing.T) {
	t.Parallel()

	inputs := InferredInputs(GlobalSettings{Authenticator: manifest.SessionTokenAuthenticator{}}, nil)
	token := inputs[2]
	if token.Key != "session_token" {
		t.Fatalf("expected session_token last, got %s", token.Key)
	}
	if _, ok := token.Definition["description"].(string); !ok {
		t.Fatalf("expected session token description, got %+v", token.Definition)
	}
	if _, ok := inputs[0].Definition["airbyte_secret"]; ok {
		t.Fatalf("username must not be marked secret")
	}
}

func TestAllInputsAppendsInferred(t *testing.T) {
	t.Parallel()

	values := DefaultFormValues()
	values.Global.Authenticator = manifest.BasicHTTPAuthenticator{}
	values.Inputs = []BuilderFormInput{{Key: "region", Definition: map[string]any{"type": "string"}}}

	if diff := cmp.Diff([]string{"region", "username", "password"}, inputKeys(values.AllInputs())); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}
