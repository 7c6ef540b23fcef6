package builder

import (
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

type inferredField struct {
	key         string
	title       string
	description string
	secret      bool
}

var (
	apiKeyField       = inferredField{key: "api_key", title: "API Key", secret: true}
	usernameField     = inferredField{key: "username", title: "Username"}
	passwordField     = inferredField{key: "password", title: "Password", secret: true}
	clientIDField     = inferredField{key: "client_id", title: "Client ID", secret: true}
	clientSecretField = inferredField{key: "client_secret", title: "Client secret", secret: true}
	refreshTokenField = inferredField{key: "refresh_token", title: "Refresh token", secret: true}
	sessionTokenField = inferredField{
		key:         "session_token",
		title:       "Session token",
		description: "Session token generated by user (if provided username and password are not required)",
		secret:      true,
	}
)

func inferredFields(authType string) ([]inferredField, bool) {
	switch authType {
	case manifest.TypeAPIKeyAuthenticator, manifest.TypeBearerAuthenticator:
		return []inferredField{apiKeyField}, true
	case manifest.TypeBasicHTTPAuthenticator:
		return []inferredField{usernameField, passwordField}, true
	case manifest.TypeOAuthAuthenticator:
		return []inferredField{clientIDField, clientSecretField, refreshTokenField}, true
	case manifest.TypeSessionTokenAuthenticator:
		return []inferredField{usernameField, passwordField, sessionTokenField}, false
	default:
		return nil, false
	}
}

func (f inferredField) definition() map[string]any {
	def := map[string]any{
		"type":  "string",
		"title": f.title,
	}
	if f.description != "" {
		def["description"] = f.description
	}
	if f.secret {
		def["airbyte_secret"] = true
	}
	return def
}

// InferredInputs returns the configuration inputs implied by the global
// authenticator, in a fixed order. Each definition is shallow-merged with the
// override registered under its key; override entries win. Overrides never
// add or remove inputs.
func InferredInputs(global GlobalSettings, overrides map[string]map[string]any) []BuilderFormInput {
	if global.Authenticator == nil {
		return []BuilderFormInput{}
	}
	fields, required := inferredFields(global.Authenticator.AuthenticatorType())
	out := make([]BuilderFormInput, 0, len(fields))
	for _, field := range fields {
		def := field.definition()
		for key, value := range overrides[field.key] {
			def[key] = deepcopy.Copy(value)
		}
		out = append(out, BuilderFormInput{
			Key:        field.key,
			Required:   required,
			Definition: def,
		})
	}
	return out
}
