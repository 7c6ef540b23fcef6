package builder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// Authenticator is the form's authentication strategy, shared by all streams.
// Valid values are manifest.NoAuth, manifest.APIKeyAuthenticator,
// manifest.BearerAuthenticator, manifest.BasicHTTPAuthenticator,
// manifest.SessionTokenAuthenticator and OAuthAuthenticator.
type Authenticator interface {
	AuthenticatorType() string
}

// OAuthAuthenticator is the form variant of manifest.OAuthAuthenticator with
// the refresh request body held as ordered pairs.
type OAuthAuthenticator struct {
	ClientID             string        `json:"client_id"`
	ClientSecret         string        `json:"client_secret"`
	RefreshToken         string        `json:"refresh_token"`
	TokenRefreshEndpoint string        `json:"token_refresh_endpoint"`
	AccessTokenName      string        `json:"access_token_name,omitempty"`
	ExpiresInName        string        `json:"expires_in_name,omitempty"`
	GrantType            string        `json:"grant_type,omitempty"`
	RefreshRequestBody   KeyValuePairs `json:"refresh_request_body"`
	Scopes               []string      `json:"scopes,omitempty"`
	TokenExpiryDate      string        `json:"token_expiry_date,omitempty"`

	// Extra holds manifest fields the form does not edit.
	Extra map[string]any `json:"-"`
}

func (OAuthAuthenticator) AuthenticatorType() string { return manifest.TypeOAuthAuthenticator }

func (a OAuthAuthenticator) MarshalJSON() ([]byte, error) {
	type alias OAuthAuthenticator
	return manifest.MarshalWithTypeExtra(manifest.TypeOAuthAuthenticator, alias(a), a.Extra)
}

func (a *OAuthAuthenticator) UnmarshalJSON(data []byte) error {
	type alias OAuthAuthenticator
	extra, err := manifest.DecodeWithExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

// ToManifest converts the form authenticator to its manifest shape.
func (a OAuthAuthenticator) ToManifest() manifest.OAuthAuthenticator {
	return manifest.OAuthAuthenticator{
		ClientID:             a.ClientID,
		ClientSecret:         a.ClientSecret,
		RefreshToken:         a.RefreshToken,
		TokenRefreshEndpoint: a.TokenRefreshEndpoint,
		AccessTokenName:      a.AccessTokenName,
		ExpiresInName:        a.ExpiresInName,
		GrantType:            a.GrantType,
		RefreshRequestBody:   a.RefreshRequestBody.ToValueMap(),
		Scopes:               cloneStrings(a.Scopes),
		TokenExpiryDate:      a.TokenExpiryDate,
		Extra:                cloneExtra(a.Extra),
	}
}

// OAuthFromManifest converts a manifest OAuth authenticator to the form shape.
// The refresh request body must hold only strings; it is sent as JSON, so
// other values cannot be rendered as text without changing their type.
func OAuthFromManifest(a manifest.OAuthAuthenticator) (OAuthAuthenticator, error) {
	body, err := PairsFromValueMap(a.RefreshRequestBody)
	if err != nil {
		return OAuthAuthenticator{}, fmt.Errorf("refresh_request_body: %w", err)
	}
	return OAuthAuthenticator{
		ClientID:             a.ClientID,
		ClientSecret:         a.ClientSecret,
		RefreshToken:         a.RefreshToken,
		TokenRefreshEndpoint: a.TokenRefreshEndpoint,
		AccessTokenName:      a.AccessTokenName,
		ExpiresInName:        a.ExpiresInName,
		GrantType:            a.GrantType,
		RefreshRequestBody:   body,
		Scopes:               cloneStrings(a.Scopes),
		TokenExpiryDate:      a.TokenExpiryDate,
		Extra:                cloneExtra(a.Extra),
	}, nil
}

// DecodeAuthenticator decodes a form authenticator. Kinds the form cannot
// express are rejected.
func DecodeAuthenticator(data []byte) (Authenticator, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, err
		}
	}
	if probe.Type == manifest.TypeOAuthAuthenticator {
		var out OAuthAuthenticator
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", manifest.TypeOAuthAuthenticator, err)
		}
		return out, nil
	}

	auth, err := manifest.DecodeAuthenticator(data)
	if err != nil || auth == nil {
		return nil, err
	}
	switch auth.(type) {
	case manifest.NoAuth, manifest.APIKeyAuthenticator, manifest.BearerAuthenticator,
		manifest.BasicHTTPAuthenticator, manifest.SessionTokenAuthenticator:
		return auth, nil
	default:
		return nil, fmt.Errorf("authenticator type %q is not supported by the builder form", auth.AuthenticatorType())
	}
}

func cloneExtra(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	return deepcopy.Copy(in).(map[string]any)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
