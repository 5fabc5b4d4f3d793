// Package oidc signs principals in through an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/ports"
	"golang.org/x/oauth2"
)

const (
	stateLength      = 32
	defaultScopes    = "openid profile email"
	defaultTokenLife = time.Hour
)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scope is a space separated scope list. Defaults to "openid profile email".
	Scope string
	// IssuerURL may be the issuer itself or its discovery document URL.
	IssuerURL string
	// GroupsClaim names the ID token claim that lists group memberships. Defaults to "groups".
	GroupsClaim string
	HTTPClient  *http.Client
}

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	oauth       *oauth2.Config
	op          *gooidc.Provider
	verifier    *gooidc.IDTokenVerifier
	groupsClaim string
	httpClient  *http.Client
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider fetches the discovery document and builds the provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.IssuerURL == "":
		return nil, errors.New("issuer URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	scope := cfg.Scope
	if strings.TrimSpace(scope) == "" {
		scope = defaultScopes
	}
	groupsClaim := cfg.GroupsClaim
	if groupsClaim == "" {
		groupsClaim = "groups"
	}

	op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuerFromURL(cfg.IssuerURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		op:          op,
		verifier:    op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		groupsClaim: groupsClaim,
		httpClient:  httpClient,
	}, nil
}

func issuerFromURL(raw string) string {
	issuer := strings.TrimSuffix(raw, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return issuer
}

// Begin returns the provider authorization URL with fresh state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(stateLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(stateLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// redirect_uri stays the configured value; the IdP matches it exactly.
	authURL := p.oauth.AuthCodeURL(state, gooidc.Nonce(nonce))
	return authURL, state, nonce, nil
}

// Exchange redeems the code, verifies the ID token and its nonce, and maps the claims.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" || in.State == "" || in.Nonce == "" {
		return domainauth.Identity{}, errors.New("code, state and nonce are required")
	}
	ctx = gooidc.ClientContext(ctx, p.httpClient)

	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.Identity{}, errors.New("token response has no id_token")
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("id_token nonce mismatch")
	}

	var raw map[string]any
	if err := idTok.Claims(&raw); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode id_token claims: %w", err)
	}
	c := mapClaims(raw, p.groupsClaim)

	if c.Email == "" {
		ui, uiErr := p.op.UserInfo(ctx, oauth2.StaticTokenSource(tok))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("fetch userinfo: %w", uiErr)
		}
		var extra map[string]any
		if err := ui.Claims(&extra); err != nil {
			return domainauth.Identity{}, fmt.Errorf("decode userinfo: %w", err)
		}
		c = mergeClaims(c, mapClaims(extra, p.groupsClaim))
	}
	if c.UserID == "" {
		c.UserID = idTok.Subject
	}

	c.ExpiresAt = time.Now().Add(defaultTokenLife)
	if !tok.Expiry.IsZero() {
		c.ExpiresAt = tok.Expiry
	}
	return c, nil
}

// mapClaims reads the standard OIDC profile claims. When only "name" is present it is
// used as the first name so FullName still renders it.
func mapClaims(raw map[string]any, groupsClaim string) domainauth.Identity {
	id := domainauth.Identity{
		UserID:    stringClaim(raw, "sub"),
		Email:     stringClaim(raw, "email"),
		FirstName: stringClaim(raw, "given_name"),
		LastName:  stringClaim(raw, "family_name"),
		Groups:    stringsClaim(raw, groupsClaim),
	}
	if id.FirstName == "" && id.LastName == "" {
		id.FirstName = stringClaim(raw, "name")
	}
	return id
}

func mergeClaims(base, extra domainauth.Identity) domainauth.Identity {
	if base.UserID == "" {
		base.UserID = extra.UserID
	}
	if base.Email == "" {
		base.Email = extra.Email
	}
	if base.FirstName == "" && base.LastName == "" {
		base.FirstName, base.LastName = extra.FirstName, extra.LastName
	}
	if len(base.Groups) == 0 {
		base.Groups = extra.Groups
	}
	return base
}

func stringClaim(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

// stringsClaim accepts a JSON array of strings or a single string.
func stringsClaim(raw map[string]any, key string) []string {
	switch v := raw[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// randomToken returns a URL-safe random string of exactly n characters.
func randomToken(n int) (string, error) {
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
