package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthMode selects how principals sign in. Password sign-in is always available;
// the other modes add a single sign-on flow on top of it.
type AuthMode string

const (
	// AuthModePassword allows email and password sign-in only.
	AuthModePassword AuthMode = "password"
	// AuthModeOIDC adds single sign-on against an OpenID Connect provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock adds a local single sign-on provider (for development only).
	AuthModeMock AuthMode = "mock"
)

const (
	minTokenSecretLength = 32
	maxBcryptCost        = 14
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "password", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	case "oauth":
		*a = AuthModeOIDC
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oidc, mock)", v)
	}
}

// OIDCConfig contains OpenID Connect configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	// IssuerURL may be the issuer or its discovery document URL.
	IssuerURL   string `env:"ISSUER_URL"`
	GroupsClaim string `env:"GROUPS_CLAIM"  envDefault:"groups"`
}

// DevAuthConfig controls the identity signed in by the mock provider.
type DevAuthConfig struct {
	UserID   string   `env:"USER_ID"   envDefault:"dev-warden"`
	Email    string   `env:"EMAIL"     envDefault:"warden@hostel.local"`
	FullName string   `env:"FULL_NAME" envDefault:"Dev Warden"`
	Groups   []string `env:"GROUPS"    envDefault:"hostel-admins" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// SessionTTL bounds the lifetime of a server session and its token.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`

	// TokenSecret signs session tokens (HS256). Required outside development.
	TokenSecret string `env:"AUTH_TOKEN_SECRET"`
	TokenIssuer string `env:"AUTH_TOKEN_ISSUER" envDefault:"hostel-api"`

	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"10"`

	// ResolveTimeout bounds one identity resolution; expiry fails closed.
	ResolveTimeout time.Duration `env:"AUTH_RESOLVE_TIMEOUT" envDefault:"10s"`

	// AdminGroup is the IdP group whose members are provisioned as admins on first SSO login.
	AdminGroup string `env:"AUTH_ADMIN_GROUP" envDefault:"hostel-admins"`

	OIDC    OIDCConfig    `envPrefix:"OIDC_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModePassword
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = 24 * time.Hour
	}
	if a.SessionTTL < time.Minute {
		a.SessionTTL = time.Minute
	}
	if a.ResolveTimeout <= 0 {
		a.ResolveTimeout = 10 * time.Second
	}
	if a.BcryptCost < bcrypt.MinCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
	if a.BcryptCost > maxBcryptCost {
		a.BcryptCost = maxBcryptCost
	}
	a.TokenSecret = strings.TrimSpace(a.TokenSecret)
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	a.OIDC.IssuerURL = strings.TrimSpace(a.OIDC.IssuerURL)
}

// SSOEnabled reports whether a single sign-on provider is configured.
func (a *AuthConfig) SSOEnabled() bool {
	return a.Mode == AuthModeOIDC || a.Mode == AuthModeMock
}

// Validate checks the settings the HTTP server needs. Development mode may run without a
// token secret; one is generated per process.
func (a *AuthConfig) Validate(isDev bool) error {
	var errs []error
	if a.TokenSecret == "" && !isDev {
		errs = append(errs, errors.New("AUTH_TOKEN_SECRET is required outside development"))
	}
	if a.TokenSecret != "" && len(a.TokenSecret) < minTokenSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_SECRET must be at least %d bytes", minTokenSecretLength))
	}
	switch a.Mode {
	case AuthModeOIDC:
		if a.OIDC.IssuerURL == "" || a.OIDC.ClientID == "" || a.OIDC.ClientSecret == "" {
			errs = append(errs, errors.New("AUTH_MODE=oidc requires OIDC_ISSUER_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET"))
		}
	case AuthModeMock:
		if !isDev {
			errs = append(errs, errors.New("AUTH_MODE=mock is only allowed in development"))
		}
	}
	return errors.Join(errs...)
}
