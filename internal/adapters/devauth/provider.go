// Package devauth provides a config-driven AuthProvider for local development. It skips the
// identity provider round trip and always signs in the configured identity.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config describes the identity the provider signs in.
type Config struct {
	UserID          string
	Email           string
	FullName        string
	Groups          []string
	SessionDuration time.Duration
	// CallbackPath is where Begin sends the browser. Defaults to /auth/callback.
	CallbackPath string
}

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	cfg Config
	now func() time.Time

	mu     sync.Mutex
	issued map[string]string // state -> nonce
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider validates cfg and builds a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: user id is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	if cfg.CallbackPath == "" {
		cfg.CallbackPath = "/auth/callback"
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{cfg: cfg, now: time.Now, issued: make(map[string]string)}, nil
}

// Begin returns a URL pointing straight at the local callback with a fresh state.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	p.mu.Lock()
	p.issued[state] = nonce
	p.mu.Unlock()

	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.cfg.CallbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange accepts each issued state once and returns the configured identity.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	nonce, ok := p.issued[in.State]
	delete(p.issued, in.State)
	p.mu.Unlock()
	if !ok || nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("dev auth: unknown state or nonce")
	}

	first, last, _ := strings.Cut(strings.TrimSpace(p.cfg.FullName), " ")
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Email:     p.cfg.Email,
		Groups:    append([]string(nil), p.cfg.Groups...),
		ExpiresAt: p.now().Add(p.cfg.SessionDuration),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
