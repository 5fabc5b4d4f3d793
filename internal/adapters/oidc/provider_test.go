package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hostelhub/hostel-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "hostel-web"

// testIdP is a minimal OpenID provider: discovery, JWKS and a token endpoint that
// returns an ID token built from the claims set by the test.
type testIdP struct {
	srv    *httptest.Server
	key    *rsa.PrivateKey
	claims jwt.MapClaims
}

func newTestIdP(t *testing.T) *testIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	idp := &testIdP{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                idp.srv.URL,
			"authorization_endpoint":                idp.srv.URL + "/authorize",
			"token_endpoint":                        idp.srv.URL + "/token",
			"userinfo_endpoint":                     idp.srv.URL + "/userinfo",
			"jwks_uri":                              idp.srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, _ *http.Request) {
		pub := idp.key.PublicKey
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "k1",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, idp.claims)
		tok.Header["kid"] = "k1"
		raw, err := tok.SignedString(idp.key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     raw,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":   "idp-42",
			"email": "from-userinfo@hostel.test",
		})
	})
	idp.srv = httptest.NewServer(mux)
	t.Cleanup(idp.srv.Close)
	return idp
}

func (idp *testIdP) baseClaims(nonce string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   idp.srv.URL,
		"aud":   testClientID,
		"sub":   "idp-42",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"nonce": nonce,
	}
}

func newTestProvider(t *testing.T, idp *testIdP) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     testClientID,
		ClientSecret: "s3cret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		IssuerURL:    idp.srv.URL + "/.well-known/openid-configuration",
		HTTPClient:   idp.srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		cfg    ProviderConfig
		errMsg string
	}{
		{name: "client id", cfg: ProviderConfig{}, errMsg: "client ID is required"},
		{name: "secret", cfg: ProviderConfig{ClientID: "c"}, errMsg: "client secret is required"},
		{name: "redirect", cfg: ProviderConfig{ClientID: "c", ClientSecret: "s"}, errMsg: "redirect URL is required"},
		{
			name:   "issuer",
			cfg:    ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb"},
			errMsg: "issuer URL is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.Len(t, state, stateLength)
	assert.Len(t, nonce, stateLength)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "openid profile email", q.Get("scope"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)

	idp.claims = idp.baseClaims("n-1")
	idp.claims["email"] = "asha@hostel.test"
	idp.claims["given_name"] = "Asha"
	idp.claims["family_name"] = "Rao"
	idp.claims["groups"] = []string{"students", "wardens"}

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-1"})
	require.NoError(t, err)
	assert.Equal(t, "idp-42", id.UserID)
	assert.Equal(t, "asha@hostel.test", id.Email)
	assert.Equal(t, "Asha Rao", id.FullName())
	assert.Equal(t, []string{"students", "wardens"}, id.Groups)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, time.Minute)
}

func TestProvider_ExchangeFallsBackToUserInfo(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("n-2")
	idp.claims["name"] = "Ben Ortiz"

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-2"})
	require.NoError(t, err)
	assert.Equal(t, "from-userinfo@hostel.test", id.Email)
	assert.Equal(t, "Ben Ortiz", id.FullName())
}

func TestProvider_ExchangeRejectsNonceMismatch(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("someone-else")
	idp.claims["email"] = "asha@hostel.test"

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce")
}

func TestProvider_ExchangeRejectsWrongAudience(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)
	idp.claims = idp.baseClaims("n-4")
	idp.claims["aud"] = "another-app"

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n-4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify id_token")
}

func TestProvider_ExchangeRequiresInputs(t *testing.T) {
	t.Parallel()
	idp := newTestIdP(t)
	p := newTestProvider(t, idp)
	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s"})
	require.Error(t, err)
}

func TestStringsClaim(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"list":   []any{"a", "", 3, "b"},
		"single": "wardens",
	}
	assert.Equal(t, []string{"a", "b"}, stringsClaim(raw, "list"))
	assert.Equal(t, []string{"wardens"}, stringsClaim(raw, "single"))
	assert.Nil(t, stringsClaim(raw, "missing"))
}

func TestIssuerFromURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "https://idp.test/realms/hostel",
		issuerFromURL("https://idp.test/realms/hostel/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.test", issuerFromURL("https://idp.test/"))
}
