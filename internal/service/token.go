package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
)

// DefaultTokenIssuer is the iss claim when none is configured.
const DefaultTokenIssuer = "hostel-api"

// TokenClaims are the claims carried by a session token. The JWT ID is the server session id.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The secret must be non-empty.
func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if issuer == "" {
		issuer = DefaultTokenIssuer
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs a token bound to sess.
func (t *TokenIssuer) Issue(sess domainauth.Session) (string, error) {
	claims := TokenClaims{
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(t.now().UTC()),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt.UTC()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (t *TokenIssuer) Parse(token string) (*TokenClaims, error) {
	return t.parse(token, jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
}

// ParseIgnoringExpiry verifies signature and issuer but not time-based claims. Used to revoke sessions whose token already expired.
func (t *TokenIssuer) ParseIgnoringExpiry(token string) (*TokenClaims, error) {
	return t.parse(token, jwt.WithoutClaimsValidation())
}

func (t *TokenIssuer) parse(token string, opts ...jwt.ParserOption) (*TokenClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(t.issuer))
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || claims.ID == "" || claims.Subject == "" || claims.Issuer != t.issuer {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
