// Package token signs and verifies the access/refresh JWT pair. The issuer is
// a pure function of its configured secrets and the claims handed to it; it
// never touches session storage.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/simhub/backend/domain"
)

// Claims is the signed identity payload embedded in both tokens.
type Claims struct {
	SessionID string   `json:"sessionId"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly minted access and refresh token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Config carries the four settings the issuer refuses to start without.
type Config struct {
	AccessSecret    string
	AccessLifetime  time.Duration
	RefreshSecret   string
	RefreshLifetime time.Duration
}

// Issuer mints and verifies token pairs. Safe for concurrent use; all state is
// immutable after construction.
type Issuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

// New validates the configuration and builds an Issuer. A missing secret or
// lifetime is a startup error, never a runtime fallback.
func New(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("token: access secret is not configured")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("token: refresh secret is not configured")
	}
	if cfg.AccessLifetime <= 0 {
		return nil, fmt.Errorf("token: access lifetime is not configured")
	}
	if cfg.RefreshLifetime <= 0 {
		return nil, fmt.Errorf("token: refresh lifetime is not configured")
	}
	return &Issuer{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		accessLifetime:  cfg.AccessLifetime,
		refreshLifetime: cfg.RefreshLifetime,
	}, nil
}

// SignPair mints an access and refresh token from the same identity payload.
// The two differ only in encoded expiry and signing secret.
func (i *Issuer) SignPair(userID, sessionID, email string, roles []string) (Pair, error) {
	now := time.Now()

	access, err := i.sign(userID, sessionID, email, roles, now, i.accessLifetime, i.accessSecret)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, sessionID, email, roles, now, i.refreshLifetime, i.refreshSecret)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(userID, sessionID, email string, roles []string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		SessionID: sessionID,
		Email:     email,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, error) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, error) {
	return verify(tokenString, i.refreshSecret)
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "token expired", err)
		}
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "token invalid", err)
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// AccessLifetime returns the configured access-token TTL.
func (i *Issuer) AccessLifetime() time.Duration {
	return i.accessLifetime
}

// RefreshLifetime returns the configured refresh-token TTL. The session
// manager derives absolute session expiry from it instead of decoding the
// refresh token.
func (i *Issuer) RefreshLifetime() time.Duration {
	return i.refreshLifetime
}

// IsExpired reports whether err marks a token rejected for expiry rather than
// a bad signature.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
