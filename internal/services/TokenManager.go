package services

import (
	"buildwatch/internal/structures"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

type Session struct {
	Username string
	Admin    bool
}

func NewTokenManager(conf *structures.Config) *TokenManager {
	return &TokenManager{
		secret: []byte(conf.Auth.JWTSecret),
		issuer: conf.Auth.Issuer,
		ttl:    conf.Auth.TokenTTL,
		now:    time.Now,
	}
}

func (tm *TokenManager) Issue(username string, admin bool) (string, error) {
	now := tm.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
		Admin: admin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (tm *TokenManager) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if tm.issuer != "" && claims.Issuer != tm.issuer {
		return nil, fmt.Errorf("%w: issuer %q", ErrUnauthorized, claims.Issuer)
	}
	return &Session{Username: claims.Subject, Admin: claims.Admin}, nil
}
