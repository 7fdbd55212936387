package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Access and refresh back the auth cookies; mfa_pending is the
// short-lived token handed out when a login stalls on an MFA challenge.
const (
	ScopeAccess     = "access"
	ScopeRefresh    = "refresh"
	ScopeMFAPending = "mfa_pending"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenScope   = errors.New("unexpected token scope")
)

type TokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: "clipper-mock"}
}

func (t *TokenIssuer) Mint(subject, scope string, ttl time.Duration) (string, error) {
	if t == nil || len(t.secret) == 0 {
		return "", errors.New("token issuer not configured")
	}
	now := time.Now()
	claims := TokenClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates signature, expiry, and scope, and returns the claims.
func (t *TokenIssuer) Parse(raw string, wantScope string) (*TokenClaims, error) {
	if t == nil || len(t.secret) == 0 {
		return nil, errors.New("token issuer not configured")
	}
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	if wantScope != "" && claims.Scope != wantScope {
		return nil, ErrTokenScope
	}
	return claims, nil
}
