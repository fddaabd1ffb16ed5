package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const (
	// ClaimsKey is the request context key holding the verified token claims.
	ClaimsKey ctxKey = iota + 1
	// AuthoritiesKey is the request context key holding the merged authority set.
	AuthoritiesKey
)

// Roles a user can hold. Registration never hands out RoleAdmin.
const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried inside the bearer token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Keys signs and verifies bearer tokens with a shared HMAC secret.
type Keys struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewKeys(secret string, tokenTTL time.Duration) (*Keys, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Keys{secret: []byte(secret), tokenTTL: tokenTTL}, nil
}

// GenerateToken issues a signed token for the given user id and role.
func (k *Keys) GenerateToken(userID string, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront-service",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func (k *Keys) VerifyToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return k.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// TokenExpiry extracts the expiry of a token without verifying its signature.
// Used by logout so even a token we cannot verify is retained on the
// blacklist no longer than its own lifetime.
func (k *Keys) TokenExpiry(tokenStr string) time.Time {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().UTC().Add(k.tokenTTL)
}
