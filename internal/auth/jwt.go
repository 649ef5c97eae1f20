package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a signed session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTAuthenticator represents a JWT based authenticator.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// GenerateToken generates a JWT token with the given claims and secret.
// This is generic and accepts any type that implements jwt.Claims.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a JWT token and parses it into the provided
// claims type. The claims parameter should be a pointer to a struct that
// implements jwt.Claims.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
}
