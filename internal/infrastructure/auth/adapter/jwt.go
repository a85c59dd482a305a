package adapter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amantiwari57/freelance-backend/internal/infrastructure/auth/port"
)

// JWTVerifier implements port.Verifier for HS256 signed tokens carrying the
// subject in the "id" claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifierFromEnv constructs a verifier using the JWT_SECRET env var.
func NewJWTVerifierFromEnv() (*JWTVerifier, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("jwt: JWT_SECRET environment variable is not set")
	}
	return NewJWTVerifier([]byte(secret)), nil
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

var _ port.Verifier = (*JWTVerifier)(nil)

// Verify validates the token signature and expiry and extracts the subject id.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", port.ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", port.ErrMalformedToken
		default:
			return "", fmt.Errorf("%w: %v", port.ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return "", port.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", port.ErrInvalidToken
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: missing id claim", port.ErrInvalidToken)
	}
	return id, nil
}

// Generate creates a signed token for the given subject. Used by tests and
// operational tooling; the service itself only verifies.
func (v *JWTVerifier) Generate(subjectID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  subjectID,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
