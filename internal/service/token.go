package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

var ErrInvalidToken = errors.New("invalid token")

// InitJWT sets the signing secret used for member identity tokens
func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	jwtSecret = []byte(secret)
}

// InitJWTWithSecret sets an explicit secret (tests, config-driven setup)
func InitJWTWithSecret(secret string) {
	jwtSecret = []byte(secret)
}

// IssueToken signs a member id into a bearer token
func IssueToken(memberID int64, ttl time.Duration) (string, error) {
	if jwtSecret == nil {
		InitJWT()
	}
	claims := jwt.MapClaims{
		"sub": memberID,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken extracts the member id from a bearer token
func ParseToken(tokenString string) (int64, error) {
	if jwtSecret == nil {
		InitJWT()
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(sub), nil
}
