package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Claims is the payload shared by access and refresh tokens.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// NewToken signs {sub, type, iat, exp, jti} with HS256.
func NewToken(subject, tokenType string, now time.Time, duration time.Duration, secret []byte) (string, error) {
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies the signature with secret and then the expiry against now.
// A token whose signature checks out but whose exp has passed yields
// ErrExpired; every other failure yields ErrInvalid.
func Parse(tokenString string, secret []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}

		return nil, errors.Join(ErrInvalid, err)
	}

	return claims, nil
}
