package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoExpiration = errors.New("token does not contain an expiration date")
	ErrInvalidToken = errors.New("invalid token")
)

// ExpirationTime reads the exp claim of a bearer token issued by the portal.
// The signature is not verified.
func ExpirationTime(tokenString string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiration
	}

	return exp.Time, nil
}
