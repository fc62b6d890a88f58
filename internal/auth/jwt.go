package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrMalformedClaims = errors.New("malformed claims")
)

const defaultTokenTTL = 168 * time.Hour

// JWT issues and checks the HS256 bearer tokens returned by register/login.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWT{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the diary owner. The subject is the user id; no
// other claims are carried since entries are scoped by owner alone.
func (j *JWT) Sign(userID uint64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(j.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

// Verify returns the user id a valid token was issued for.
func (j *JWT) Verify(tokenStr string) (uint64, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: unexpected signing method", ErrInvalidToken)
		}
		return j.secret, nil
	})
	if err != nil || !t.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrMalformedClaims
	}

	sub, ok := claims["sub"]
	if !ok {
		return 0, fmt.Errorf("%w: missing sub", ErrMalformedClaims)
	}

	// jwt MapClaims numbers are float64
	idf, ok := sub.(float64)
	if !ok || idf < 0 {
		return 0, fmt.Errorf("%w: bad sub", ErrMalformedClaims)
	}
	return uint64(idf), nil
}
