package jwt

import "errors"

var (
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrInvalidClaims = errors.New("jwt: invalid claims")
)
