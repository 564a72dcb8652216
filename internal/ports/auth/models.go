package auth

import (
	"time"

	"tin-dog/internal/platform/apperr"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

var (
	ErrInvalidToken = apperr.New(apperr.CodeInvalidToken, "invalid token")
	ErrTokenExpired = apperr.New(apperr.CodeTokenExpired, "token expired")
)
