package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error
// (ErrInvalidToken / ErrTokenExpired).
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma tokens con vencimiento para un usuario.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}
