package middleware

import (
	"context"
	"net/http"
	"strings"

	"tin-dog/internal/platform/apperr"
	"tin-dog/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// RequireAuth exige Bearer token en rutas protegidas:
// - sin token => 401 unauthorized
// - token inválido o vencido => 403 invalid_token / token_expired
// - válido => claims en el contexto (ver GetClaims)
func RequireAuth(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				apperr.WriteCode(w, apperr.CodeUnauthorized, "access token required")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if apperr.CodeOf(err) == apperr.CodeServerFault {
					err = auth.ErrInvalidToken
				}
				apperr.Write(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// UserID devuelve el usuario autenticado o "" si no hay claims.
func UserID(ctx context.Context) string {
	c, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.UserID)
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
