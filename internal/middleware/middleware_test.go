package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tin-dog/internal/ports/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if s.err != nil {
		return auth.Claims{}, s.err
	}
	return s.claims, nil
}

func TestRequireAuth_StatusCodes(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) != "user-1" {
			t.Errorf("expected claims in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		v      auth.AuthVerifier
		want   int
	}{
		{"missing", "", stubVerifier{}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", stubVerifier{}, http.StatusUnauthorized},
		{"invalid", "Bearer abc", stubVerifier{err: auth.ErrInvalidToken}, http.StatusForbidden},
		{"expired", "Bearer abc", stubVerifier{err: auth.ErrTokenExpired}, http.StatusForbidden},
		{"valid", "Bearer abc", stubVerifier{claims: auth.Claims{UserID: "user-1"}}, http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dogs", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(tc.v)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestIPRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewIPRateLimiter(2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// otra IP no se ve afectada
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for other ip, got %d", rec.Code)
	}
}
