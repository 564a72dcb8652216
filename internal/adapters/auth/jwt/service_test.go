package jwt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tin-dog/internal/ports/auth"
)

func TestService_IssueVerify_RoundTrip(t *testing.T) {
	svc, err := NewService("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	tok, err := svc.Issue("user-1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	c, err := svc.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if c.UserID != "user-1" || c.Email != "a@b.c" {
		t.Fatalf("unexpected claims %#v", c)
	}
}

func TestService_Verify_Expired(t *testing.T) {
	svc, _ := NewService("secret", time.Hour)

	issuedAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	tok, err := svc.Issue("user-1", "a@b.c")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = svc.Verify(context.Background(), tok)
	if !errors.Is(err, auth.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestService_Verify_WrongSecretOrTampered(t *testing.T) {
	a, _ := NewService("secret-a", time.Hour)
	b, _ := NewService("secret-b", time.Hour)

	tok, _ := a.Issue("user-1", "a@b.c")
	if _, err := b.Verify(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}

	parts := strings.Split(tok, ".")
	parts[1] = parts[1] + "x"
	if _, err := a.Verify(context.Background(), strings.Join(parts, ".")); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := a.Verify(context.Background(), ""); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestNewService_RequiresSecret(t *testing.T) {
	if _, err := NewService(" ", time.Hour); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
