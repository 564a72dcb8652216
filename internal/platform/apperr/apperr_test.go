package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	sentinel := New(CodeForbidden, "forbidden")
	wrapped := fmt.Errorf("conversation c-1: %w", Wrap(sentinel, errors.New("boom")))

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if errors.Is(wrapped, New(CodeNotFound, "not found")) {
		t.Fatalf("expected different codes not to match")
	}
	if CodeOf(wrapped) != CodeForbidden {
		t.Fatalf("expected forbidden code, got %s", CodeOf(wrapped))
	}
}

func TestWrite_HidesUntypedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("pq: relation users does not exist"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var b body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if b.Error != CodeServerFault || b.Message != "internal error" {
		t.Fatalf("unexpected body %#v", b)
	}
}

func TestWrite_TypedError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, New(CodeDuplicateEmail, "user already exists"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var b body
	_ = json.Unmarshal(rec.Body.Bytes(), &b)
	if b.Error != CodeDuplicateEmail {
		t.Fatalf("expected duplicate_email, got %s", b.Error)
	}
}
