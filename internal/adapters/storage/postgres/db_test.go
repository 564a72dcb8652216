package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestSchema_DeclaresAllCollections(t *testing.T) {
	for _, table := range []string{"users", "dogs", "likes", "matches", "conversations", "messages"} {
		if !strings.Contains(Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("schema missing table %s", table)
		}
	}
	if !strings.Contains(Schema(), "UNIQUE (pair_lo, pair_hi)") {
		t.Fatalf("schema must dedup matches per unordered pair")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(dup) {
		t.Fatalf("expected wrapped 23505 to be detected")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) || isUniqueViolation(nil) {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestSortedPair(t *testing.T) {
	lo, hi := sortedPair("u2", "u1")
	if lo != "u1" || hi != "u2" {
		t.Fatalf("expected (u1,u2), got (%s,%s)", lo, hi)
	}
	lo2, hi2 := sortedPair("u1", "u2")
	if lo2 != lo || hi2 != hi {
		t.Fatalf("pair must not depend on argument order")
	}
}

func TestEncodeDecodeInterests(t *testing.T) {
	s, err := encodeInterests(nil)
	if err != nil || s != "[]" {
		t.Fatalf("expected [] for nil, got %q err=%v", s, err)
	}
	out, err := decodeInterests([]byte(`["fetch","swim"]`))
	if err != nil || len(out) != 2 || out[1] != "swim" {
		t.Fatalf("unexpected decode %v err=%v", out, err)
	}
	if out, _ := decodeInterests(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}
