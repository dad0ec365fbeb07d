package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestViolationHelpers(t *testing.T) {
	wrapped := func(code string) error {
		return fmt.Errorf("insert ride: %w", &pgconn.PgError{Code: code})
	}

	if !IsForeignKeyViolation(wrapped("23503")) {
		t.Fatalf("expected foreign key violation")
	}
	if !IsUniqueViolation(wrapped("23505")) {
		t.Fatalf("expected unique violation")
	}
	if !IsCheckViolation(wrapped("23514")) {
		t.Fatalf("expected check violation")
	}
	if IsUniqueViolation(wrapped("23503")) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsCheckViolation(errors.New("plain")) || IsCheckViolation(nil) {
		t.Fatalf("non-pg errors must not match")
	}
}
