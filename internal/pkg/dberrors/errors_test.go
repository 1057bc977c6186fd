package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "courses_pkey"})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "courses_credits_check"}

	if !IsDuplicateConstraintError(dup, "courses_pkey") {
		t.Fatalf("wrapped unique violation not recognised")
	}
	if IsDuplicateConstraintError(dup, "programs_pkey") {
		t.Fatalf("constraint name ignored")
	}
	if IsDuplicateConstraintError(errors.New("23505"), "courses_pkey") {
		t.Fatalf("plain error treated as a pg error")
	}

	if name, ok := CheckViolation(check); !ok || name != "courses_credits_check" {
		t.Fatalf("CheckViolation = %q, %v", name, ok)
	}
	if _, ok := CheckViolation(dup); ok {
		t.Fatalf("unique violation reported as check violation")
	}
}
