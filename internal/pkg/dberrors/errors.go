// Package dberrors classifies PostgreSQL errors returned through pgx.
package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// IsDuplicateConstraintError reports whether err is a unique violation of
// the named constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// CheckViolation returns the constraint name when err is a CHECK violation.
func CheckViolation(err error) (string, bool) {
	pgErr, ok := asPgError(err)
	if !ok || pgErr.Code != checkViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
