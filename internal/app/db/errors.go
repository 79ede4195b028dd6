package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// ViolatedConstraint returns the constraint named by a unique violation, or "".
func ViolatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if IsUniqueViolation(err) && errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// IsInvalidText reports whether a value could not be parsed into the column type,
// such as a malformed UUID (code 22P02).
func IsInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == invalidTextRepresentation
	}
	return false
}
