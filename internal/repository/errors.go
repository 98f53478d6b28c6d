package repository

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// pgError returns the postgres error code and constraint behind err, if any.
func pgError(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}

	return "", "", false
}

func isUniqueViolation(err error) (string, bool) {
	code, constraint, ok := pgError(err)
	if !ok || code != pgerrcode.UniqueViolation {
		return "", false
	}

	return constraint, true
}

func isForeignKeyViolation(err error) (string, bool) {
	code, constraint, ok := pgError(err)
	if !ok || code != pgerrcode.ForeignKeyViolation {
		return "", false
	}

	return constraint, true
}
