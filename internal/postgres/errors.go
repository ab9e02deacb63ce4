package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func hasCode(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// UniqueViolation returns the violated constraint name, if err is one.
func UniqueViolation(err error) (string, bool) { return hasCode(err, codeUniqueViolation) }

func ForeignKeyViolation(err error) bool {
	_, ok := hasCode(err, codeForeignKeyViolation)
	return ok
}

func CheckViolation(err error) (string, bool) { return hasCode(err, codeCheckViolation) }
