package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// SQLite extended result codes (modernc.org/sqlite reports extended codes).
const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

type sqliteCoder interface {
	Code() int
}

// IsUniqueViolation reports whether err was raised by the database because an
// INSERT or UPDATE hit a unique index or primary key. Both the pgx driver and
// the sqlite driver used in tests are recognized.
func IsUniqueViolation(err error) bool {
	return matchCode(err, []string{pgUniqueViolation}, []int{sqliteConstraintUnique, sqliteConstraintPrimaryKey})
}

// IsForeignKeyViolation reports whether err was raised because a referenced
// row does not exist (or no longer exists).
func IsForeignKeyViolation(err error) bool {
	return matchCode(err, []string{pgForeignKeyViolation}, []int{sqliteConstraintForeignKey})
}

func matchCode(err error, pgCodes []string, sqliteCodes []int) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, c := range pgCodes {
			if pgErr.Code == c {
				return true
			}
		}
		return false
	}

	var sqErr sqliteCoder
	if errors.As(err, &sqErr) {
		for _, c := range sqliteCodes {
			if sqErr.Code() == c {
				return true
			}
		}
	}

	return false
}
