package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/smartlist-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique violation. When
// constraintName is set the violation must name that constraint. sqlite
// reports violations by column list, so the text match is the fallback.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.AsPostgres(err); ok {
		return pg.Code == pgUniqueViolation && (constraintName == "" || pg.Constraint == constraintName)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
