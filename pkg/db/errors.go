package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/Ramchandran06/E-commerce-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation from
// postgres (pgx or lib/pq) or sqlite. When constraintName is provided the
// violated constraint must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return constraintName == "" || strings.Contains(err.Error(), constraintName)
	}

	if pg, ok := pkgerrors.Postgres(err); ok {
		return pg.Code == pgUniqueViolation && (constraintName == "" || pg.Constraint == constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	// sqlite names columns rather than constraints, so a named check only matches postgres text.
	if constraintName != "" && strings.Contains(msg, "duplicate key value") {
		return strings.Contains(msg, constraintName)
	}
	return true
}

// IsRecordNotFound hides the gorm sentinel from callers outside the repo layer.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
