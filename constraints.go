package accounts

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// uniqueFields are the columns guarded by a storage level UNIQUE constraint.
var uniqueFields = []string{"email", "phone"}

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint,
// and which guarded column tripped it when that can be told.
func IsUniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return fieldFromText(pgErr.ConstraintName + " " + pgErr.Detail), true
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fieldFromText(msg), true
	}
	// pgdriver and lib/pq style messages
	if strings.Contains(msg, "duplicate key value violates unique constraint") {
		return fieldFromText(msg), true
	}
	return "", false
}

func fieldFromText(s string) string {
	for _, f := range uniqueFields {
		if strings.Contains(s, f) {
			return f
		}
	}
	return ""
}

func conflictError(field, value string) *errors.Error {
	if field == "" {
		return withMessage(ErrConflict, "user already exists", nil)
	}
	return withMessage(ErrConflict, "user with "+field+": "+value+" already exist", map[string]any{
		"field": field,
	})
}

// mapWriteError turns storage constraint failures into Conflict
func mapWriteError(err error, values map[string]string) error {
	if err == nil {
		return nil
	}
	if field, ok := IsUniqueViolation(err); ok {
		return conflictError(field, values[field])
	}
	return err
}
