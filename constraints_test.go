package accounts_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	accounts "github.com/goliatone/go-accounts"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		field string
		ok    bool
	}{
		{"nil", nil, "", false},
		{"sqlite email", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), "email", true},
		{"sqlite phone", errors.New("UNIQUE constraint failed: users.phone"), "phone", true},
		{"postgres", &pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"}, "phone", true},
		{"postgres other code", &pgconn.PgError{Code: "23503", ConstraintName: "users_phone_key"}, "", false},
		{"text", errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`), "email", true},
		{"unrelated", errors.New("connection reset"), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			field, ok := accounts.IsUniqueViolation(tc.err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.field, field)
		})
	}
}
