package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options the account service reads at runtime
type Config interface {
	GetSigningKey() string
	GetPreviousSigningKeys() []string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetDefaultPageSize() int
	GetDefaultPageNumber() int
	GetExchange() string
	GetSignupRoutingKey() string
	GetVerifiedRoutingKey() string
	GetSecureCookies() bool
	GetPhoneRegion() string
}

// Users is the account store
type Users interface {
	repository.Repository[*User]

	ExistsTx(ctx context.Context, tx bun.IDB, field, value string) (bool, error)
	ExistsExcludingIDTx(ctx context.Context, tx bun.IDB, field, value string, id uuid.UUID) (bool, error)
	FindOneTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (*User, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	FindPageTx(ctx context.Context, tx bun.IDB, filter *ListCriteria, offset, limit int) ([]*User, int, error)
	InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	UpdatePartialTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fields map[string]any) (int64, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

// PasswordHasher hashes and verifies secrets
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// TokenIssuer signs bearer credentials for authenticated users
type TokenIssuer interface {
	Issue(claims *JWTClaims) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
