package accounts

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeConflict      = "ACCOUNT_CONFLICT"
	TextCodeForbidden     = "ACCOUNT_FORBIDDEN"
	TextCodeNotFound      = "ACCOUNT_NOT_FOUND"
	TextCodeInvalidState  = "ACCOUNT_INVALID_STATE"
	TextCodeOTPExpired    = "OTP_EXPIRED"
	TextCodeOTPMissing    = "OTP_MISSING"
	TextCodeUnauthorized  = "UNAUTHORIZED"
	TextCodeInvalidFormat = "INVALID_FORMAT"
	TextCodeRateLimited   = "RATE_LIMITED"
	TextCodeValidation    = "VALIDATION_FAILED"
)

// ErrConflict is returned when an email or phone is already taken.
var ErrConflict = errors.New("user already exists", errors.CategoryConflict).
	WithTextCode(TextCodeConflict).
	WithCode(errors.CodeConflict)

// ErrForbidden is returned for role escalation attempts and denied access.
var ErrForbidden = errors.New("permission denied", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidState is returned when the account cannot take the requested transition.
var ErrInvalidState = errors.New("invalid account state", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrOTPExpired is returned when the verification window has elapsed.
var ErrOTPExpired = errors.New("OTP has expired", errors.CategoryBadInput).
	WithTextCode(TextCodeOTPExpired).
	WithCode(errors.CodeBadRequest)

// ErrMissingOTP is returned when no OTP is on file for the account.
var ErrMissingOTP = errors.New("no OTP found for this user", errors.CategoryBadInput).
	WithTextCode(TextCodeOTPMissing).
	WithCode(errors.CodeBadRequest)

// ErrUnauthorized is returned for a bad password, OTP or token.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidFormat is returned for malformed filter input.
var ErrInvalidFormat = errors.New("use date format YYYY-MM-DD", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidFormat).
	WithCode(errors.CodeBadRequest)

// ErrRateLimited is returned when a caller exceeds a request budget.
var ErrRateLimited = errors.New("too many requests", errors.CategoryRateLimit).
	WithTextCode(TextCodeRateLimited).
	WithCode(429)

// ErrNoEmptyString is returned when hashing an empty secret.
var ErrNoEmptyString = errors.New("secret must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// withMessage derives a user facing variant of a sentinel. The IsX helpers
// still match it by text code.
func withMessage(base *errors.Error, msg string, meta map[string]any) *errors.Error {
	e := base.Clone()
	e.Message = msg
	if len(meta) > 0 {
		e = e.WithMetadata(meta)
	}
	return e
}

func isKind(err error, base *errors.Error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == base.TextCode
}

func IsConflict(err error) bool      { return isKind(err, ErrConflict) }
func IsForbidden(err error) bool     { return isKind(err, ErrForbidden) }
func IsNotFound(err error) bool      { return isKind(err, ErrNotFound) }
func IsInvalidState(err error) bool  { return isKind(err, ErrInvalidState) }
func IsOTPExpired(err error) bool    { return isKind(err, ErrOTPExpired) }
func IsMissingOTP(err error) bool    { return isKind(err, ErrMissingOTP) }
func IsUnauthorized(err error) bool  { return isKind(err, ErrUnauthorized) }
func IsInvalidFormat(err error) bool { return isKind(err, ErrInvalidFormat) }
func IsRateLimited(err error) bool   { return isKind(err, ErrRateLimited) }
