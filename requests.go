package accounts

import (
	stderrors "errors"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{6,}$`)
	otpPattern      = regexp.MustCompile(`^\d{6}$`)
)

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	City            string `json:"city"`
	Gender          string `json:"gender"`
	Role            string `json:"role,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Normalize lowercases the case insensitive fields
func (r *CreateUserRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = normalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.City = strings.ToLower(strings.TrimSpace(r.City))
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

func (r CreateUserRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(10, 20)),
		validation.Field(&r.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Gender, validation.Required, validation.In(string(GenderMale), string(GenderFemale))),
		validation.Field(&r.Role, validation.In(string(RoleUser), string(RoleAdmin))),
		validation.Field(&r.Password, validation.Required, validation.By(StrongPassword)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	))
}

// UpdateUserRequest carries the fields of a partial profile update. Nil
// fields are left untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	City      *string `json:"city,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Role      *string `json:"role,omitempty"`
}

func (r *UpdateUserRequest) Normalize() {
	trim := func(s *string, lower bool) {
		if s == nil {
			return
		}
		*s = strings.TrimSpace(*s)
		if lower {
			*s = strings.ToLower(*s)
		}
	}
	trim(r.FirstName, false)
	trim(r.LastName, false)
	trim(r.Email, true)
	trim(r.Phone, false)
	trim(r.City, true)
	trim(r.Gender, true)
	trim(r.Role, true)
}

func (r UpdateUserRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Length(10, 20)),
		validation.Field(&r.City, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Gender, validation.NilOrNotEmpty, validation.In(string(GenderMale), string(GenderFemale))),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.In(string(RoleUser), string(RoleAdmin))),
	))
}

// IsEmpty reports whether the update carries no field at all
func (r UpdateUserRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Phone == nil && r.City == nil && r.Gender == nil && r.Role == nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r LoginRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	))
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r ResetPasswordRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(StrongPassword)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	))
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r VerifyOTPRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Match(otpPattern)),
	))
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (r *ResendOTPRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r ResendOTPRequest) Validate() error {
	return validationError(validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	))
}

// StrongPassword requires at least six characters from the allowed set with
// one lowercase letter, one uppercase letter, one digit and one symbol.
func StrongPassword(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !passwordCharset.MatchString(s) {
		return stderrors.New("must be at least 6 characters using letters, digits or @$!%*?&")
	}

	var lower, upper, digit, symbol bool
	for _, c := range s {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		default:
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return stderrors.New("must contain an uppercase letter, a lowercase letter, a digit and a symbol")
	}
	return nil
}

func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("passwords do not match")
		}
		return nil
	}
}

// validationError folds ozzo field errors into a single rich error
// carrying one metadata entry per field.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	meta := map[string]any{}
	var fields validation.Errors
	if stderrors.As(err, &fields) {
		for k, v := range fields {
			meta[k] = v.Error()
		}
	} else {
		meta["error"] = err.Error()
	}

	return errors.New("validation failed", errors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(meta)
}

func IsValidationError(err error) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.TextCode == TextCodeValidation
}
