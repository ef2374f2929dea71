package accounts_test

import (
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	req := createRequest(1)
	require.NoError(t, req.Validate())

	bad := createRequest(1)
	bad.Email = "not-an-email"
	bad.Gender = "other"
	bad.Role = "root"

	err := bad.Validate()
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, accounts.TextCodeValidation, richErr.TextCode)
	assert.Contains(t, richErr.Metadata, "email")
	assert.Contains(t, richErr.Metadata, "gender")
	assert.Contains(t, richErr.Metadata, "role")
}

func TestCreateUserRequest_Normalize(t *testing.T) {
	req := accounts.CreateUserRequest{
		FirstName: " Ada ",
		Email:     " ADA@Example.COM ",
		City:      "Lagos",
		Gender:    "FEMALE",
		Role:      " Admin",
	}
	req.Normalize()

	assert.Equal(t, "Ada", req.FirstName)
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "lagos", req.City)
	assert.Equal(t, "female", req.Gender)
	assert.Equal(t, "admin", req.Role)
}

func TestStrongPassword(t *testing.T) {
	valid := []string{"Str0ng!Pass", "aB3$xy", "P@ssw0rd"}
	for _, p := range valid {
		assert.NoError(t, accounts.StrongPassword(p), p)
	}

	invalid := []string{"short", "alllowercase1!", "ALLUPPER1!", "NoDigits!!", "NoSymb0ls", "Sp ace1!A", "Tab\t1!Aa"}
	for _, p := range invalid {
		assert.Error(t, accounts.StrongPassword(p), p)
	}
}

func TestUpdateUserRequest(t *testing.T) {
	assert.True(t, accounts.UpdateUserRequest{}.IsEmpty())
	require.NoError(t, accounts.UpdateUserRequest{}.Validate())

	empty := ""
	err := accounts.UpdateUserRequest{FirstName: &empty}.Validate()
	assert.True(t, accounts.IsValidationError(err))

	gender := "male"
	assert.NoError(t, accounts.UpdateUserRequest{Gender: &gender}.Validate())
}

func TestVerifyOTPRequest_Validate(t *testing.T) {
	assert.NoError(t, accounts.VerifyOTPRequest{Email: "ada@example.com", OTP: "123456"}.Validate())
	assert.Error(t, accounts.VerifyOTPRequest{Email: "ada@example.com", OTP: "12345"}.Validate())
	assert.Error(t, accounts.VerifyOTPRequest{Email: "ada@example.com", OTP: "12345a"}.Validate())
}
