package accounts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
)

func TestBuildCriteria(t *testing.T) {
	phones := accounts.NewPhoneNormalizer("NG")

	c, err := accounts.BuildCriteria(accounts.UserFilter{
		FirstName:  " Ada ",
		City:       "LAGOS",
		Email:      "Ada@Example.com",
		Phone:      "08030000001",
		Gender:     "Female",
		IsVerified: "false",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
	}, phones)
	require.NoError(t, err)

	assert.Equal(t, "Ada", c.FirstName)
	assert.Equal(t, "lagos", c.City)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Equal(t, "+2348030000001", c.Phone)
	assert.Equal(t, accounts.GenderFemale, c.Gender)
	require.NotNil(t, c.IsVerified)
	assert.False(t, *c.IsVerified)

	require.NotNil(t, c.CreatedFrom)
	require.NotNil(t, c.CreatedBefore)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *c.CreatedFrom)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *c.CreatedBefore, "end date is inclusive")
}

func TestBuildCriteria_InvalidFormat(t *testing.T) {
	cases := map[string]accounts.UserFilter{
		"slashes":      {StartDate: "2024/01/01", EndDate: "2024-01-31"},
		"missing end":  {StartDate: "2024-01-01"},
		"bad calendar": {StartDate: "2024-02-30", EndDate: "2024-03-01"},
		"bad boolean":  {IsVerified: "maybe"},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := accounts.BuildCriteria(f, nil)
			require.Error(t, err)
			assert.True(t, accounts.IsInvalidFormat(err))
		})
	}
}

func TestResolvePage(t *testing.T) {
	assert.Equal(t, accounts.PageRequest{Page: 1, Size: 10}, accounts.ResolvePage(accounts.UserFilter{}, 0, 0))
	assert.Equal(t, accounts.PageRequest{Page: 2, Size: 20}, accounts.ResolvePage(accounts.UserFilter{}, 2, 20))
	assert.Equal(t, accounts.PageRequest{Page: 3, Size: 5}, accounts.ResolvePage(accounts.UserFilter{Page: "3", Size: "5"}, 1, 10))
	assert.Equal(t, accounts.PageRequest{Page: 1, Size: 10}, accounts.ResolvePage(accounts.UserFilter{Page: "-1", Size: "abc"}, 1, 10))
	assert.Equal(t, accounts.MaxPageSize, accounts.ResolvePage(accounts.UserFilter{Size: "5000"}, 1, 10).Size)

	assert.Equal(t, 10, accounts.PageRequest{Page: 3, Size: 5}.Offset())
}

func TestNewPagination(t *testing.T) {
	p := accounts.NewPagination(12, accounts.PageRequest{Page: 3, Size: 5})
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNextPage)

	empty := accounts.NewPagination(0, accounts.PageRequest{Page: 1, Size: 10})
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}

func TestPhoneNormalizer(t *testing.T) {
	p := accounts.NewPhoneNormalizer("")

	assert.Equal(t, "+2348031234567", p.Normalize("0803 123 4567"))
	assert.Equal(t, "+2348031234567", p.Normalize("+234 803 123 4567"))
	assert.Equal(t, "+14155552671", p.Normalize("+1 415 555 2671"))
	assert.Equal(t, "not-a-phone", p.Normalize(" not-a-phone "))
	assert.Empty(t, p.Normalize(""))
}
