package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// User is the persisted account record. Secrets never leave the
// process as JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	FirstName  string     `bun:"first_name,notnull" json:"first_name"`
	LastName   string     `bun:"last_name,notnull" json:"last_name"`
	Email      string     `bun:"email,notnull,unique" json:"email"`
	Phone      string     `bun:"phone,notnull,unique" json:"phone"`
	City       string     `bun:"city,notnull" json:"city"`
	Gender     Gender     `bun:"gender,notnull" json:"gender"`
	Role       UserRole   `bun:"role,notnull,default:'user'" json:"role"`
	Password   string     `bun:"password,notnull" json:"-"`
	IsVerified bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	OTP        *string    `bun:"otp" json:"-"`
	OTPExpiry  *time.Time `bun:"otp_expiry" json:"otp_expiry,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// Pagination describes a page of results
type Pagination struct {
	TotalRows   int  `json:"totalRows"`
	PerPage     int  `json:"perPage"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

type UserPage struct {
	Users      []*User    `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type LoginResult struct {
	User            *User     `json:"user"`
	AccessToken     string    `json:"access_token"`
	ExpiresAt       time.Time `json:"expires_at"`
	CookieExpiresAt time.Time `json:"-"`
}
