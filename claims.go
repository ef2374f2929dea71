package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

// JWTClaims carries the account identity and profile in the access token
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"id,omitempty"`
	UserRole  string `json:"role,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
}

var _ jwtware.AuthClaims = (*JWTClaims)(nil)

// ClaimsFromUser copies the identity and profile fields of a user
func ClaimsFromUser(u *User) *JWTClaims {
	if u == nil {
		return nil
	}
	return &JWTClaims{
		UID:       u.ID.String(),
		UserRole:  string(u.Role),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		City:      u.City,
	}
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the account role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.UserRole).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
