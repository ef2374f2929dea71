package accounts

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	OTPTTL    = 15 * time.Minute
	CookieTTL = time.Hour
	TokenTTL  = time.Hour

	otpMin = 100000
	otpMax = 999999
)

// Credentials hashes secrets, mints one time codes and computes
// the expiry timestamps handed out to clients.
type Credentials struct {
	cost int
	now  func() time.Time
}

var _ PasswordHasher = (*Credentials)(nil)

type CredentialsOption func(*Credentials)

// WithClock overrides the time source
func WithClock(now func() time.Time) CredentialsOption {
	return func(c *Credentials) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHashCost overrides the bcrypt cost
func WithHashCost(cost int) CredentialsOption {
	return func(c *Credentials) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			c.cost = cost
		}
	}
}

func NewCredentials(opts ...CredentialsOption) *Credentials {
	c := &Credentials{
		cost: passwordHashCost(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hash returns a salted bcrypt hash of secret
func (c *Credentials) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares secret against hash. Any failure, including a
// malformed hash, is reported as a mismatch.
func (c *Credentials) Verify(secret, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// GenerateOTP returns a six digit code drawn uniformly from [100000, 999999]
func (c *Credentials) GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

func (c *Credentials) Now() time.Time {
	return c.now()
}

func (c *Credentials) OTPExpiry() time.Time {
	return c.now().Add(OTPTTL)
}

func (c *Credentials) CookieExpiry() time.Time {
	return c.now().Add(CookieTTL)
}

// TokenExpiry is reported to clients next to the token. It does not
// drive the signed expiry claim.
func (c *Credentials) TokenExpiry() time.Time {
	return c.now().Add(TokenTTL)
}
