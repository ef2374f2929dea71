package accounts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

const DefaultIssuer = "User-Service-RabbitMQ"

// TokenService signs access tokens with the current secret and accepts
// tokens signed with any configured previous secret.
type TokenService struct {
	signingKey []byte
	keyID      string
	keys       *keyfunc.JWKS
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

type TokenServiceOption func(*TokenService)

// WithPreviousSecrets keeps tokens signed with rotated secrets valid
func WithPreviousSecrets(secrets ...string) TokenServiceOption {
	return func(ts *TokenService) {
		given := map[string]keyfunc.GivenKey{
			ts.keyID: givenHMAC(ts.signingKey),
		}
		for _, s := range secrets {
			if s == "" {
				continue
			}
			given[keyIDFor([]byte(s))] = givenHMAC([]byte(s))
		}
		ts.keys = keyfunc.NewGiven(given)
	}
}

func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		ts.logger = normalizeLogger(logger)
	}
}

func NewTokenService(secret string, ttl time.Duration, issuer string, opts ...TokenServiceOption) *TokenService {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if ttl <= 0 {
		ttl = TokenTTL
	}
	key := []byte(secret)
	ts := &TokenService{
		signingKey: key,
		keyID:      keyIDFor(key),
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
		logger:     defLogger{},
	}
	ts.keys = keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		ts.keyID: givenHMAC(key),
	})
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Issue signs the given claims. Subject is always the user id.
func (ts *TokenService) Issue(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}
	if len(ts.signingKey) == 0 {
		return "", errors.New("signing key is not configured", errors.CategoryInternal)
	}

	now := ts.now()
	claims.RegisteredClaims.Subject = claims.UID
	claims.Issuer = ts.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.ttl))
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ts.keyID

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims
func (ts *TokenService) Validate(tokenString string) (jwtware.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validation found unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.keys.Keyfunc(t)
	},
		jwt.WithIssuer(ts.issuer),
		jwt.WithTimeFunc(ts.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, withMessage(ErrUnauthorized, "token is expired", nil)
		}
		ts.logger.Debug("token validation failed: %v", err)
		return nil, withMessage(ErrUnauthorized, "invalid token", nil)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, withMessage(ErrUnauthorized, "invalid token", nil)
	}
	return claims, nil
}

func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

func givenHMAC(key []byte) keyfunc.GivenKey {
	return keyfunc.NewGivenCustom(key, keyfunc.GivenKeyOptions{
		Algorithm: jwt.SigningMethodHS256.Alg(),
	})
}

func keyIDFor(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
