package jwtware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const (
	DefaultContextKey  = "user"
	DefaultTokenLookup = "cookie:access_token,header:" + fiber.HeaderAuthorization

	TextCodeUnauthorized = "UNAUTHORIZED"
	TextCodeForbidden    = "FORBIDDEN"
)

// ErrJWTMissingOrMalformed is returned when no usable token is found on the request.
var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrAccessDenied is returned when the caller's role does not satisfy a gate.
var ErrAccessDenied = errors.New("Not Authorized", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// TokenValidator validates a raw token and returns its claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the view of token claims the gates need
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// ValidationListener is invoked after a token has been validated but before authorization checks.
type ValidationListener func(c *fiber.Ctx, claims AuthClaims) error

type Config struct {
	// Filter marks routes that skip authentication entirely.
	Filter func(*fiber.Ctx) bool
	// Optional lets requests without a token through. A token that is
	// present must still be valid.
	Optional       bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// MinimumRole specifies the minimum role level required (uses role hierarchy)
	MinimumRole string

	// ContextEnricher propagates claims into the request's user context.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context

	ValidationListeners []ValidationListener
}

// New returns the authentication gate
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawTokenFromContext(c, extractors)
		if err != nil {
			if cfg.Optional {
				return c.Next()
			}
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := performAuthorizationChecks(claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

// RequireRoles is the role gate. It expects New to have run first and lets
// the request through when the caller's role is one of roles. An empty
// role set admits any authenticated caller.
func RequireRoles(contextKey string, roles ...string) fiber.Handler {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromLocals(c, contextKey)
		if !ok {
			return ErrJWTMissingOrMalformed.Clone()
		}
		if len(roles) == 0 {
			return c.Next()
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				return c.Next()
			}
		}
		return ErrAccessDenied.Clone().WithMetadata(map[string]any{
			"required_roles": roles,
		})
	}
}

// ClaimsFromLocals returns the claims stored by New
func ClaimsFromLocals(c *fiber.Ctx, contextKey string) (AuthClaims, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	claims, ok := c.Locals(contextKey).(AuthClaims)
	return claims, ok && claims != nil
}

// performAuthorizationChecks applies the MinimumRole gate when one is configured
func performAuthorizationChecks(claims AuthClaims, cfg Config) error {
	if cfg.MinimumRole != "" && !claims.IsAtLeast(cfg.MinimumRole) {
		return ErrAccessDenied.Clone()
	}
	return nil
}

func ExtractRawTokenFromContext(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	err := error(ErrJWTMissingOrMalformed.Clone())

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return richErr
			}
			return ErrJWTMissingOrMalformed.Clone()
		}
	}

	if cfg.TokenValidator == nil {
		panic("ACCOUNTS: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = DefaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

// GetExtractors parses a lookup such as "cookie:access_token,header:Authorization".
// Only cookie and header sources are recognised.
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}
		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	l := len(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed.Clone()
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed.Clone()
		}
		return token, nil
	}
}
