package jwtware_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

type testClaims struct {
	id   string
	role string
}

func (c testClaims) Subject() string          { return c.id }
func (c testClaims) UserID() string           { return c.id }
func (c testClaims) Role() string             { return c.role }
func (c testClaims) HasRole(role string) bool { return c.role == role }
func (c testClaims) IsAtLeast(minRole string) bool {
	levels := map[string]int{"user": 0, "admin": 1}
	return levels[c.role] >= levels[minRole]
}

type staticValidator map[string]testClaims

func (v staticValidator) Validate(token string) (jwtware.AuthClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, errors.New("invalid token", errors.CategoryAuth).WithCode(errors.CodeUnauthorized)
	}
	return claims, nil
}

var validator = staticValidator{
	"user-token":  {id: "u1", role: "user"},
	"admin-token": {id: "a1", role: "admin"},
}

func errorHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return c.Status(richErr.Code).SendString(richErr.Message)
	}
	return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
}

func newApp(cfg jwtware.Config, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	if cfg.TokenValidator == nil {
		cfg.TokenValidator = validator
	}
	handlers := append([]fiber.Handler{jwtware.New(cfg)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, ok := jwtware.ClaimsFromLocals(c, cfg.ContextKey)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(claims.UserID())
	})
	app.Get("/*", handlers...)
	app.Post("/*", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, hdr map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNew_TokenSources(t *testing.T) {
	app := newApp(jwtware.Config{})

	status, body := call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=user-token",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "u1", body)

	status, body = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderAuthorization: "Bearer admin-token",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a1", body)

	status, _ = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderAuthorization: "Basic admin-token",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestNew_MissingAndInvalidToken(t *testing.T) {
	app := newApp(jwtware.Config{})

	status, _ := call(t, app, fiber.MethodGet, "/", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=forged",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestNew_Filter(t *testing.T) {
	app := newApp(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool { return c.Path() == "/public" },
	})

	status, body := call(t, app, fiber.MethodGet, "/public", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, _ = call(t, app, fiber.MethodGet, "/private", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestNew_Optional(t *testing.T) {
	app := newApp(jwtware.Config{Optional: true})

	status, body := call(t, app, fiber.MethodGet, "/", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "anonymous", body)

	status, body = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=admin-token",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a1", body)

	status, _ = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=forged",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status, "a present token must be valid")
}

func TestRequireRoles(t *testing.T) {
	app := newApp(jwtware.Config{}, jwtware.RequireRoles("", "admin"))

	status, body := call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=user-token",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Not Authorized", body)

	status, _ = call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=admin-token",
	})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestNew_MinimumRole(t *testing.T) {
	app := newApp(jwtware.Config{MinimumRole: "admin"})

	status, _ := call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderAuthorization: "Bearer user-token",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

type ctxKey struct{}

func TestNew_ContextEnricherAndListeners(t *testing.T) {
	var listened []string

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/", jwtware.New(jwtware.Config{
		TokenValidator: validator,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			return context.WithValue(ctx, ctxKey{}, claims.Role())
		},
		ValidationListeners: []jwtware.ValidationListener{
			func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
				listened = append(listened, claims.UserID())
				return nil
			},
		},
	}), func(c *fiber.Ctx) error {
		role, _ := c.UserContext().Value(ctxKey{}).(string)
		return c.SendString(role)
	})

	status, body := call(t, app, fiber.MethodGet, "/", map[string]string{
		fiber.HeaderCookie: "access_token=admin-token",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin", body)
	assert.Equal(t, []string{"a1"}, listened)
}

func TestGetDefaultConfig_RequiresValidator(t *testing.T) {
	assert.Panics(t, func() { jwtware.GetDefaultConfig(jwtware.Config{}) })
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("cookie:access_token, header:Authorization, query:token, bogus")
	assert.Len(t, extractors, 2)
}
