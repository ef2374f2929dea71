package accounts

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetSessionCookie stores the access token in an http only, same site
// strict cookie.
func SetSessionCookie(c *fiber.Ctx, name, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie. There is no server side
// session to revoke.
func ClearSessionCookie(c *fiber.Ctx, name string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
