package accounts

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

// OwnerOrAdmin admits the account named by the :id route parameter and
// admins. It must run after the authentication gate.
func OwnerOrAdmin(contextKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := jwtware.ClaimsFromLocals(c, contextKey)
		if !ok {
			return ErrUnauthorized.Clone()
		}
		actor, ok := ActorFromClaims(claims)
		if !ok {
			return ErrUnauthorized.Clone()
		}

		if actor.Role.IsElevated() {
			return c.Next()
		}

		id, err := uuid.Parse(c.Params("id"))
		if err == nil && actor.IsSelf(id) {
			return c.Next()
		}
		return withMessage(ErrForbidden, "You can only modify your own account", nil)
	}
}
