package accounts

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

var actorCtxKey = &contextKey{"actor"}

type contextKey struct {
	name string
}

// Actor is the authenticated caller acting on the service.
type Actor struct {
	ID   uuid.UUID
	Role UserRole
}

// IsSelf reports whether the actor is the owner of the given account id
func (a *Actor) IsSelf(id uuid.UUID) bool {
	return a != nil && a.ID != uuid.Nil && a.ID == id
}

// WithActor sets the Actor in the given context
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the actor in the context.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(actorCtxKey).(*Actor)
	return raw, ok && raw != nil
}

// ActorFromClaims builds an Actor out of validated token claims.
func ActorFromClaims(claims jwtware.AuthClaims) (*Actor, bool) {
	if claims == nil {
		return nil, false
	}
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, false
	}
	role, ok := ParseRole(claims.Role())
	if !ok {
		return nil, false
	}
	return &Actor{ID: id, Role: role}, true
}

// EnrichContext is a jwtware.Config ContextEnricher that stores the caller
// as an Actor in the request context.
func EnrichContext(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	actor, ok := ActorFromClaims(claims)
	if !ok {
		return ctx
	}
	return WithActor(ctx, actor)
}
