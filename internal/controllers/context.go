package controllers

import (
	"context"

	"github.com/google/uuid"
	"github.com/poofware/property-service/internal/middleware"
	"github.com/poofware/property-service/internal/services"
)

// actorFromContext resolves the authenticated caller placed in the request
// context by the auth middleware. Returns nil when the request carries no
// valid identity.
func actorFromContext(ctx context.Context) *services.Actor {
	ctxUserID := ctx.Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		return nil
	}
	id, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		return nil
	}
	role, _ := ctx.Value(middleware.ContextKeyRole).(string)
	return &services.Actor{
		TenantID: id,
		Internal: role == middleware.RoleInternal,
	}
}
