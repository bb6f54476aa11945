package middleware

import (
	"context"
	"strings"

	"skilltrack/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// RoleAuthorizer grants the elevated capability to a configured set of roles.
type RoleAuthorizer struct {
	roles map[string]struct{}
}

func NewRoleAuthorizer(roles []string) *RoleAuthorizer {
	m := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			m[r] = struct{}{}
		}
	}
	return &RoleAuthorizer{roles: m}
}

func (a *RoleAuthorizer) IsElevated(_ context.Context, actor usecase.Actor) bool {
	if a == nil {
		return false
	}
	_, ok := a.roles[strings.ToLower(strings.TrimSpace(actor.Role))]
	return ok
}

// RequireElevated guards catalog writes.
func RequireElevated(authz usecase.Authorizer) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if authz == nil || !authz.IsElevated(c.Context(), actor) {
			return NewAppError(fiber.StatusForbidden, "Forbidden", nil, usecase.ErrForbidden)
		}
		return c.Next()
	}
}
