package middleware

import (
	"errors"
	"strings"

	"skilltrack/internal/pkg/jwt"
	"skilltrack/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const CtxActorKey = "actor"

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			token, ok = bearerTokenFromQuery(c.Query("access_token"))
		}
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxActorKey, usecase.Actor{UserID: claims.UserID, Role: claims.Role})
		return c.Next()
	}
}

// ActorFromCtx returns the caller set by the auth middleware.
func ActorFromCtx(c fiber.Ctx) (usecase.Actor, bool) {
	actor, ok := c.Locals(CtxActorKey).(usecase.Actor)
	return actor, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// Browsers cannot set headers on a websocket upgrade.
func bearerTokenFromQuery(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
