package usecase

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

type Authorizer interface {
	IsElevated(ctx context.Context, actor Actor) bool
}

func canWriteLedger(ctx context.Context, authz Authorizer, userID uuid.UUID, actor Actor) bool {
	if actor.UserID != uuid.Nil && actor.UserID == userID {
		return true
	}
	return authz != nil && authz.IsElevated(ctx, actor)
}
