package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const catalogCacheKey = "skills:catalog"

// CatalogCache holds the serialized catalog snapshot. Implementations must
// degrade to misses when the backing store is down.
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cachedNode struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	ParentID   *uuid.UUID  `json:"parent_id,omitempty"`
	ChildIDs   []uuid.UUID `json:"child_ids"`
	CreatedSeq int64       `json:"created_seq"`
	AttachSeq  int64       `json:"attach_seq"`
	Version    int64       `json:"version"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noCache) Delete(context.Context, string) error { return nil }
