package session

import (
	"context"
	"time"
)

// Store holds sessions by id. Writes are last-writer-wins; there is no locking
// across dashboard tabs.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

const DefaultTTL = 12 * time.Hour
