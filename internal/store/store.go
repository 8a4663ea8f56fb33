package store

import (
	"context"

	"github.com/croftbw/watchmux/internal/model"
)

// Store defines the persistence operations for the expiry audit trail.
type Store interface {
	RecordExpiry(ctx context.Context, e *model.ExpiryEvent) error
	GetExpiry(ctx context.Context, id string) (*model.ExpiryEvent, error)
	ListExpiries(ctx context.Context, limit, offset int) ([]*model.ExpiryEvent, int, error)
	Close() error
}
