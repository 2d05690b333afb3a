package port

import (
	"context"

	"gamebridge.io/internal/domain/entity"
)

// LedgerRepository is the port for session balances and uuid correlation.
type LedgerRepository interface {
	// GetOrCreate returns the session, lazily seeding it on first touch.
	// Concurrent first-touches observe exactly one seed set.
	GetOrCreate(ctx context.Context, sessionID string) (*entity.Session, error)

	// CheckAndDeduct atomically verifies and decrements every listed
	// balance. If any entry is missing or short, nothing is modified.
	CheckAndDeduct(ctx context.Context, sessionID string, movements []entity.AssetMovement) error

	// Credit increments balances, creating entries as needed.
	Credit(ctx context.Context, sessionID string, movements []entity.AssetMovement) error

	// BindUUID records the uuid → session correlation. First write wins:
	// rebinding to a different session fails, rebinding to the same
	// session is a no-op.
	BindUUID(ctx context.Context, uuid, sessionID string) error

	// ResolveUUID returns the session a uuid was bound to.
	ResolveUUID(ctx context.Context, uuid string) (string, error)
}
