package distribution

import (
	"context"

	"github.com/google/uuid"
)

// PendingNfeRepository persists documents discovered through the feed
type PendingNfeRepository interface {
	// FindByID loads a pending document
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PendingNfe, error)
	// FindByAccessKey looks a pending document up by key
	FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*PendingNfe, error)
	// FindByAccessKeyForUpdate loads with a row lock so manifestation
	// submissions for one key are serialized
	FindByAccessKeyForUpdate(ctx context.Context, tenantID uuid.UUID, accessKey string) (*PendingNfe, error)
	// ListByStatus returns pending documents in the given status,
	// oldest discovery first
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status ManifestationStatus, page, pageSize int) ([]PendingNfe, int64, error)
	// Save creates or updates a pending document
	Save(ctx context.Context, p *PendingNfe) error
	// Delete removes a pending document after import or explicit dismissal
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ManifestationEventRepository is the append-only acknowledgement log.
// Deliberately no update or delete: immutability is part of the contract.
type ManifestationEventRepository interface {
	// Append inserts one event
	Append(ctx context.Context, event *ManifestationEvent) error
	// ListByAccessKey returns all events for a key, oldest first
	ListByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) ([]ManifestationEvent, error)
}

// CursorRepository tracks the per-tenant distribution feed resume cursor.
// Advancing is a compare-and-set so two concurrent polls cannot both move
// the cursor from the same stale value.
type CursorRepository interface {
	// Current returns the last consumed NSU for the tenant (0 when never polled)
	Current(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// Advance moves the cursor from expected to next; returns
	// shared.ErrConcurrencyConflict when the stored value is not expected
	Advance(ctx context.Context, tenantID uuid.UUID, expected, next int64) error
}
