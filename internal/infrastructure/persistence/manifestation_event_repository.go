package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/distribution"
)

// GormManifestationEventRepository implements the append-only manifestation
// log using GORM. It deliberately exposes no update or delete.
type GormManifestationEventRepository struct {
	db *gorm.DB
}

// NewGormManifestationEventRepository creates a new GormManifestationEventRepository
func NewGormManifestationEventRepository(db *gorm.DB) *GormManifestationEventRepository {
	return &GormManifestationEventRepository{db: db}
}

// Append inserts one event
func (r *GormManifestationEventRepository) Append(ctx context.Context, event *distribution.ManifestationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByAccessKey returns all events for a key, oldest first
func (r *GormManifestationEventRepository) ListByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) ([]distribution.ManifestationEvent, error) {
	var events []distribution.ManifestationEvent
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND access_key = ?", tenantID, accessKey).
		Order("submitted_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
