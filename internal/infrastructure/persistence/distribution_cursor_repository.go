package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/shared"
)

// distributionCursor is the persistence model for the per-tenant feed cursor
type distributionCursor struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primary_key"`
	LastNSU   int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (distributionCursor) TableName() string {
	return "distribution_cursors"
}

// GormCursorRepository implements CursorRepository using GORM
type GormCursorRepository struct {
	db *gorm.DB
}

// NewGormCursorRepository creates a new GormCursorRepository
func NewGormCursorRepository(db *gorm.DB) *GormCursorRepository {
	return &GormCursorRepository{db: db}
}

// Current returns the last consumed NSU for the tenant, 0 when never polled
func (r *GormCursorRepository) Current(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var cursor distributionCursor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&cursor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return cursor.LastNSU, nil
}

// Advance moves the cursor from expected to next with a compare-and-set. A
// conflicting writer makes the guarded update match zero rows.
func (r *GormCursorRepository) Advance(ctx context.Context, tenantID uuid.UUID, expected, next int64) error {
	if next <= expected {
		return shared.NewDomainError("INVALID_NSU", "Cursor can only move forward")
	}

	if expected == 0 {
		err := r.db.WithContext(ctx).Create(&distributionCursor{
			TenantID:  tenantID,
			LastNSU:   next,
			UpdatedAt: time.Now(),
		}).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// a row exists; fall through to the guarded update
	}

	result := r.db.WithContext(ctx).
		Model(&distributionCursor{}).
		Where("tenant_id = ? AND last_nsu = ?", tenantID, expected).
		Updates(map[string]interface{}{
			"last_nsu":   next,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
