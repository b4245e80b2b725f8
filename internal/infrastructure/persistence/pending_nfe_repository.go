package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/shared"
)

// GormPendingNfeRepository implements PendingNfeRepository using GORM
type GormPendingNfeRepository struct {
	db *gorm.DB
}

// NewGormPendingNfeRepository creates a new GormPendingNfeRepository
func NewGormPendingNfeRepository(db *gorm.DB) *GormPendingNfeRepository {
	return &GormPendingNfeRepository{db: db}
}

// FindByID finds a pending document by its ID
func (r *GormPendingNfeRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*distribution.PendingNfe, error) {
	var pending distribution.PendingNfe
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// FindByAccessKey finds a pending document by access key
func (r *GormPendingNfeRepository) FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*distribution.PendingNfe, error) {
	var pending distribution.PendingNfe
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND access_key = ?", tenantID, accessKey).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// FindByAccessKeyForUpdate finds a pending document with a row lock
func (r *GormPendingNfeRepository) FindByAccessKeyForUpdate(ctx context.Context, tenantID uuid.UUID, accessKey string) (*distribution.PendingNfe, error) {
	var pending distribution.PendingNfe
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND access_key = ?", tenantID, accessKey).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// ListByStatus lists pending documents in a status, oldest discovery first
func (r *GormPendingNfeRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status distribution.ManifestationStatus, page, pageSize int) ([]distribution.PendingNfe, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&distribution.PendingNfe{}).
		Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pendings []distribution.PendingNfe
	if err := query.
		Order("discovered_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pendings).Error; err != nil {
		return nil, 0, err
	}
	return pendings, total, nil
}

// Save creates or updates a pending document
func (r *GormPendingNfeRepository) Save(ctx context.Context, p *distribution.PendingNfe) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a pending document
func (r *GormPendingNfeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&distribution.PendingNfe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
