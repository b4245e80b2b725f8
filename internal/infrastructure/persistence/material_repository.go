package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/shared"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by ID within a tenant
func (r *GormMaterialRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Material, error) {
	var material catalog.Material
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// FindByCode finds a material by its code within a tenant
func (r *GormMaterialRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Material, error) {
	var material catalog.Material
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// ExistsByCode reports whether a material with the code exists in the tenant
func (r *GormMaterialRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Material{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a material. The unique index on (tenant_id, code) turns a
// concurrent duplicate into shared.ErrAlreadyExists.
func (r *GormMaterialRepository) Create(ctx context.Context, material *catalog.Material) error {
	if err := r.db.WithContext(ctx).Create(material).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates a material
func (r *GormMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// List returns a page of materials matching the filter
func (r *GormMaterialRepository) List(ctx context.Context, tenantID uuid.UUID, filter catalog.MaterialFilter) (*shared.Paginated[*catalog.Material], error) {
	filter = filter.Normalized()

	query := r.db.WithContext(ctx).
		Model(&catalog.Material{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR barcode LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var materials []*catalog.Material
	if err := query.
		Order("code ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&materials).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(materials, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListActive returns every active material in the tenant
func (r *GormMaterialRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*catalog.Material, error) {
	var materials []*catalog.Material
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, catalog.MaterialStatusActive).
		Order("code ASC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}
