package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByCNPJ finds a supplier by its normalized CNPJ within a tenant
func (r *GormSupplierRepository) FindByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cnpj = ?", tenantID, partner.NormalizeCNPJ(cnpj)).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// ExistsByCNPJ reports whether a supplier with the CNPJ exists in the tenant
func (r *GormSupplierRepository) ExistsByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("tenant_id = ? AND cnpj = ?", tenantID, partner.NormalizeCNPJ(cnpj)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a supplier. The unique index on (tenant_id, cnpj) turns a
// concurrent duplicate into shared.ErrAlreadyExists.
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// List returns a page of suppliers matching the filter
func (r *GormSupplierRepository) List(ctx context.Context, tenantID uuid.UUID, filter partner.SupplierFilter) (*shared.Paginated[*partner.Supplier], error) {
	filter = filter.Normalized()

	query := r.db.WithContext(ctx).
		Model(&partner.Supplier{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR trade_name ILIKE ? OR cnpj LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var suppliers []*partner.Supplier
	if err := query.
		Order("name ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&suppliers).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(suppliers, total, filter.Page, filter.PageSize)
	return &page, nil
}
