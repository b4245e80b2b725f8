package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// GormFiscalDocumentRepository implements FiscalDocumentRepository using GORM
type GormFiscalDocumentRepository struct {
	db *gorm.DB
}

// NewGormFiscalDocumentRepository creates a new GormFiscalDocumentRepository
func NewGormFiscalDocumentRepository(db *gorm.DB) *GormFiscalDocumentRepository {
	return &GormFiscalDocumentRepository{db: db}
}

// FindByID finds a document with its items
func (r *GormFiscalDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.FiscalDocument, error) {
	var doc fiscal.FiscalDocument
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForUpdate finds a document with a row lock
func (r *GormFiscalDocumentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.FiscalDocument, error) {
	var doc fiscal.FiscalDocument
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", doc.ID).
		Order("line_number ASC").
		Find(&doc.Items).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByAccessKey finds a document by its 44-digit key
func (r *GormFiscalDocumentRepository) FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*fiscal.FiscalDocument, error) {
	var doc fiscal.FiscalDocument
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("tenant_id = ? AND access_key = ?", tenantID, accessKey).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Create inserts the document and its items in one transaction. The unique
// index on (tenant_id, access_key) closes the race two concurrent imports of
// the same key would otherwise open.
func (r *GormFiscalDocumentRepository) Create(ctx context.Context, doc *fiscal.FiscalDocument) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(doc).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates the document and its items
func (r *GormFiscalDocumentRepository) Save(ctx context.Context, doc *fiscal.FiscalDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(doc).Error; err != nil {
			return err
		}
		for i := range doc.Items {
			if err := tx.Save(&doc.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns a page of documents matching the filter
func (r *GormFiscalDocumentRepository) List(ctx context.Context, tenantID uuid.UUID, filter fiscal.DocumentFilter) ([]fiscal.FiscalDocument, int64, error) {
	filter = filter.Normalized()

	query := r.db.WithContext(ctx).
		Model(&fiscal.FiscalDocument{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"document_number ILIKE ? OR supplier_name ILIKE ? OR access_key LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []fiscal.FiscalDocument
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Order("issue_date DESC, created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// Counters computes the dashboard counters relative to now
func (r *GormFiscalDocumentRepository) Counters(ctx context.Context, tenantID uuid.UUID, now time.Time) (*fiscal.DocumentCounters, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	counters := &fiscal.DocumentCounters{}

	if err := r.db.WithContext(ctx).
		Model(&fiscal.FiscalDocument{}).
		Where("tenant_id = ? AND status = ?", tenantID, fiscal.DocumentStatusPending).
		Count(&counters.PendingCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&fiscal.FiscalDocument{}).
		Where("tenant_id = ? AND status = ? AND issue_date >= ?", tenantID, fiscal.DocumentStatusProcessed, monthStart).
		Count(&counters.ProcessedThisMonth).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&fiscal.FiscalDocument{}).
		Where("tenant_id = ? AND status = ?", tenantID, fiscal.DocumentStatusRejected).
		Count(&counters.RejectedCount).Error; err != nil {
		return nil, err
	}

	var totalValue struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&fiscal.FiscalDocument{}).
		Select("COALESCE(SUM(total_value), 0) AS total").
		Where("tenant_id = ? AND status IN ? AND issue_date >= ?",
			tenantID,
			[]fiscal.DocumentStatus{fiscal.DocumentStatusPending, fiscal.DocumentStatusProcessed},
			monthStart).
		Scan(&totalValue).Error; err != nil {
		return nil, err
	}
	counters.TotalValueThisMonth = totalValue.Total

	return counters, nil
}

// FindItemByID loads a single invoice item, scoped through its document's
// tenant
func (r *GormFiscalDocumentRepository) FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*fiscal.InvoiceItem, error) {
	var item fiscal.InvoiceItem
	if err := r.db.WithContext(ctx).
		Joins("JOIN fiscal_documents ON fiscal_documents.id = invoice_items.document_id").
		Where("fiscal_documents.tenant_id = ? AND invoice_items.id = ?", tenantID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// SaveItem updates a single invoice item
func (r *GormFiscalDocumentRepository) SaveItem(ctx context.Context, item *fiscal.InvoiceItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
