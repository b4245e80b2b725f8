package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentCounters holds the aggregate counters shown alongside document lists
type DocumentCounters struct {
	PendingCount        int64           `json:"pending_count"`
	ProcessedThisMonth  int64           `json:"processed_this_month"`
	RejectedCount       int64           `json:"rejected_count"`
	TotalValueThisMonth decimal.Decimal `json:"total_value_this_month"`
}

// DocumentFilter narrows document list queries
type DocumentFilter struct {
	Status     DocumentStatus // empty means ALL
	SupplierID *uuid.UUID
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Search     string // matches number, supplier name, access key
	Page       int
	PageSize   int
}

// FiscalDocumentRepository persists fiscal documents and their items
type FiscalDocumentRepository interface {
	// FindByID loads a document with its items
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*FiscalDocument, error)
	// FindByIDForUpdate loads a document with a row lock so status transitions
	// and reconciliation runs are serialized per document
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*FiscalDocument, error)
	// FindByAccessKey looks a document up by its 44-digit key
	FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*FiscalDocument, error)
	// Create inserts the document and its items in one transaction. The
	// access key uniqueness is enforced by the database; a concurrent
	// duplicate insert returns shared.ErrAlreadyExists.
	Create(ctx context.Context, doc *FiscalDocument) error
	// Save updates the document and its changed items
	Save(ctx context.Context, doc *FiscalDocument) error
	// List returns a page of documents matching the filter
	List(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]FiscalDocument, int64, error)
	// Counters computes the dashboard counters relative to now
	Counters(ctx context.Context, tenantID uuid.UUID, now time.Time) (*DocumentCounters, error)
	// FindItemByID loads a single invoice item
	FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*InvoiceItem, error)
	// SaveItem updates a single invoice item (manual link/unlink)
	SaveItem(ctx context.Context, item *InvoiceItem) error
}

// Normalized returns a copy of the filter with pagination defaults applied
func (f DocumentFilter) Normalized() DocumentFilter {
	out := f
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.PageSize <= 0 || out.PageSize > 100 {
		out.PageSize = shared.DefaultFilter().PageSize
	}
	return out
}
