package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/shared"
)

// MaterialFilter carries list query parameters for materials
type MaterialFilter struct {
	Status   MaterialStatus
	Search   string
	Page     int
	PageSize int
}

// Normalized returns the filter with pagination defaults applied
func (f MaterialFilter) Normalized() MaterialFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = shared.DefaultFilter().PageSize
	}
	return f
}

// MaterialRepository defines the persistence contract for materials
type MaterialRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Material, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Material, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Create(ctx context.Context, material *Material) error
	Save(ctx context.Context, material *Material) error
	List(ctx context.Context, tenantID uuid.UUID, filter MaterialFilter) (*shared.Paginated[*Material], error)
	// ListActive returns the active materials used as reconciliation
	// candidates for a document.
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*Material, error)
}
