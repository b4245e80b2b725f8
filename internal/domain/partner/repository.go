package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/shared"
)

// SupplierFilter carries list query parameters for suppliers
type SupplierFilter struct {
	Status   SupplierStatus
	Search   string
	Page     int
	PageSize int
}

// Normalized returns the filter with pagination defaults applied
func (f SupplierFilter) Normalized() SupplierFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = shared.DefaultFilter().PageSize
	}
	return f
}

// SupplierRepository defines the persistence contract for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Supplier, error)
	FindByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (*Supplier, error)
	ExistsByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (bool, error)
	Create(ctx context.Context, supplier *Supplier) error
	Save(ctx context.Context, supplier *Supplier) error
	List(ctx context.Context, tenantID uuid.UUID, filter SupplierFilter) (*shared.Paginated[*Supplier], error)
}
