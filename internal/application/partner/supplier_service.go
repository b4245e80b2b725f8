package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// SupplierService handles supplier registry operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	eventBus     shared.EventPublisher
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, eventBus shared.EventPublisher) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		eventBus:     eventBus,
	}
}

// Create registers a new supplier
func (s *SupplierService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	normalized, err := partner.NormalizeAndValidateCNPJ(req.CNPJ)
	if err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByCNPJ(ctx, tenantID, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Supplier with this CNPJ already exists")
	}

	supplier, err := partner.NewSupplier(tenantID, normalized, req.Name)
	if err != nil {
		return nil, err
	}

	if req.TradeName != "" {
		if err := supplier.Update(req.Name, req.TradeName); err != nil {
			return nil, err
		}
	}
	if req.Email != "" || req.Phone != "" {
		if err := supplier.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.StateRegistration != "" {
		if err := supplier.SetStateRegistration(req.StateRegistration); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		supplier.SetNotes(req.Notes)
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByCNPJ retrieves a supplier by CNPJ
func (s *SupplierService) GetByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByCNPJ(ctx, tenantID, partner.NormalizeCNPJ(cnpj))
	if err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, tenantID uuid.UUID, filter SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	domainFilter := partner.SupplierFilter{
		Status:   partner.SupplierStatus(filter.Status),
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}.Normalized()

	page, err := s.supplierRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	return ToSupplierResponsePage(page), nil
}

// Update updates a supplier's registry data
func (s *SupplierService) Update(ctx context.Context, tenantID, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.TradeName != nil {
		name := supplier.Name
		tradeName := supplier.TradeName
		if req.Name != nil {
			name = *req.Name
		}
		if req.TradeName != nil {
			tradeName = *req.TradeName
		}
		if err := supplier.Update(name, tradeName); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email := supplier.Email
		phone := supplier.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := supplier.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.StateRegistration != nil {
		if err := supplier.SetStateRegistration(*req.StateRegistration); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		supplier.SetNotes(*req.Notes)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Activate activates a supplier
func (s *SupplierService) Activate(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, tenantID, supplierID, (*partner.Supplier).Activate)
}

// Deactivate deactivates a supplier
func (s *SupplierService) Deactivate(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, tenantID, supplierID, (*partner.Supplier).Deactivate)
}

func (s *SupplierService) changeStatus(ctx context.Context, tenantID, supplierID uuid.UUID, transition func(*partner.Supplier) error) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	if err := transition(supplier); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

func (s *SupplierService) publishEvents(ctx context.Context, supplier *partner.Supplier) {
	if s.eventBus == nil {
		return
	}
	for _, event := range supplier.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	supplier.ClearDomainEvents()
}
