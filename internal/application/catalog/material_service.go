package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/shared"
)

// MaterialService handles catalog material operations
type MaterialService struct {
	materialRepo catalog.MaterialRepository
	eventBus     shared.EventPublisher
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo catalog.MaterialRepository, eventBus shared.EventPublisher) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		eventBus:     eventBus,
	}
}

// Create adds a new material to the catalog
func (s *MaterialService) Create(ctx context.Context, tenantID uuid.UUID, req CreateMaterialRequest) (*MaterialResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.materialRepo.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Material with this code already exists")
	}

	material, err := catalog.NewMaterial(tenantID, code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := material.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Barcode != "" {
		if err := material.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.NCM != "" {
		if err := material.SetNCM(req.NCM); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, material)

	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByID retrieves a material by ID
func (s *MaterialService) GetByID(ctx context.Context, tenantID, materialID uuid.UUID) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// List retrieves materials with filtering and pagination
func (s *MaterialService) List(ctx context.Context, tenantID uuid.UUID, filter MaterialListFilter) (*shared.Paginated[MaterialResponse], error) {
	domainFilter := catalog.MaterialFilter{
		Status:   catalog.MaterialStatus(filter.Status),
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}.Normalized()

	page, err := s.materialRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	return ToMaterialResponsePage(page), nil
}

// Update updates a material's catalog data
func (s *MaterialService) Update(ctx context.Context, tenantID, materialID uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := material.Name
		description := material.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := material.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.Barcode != nil {
		if err := material.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}

	if req.NCM != nil {
		if err := material.SetNCM(*req.NCM); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// Activate activates a material
func (s *MaterialService) Activate(ctx context.Context, tenantID, materialID uuid.UUID) (*MaterialResponse, error) {
	return s.changeStatus(ctx, tenantID, materialID, (*catalog.Material).Activate)
}

// Deactivate deactivates a material
func (s *MaterialService) Deactivate(ctx context.Context, tenantID, materialID uuid.UUID) (*MaterialResponse, error) {
	return s.changeStatus(ctx, tenantID, materialID, (*catalog.Material).Deactivate)
}

func (s *MaterialService) changeStatus(ctx context.Context, tenantID, materialID uuid.UUID, transition func(*catalog.Material) error) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	if err := transition(material); err != nil {
		return nil, err
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

func (s *MaterialService) publishEvents(ctx context.Context, material *catalog.Material) {
	if s.eventBus == nil {
		return
	}
	for _, event := range material.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	material.ClearDomainEvents()
}
