package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/shared"
)

// CreateMaterialRequest represents a request to add a material to the catalog
type CreateMaterialRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=60"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	Unit        string `json:"unit" binding:"required,min=1,max=20"`
	Barcode     string `json:"barcode" binding:"omitempty,min=8,max=14"`
	NCM         string `json:"ncm" binding:"omitempty,len=8"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Barcode     *string `json:"barcode" binding:"omitempty,max=14"`
	NCM         *string `json:"ncm" binding:"omitempty,max=8"`
}

// MaterialListFilter represents filter criteria for listing materials
type MaterialListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	NCM         string          `json:"ncm,omitempty"`
	Unit        string          `json:"unit"`
	LastCost    decimal.Decimal `json:"last_cost"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToMaterialResponse converts a domain Material to MaterialResponse
func ToMaterialResponse(material *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:          material.ID,
		Code:        material.Code,
		Name:        material.Name,
		Description: material.Description,
		Barcode:     material.Barcode,
		NCM:         material.NCM,
		Unit:        material.Unit,
		LastCost:    material.LastCost,
		Status:      string(material.Status),
		CreatedAt:   material.CreatedAt,
		UpdatedAt:   material.UpdatedAt,
	}
}

// ToMaterialResponsePage converts a paginated domain result to responses
func ToMaterialResponsePage(page *shared.Paginated[*catalog.Material]) *shared.Paginated[MaterialResponse] {
	items := make([]MaterialResponse, 0, len(page.Items))
	for _, material := range page.Items {
		items = append(items, ToMaterialResponse(material))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result
}
