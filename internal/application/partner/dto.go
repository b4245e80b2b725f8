package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// CreateSupplierRequest represents a request to register a supplier
type CreateSupplierRequest struct {
	CNPJ              string `json:"cnpj" binding:"required,min=14,max=18"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	TradeName         string `json:"trade_name" binding:"max=200"`
	StateRegistration string `json:"state_registration" binding:"max=20"`
	Email             string `json:"email" binding:"omitempty,email,max=200"`
	Phone             string `json:"phone" binding:"max=50"`
	Notes             string `json:"notes"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=200"`
	TradeName         *string `json:"trade_name" binding:"omitempty,max=200"`
	StateRegistration *string `json:"state_registration" binding:"omitempty,max=20"`
	Email             *string `json:"email" binding:"omitempty,email,max=200"`
	Phone             *string `json:"phone" binding:"omitempty,max=50"`
	Notes             *string `json:"notes"`
}

// SupplierListFilter represents filter criteria for listing suppliers
type SupplierListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID                uuid.UUID `json:"id"`
	CNPJ              string    `json:"cnpj"`
	Name              string    `json:"name"`
	TradeName         string    `json:"trade_name,omitempty"`
	StateRegistration string    `json:"state_registration,omitempty"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(supplier *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:                supplier.ID,
		CNPJ:              supplier.CNPJ,
		Name:              supplier.Name,
		TradeName:         supplier.TradeName,
		StateRegistration: supplier.StateRegistration,
		Email:             supplier.Email,
		Phone:             supplier.Phone,
		Status:            string(supplier.Status),
		Notes:             supplier.Notes,
		CreatedAt:         supplier.CreatedAt,
		UpdatedAt:         supplier.UpdatedAt,
	}
}

// ToSupplierResponsePage converts a paginated domain result to responses
func ToSupplierResponsePage(page *shared.Paginated[*partner.Supplier]) *shared.Paginated[SupplierResponse] {
	items := make([]SupplierResponse, 0, len(page.Items))
	for _, supplier := range page.Items {
		items = append(items, ToSupplierResponse(supplier))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result
}
