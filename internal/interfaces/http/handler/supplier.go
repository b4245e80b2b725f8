package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/nfehub/backend/internal/application/partner"
)

// SupplierHandler exposes supplier registry endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create registers a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, supplier)
}

// GetByID returns one supplier
func (h *SupplierHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), tenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// GetByCNPJ returns one supplier looked up by CNPJ, formatted or not
func (h *SupplierHandler) GetByCNPJ(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	supplier, err := h.supplierService.GetByCNPJ(c.Request.Context(), tenantID, c.Param("cnpj"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// List returns a page of suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter partnerapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.supplierService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update changes a supplier's mutable fields
func (h *SupplierHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), tenantID, supplierID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// Activate reactivates an inactive supplier
func (h *SupplierHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.supplierService.Activate)
}

// Deactivate deactivates an active supplier
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.supplierService.Deactivate)
}

func (h *SupplierHandler) changeStatus(c *gin.Context, apply func(ctx context.Context, tenantID, supplierID uuid.UUID) (*partnerapp.SupplierResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := apply(c.Request.Context(), tenantID, supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/partner/suppliers")
	{
		suppliers.POST("", h.Create)
		suppliers.GET("", h.List)
		suppliers.GET("/cnpj/:cnpj", h.GetByCNPJ)
		suppliers.GET("/:id", h.GetByID)
		suppliers.PUT("/:id", h.Update)
		suppliers.POST("/:id/activate", h.Activate)
		suppliers.POST("/:id/deactivate", h.Deactivate)
	}
}
