package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/nfehub/backend/internal/application/catalog"
)

// MaterialHandler exposes catalog material endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *catalogapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *catalogapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// Create adds a material to the catalog
func (h *MaterialHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalogapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, material)
}

// GetByID returns one material
func (h *MaterialHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), tenantID, materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// List returns a page of materials
func (h *MaterialHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter catalogapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.materialService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update changes a material's mutable fields
func (h *MaterialHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req catalogapp.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), tenantID, materialID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// Activate reactivates an inactive material
func (h *MaterialHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.materialService.Activate)
}

// Deactivate removes a material from the reconciliation candidate pool
func (h *MaterialHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.materialService.Deactivate)
}

func (h *MaterialHandler) changeStatus(c *gin.Context, apply func(ctx context.Context, tenantID, materialID uuid.UUID) (*catalogapp.MaterialResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	material, err := apply(c.Request.Context(), tenantID, materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, material)
}

// RegisterRoutes registers all material routes
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/catalog/materials")
	{
		materials.POST("", h.Create)
		materials.GET("", h.List)
		materials.GET("/:id", h.GetByID)
		materials.PUT("/:id", h.Update)
		materials.POST("/:id/activate", h.Activate)
		materials.POST("/:id/deactivate", h.Deactivate)
	}
}
