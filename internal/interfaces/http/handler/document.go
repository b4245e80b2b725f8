package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	fiscalapp "github.com/nfehub/backend/internal/application/fiscal"
)

// DocumentHandler exposes fiscal document import, lifecycle and
// reconciliation endpoints
type DocumentHandler struct {
	BaseHandler
	importService   *fiscalapp.ImportService
	documentService *fiscalapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(importService *fiscalapp.ImportService, documentService *fiscalapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		importService:   importService,
		documentService: documentService,
	}
}

// Import ingests one NFe XML and returns the stored document together with
// its reconciliation report
func (h *DocumentHandler) Import(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req fiscalapp.ImportDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.importService.Import(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// List returns a page of documents matching the filter
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter fiscalapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Counters returns the dashboard counters
func (h *DocumentHandler) Counters(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	counters, err := h.documentService.Counters(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counters)
}

// GetByID returns one document with its items
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// GetByAccessKey returns one document looked up by its 44-digit key
func (h *DocumentHandler) GetByAccessKey(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	doc, err := h.documentService.GetByAccessKey(c.Request.Context(), tenantID, c.Param("accessKey"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// MarkProcessed moves a pending document to PROCESSED
func (h *DocumentHandler) MarkProcessed(c *gin.Context) {
	h.transition(c, func(tenantID, documentID uuid.UUID) (*fiscalapp.DocumentResponse, error) {
		return h.documentService.MarkProcessed(c.Request.Context(), tenantID, documentID)
	})
}

// Reject moves a pending document to REJECTED with a mandatory reason
func (h *DocumentHandler) Reject(c *gin.Context) {
	var req fiscalapp.RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	h.transition(c, func(tenantID, documentID uuid.UUID) (*fiscalapp.DocumentResponse, error) {
		return h.documentService.Reject(c.Request.Context(), tenantID, documentID, req)
	})
}

// Cancel moves a processed document to CANCELLED with a mandatory reason
func (h *DocumentHandler) Cancel(c *gin.Context) {
	var req fiscalapp.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	h.transition(c, func(tenantID, documentID uuid.UUID) (*fiscalapp.DocumentResponse, error) {
		return h.documentService.Cancel(c.Request.Context(), tenantID, documentID, req)
	})
}

func (h *DocumentHandler) transition(c *gin.Context, apply func(tenantID, documentID uuid.UUID) (*fiscalapp.DocumentResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := apply(tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Reconcile re-runs item matching for one document
func (h *DocumentHandler) Reconcile(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	report, err := h.documentService.Reconcile(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// LinkSupplier links a document to a registered supplier
func (h *DocumentHandler) LinkSupplier(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req fiscalapp.LinkSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doc, err := h.documentService.LinkSupplier(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// LinkItem manually links an invoice item to a catalog material
func (h *DocumentHandler) LinkItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req fiscalapp.LinkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	item, err := h.documentService.LinkItem(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// UnlinkItem removes a manual item link
func (h *DocumentHandler) UnlinkItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	item, err := h.documentService.UnlinkItem(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// RegisterRoutes registers all fiscal document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/fiscal/documents")
	{
		documents.POST("/import", h.Import)
		documents.GET("", h.List)
		documents.GET("/counters", h.Counters)
		documents.GET("/key/:accessKey", h.GetByAccessKey)
		documents.GET("/:id", h.GetByID)
		documents.POST("/:id/process", h.MarkProcessed)
		documents.POST("/:id/reject", h.Reject)
		documents.POST("/:id/cancel", h.Cancel)
		documents.POST("/:id/reconcile", h.Reconcile)
		documents.PUT("/:id/supplier", h.LinkSupplier)
	}

	items := rg.Group("/fiscal/items")
	{
		items.PUT("/:id/link", h.LinkItem)
		items.DELETE("/:id/link", h.UnlinkItem)
	}
}
