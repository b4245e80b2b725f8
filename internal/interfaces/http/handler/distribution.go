package handler

import (
	"github.com/gin-gonic/gin"

	distapp "github.com/nfehub/backend/internal/application/distribution"
)

// DistributionHandler exposes the distribution feed and manifestation
// endpoints
type DistributionHandler struct {
	BaseHandler
	manifestationService *distapp.ManifestationService
	pollService          *distapp.PollService
}

// NewDistributionHandler creates a new DistributionHandler
func NewDistributionHandler(manifestationService *distapp.ManifestationService, pollService *distapp.PollService) *DistributionHandler {
	return &DistributionHandler{
		manifestationService: manifestationService,
		pollService:          pollService,
	}
}

// ListPending returns a page of feed-discovered documents
func (h *DistributionHandler) ListPending(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter distapp.PendingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.manifestationService.ListPending(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetPending returns one pending document by access key
func (h *DistributionHandler) GetPending(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	pending, err := h.manifestationService.GetByAccessKey(c.Request.Context(), tenantID, c.Param("accessKey"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pending)
}

// Manifest submits one manifestation event for an access key
func (h *DistributionHandler) Manifest(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req distapp.ManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.manifestationService.Manifest(c.Request.Context(), tenantID, c.Param("accessKey"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// History returns the acknowledgement log for an access key, oldest first
func (h *DistributionHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	events, err := h.manifestationService.History(c.Request.Context(), tenantID, c.Param("accessKey"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// Dismiss removes a feed-discovered document from the pending list
func (h *DistributionHandler) Dismiss(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.manifestationService.Dismiss(c.Request.Context(), tenantID, c.Param("accessKey")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Poll runs one distribution feed poll for the tenant. The body is optional;
// when it carries an nsu the poll resumes from that cursor instead of the
// stored one.
func (h *DistributionHandler) Poll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req distapp.PollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}

	result, err := h.pollService.Poll(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers all distribution routes
func (h *DistributionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dist := rg.Group("/distribution")
	{
		dist.GET("/pending", h.ListPending)
		dist.GET("/pending/:accessKey", h.GetPending)
		dist.POST("/pending/:accessKey/manifest", h.Manifest)
		dist.GET("/pending/:accessKey/events", h.History)
		dist.DELETE("/pending/:accessKey", h.Dismiss)
		dist.POST("/poll", h.Poll)
	}
}
