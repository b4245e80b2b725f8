package event

import (
	"context"

	"go.uber.org/zap"

	fiscalapp "github.com/nfehub/backend/internal/application/fiscal"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// CountersInvalidationHandler drops the cached dashboard counters of a tenant
// whenever one of its documents changes. Imports arrive through the bus, so
// the cache stays consistent without the import path knowing about it.
type CountersInvalidationHandler struct {
	cache  fiscalapp.CountersCache
	logger *zap.Logger
}

// NewCountersInvalidationHandler creates a new CountersInvalidationHandler
func NewCountersInvalidationHandler(cache fiscalapp.CountersCache, logger *zap.Logger) *CountersInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountersInvalidationHandler{cache: cache, logger: logger}
}

// Handle invalidates the tenant's counters entry
func (h *CountersInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx, event.TenantID()); err != nil {
		h.logger.Warn("counters cache invalidation failed",
			zap.String("event_type", event.EventType()),
			zap.String("tenant_id", event.TenantID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// EventTypes returns the document events that change the counters
func (h *CountersInvalidationHandler) EventTypes() []string {
	return []string{
		fiscal.EventTypeDocumentImported,
		fiscal.EventTypeDocumentStatusChanged,
	}
}

// Ensure CountersInvalidationHandler implements EventHandler
var _ shared.EventHandler = (*CountersInvalidationHandler)(nil)
