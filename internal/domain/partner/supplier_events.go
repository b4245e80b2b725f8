package partner

import (
	"github.com/nfehub/backend/internal/domain/shared"
)

const (
	EventTypeSupplierCreated = "partner.supplier.created"
)

// SupplierCreatedEvent is emitted when a supplier is registered, whether by
// hand or automatically during a document import.
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	CNPJ string `json:"cnpj"`
	Name string `json:"name"`
}

// NewSupplierCreatedEvent creates a new supplier created event
func NewSupplierCreatedEvent(supplier *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeSupplierCreated,
			supplier.ID,
			"Supplier",
			supplier.TenantID,
		),
		CNPJ: supplier.CNPJ,
		Name: supplier.Name,
	}
}
