package catalog

import (
	"github.com/nfehub/backend/internal/domain/shared"
)

const (
	EventTypeMaterialCreated = "catalog.material.created"
)

// MaterialCreatedEvent is emitted when a material is added to the catalog
type MaterialCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewMaterialCreatedEvent creates a new material created event
func NewMaterialCreatedEvent(material *Material) *MaterialCreatedEvent {
	return &MaterialCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeMaterialCreated,
			material.ID,
			"Material",
			material.TenantID,
		),
		Code: material.Code,
		Name: material.Name,
	}
}
