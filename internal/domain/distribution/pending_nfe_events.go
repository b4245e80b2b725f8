package distribution

import (
	"github.com/nfehub/backend/internal/domain/shared"
)

// Event types for the distribution context
const (
	EventTypePendingNfeDiscovered  = "distribution.pending_nfe.discovered"
	EventTypeManifestationApplied  = "distribution.manifestation.applied"
	EventTypeDistributionPollEnded = "distribution.poll.completed"
)

// PendingNfeDiscoveredEvent is emitted when the feed surfaces a new document
type PendingNfeDiscoveredEvent struct {
	shared.BaseDomainEvent
	AccessKey    string `json:"access_key"`
	NSU          int64  `json:"nsu"`
	SupplierCNPJ string `json:"supplier_cnpj"`
}

// NewPendingNfeDiscoveredEvent creates a new PendingNfeDiscoveredEvent
func NewPendingNfeDiscoveredEvent(p *PendingNfe) *PendingNfeDiscoveredEvent {
	return &PendingNfeDiscoveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePendingNfeDiscovered, p.ID, "PendingNfe", p.TenantID),
		AccessKey:       p.AccessKey,
		NSU:             p.NSU,
		SupplierCNPJ:    p.SupplierCNPJ,
	}
}

// ManifestationAppliedEvent is emitted when a manifestation advances the status
type ManifestationAppliedEvent struct {
	shared.BaseDomainEvent
	AccessKey string              `json:"access_key"`
	OldStatus ManifestationStatus `json:"old_status"`
	NewStatus ManifestationStatus `json:"new_status"`
}

// NewManifestationAppliedEvent creates a new ManifestationAppliedEvent
func NewManifestationAppliedEvent(p *PendingNfe, oldStatus, newStatus ManifestationStatus) *ManifestationAppliedEvent {
	return &ManifestationAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManifestationApplied, p.ID, "PendingNfe", p.TenantID),
		AccessKey:       p.AccessKey,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
