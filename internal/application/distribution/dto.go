package distribution

import (
	"time"

	"github.com/google/uuid"

	"github.com/nfehub/backend/internal/domain/distribution"
)

// ManifestRequest submits one manifestation event for an access key
type ManifestRequest struct {
	EventType     string `json:"event_type" binding:"required,oneof=CIENCIA CONFIRMACAO DESCONHECIMENTO NAO_REALIZADA"`
	Justification string `json:"justification" binding:"max=500"`
}

// PendingListFilter represents filter criteria for listing pending documents
type PendingListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CIENCIA CONFIRMADA DESCONHECIDA NAO_REALIZADA"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// PendingNfeResponse represents a feed-discovered document in API responses
type PendingNfeResponse struct {
	ID           uuid.UUID `json:"id"`
	AccessKey    string    `json:"access_key"`
	NSU          int64     `json:"nsu"`
	Status       string    `json:"status"`
	SupplierCNPJ string    `json:"supplier_cnpj,omitempty"`
	SupplierName string    `json:"supplier_name,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
	DaysPending  int       `json:"days_pending"`
}

// ManifestationEventResponse represents one acknowledgement log entry
type ManifestationEventResponse struct {
	ID             uuid.UUID `json:"id"`
	AccessKey      string    `json:"access_key"`
	Type           string    `json:"type"`
	Justification  string    `json:"justification,omitempty"`
	ProtocolNumber string    `json:"protocol_number"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// ManifestResponse combines the updated pending document with the accepted
// event
type ManifestResponse struct {
	Pending PendingNfeResponse         `json:"pending"`
	Event   ManifestationEventResponse `json:"event"`
}

// PollRequest optionally overrides the stored cursor for one poll run
type PollRequest struct {
	NSU *int64 `json:"nsu" binding:"omitempty,gte=0"`
}

// PollResult summarizes one distribution poll run and carries the documents
// it discovered
type PollResult struct {
	Discovered int                  `json:"discovered"`
	Refreshed  int                  `json:"refreshed"`
	StartNSU   int64                `json:"start_nsu"`
	LastNSU    int64                `json:"last_nsu"`
	MaxNSU     int64                `json:"max_nsu"`
	Documents  []PendingNfeResponse `json:"documents"`
}

// ToPendingNfeResponse converts a domain PendingNfe to its response shape
func ToPendingNfeResponse(p *distribution.PendingNfe, now time.Time) PendingNfeResponse {
	return PendingNfeResponse{
		ID:           p.ID,
		AccessKey:    p.AccessKey,
		NSU:          p.NSU,
		Status:       p.Status.String(),
		SupplierCNPJ: p.SupplierCNPJ,
		SupplierName: p.SupplierName,
		DiscoveredAt: p.DiscoveredAt,
		DaysPending:  p.DaysSinceDiscovery(now),
	}
}

// ToManifestationEventResponse converts a domain event to its response shape
func ToManifestationEventResponse(e *distribution.ManifestationEvent) ManifestationEventResponse {
	return ManifestationEventResponse{
		ID:             e.ID,
		AccessKey:      e.AccessKey,
		Type:           e.Type.String(),
		Justification:  e.Justification,
		ProtocolNumber: e.ProtocolNumber,
		SubmittedAt:    e.SubmittedAt,
	}
}
