package distribution

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// ManifestationEventType is the kind of acknowledgement submitted to the
// government service
type ManifestationEventType string

const (
	// EventCiencia acknowledges awareness of the document
	EventCiencia ManifestationEventType = "CIENCIA"
	// EventConfirmacao confirms the underlying commercial operation
	EventConfirmacao ManifestationEventType = "CONFIRMACAO"
	// EventDesconhecimento declares the operation unknown to the receiver
	EventDesconhecimento ManifestationEventType = "DESCONHECIMENTO"
	// EventNaoRealizada declares the operation was not carried out
	EventNaoRealizada ManifestationEventType = "NAO_REALIZADA"
)

// IsValid checks if the event type is valid
func (t ManifestationEventType) IsValid() bool {
	switch t {
	case EventCiencia, EventConfirmacao, EventDesconhecimento, EventNaoRealizada:
		return true
	}
	return false
}

// String returns the string representation
func (t ManifestationEventType) String() string {
	return string(t)
}

// RequiresJustification reports whether the event type demands a non-empty
// justification text
func (t ManifestationEventType) RequiresJustification() bool {
	return t == EventDesconhecimento || t == EventNaoRealizada
}

// ResultingStatus maps the event type to the manifestation status it produces
func (t ManifestationEventType) ResultingStatus() ManifestationStatus {
	switch t {
	case EventCiencia:
		return ManifestationStatusCiencia
	case EventConfirmacao:
		return ManifestationStatusConfirmada
	case EventDesconhecimento:
		return ManifestationStatusDesconhecida
	case EventNaoRealizada:
		return ManifestationStatusNaoRealizada
	}
	return ManifestationStatusPending
}

// ManifestationEvent is one acknowledgement accepted by the government
// service. The log is append-only: the repository interface exposes no
// update or delete operation.
type ManifestationEvent struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	AccessKey      string                 `gorm:"type:char(44);not null;index"`
	Type           ManifestationEventType `gorm:"type:varchar(20);not null"`
	Justification  string                 `gorm:"type:varchar(500)"`
	ProtocolNumber string                 `gorm:"type:varchar(30);not null"`
	SubmittedAt    time.Time              `gorm:"not null"`
	CreatedAt      time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ManifestationEvent) TableName() string {
	return "manifestation_events"
}

// NewManifestationEvent records one accepted acknowledgement
func NewManifestationEvent(tenantID uuid.UUID, key fiscal.AccessKey, eventType ManifestationEventType, justification, protocolNumber string) (*ManifestationEvent, error) {
	if key == "" {
		return nil, fiscal.ErrMalformedKey
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Unknown manifestation event type")
	}
	justification = strings.TrimSpace(justification)
	if err := ValidateJustification(eventType, justification); err != nil {
		return nil, err
	}
	if protocolNumber == "" {
		return nil, shared.NewDomainError("INVALID_PROTOCOL", "Protocol number cannot be empty")
	}

	now := time.Now()
	return &ManifestationEvent{
		ID:             uuid.New(),
		TenantID:       tenantID,
		AccessKey:      key.String(),
		Type:           eventType,
		Justification:  justification,
		ProtocolNumber: protocolNumber,
		SubmittedAt:    now,
		CreatedAt:      now,
	}, nil
}

// ValidateJustification enforces the justification rule for an event type
func ValidateJustification(eventType ManifestationEventType, justification string) error {
	if eventType.RequiresJustification() && strings.TrimSpace(justification) == "" {
		return shared.NewDomainError("JUSTIFICATION_REQUIRED",
			eventType.String()+" requires a non-empty justification")
	}
	return nil
}
