package distribution

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// ManifestationStatus is the receiver-acknowledgement status of a document
// known from the distribution feed. It is independent of the document's
// processing status: the two machines share only the access key.
type ManifestationStatus string

const (
	ManifestationStatusPending      ManifestationStatus = "PENDING"
	ManifestationStatusCiencia      ManifestationStatus = "CIENCIA"
	ManifestationStatusConfirmada   ManifestationStatus = "CONFIRMADA"
	ManifestationStatusDesconhecida ManifestationStatus = "DESCONHECIDA"
	ManifestationStatusNaoRealizada ManifestationStatus = "NAO_REALIZADA"
)

// IsValid checks if the status is a valid ManifestationStatus
func (s ManifestationStatus) IsValid() bool {
	switch s {
	case ManifestationStatusPending, ManifestationStatusCiencia, ManifestationStatusConfirmada,
		ManifestationStatusDesconhecida, ManifestationStatusNaoRealizada:
		return true
	}
	return false
}

// String returns the string representation of ManifestationStatus
func (s ManifestationStatus) String() string {
	return string(s)
}

// IsTerminal returns true once a final acknowledgement was submitted
func (s ManifestationStatus) IsTerminal() bool {
	switch s {
	case ManifestationStatusConfirmada, ManifestationStatusDesconhecida, ManifestationStatusNaoRealizada:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// The receiver may acknowledge awareness first (CIENCIA) or go straight to a
// terminal manifestation.
func (s ManifestationStatus) CanTransitionTo(target ManifestationStatus) bool {
	switch s {
	case ManifestationStatusPending:
		return target == ManifestationStatusCiencia || target.IsTerminal()
	case ManifestationStatusCiencia:
		return target.IsTerminal()
	}
	return false
}

// PendingNfe is a document discovered through the government distribution
// feed, tracked before (and independently of) local import.
type PendingNfe struct {
	shared.TenantAggregateRoot
	AccessKey    string              `gorm:"type:char(44);not null;uniqueIndex:idx_pending_nfe_tenant_key,priority:2"`
	NSU          int64               `gorm:"not null;index"` // feed sequence number, resume cursor
	Status       ManifestationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SupplierCNPJ string              `gorm:"type:char(14);index"`
	SupplierName string              `gorm:"type:varchar(200)"`
	RawXML       string              `gorm:"type:text"`
	DiscoveredAt time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PendingNfe) TableName() string {
	return "pending_nfes"
}

// NewPendingNfe records a document discovered by the distribution feed
func NewPendingNfe(tenantID uuid.UUID, key fiscal.AccessKey, nsu int64, rawXML string) (*PendingNfe, error) {
	if key == "" {
		return nil, fiscal.ErrMalformedKey
	}
	if nsu <= 0 {
		return nil, shared.NewDomainError("INVALID_NSU", "NSU must be positive")
	}

	p := &PendingNfe{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccessKey:           key.String(),
		NSU:                 nsu,
		Status:              ManifestationStatusPending,
		SupplierCNPJ:        key.EmitterCNPJ(),
		RawXML:              rawXML,
		DiscoveredAt:        time.Now(),
	}
	p.AddDomainEvent(NewPendingNfeDiscoveredEvent(p))
	return p, nil
}

// Refresh updates the payload when the feed redelivers the same access key.
// Only a strictly greater NSU wins; stale redeliveries are a no-op.
// Returns true when the record changed.
func (p *PendingNfe) Refresh(nsu int64, rawXML string) bool {
	if nsu <= p.NSU {
		return false
	}
	p.NSU = nsu
	if rawXML != "" {
		p.RawXML = rawXML
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return true
}

// SetSupplierName records the emitter name extracted from the feed summary
func (p *PendingNfe) SetSupplierName(name string) {
	p.SupplierName = strings.TrimSpace(name)
	p.UpdatedAt = time.Now()
}

// ApplyManifestation advances the manifestation machine after the government
// service accepted an event submission. The caller persists the matching
// ManifestationEvent in the same transaction.
func (p *PendingNfe) ApplyManifestation(eventType ManifestationEventType) error {
	target := eventType.ResultingStatus()
	if p.Status.IsTerminal() {
		return shared.NewDomainError("ALREADY_TERMINAL",
			"Manifestation for this document already reached terminal state "+p.Status.String())
	}
	if !p.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition manifestation from "+p.Status.String()+" to "+target.String())
	}
	oldStatus := p.Status
	p.Status = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewManifestationAppliedEvent(p, oldStatus, target))
	return nil
}

// DaysSinceDiscovery reports how long the document has been awaiting
// manifestation, for surfacing the regulatory window to operators
func (p *PendingNfe) DaysSinceDiscovery(now time.Time) int {
	return int(now.Sub(p.DiscoveredAt).Hours() / 24)
}
