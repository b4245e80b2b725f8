package fiscal

import (
	"github.com/nfehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the fiscal context
const (
	EventTypeDocumentImported      = "fiscal.document.imported"
	EventTypeDocumentStatusChanged = "fiscal.document.status_changed"
	EventTypeDocumentReconciled    = "fiscal.document.reconciled"
)

// DocumentImportedEvent is emitted when a document passes the import gate
type DocumentImportedEvent struct {
	shared.BaseDomainEvent
	AccessKey      string          `json:"access_key"`
	DocumentNumber string          `json:"document_number"`
	SupplierCNPJ   string          `json:"supplier_cnpj"`
	TotalValue     decimal.Decimal `json:"total_value"`
	ItemCount      int             `json:"item_count"`
}

// NewDocumentImportedEvent creates a new DocumentImportedEvent
func NewDocumentImportedEvent(doc *FiscalDocument) *DocumentImportedEvent {
	return &DocumentImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentImported, doc.ID, "FiscalDocument", doc.TenantID),
		AccessKey:       doc.AccessKey,
		DocumentNumber:  doc.DocumentNumber,
		SupplierCNPJ:    doc.SupplierCNPJ,
		TotalValue:      doc.TotalValue,
		ItemCount:       len(doc.Items),
	}
}

// DocumentStatusChangedEvent is emitted on every status machine transition
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	AccessKey string         `json:"access_key"`
	OldStatus DocumentStatus `json:"old_status"`
	NewStatus DocumentStatus `json:"new_status"`
	Reason    string         `json:"reason,omitempty"`
}

// NewDocumentStatusChangedEvent creates a new DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(doc *FiscalDocument, oldStatus, newStatus DocumentStatus) *DocumentStatusChangedEvent {
	reason := ""
	switch newStatus {
	case DocumentStatusRejected:
		reason = doc.RejectionReason
	case DocumentStatusCancelled:
		reason = doc.CancellationReason
	}
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentStatusChanged, doc.ID, "FiscalDocument", doc.TenantID),
		AccessKey:       doc.AccessKey,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		Reason:          reason,
	}
}

// DocumentReconciledEvent is emitted after the reconciliation engine runs
type DocumentReconciledEvent struct {
	shared.BaseDomainEvent
	AccessKey       string `json:"access_key"`
	ItemsTotal      int    `json:"items_total"`
	ItemsLinked     int    `json:"items_linked"`
	ItemsUnmatched  int    `json:"items_unmatched"`
	SupplierMatched bool   `json:"supplier_matched"`
}

// NewDocumentReconciledEvent creates a new DocumentReconciledEvent
func NewDocumentReconciledEvent(doc *FiscalDocument, report *ReconciliationReport) *DocumentReconciledEvent {
	return &DocumentReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentReconciled, doc.ID, "FiscalDocument", doc.TenantID),
		AccessKey:       doc.AccessKey,
		ItemsTotal:      report.ItemsTotal,
		ItemsLinked:     report.ItemsLinked,
		ItemsUnmatched:  report.ItemsUnmatched,
		SupplierMatched: report.SupplierMatched,
	}
}
