package fiscal

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentStatus represents the processing status of an imported fiscal document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusProcessed DocumentStatus = "PROCESSED"
	DocumentStatusRejected  DocumentStatus = "REJECTED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessed, DocumentStatusRejected, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case DocumentStatusPending:
		return target == DocumentStatusProcessed || target == DocumentStatusRejected
	case DocumentStatusProcessed:
		return target == DocumentStatusCancelled
	case DocumentStatusRejected, DocumentStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusRejected || s == DocumentStatusCancelled
}

// InvoiceItem represents a line item of a fiscal document
type InvoiceItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber       int             `gorm:"not null"`
	ProductCode      string          `gorm:"type:varchar(60);not null"`
	Description      string          `gorm:"type:varchar(500);not null"`
	NCM              string          `gorm:"type:varchar(8)"`
	Barcode          string          `gorm:"type:varchar(14)"` // EAN/GTIN, may be absent
	Unit             string          `gorm:"type:varchar(10)"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitValue        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LinkedMaterialID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// IsLinked returns true when the item is linked to an internal material
func (i *InvoiceItem) IsLinked() bool {
	return i.LinkedMaterialID != nil
}

// LinkMaterial links the item to an internal material
func (i *InvoiceItem) LinkMaterial(materialID uuid.UUID) error {
	if materialID == uuid.Nil {
		return shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	i.LinkedMaterialID = &materialID
	i.UpdatedAt = time.Now()
	return nil
}

// UnlinkMaterial removes the material link
func (i *InvoiceItem) UnlinkMaterial() {
	i.LinkedMaterialID = nil
	i.UpdatedAt = time.Now()
}

// FiscalDocument represents one imported NFe. It is the aggregate root of the
// ingestion pipeline: created only through import, never deleted, finalized
// through the status machine.
type FiscalDocument struct {
	shared.TenantAggregateRoot
	AccessKey          string          `gorm:"type:char(44);not null;uniqueIndex:idx_fiscal_doc_tenant_key,priority:2"`
	DocumentNumber     string          `gorm:"type:varchar(20);not null;index"`
	Series             string          `gorm:"type:varchar(5);not null"`
	IssueDate          time.Time       `gorm:"not null;index"`
	SupplierCNPJ       string          `gorm:"type:char(14);not null;index"`
	SupplierName       string          `gorm:"type:varchar(200);not null"`
	TotalValue         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status             DocumentStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SupplierID         *uuid.UUID      `gorm:"type:uuid;index"`
	RejectionReason    string          `gorm:"type:varchar(500)"`
	CancellationReason string          `gorm:"type:varchar(500)"`
	XMLStorageKey      string          `gorm:"type:varchar(300)"` // object-storage key of the archived XML
	Items              []InvoiceItem   `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (FiscalDocument) TableName() string {
	return "fiscal_documents"
}

// NewFiscalDocument creates a fiscal document in PENDING status.
// The access key must already have passed structural validation.
func NewFiscalDocument(tenantID uuid.UUID, key AccessKey, number, series string, issueDate time.Time, supplierCNPJ, supplierName string, totalValue decimal.Decimal) (*FiscalDocument, error) {
	if key == "" {
		return nil, ErrMalformedKey
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date cannot be empty")
	}
	cnpj := NormalizeCNPJ(supplierCNPJ)
	if len(cnpj) != 14 {
		return nil, shared.NewDomainError("INVALID_CNPJ", "Supplier CNPJ must have 14 digits")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if totalValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Total value cannot be negative")
	}

	doc := &FiscalDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccessKey:           key.String(),
		DocumentNumber:      number,
		Series:              series,
		IssueDate:           issueDate,
		SupplierCNPJ:        cnpj,
		SupplierName:        supplierName,
		TotalValue:          totalValue,
		Status:              DocumentStatusPending,
		Items:               make([]InvoiceItem, 0),
	}

	doc.AddDomainEvent(NewDocumentImportedEvent(doc))

	return doc, nil
}

// AddItem appends a line item to the document
func (d *FiscalDocument) AddItem(productCode, description, ncm, barcode, unit string, quantity, unitValue, totalValue decimal.Decimal) (*InvoiceItem, error) {
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Item product code cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if unitValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_VALUE", "Item unit value cannot be negative")
	}

	now := time.Now()
	item := InvoiceItem{
		ID:          uuid.New(),
		DocumentID:  d.ID,
		LineNumber:  len(d.Items) + 1,
		ProductCode: productCode,
		Description: description,
		NCM:         ncm,
		Barcode:     barcode,
		Unit:        unit,
		Quantity:    quantity,
		UnitValue:   unitValue,
		TotalValue:  totalValue,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.Items = append(d.Items, item)
	return &d.Items[len(d.Items)-1], nil
}

// ItemByID returns the line item with the given ID, or nil
func (d *FiscalDocument) ItemByID(itemID uuid.UUID) *InvoiceItem {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			return &d.Items[i]
		}
	}
	return nil
}

// LinkedItemCount returns how many items are linked to internal materials
func (d *FiscalDocument) LinkedItemCount() int {
	count := 0
	for i := range d.Items {
		if d.Items[i].IsLinked() {
			count++
		}
	}
	return count
}

// LinkSupplier links the document to an internal supplier, overriding any
// automatic match
func (d *FiscalDocument) LinkSupplier(supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	d.SupplierID = &supplierID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// MarkProcessed transitions the document to PROCESSED
func (d *FiscalDocument) MarkProcessed() error {
	if err := d.transitionTo(DocumentStatusProcessed); err != nil {
		return err
	}
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, DocumentStatusPending, DocumentStatusProcessed))
	return nil
}

// Reject transitions the document to REJECTED with a mandatory reason
func (d *FiscalDocument) Reject(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection requires a non-empty reason")
	}
	oldStatus := d.Status
	if err := d.transitionTo(DocumentStatusRejected); err != nil {
		return err
	}
	d.RejectionReason = reason
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, oldStatus, DocumentStatusRejected))
	return nil
}

// Cancel transitions the document to CANCELLED with a mandatory reason.
// Only processed documents can be cancelled; the record persists for audit.
func (d *FiscalDocument) Cancel(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Cancellation requires a non-empty reason")
	}
	oldStatus := d.Status
	if err := d.transitionTo(DocumentStatusCancelled); err != nil {
		return err
	}
	d.CancellationReason = reason
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, oldStatus, DocumentStatusCancelled))
	return nil
}

// SetXMLStorageKey records where the raw XML was archived
func (d *FiscalDocument) SetXMLStorageKey(key string) {
	d.XMLStorageKey = key
	d.UpdatedAt = time.Now()
}

func (d *FiscalDocument) transitionTo(target DocumentStatus) error {
	if !d.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition document from "+d.Status.String()+" to "+target.String())
	}
	d.Status = target
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// NormalizeCNPJ strips everything but digits from a CNPJ representation
func NormalizeCNPJ(cnpj string) string {
	var b strings.Builder
	for _, r := range cnpj {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
