package fiscal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nfehub/backend/internal/domain/fiscal"
)

// ImportDocumentRequest represents a request to import an NFe XML
type ImportDocumentRequest struct {
	XMLContent string `json:"xml_content" binding:"required"`
}

// DocumentListFilter represents filter criteria for listing documents
type DocumentListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING PROCESSED REJECTED CANCELLED"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	IssuedFrom *time.Time `form:"issued_from" time_format:"2006-01-02"`
	IssuedTo   *time.Time `form:"issued_to" time_format:"2006-01-02"`
	Search     string     `form:"search"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// RejectDocumentRequest carries the mandatory rejection reason
type RejectDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CancelDocumentRequest carries the mandatory cancellation reason
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// LinkItemRequest links an invoice item to an internal material
type LinkItemRequest struct {
	MaterialID uuid.UUID `json:"material_id" binding:"required"`
}

// LinkSupplierRequest links a document to an internal supplier
type LinkSupplierRequest struct {
	SupplierID uuid.UUID `json:"supplier_id" binding:"required"`
}

// InvoiceItemResponse represents a line item in API responses
type InvoiceItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	LineNumber       int             `json:"line_number"`
	ProductCode      string          `json:"product_code"`
	Description      string          `json:"description"`
	NCM              string          `json:"ncm,omitempty"`
	Barcode          string          `json:"barcode,omitempty"`
	Unit             string          `json:"unit,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitValue        decimal.Decimal `json:"unit_value"`
	TotalValue       decimal.Decimal `json:"total_value"`
	LinkedMaterialID *uuid.UUID      `json:"linked_material_id,omitempty"`
}

// DocumentResponse represents a fiscal document in API responses
type DocumentResponse struct {
	ID                 uuid.UUID             `json:"id"`
	AccessKey          string                `json:"access_key"`
	DocumentNumber     string                `json:"document_number"`
	Series             string                `json:"series"`
	IssueDate          time.Time             `json:"issue_date"`
	SupplierCNPJ       string                `json:"supplier_cnpj"`
	SupplierName       string                `json:"supplier_name"`
	SupplierID         *uuid.UUID            `json:"supplier_id,omitempty"`
	TotalValue         decimal.Decimal       `json:"total_value"`
	Status             string                `json:"status"`
	RejectionReason    string                `json:"rejection_reason,omitempty"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	Items              []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// DocumentListResponse is the trimmed shape used in list endpoints
type DocumentListResponse struct {
	ID             uuid.UUID       `json:"id"`
	AccessKey      string          `json:"access_key"`
	DocumentNumber string          `json:"document_number"`
	Series         string          `json:"series"`
	IssueDate      time.Time       `json:"issue_date"`
	SupplierCNPJ   string          `json:"supplier_cnpj"`
	SupplierName   string          `json:"supplier_name"`
	SupplierID     *uuid.UUID      `json:"supplier_id,omitempty"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Status         string          `json:"status"`
	ItemCount      int             `json:"item_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ImportResponse combines the stored document with its reconciliation report
type ImportResponse struct {
	Document       DocumentResponse             `json:"document"`
	Reconciliation fiscal.ReconciliationReport `json:"reconciliation"`
}

// CountersResponse mirrors the dashboard counters
type CountersResponse struct {
	PendingCount        int64           `json:"pending_count"`
	ProcessedThisMonth  int64           `json:"processed_this_month"`
	RejectedCount       int64           `json:"rejected_count"`
	TotalValueThisMonth decimal.Decimal `json:"total_value_this_month"`
}

// ToInvoiceItemResponse converts a domain item to its response shape
func ToInvoiceItemResponse(item *fiscal.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:               item.ID,
		LineNumber:       item.LineNumber,
		ProductCode:      item.ProductCode,
		Description:      item.Description,
		NCM:              item.NCM,
		Barcode:          item.Barcode,
		Unit:             item.Unit,
		Quantity:         item.Quantity,
		UnitValue:        item.UnitValue,
		TotalValue:       item.TotalValue,
		LinkedMaterialID: item.LinkedMaterialID,
	}
}

// ToDocumentResponse converts a domain document to its response shape
func ToDocumentResponse(doc *fiscal.FiscalDocument) DocumentResponse {
	items := make([]InvoiceItemResponse, 0, len(doc.Items))
	for i := range doc.Items {
		items = append(items, ToInvoiceItemResponse(&doc.Items[i]))
	}
	return DocumentResponse{
		ID:                 doc.ID,
		AccessKey:          doc.AccessKey,
		DocumentNumber:     doc.DocumentNumber,
		Series:             doc.Series,
		IssueDate:          doc.IssueDate,
		SupplierCNPJ:       doc.SupplierCNPJ,
		SupplierName:       doc.SupplierName,
		SupplierID:         doc.SupplierID,
		TotalValue:         doc.TotalValue,
		Status:             doc.Status.String(),
		RejectionReason:    doc.RejectionReason,
		CancellationReason: doc.CancellationReason,
		Items:              items,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

// ToDocumentListResponse converts a domain document to its list shape
func ToDocumentListResponse(doc *fiscal.FiscalDocument) DocumentListResponse {
	return DocumentListResponse{
		ID:             doc.ID,
		AccessKey:      doc.AccessKey,
		DocumentNumber: doc.DocumentNumber,
		Series:         doc.Series,
		IssueDate:      doc.IssueDate,
		SupplierCNPJ:   doc.SupplierCNPJ,
		SupplierName:   doc.SupplierName,
		SupplierID:     doc.SupplierID,
		TotalValue:     doc.TotalValue,
		Status:         doc.Status.String(),
		ItemCount:      len(doc.Items),
		CreatedAt:      doc.CreatedAt,
	}
}

// ToCountersResponse converts domain counters to the response shape
func ToCountersResponse(counters *fiscal.DocumentCounters) CountersResponse {
	return CountersResponse{
		PendingCount:        counters.PendingCount,
		ProcessedThisMonth:  counters.ProcessedThisMonth,
		RejectedCount:       counters.RejectedCount,
		TotalValueThisMonth: counters.TotalValueThisMonth,
	}
}
