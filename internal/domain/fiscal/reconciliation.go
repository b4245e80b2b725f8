package fiscal

import (
	"github.com/google/uuid"
)

// SupplierRef is the slice of an internal supplier the engine needs
type SupplierRef struct {
	SupplierID uuid.UUID
	CNPJ       string
}

// ItemReconciliation records the outcome for one line item
type ItemReconciliation struct {
	ItemID      uuid.UUID  `json:"item_id"`
	LineNumber  int        `json:"line_number"`
	ProductCode string     `json:"product_code"`
	MaterialID  *uuid.UUID `json:"material_id,omitempty"`
	Strategy    string     `json:"strategy,omitempty"`
	Matched     bool       `json:"matched"`
}

// ReconciliationReport summarizes one engine run over a document
type ReconciliationReport struct {
	ItemsTotal      int                  `json:"items_total"`
	ItemsLinked     int                  `json:"items_linked"`
	ItemsUnmatched  int                  `json:"items_unmatched"`
	SupplierMatched bool                 `json:"supplier_matched"`
	Items           []ItemReconciliation `json:"items"`
}

// ReconciliationEngine links invoice line items to internal materials and the
// document to an internal supplier. Unmatched items and suppliers are
// reviewable conditions, never errors; the engine does not touch the
// document's processing status.
type ReconciliationEngine struct {
	matchers []ItemMatcher
}

// ReconciliationEngineOption is a functional option for the engine
type ReconciliationEngineOption func(*ReconciliationEngine)

// WithMatchers replaces the default matcher chain
func WithMatchers(matchers ...ItemMatcher) ReconciliationEngineOption {
	return func(e *ReconciliationEngine) {
		if len(matchers) > 0 {
			e.matchers = matchers
		}
	}
}

// NewReconciliationEngine creates an engine with the default matcher chain
func NewReconciliationEngine(opts ...ReconciliationEngineOption) *ReconciliationEngine {
	e := &ReconciliationEngine{matchers: DefaultMatchers()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile runs the matcher chain over every unlinked item and links the
// supplier when the document's CNPJ resolved to an internal supplier.
// Items already linked (by a previous run or manually) are counted as linked
// and never re-evaluated, so manual links survive re-reconciliation.
func (e *ReconciliationEngine) Reconcile(doc *FiscalDocument, supplier *SupplierRef, candidates []MatchCandidate) *ReconciliationReport {
	report := &ReconciliationReport{
		ItemsTotal: len(doc.Items),
		Items:      make([]ItemReconciliation, 0, len(doc.Items)),
	}

	if supplier != nil && supplier.SupplierID != uuid.Nil {
		report.SupplierMatched = true
		if doc.SupplierID == nil {
			id := supplier.SupplierID
			doc.SupplierID = &id
		}
	}

	for i := range doc.Items {
		item := &doc.Items[i]
		outcome := ItemReconciliation{
			ItemID:      item.ID,
			LineNumber:  item.LineNumber,
			ProductCode: item.ProductCode,
		}

		if item.IsLinked() {
			outcome.Matched = true
			outcome.MaterialID = item.LinkedMaterialID
			outcome.Strategy = "already_linked"
			report.ItemsLinked++
			report.Items = append(report.Items, outcome)
			continue
		}

		if match := e.matchItem(item, candidates); match != nil {
			id := match.MaterialID
			item.LinkedMaterialID = &id
			outcome.Matched = true
			outcome.MaterialID = &id
			outcome.Strategy = match.Strategy
			report.ItemsLinked++
		} else {
			report.ItemsUnmatched++
		}
		report.Items = append(report.Items, outcome)
	}

	doc.AddDomainEvent(NewDocumentReconciledEvent(doc, report))

	return report
}

func (e *ReconciliationEngine) matchItem(item *InvoiceItem, candidates []MatchCandidate) *ItemMatch {
	for _, matcher := range e.matchers {
		if match := matcher.Match(item, candidates); match != nil {
			return match
		}
	}
	return nil
}
