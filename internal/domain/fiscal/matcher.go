package fiscal

import (
	"strings"

	"github.com/google/uuid"
)

// MatchCandidate is the slice of an internal material the matchers need.
// The application layer maps catalog materials into candidates so this
// package stays free of a catalog dependency.
type MatchCandidate struct {
	MaterialID uuid.UUID
	Code       string
	Barcode    string
}

// ItemMatch is a successful link between an invoice item and a material
type ItemMatch struct {
	MaterialID uuid.UUID
	Strategy   string
}

// ItemMatcher attempts to link one invoice item to an internal material.
// Matchers are pure: same item and candidates always yield the same result.
// A nil result means this strategy found nothing and the next one runs.
type ItemMatcher interface {
	// Name identifies the strategy in reconciliation reports
	Name() string
	// Match returns a match or nil
	Match(item *InvoiceItem, candidates []MatchCandidate) *ItemMatch
}

// CodeMatcher links items whose product code equals an internal material code.
// Highest-confidence strategy; comparison ignores case and surrounding space.
type CodeMatcher struct{}

// NewCodeMatcher creates a new CodeMatcher
func NewCodeMatcher() *CodeMatcher {
	return &CodeMatcher{}
}

// Name returns the strategy name
func (m *CodeMatcher) Name() string {
	return "exact_code"
}

// Match returns the candidate with the same code as the item, or nil
func (m *CodeMatcher) Match(item *InvoiceItem, candidates []MatchCandidate) *ItemMatch {
	code := normalizeMatchKey(item.ProductCode)
	if code == "" {
		return nil
	}
	for _, c := range candidates {
		if normalizeMatchKey(c.Code) == code {
			return &ItemMatch{MaterialID: c.MaterialID, Strategy: m.Name()}
		}
	}
	return nil
}

// BarcodeMatcher links items by EAN/GTIN when both sides carry one
type BarcodeMatcher struct{}

// NewBarcodeMatcher creates a new BarcodeMatcher
func NewBarcodeMatcher() *BarcodeMatcher {
	return &BarcodeMatcher{}
}

// Name returns the strategy name
func (m *BarcodeMatcher) Name() string {
	return "barcode"
}

// Match returns the candidate with the same barcode as the item, or nil.
// Items or candidates without a barcode never match.
func (m *BarcodeMatcher) Match(item *InvoiceItem, candidates []MatchCandidate) *ItemMatch {
	barcode := strings.TrimSpace(item.Barcode)
	if barcode == "" {
		return nil
	}
	for _, c := range candidates {
		if c.Barcode != "" && c.Barcode == barcode {
			return &ItemMatch{MaterialID: c.MaterialID, Strategy: m.Name()}
		}
	}
	return nil
}

// DefaultMatchers returns the matcher chain in priority order. Description
// similarity is deliberately absent: ambiguous matches are left to manual
// linking rather than guessed.
func DefaultMatchers() []ItemMatcher {
	return []ItemMatcher{
		NewCodeMatcher(),
		NewBarcodeMatcher(),
	}
}

func normalizeMatchKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
