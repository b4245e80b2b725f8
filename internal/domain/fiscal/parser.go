package fiscal

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Parse error codes
const (
	ParseErrorMalformedXML    = "MALFORMED_XML"
	ParseErrorInvalidDocument = "INVALID_DOCUMENT"
)

// FieldError describes one field-level problem found while parsing
type FieldError struct {
	Field  string `json:"field"`
	Detail string `json:"detail"`
}

// ParseError is returned when XML content cannot be turned into a document
type ParseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(code, message string, details []FieldError) *ParseError {
	return &ParseError{Code: code, Message: message, Details: details}
}

// ParsedDocument is the canonical result of parsing one NFe XML
type ParsedDocument struct {
	AccessKey    AccessKey
	Number       string
	Series       string
	IssueDate    time.Time
	SupplierCNPJ string
	SupplierName string
	TotalValue   decimal.Decimal
	Items        []ParsedItem
}

// ParsedItem is one line item extracted from the XML
type ParsedItem struct {
	ProductCode string
	Description string
	NCM         string
	Barcode     string
	Unit        string
	Quantity    decimal.Decimal
	UnitValue   decimal.Decimal
	TotalValue  decimal.Decimal
}

// XML wire shapes. The document arrives either as a bare <NFe> or wrapped in
// the distribution envelope <nfeProc>.
type xmlNfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     xmlNFe   `xml:"NFe"`
}

type xmlNFe struct {
	InfNFe xmlInfNFe `xml:"infNFe"`
}

type xmlInfNFe struct {
	ID    string   `xml:"Id,attr"`
	Ide   xmlIde   `xml:"ide"`
	Emit  xmlEmit  `xml:"emit"`
	Det   []xmlDet `xml:"det"`
	Total xmlTotal `xml:"total"`
}

type xmlIde struct {
	Model  string `xml:"mod"`
	Series string `xml:"serie"`
	Number string `xml:"nNF"`
	DhEmi  string `xml:"dhEmi"`
	DEmi   string `xml:"dEmi"` // legacy layout 2.0 date
}

type xmlEmit struct {
	CNPJ string `xml:"CNPJ"`
	Name string `xml:"xNome"`
}

type xmlDet struct {
	Prod xmlProd `xml:"prod"`
}

type xmlProd struct {
	Code        string `xml:"cProd"`
	Barcode     string `xml:"cEAN"`
	Description string `xml:"xProd"`
	NCM         string `xml:"NCM"`
	Unit        string `xml:"uCom"`
	Quantity    string `xml:"qCom"`
	UnitValue   string `xml:"vUnCom"`
	TotalValue  string `xml:"vProd"`
}

type xmlTotal struct {
	ICMSTot xmlICMSTot `xml:"ICMSTot"`
}

type xmlICMSTot struct {
	TotalValue string `xml:"vNF"`
}

// ParseDocument parses raw NFe XML into a canonical ParsedDocument. It is a
// pure transformation; persistence and deduplication happen elsewhere.
func ParseDocument(xmlContent string) (*ParsedDocument, *ParseError) {
	inf, perr := decodeInfNFe(xmlContent)
	if perr != nil {
		return nil, perr
	}

	var details []FieldError

	rawKey := strings.TrimPrefix(strings.TrimSpace(inf.ID), "NFe")
	if rawKey == "" {
		details = append(details, FieldError{Field: "infNFe.Id", Detail: "access key attribute is missing"})
	}

	number := strings.TrimSpace(inf.Ide.Number)
	if number == "" {
		details = append(details, FieldError{Field: "ide.nNF", Detail: "document number is missing"})
	}
	series := strings.TrimSpace(inf.Ide.Series)
	if series == "" {
		details = append(details, FieldError{Field: "ide.serie", Detail: "series is missing"})
	}

	issueDate, dateErr := parseIssueDate(inf.Ide)
	if dateErr != nil {
		details = append(details, *dateErr)
	}

	cnpj := NormalizeCNPJ(inf.Emit.CNPJ)
	if len(cnpj) != 14 {
		details = append(details, FieldError{Field: "emit.CNPJ", Detail: "supplier CNPJ must have 14 digits"})
	}
	supplierName := strings.TrimSpace(inf.Emit.Name)
	if supplierName == "" {
		details = append(details, FieldError{Field: "emit.xNome", Detail: "supplier name is missing"})
	}

	totalValue, ok := parseDecimalField(inf.Total.ICMSTot.TotalValue)
	if !ok {
		details = append(details, FieldError{Field: "total.ICMSTot.vNF", Detail: "total value is missing or not numeric"})
	}

	if len(inf.Det) == 0 {
		details = append(details, FieldError{Field: "det", Detail: "document has no line items"})
	}

	items := make([]ParsedItem, 0, len(inf.Det))
	for idx, det := range inf.Det {
		item, itemErrs := parseItem(idx, det.Prod)
		if len(itemErrs) > 0 {
			details = append(details, itemErrs...)
			continue
		}
		items = append(items, item)
	}

	if len(details) > 0 {
		return nil, newParseError(ParseErrorMalformedXML, "Document XML is missing or has malformed required fields", details)
	}

	key, err := NewAccessKey(rawKey)
	if err != nil {
		return nil, newParseError(ParseErrorInvalidDocument, "Access key failed validation: "+err.Error(), nil)
	}

	// The key embeds the identification block; both views must agree.
	if key.EmitterCNPJ() != cnpj {
		return nil, newParseError(ParseErrorInvalidDocument, "Access key emitter CNPJ does not match the identification block", nil)
	}
	if strings.TrimLeft(key.DocumentNumber(), "0") != strings.TrimLeft(number, "0") {
		return nil, newParseError(ParseErrorInvalidDocument, "Access key document number does not match the identification block", nil)
	}
	if strings.TrimLeft(key.Series(), "0") != strings.TrimLeft(series, "0") {
		return nil, newParseError(ParseErrorInvalidDocument, "Access key series does not match the identification block", nil)
	}

	return &ParsedDocument{
		AccessKey:    key,
		Number:       number,
		Series:       series,
		IssueDate:    issueDate,
		SupplierCNPJ: cnpj,
		SupplierName: supplierName,
		TotalValue:   totalValue,
		Items:        items,
	}, nil
}

// ToDocument turns a parsed document into a FiscalDocument aggregate
func (p *ParsedDocument) ToDocument(tenantID uuid.UUID) (*FiscalDocument, error) {
	doc, err := NewFiscalDocument(tenantID, p.AccessKey, p.Number, p.Series, p.IssueDate, p.SupplierCNPJ, p.SupplierName, p.TotalValue)
	if err != nil {
		return nil, err
	}
	for _, item := range p.Items {
		if _, err := doc.AddItem(item.ProductCode, item.Description, item.NCM, item.Barcode, item.Unit, item.Quantity, item.UnitValue, item.TotalValue); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func decodeInfNFe(xmlContent string) (*xmlInfNFe, *ParseError) {
	trimmed := strings.TrimSpace(xmlContent)
	if trimmed == "" {
		return nil, newParseError(ParseErrorMalformedXML, "XML content is empty", nil)
	}

	var proc xmlNfeProc
	if err := xml.Unmarshal([]byte(trimmed), &proc); err == nil && proc.NFe.InfNFe.ID != "" {
		return &proc.NFe.InfNFe, nil
	}

	var nfe xmlNFe
	if err := xml.Unmarshal([]byte(trimmed), &nfe); err != nil {
		return nil, newParseError(ParseErrorMalformedXML, "Content is not well-formed XML: "+err.Error(), nil)
	}
	return &nfe.InfNFe, nil
}

func parseIssueDate(ide xmlIde) (time.Time, *FieldError) {
	if raw := strings.TrimSpace(ide.DhEmi); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, &FieldError{Field: "ide.dhEmi", Detail: "issue date is not RFC3339"}
		}
		return t, nil
	}
	if raw := strings.TrimSpace(ide.DEmi); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, &FieldError{Field: "ide.dEmi", Detail: "issue date is not YYYY-MM-DD"}
		}
		return t, nil
	}
	return time.Time{}, &FieldError{Field: "ide.dhEmi", Detail: "issue date is missing"}
}

func parseItem(idx int, prod xmlProd) (ParsedItem, []FieldError) {
	var errs []FieldError
	prefix := "det[" + strconv.Itoa(idx) + "].prod."

	code := strings.TrimSpace(prod.Code)
	if code == "" {
		errs = append(errs, FieldError{Field: prefix + "cProd", Detail: "product code is missing"})
	}
	description := strings.TrimSpace(prod.Description)
	if description == "" {
		errs = append(errs, FieldError{Field: prefix + "xProd", Detail: "description is missing"})
	}

	quantity, ok := parseDecimalField(prod.Quantity)
	if !ok || quantity.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, FieldError{Field: prefix + "qCom", Detail: "quantity is missing or not a positive number"})
	}
	unitValue, ok := parseDecimalField(prod.UnitValue)
	if !ok {
		errs = append(errs, FieldError{Field: prefix + "vUnCom", Detail: "unit value is missing or not numeric"})
	}
	totalValue, ok := parseDecimalField(prod.TotalValue)
	if !ok {
		errs = append(errs, FieldError{Field: prefix + "vProd", Detail: "total value is missing or not numeric"})
	}

	if len(errs) > 0 {
		return ParsedItem{}, errs
	}

	// SEM GTIN is the canonical "no barcode" marker
	barcode := strings.TrimSpace(prod.Barcode)
	if strings.EqualFold(barcode, "SEM GTIN") {
		barcode = ""
	}

	return ParsedItem{
		ProductCode: code,
		Description: description,
		NCM:         strings.TrimSpace(prod.NCM),
		Barcode:     barcode,
		Unit:        strings.TrimSpace(prod.Unit),
		Quantity:    quantity,
		UnitValue:   unitValue,
		TotalValue:  totalValue,
	}, nil
}

func parseDecimalField(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

