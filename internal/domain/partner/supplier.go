package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfehub/backend/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents an emitter of fiscal documents addressed to the tenant.
// CNPJ is the natural key used by reconciliation; one supplier per CNPJ per
// tenant.
type Supplier struct {
	shared.TenantAggregateRoot
	CNPJ              string         `gorm:"type:char(14);not null;uniqueIndex:idx_supplier_tenant_cnpj,priority:2"`
	Name              string         `gorm:"type:varchar(200);not null"`
	TradeName         string         `gorm:"type:varchar(200)"`
	StateRegistration string         `gorm:"type:varchar(20)"`
	Email             string         `gorm:"type:varchar(200);index"`
	Phone             string         `gorm:"type:varchar(50)"`
	Status            SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes             string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(tenantID uuid.UUID, cnpj, name string) (*Supplier, error) {
	normalized, err := NormalizeAndValidateCNPJ(cnpj)
	if err != nil {
		return nil, err
	}
	if err := validateSupplierName(name); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CNPJ:                normalized,
		Name:                name,
		Status:              SupplierStatusActive,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// Update updates the supplier's basic information
func (s *Supplier) Update(name, tradeName string) error {
	if err := validateSupplierName(name); err != nil {
		return err
	}
	if tradeName != "" && len(tradeName) > 200 {
		return shared.NewDomainError("INVALID_TRADE_NAME", "Trade name cannot exceed 200 characters")
	}

	s.Name = name
	s.TradeName = tradeName
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetContact sets the supplier's contact information
func (s *Supplier) SetContact(email, phone string) error {
	if email != "" && (len(email) > 200 || !strings.Contains(email, "@")) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	s.Email = strings.ToLower(email)
	s.Phone = phone
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetStateRegistration sets the supplier's state registration number
func (s *Supplier) SetStateRegistration(ie string) error {
	if len(ie) > 20 {
		return shared.NewDomainError("INVALID_STATE_REGISTRATION", "State registration cannot exceed 20 characters")
	}
	s.StateRegistration = ie
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetNotes sets the supplier's notes
func (s *Supplier) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Activate activates the supplier
func (s *Supplier) Activate() error {
	if s.Status == SupplierStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Supplier is already active")
	}
	s.Status = SupplierStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}
	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// NormalizeCNPJ strips everything but digits from a CNPJ
func NormalizeCNPJ(cnpj string) string {
	var b strings.Builder
	for _, r := range cnpj {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAndValidateCNPJ strips formatting and validates the CNPJ check
// digits. Returns the 14-digit normalized form.
func NormalizeAndValidateCNPJ(cnpj string) (string, error) {
	digits := NormalizeCNPJ(cnpj)
	if len(digits) != 14 {
		return "", shared.NewDomainError("INVALID_CNPJ", "CNPJ must have 14 digits")
	}

	allSame := true
	for i := 1; i < 14; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return "", shared.NewDomainError("INVALID_CNPJ", "CNPJ check digits do not match")
	}

	if cnpjCheckDigit(digits, 12) != int(digits[12]-'0') ||
		cnpjCheckDigit(digits, 13) != int(digits[13]-'0') {
		return "", shared.NewDomainError("INVALID_CNPJ", "CNPJ check digits do not match")
	}

	return digits, nil
}

// cnpjCheckDigit computes the mod-11 check digit over the first n digits,
// weights cycling 2..9 from the rightmost position.
func cnpjCheckDigit(digits string, n int) int {
	weight := 2
	sum := 0
	for i := n - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}
