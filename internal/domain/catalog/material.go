package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nfehub/backend/internal/domain/shared"
)

// MaterialStatus represents the status of a material
type MaterialStatus string

const (
	MaterialStatusActive   MaterialStatus = "active"
	MaterialStatusInactive MaterialStatus = "inactive"
)

// Material represents an item of the tenant's internal catalog. Invoice
// items are linked to materials during reconciliation, by supplier code or
// barcode.
type Material struct {
	shared.TenantAggregateRoot
	Code        string          `gorm:"type:varchar(60);not null;uniqueIndex:idx_material_tenant_code,priority:2"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Barcode     string          `gorm:"type:varchar(14);index"`
	NCM         string          `gorm:"type:char(8)"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	LastCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      MaterialStatus  `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new active material
func NewMaterial(tenantID uuid.UUID, code, name, unit string) (*Material, error) {
	if err := validateMaterialCode(code); err != nil {
		return nil, err
	}
	if err := validateMaterialName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	material := &Material{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		LastCost:            decimal.Zero,
		Status:              MaterialStatusActive,
	}

	material.AddDomainEvent(NewMaterialCreatedEvent(material))

	return material, nil
}

// Update updates the material's basic information
func (m *Material) Update(name, description string) error {
	if err := validateMaterialName(name); err != nil {
		return err
	}

	m.Name = name
	m.Description = description
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// SetBarcode sets the material's barcode (GTIN). Invoice items carrying the
// same barcode match this material during reconciliation.
func (m *Material) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if barcode != "" {
		if len(barcode) < 8 || len(barcode) > 14 {
			return shared.NewDomainError("INVALID_BARCODE", "Barcode must have between 8 and 14 digits")
		}
		for _, r := range barcode {
			if r < '0' || r > '9' {
				return shared.NewDomainError("INVALID_BARCODE", "Barcode can only contain digits")
			}
		}
	}

	m.Barcode = barcode
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// SetNCM sets the material's NCM fiscal classification code
func (m *Material) SetNCM(ncm string) error {
	ncm = strings.TrimSpace(ncm)
	if ncm != "" {
		if len(ncm) != 8 {
			return shared.NewDomainError("INVALID_NCM", "NCM must have 8 digits")
		}
		for _, r := range ncm {
			if r < '0' || r > '9' {
				return shared.NewDomainError("INVALID_NCM", "NCM can only contain digits")
			}
		}
	}

	m.NCM = ncm
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// RecordCost records the unit cost observed on the latest linked invoice item
func (m *Material) RecordCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
	}

	m.LastCost = cost
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// Activate activates the material
func (m *Material) Activate() error {
	if m.Status == MaterialStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Material is already active")
	}
	m.Status = MaterialStatusActive
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// Deactivate deactivates the material
func (m *Material) Deactivate() error {
	if m.Status == MaterialStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Material is already inactive")
	}
	m.Status = MaterialStatusInactive
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// IsActive returns true if the material is active
func (m *Material) IsActive() bool {
	return m.Status == MaterialStatusActive
}

// validateMaterialCode validates the material code
func validateMaterialCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if len(code) > 60 {
		return shared.NewDomainError("INVALID_CODE", "Material code cannot exceed 60 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewDomainError("INVALID_CODE", "Material code can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}

// validateMaterialName validates the material name
func validateMaterialName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}
	return nil
}

// validateUnit validates the unit
func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
