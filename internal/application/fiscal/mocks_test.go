package fiscal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// MockDocumentRepository is a mock implementation of fiscal.FiscalDocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.FiscalDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.FiscalDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fiscal.FiscalDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.FiscalDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*fiscal.FiscalDocument, error) {
	args := m.Called(ctx, tenantID, accessKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.FiscalDocument), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *fiscal.FiscalDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *fiscal.FiscalDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) List(ctx context.Context, tenantID uuid.UUID, filter fiscal.DocumentFilter) ([]fiscal.FiscalDocument, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]fiscal.FiscalDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) Counters(ctx context.Context, tenantID uuid.UUID, now time.Time) (*fiscal.DocumentCounters, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.DocumentCounters), args.Error(1)
}

func (m *MockDocumentRepository) FindItemByID(ctx context.Context, tenantID, itemID uuid.UUID) (*fiscal.InvoiceItem, error) {
	args := m.Called(ctx, tenantID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.InvoiceItem), args.Error(1)
}

func (m *MockDocumentRepository) SaveItem(ctx context.Context, item *fiscal.InvoiceItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (*partner.Supplier, error) {
	args := m.Called(ctx, tenantID, cnpj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCNPJ(ctx context.Context, tenantID uuid.UUID, cnpj string) (bool, error) {
	args := m.Called(ctx, tenantID, cnpj)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) List(ctx context.Context, tenantID uuid.UUID, filter partner.SupplierFilter) (*shared.Paginated[*partner.Supplier], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*partner.Supplier]), args.Error(1)
}

// MockMaterialRepository is a mock implementation of catalog.MaterialRepository
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Material, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *catalog.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) List(ctx context.Context, tenantID uuid.UUID, filter catalog.MaterialFilter) (*shared.Paginated[*catalog.Material], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*catalog.Material]), args.Error(1)
}

func (m *MockMaterialRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*catalog.Material, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Material), args.Error(1)
}

// MockXMLArchiver is a mock implementation of XMLArchiver
type MockXMLArchiver struct {
	mock.Mock
}

func (m *MockXMLArchiver) Archive(ctx context.Context, tenantID uuid.UUID, accessKey string, xmlContent []byte) (string, error) {
	args := m.Called(ctx, tenantID, accessKey, xmlContent)
	return args.String(0), args.Error(1)
}

// MockCountersCache is a mock implementation of CountersCache
type MockCountersCache struct {
	mock.Mock
}

func (m *MockCountersCache) Get(ctx context.Context, tenantID uuid.UUID) (*fiscal.DocumentCounters, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fiscal.DocumentCounters), args.Error(1)
}

func (m *MockCountersCache) Set(ctx context.Context, tenantID uuid.UUID, counters *fiscal.DocumentCounters) error {
	args := m.Called(ctx, tenantID, counters)
	return args.Error(0)
}

func (m *MockCountersCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
