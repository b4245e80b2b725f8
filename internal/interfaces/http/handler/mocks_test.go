package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	distapp "github.com/nfehub/backend/internal/application/distribution"
	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

const (
	testEmitterCNPJ  = "11222333000181"
	testReceiverCNPJ = "45678901000196"
)

// testAccessKey builds a structurally valid key whose document number
// carries the given suffix, so tests can mint distinct keys.
func testAccessKey(n int) string {
	number := strconv.Itoa(n)
	padded := "000000000"[:9-len(number)] + number
	prefix := "35" + "2601" + testEmitterCNPJ + "55" + "001" + padded + "1" + "00000001"
	return prefix + strconv.Itoa(fiscal.ComputeCheckDigit(prefix))
}

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

// MockPendingNfeRepository is a mock implementation of distribution.PendingNfeRepository
type MockPendingNfeRepository struct {
	mock.Mock
}

func (m *MockPendingNfeRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*distribution.PendingNfe, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distribution.PendingNfe), args.Error(1)
}

func (m *MockPendingNfeRepository) FindByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) (*distribution.PendingNfe, error) {
	args := m.Called(ctx, tenantID, accessKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distribution.PendingNfe), args.Error(1)
}

func (m *MockPendingNfeRepository) FindByAccessKeyForUpdate(ctx context.Context, tenantID uuid.UUID, accessKey string) (*distribution.PendingNfe, error) {
	args := m.Called(ctx, tenantID, accessKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distribution.PendingNfe), args.Error(1)
}

func (m *MockPendingNfeRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status distribution.ManifestationStatus, page, pageSize int) ([]distribution.PendingNfe, int64, error) {
	args := m.Called(ctx, tenantID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]distribution.PendingNfe), args.Get(1).(int64), args.Error(2)
}

func (m *MockPendingNfeRepository) Save(ctx context.Context, p *distribution.PendingNfe) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPendingNfeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockManifestationEventRepository is a mock implementation of distribution.ManifestationEventRepository
type MockManifestationEventRepository struct {
	mock.Mock
}

func (m *MockManifestationEventRepository) Append(ctx context.Context, event *distribution.ManifestationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockManifestationEventRepository) ListByAccessKey(ctx context.Context, tenantID uuid.UUID, accessKey string) ([]distribution.ManifestationEvent, error) {
	args := m.Called(ctx, tenantID, accessKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]distribution.ManifestationEvent), args.Error(1)
}

// MockSefazGateway is a mock implementation of distribution.SefazGateway
type MockSefazGateway struct {
	mock.Mock
}

func (m *MockSefazGateway) QueryDistribution(ctx context.Context, receiverCNPJ string, lastNSU int64) (*distribution.DistributionBatch, error) {
	args := m.Called(ctx, receiverCNPJ, lastNSU)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distribution.DistributionBatch), args.Error(1)
}

func (m *MockSefazGateway) SubmitManifestation(ctx context.Context, receiverCNPJ, accessKey string, eventType distribution.ManifestationEventType, justification string) (*distribution.ManifestationReceipt, error) {
	args := m.Called(ctx, receiverCNPJ, accessKey, eventType, justification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*distribution.ManifestationReceipt), args.Error(1)
}

// MockCursorRepository is a mock implementation of distribution.CursorRepository
type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) Current(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCursorRepository) Advance(ctx context.Context, tenantID uuid.UUID, expected, next int64) error {
	args := m.Called(ctx, tenantID, expected, next)
	return args.Error(0)
}

// MockLocker is a mock implementation of distribution.DistributedLocker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (distapp.ReleaseFunc, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(distapp.ReleaseFunc), args.Error(1)
}

func noopRelease(ctx context.Context) error { return nil }
