package distribution

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/fiscal"
)

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

// MockLocker is a mock implementation of DistributedLocker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ReleaseFunc), args.Error(1)
}

const (
	testReceiverCNPJ = "45678901000196"
	testEmitterCNPJ  = "11222333000181"
)

// testAccessKey builds a structurally valid key whose document number carries
// the given suffix, so tests can mint distinct keys.
func testAccessKey(n int) string {
	number := strconv.Itoa(n)
	padded := "000000000"[:9-len(number)] + number
	prefix := "35" + "2601" + testEmitterCNPJ + "55" + "001" + padded + "1" + "00000001"
	return prefix + strconv.Itoa(fiscal.ComputeCheckDigit(prefix))
}

func noopRelease(ctx context.Context) error { return nil }
