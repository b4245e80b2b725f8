package distribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/shared"
)

func newPollTestService(pendingRepo *MockPendingNfeRepository, cursorRepo *MockCursorRepository, gateway *MockSefazGateway, locker DistributedLocker) *PollService {
	return NewPollService(pendingRepo, cursorRepo, gateway, locker, testReceiverCNPJ, time.Minute, nil, nil)
}

func TestPollService_Poll(t *testing.T) {
	tenantID := uuid.New()

	t.Run("discovers documents and advances the cursor", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(0), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(0)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 1, AccessKey: testAccessKey(1), SupplierName: "Distribuidora Alfa Ltda", RawXML: "<resNFe/>", Schema: "resNFe"},
				{NSU: 2, AccessKey: testAccessKey(2), RawXML: "<resNFe/>", Schema: "resNFe"},
			},
			MaxNSU:  2,
			LastNSU: 2,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(1)).Return(nil, shared.ErrNotFound)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(2)).Return(nil, shared.ErrNotFound)
		pendingRepo.On("Save", mock.Anything, mock.AnythingOfType("*distribution.PendingNfe")).Return(nil).Twice()
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(0), int64(2)).Return(nil)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Discovered)
		assert.Equal(t, 0, result.Refreshed)
		assert.Equal(t, int64(0), result.StartNSU)
		assert.Equal(t, int64(2), result.LastNSU)
		cursorRepo.AssertExpectations(t)
		pendingRepo.AssertExpectations(t)
	})

	t.Run("redelivery with higher nsu refreshes the record", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		existing := createTestPending(t, tenantID, testAccessKey(1)) // NSU 100

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(100), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(100)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 150, AccessKey: testAccessKey(1), RawXML: "<procNFe/>", Schema: "procNFe"},
			},
			MaxNSU:  150,
			LastNSU: 150,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(1)).Return(existing, nil)
		pendingRepo.On("Save", mock.Anything, existing).Return(nil)
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(100), int64(150)).Return(nil)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Discovered)
		assert.Equal(t, 1, result.Refreshed)
		assert.Equal(t, int64(150), existing.NSU)
		assert.Equal(t, "<procNFe/>", existing.RawXML)
	})

	t.Run("stale redelivery is a no-op", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		existing := createTestPending(t, tenantID, testAccessKey(1)) // NSU 100

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(40), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(40)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 50, AccessKey: testAccessKey(1), RawXML: "<resNFe/>"},
			},
			MaxNSU:  50,
			LastNSU: 50,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(1)).Return(existing, nil)
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(40), int64(50)).Return(nil)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Refreshed)
		assert.Equal(t, int64(100), existing.NSU)
		pendingRepo.AssertNotCalled(t, "Save")
	})

	t.Run("lock already held", func(t *testing.T) {
		locker := new(MockLocker)
		service := newPollTestService(new(MockPendingNfeRepository), new(MockCursorRepository), new(MockSefazGateway), locker)

		locker.On("Obtain", mock.Anything, "nfe:distribution:poll:"+tenantID.String(), time.Minute).
			Return(nil, ErrPollInProgress)

		_, err := service.Poll(context.Background(), tenantID, PollRequest{})
		assert.ErrorIs(t, err, ErrPollInProgress)
	})

	t.Run("lock released after run", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		locker := new(MockLocker)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, locker)

		released := false
		locker.On("Obtain", mock.Anything, mock.Anything, time.Minute).
			Return(ReleaseFunc(func(ctx context.Context) error { released = true; return nil }), nil)
		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(0), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(0)).
			Return(&distribution.DistributionBatch{MaxNSU: 0, LastNSU: 0}, nil)

		_, err := service.Poll(context.Background(), tenantID, PollRequest{})
		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("gateway failure surfaces without advancing the cursor", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(10), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(10)).
			Return(nil, errors.New("sefaz timeout"))

		_, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "SEFAZ_UNAVAILABLE", domainErr.Code)
		cursorRepo.AssertNotCalled(t, "Advance")
	})

	t.Run("cursor race stops the run without error", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(0), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(0)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 1, AccessKey: testAccessKey(1), RawXML: "<resNFe/>"},
			},
			MaxNSU:  1,
			LastNSU: 1,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(1)).Return(nil, shared.ErrNotFound)
		pendingRepo.On("Save", mock.Anything, mock.AnythingOfType("*distribution.PendingNfe")).Return(nil)
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(0), int64(1)).Return(shared.ErrConcurrencyConflict)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.LastNSU)
	})

	t.Run("invalid feed key is skipped", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(0), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(0)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 1, AccessKey: "garbage", RawXML: "<resNFe/>"},
			},
			MaxNSU:  1,
			LastNSU: 1,
		}, nil)
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(0), int64(1)).Return(nil)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Discovered)
		assert.Equal(t, int64(1), result.LastNSU, "a bad entry must not stall the cursor")
		pendingRepo.AssertNotCalled(t, "Save")
	})
}

func TestPollService_Poll_ResumeCursor(t *testing.T) {
	tenantID := uuid.New()

	t.Run("request nsu overrides the stored cursor", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(100), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(40)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 41, AccessKey: testAccessKey(41), RawXML: "<resNFe/>"},
			},
			MaxNSU:  60,
			LastNSU: 60,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(41)).Return(nil, shared.ErrNotFound)
		pendingRepo.On("Save", mock.Anything, mock.AnythingOfType("*distribution.PendingNfe")).Return(nil)

		resume := int64(40)
		result, err := service.Poll(context.Background(), tenantID, PollRequest{NSU: &resume})

		require.NoError(t, err)
		assert.Equal(t, int64(40), result.StartNSU)
		assert.Equal(t, int64(60), result.LastNSU)
		assert.Equal(t, 1, result.Discovered)
		// re-polling an older window must not move the stored cursor backward
		cursorRepo.AssertNotCalled(t, "Advance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("result lists the discovered documents", func(t *testing.T) {
		pendingRepo := new(MockPendingNfeRepository)
		cursorRepo := new(MockCursorRepository)
		gateway := new(MockSefazGateway)
		service := newPollTestService(pendingRepo, cursorRepo, gateway, nil)

		cursorRepo.On("Current", mock.Anything, tenantID).Return(int64(0), nil)
		gateway.On("QueryDistribution", mock.Anything, testReceiverCNPJ, int64(0)).Return(&distribution.DistributionBatch{
			Documents: []distribution.DistributionDocument{
				{NSU: 1, AccessKey: testAccessKey(1), SupplierName: "Distribuidora Alfa Ltda", RawXML: "<resNFe/>"},
			},
			MaxNSU:  1,
			LastNSU: 1,
		}, nil)
		pendingRepo.On("FindByAccessKey", mock.Anything, tenantID, testAccessKey(1)).Return(nil, shared.ErrNotFound)
		pendingRepo.On("Save", mock.Anything, mock.AnythingOfType("*distribution.PendingNfe")).Return(nil)
		cursorRepo.On("Advance", mock.Anything, tenantID, int64(0), int64(1)).Return(nil)

		result, err := service.Poll(context.Background(), tenantID, PollRequest{})

		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, testAccessKey(1), result.Documents[0].AccessKey)
		assert.Equal(t, int64(1), result.Documents[0].NSU)
		assert.Equal(t, "PENDING", result.Documents[0].Status)
	})
}
