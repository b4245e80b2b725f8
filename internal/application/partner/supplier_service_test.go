package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

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

const testCNPJ = "11222333000181"

func TestSupplierService_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates supplier with normalized cnpj", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo, nil)

		repo.On("ExistsByCNPJ", mock.Anything, tenantID, testCNPJ).Return(false, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*partner.Supplier")).Return(nil)

		resp, err := service.Create(context.Background(), tenantID, CreateSupplierRequest{
			CNPJ:      "11.222.333/0001-81",
			Name:      "Distribuidora Alfa Ltda",
			TradeName: "Alfa",
			Email:     "fiscal@alfa.com.br",
		})

		require.NoError(t, err)
		assert.Equal(t, testCNPJ, resp.CNPJ)
		assert.Equal(t, "Alfa", resp.TradeName)
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate cnpj", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo, nil)

		repo.On("ExistsByCNPJ", mock.Anything, tenantID, testCNPJ).Return(true, nil)

		_, err := service.Create(context.Background(), tenantID, CreateSupplierRequest{
			CNPJ: testCNPJ,
			Name: "Distribuidora Alfa Ltda",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects invalid cnpj before hitting repository", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		service := NewSupplierService(repo, nil)

		_, err := service.Create(context.Background(), tenantID, CreateSupplierRequest{
			CNPJ: "11222333000100",
			Name: "Distribuidora Alfa Ltda",
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "ExistsByCNPJ")
	})
}

func TestSupplierService_Update(t *testing.T) {
	tenantID := uuid.New()
	supplier, err := partner.NewSupplier(tenantID, testCNPJ, "Distribuidora Alfa Ltda")
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	repo.On("FindByID", mock.Anything, tenantID, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, supplier).Return(nil)

	newName := "Distribuidora Alfa SA"
	notes := "prazo de entrega 5 dias"
	resp, err := service.Update(context.Background(), tenantID, supplier.ID, UpdateSupplierRequest{
		Name:  &newName,
		Notes: &notes,
	})

	require.NoError(t, err)
	assert.Equal(t, newName, resp.Name)
	assert.Equal(t, notes, resp.Notes)
	repo.AssertExpectations(t)
}

func TestSupplierService_Deactivate(t *testing.T) {
	tenantID := uuid.New()
	supplier, err := partner.NewSupplier(tenantID, testCNPJ, "Distribuidora Alfa Ltda")
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	repo.On("FindByID", mock.Anything, tenantID, supplier.ID).Return(supplier, nil)
	repo.On("Save", mock.Anything, supplier).Return(nil)

	resp, err := service.Deactivate(context.Background(), tenantID, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	// second deactivation hits the domain guard
	_, err = service.Deactivate(context.Background(), tenantID, supplier.ID)
	assert.Error(t, err)
}

func TestSupplierService_List(t *testing.T) {
	tenantID := uuid.New()
	supplier, err := partner.NewSupplier(tenantID, testCNPJ, "Distribuidora Alfa Ltda")
	require.NoError(t, err)

	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	page := shared.NewPaginated([]*partner.Supplier{supplier}, 1, 1, 20)
	expectedFilter := partner.SupplierFilter{Status: partner.SupplierStatusActive, Page: 1, PageSize: 20}
	repo.On("List", mock.Anything, tenantID, expectedFilter).Return(&page, nil)

	result, err := service.List(context.Background(), tenantID, SupplierListFilter{Status: "active"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, testCNPJ, result.Items[0].CNPJ)
	assert.Equal(t, int64(1), result.Total)
}

func TestSupplierService_GetByID_NotFound(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo, nil)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

	_, err := service.GetByID(context.Background(), tenantID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
