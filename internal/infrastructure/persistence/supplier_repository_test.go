package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// newMockSupplierRepository creates a GormSupplierRepository with a mocked SQL connection
func newMockSupplierRepository(t *testing.T) (*GormSupplierRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSupplierRepository(gormDB), mock, mockDB
}

func TestGormSupplierRepository_FindByID(t *testing.T) {
	t.Run("finds existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "cnpj", "name", "status"}).
			AddRow(supplierID, tenantID, "11222333000181", "Fornecedor Alfa LTDA", "active")

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, supplierID, 1).
			WillReturnRows(rows)

		supplier, err := repo.FindByID(context.Background(), tenantID, supplierID)

		assert.NoError(t, err)
		assert.NotNil(t, supplier)
		assert.Equal(t, supplierID, supplier.ID)
		assert.Equal(t, "11222333000181", supplier.CNPJ)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, supplierID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		supplier, err := repo.FindByID(context.Background(), tenantID, supplierID)

		assert.Error(t, err)
		assert.Nil(t, supplier)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_FindByCNPJ(t *testing.T) {
	t.Run("normalizes formatted CNPJ before querying", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "cnpj", "name", "status"}).
			AddRow(supplierID, tenantID, "11222333000181", "Fornecedor Alfa LTDA", "active")

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND cnpj = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "11222333000181", 1).
			WillReturnRows(rows)

		supplier, err := repo.FindByCNPJ(context.Background(), tenantID, "11.222.333/0001-81")

		assert.NoError(t, err)
		assert.NotNil(t, supplier)
		assert.Equal(t, supplierID, supplier.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_ExistsByCNPJ(t *testing.T) {
	t.Run("returns true when supplier exists", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "suppliers" WHERE tenant_id = \$1 AND cnpj = \$2`).
			WithArgs(tenantID, "11222333000181").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByCNPJ(context.Background(), tenantID, "11222333000181")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when supplier does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "suppliers" WHERE tenant_id = \$1 AND cnpj = \$2`).
			WithArgs(tenantID, "11222333000181").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByCNPJ(context.Background(), tenantID, "11222333000181")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_Save(t *testing.T) {
	t.Run("updates existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		supplier, err := partner.NewSupplier(tenantID, "11222333000181", "Fornecedor Alfa LTDA")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "suppliers" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), supplier)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
