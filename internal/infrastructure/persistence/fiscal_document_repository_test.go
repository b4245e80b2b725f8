package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nfehub/backend/internal/domain/shared"
)

const testAccessKey = "35260111222333000181550010000123451000000015"

func newMockFiscalDocumentRepository(t *testing.T) (*GormFiscalDocumentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormFiscalDocumentRepository(gormDB), mock, mockDB
}

func TestGormFiscalDocumentRepository_FindByID(t *testing.T) {
	t.Run("loads document with its items", func(t *testing.T) {
		repo, mock, mockDB := newMockFiscalDocumentRepository(t)
		defer mockDB.Close()

		docID := uuid.New()
		tenantID := uuid.New()
		itemID := uuid.New()

		docRows := sqlmock.NewRows([]string{"id", "tenant_id", "access_key", "status", "total_value"}).
			AddRow(docID, tenantID, testAccessKey, "PENDING", decimal.NewFromInt(150))

		mock.ExpectQuery(`SELECT \* FROM "fiscal_documents" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, docID, 1).
			WillReturnRows(docRows)

		itemRows := sqlmock.NewRows([]string{"id", "document_id", "line_number", "product_code", "description"}).
			AddRow(itemID, docID, 1, "MAT-001", "Parafuso sextavado M8")

		mock.ExpectQuery(`SELECT \* FROM "invoice_items" WHERE "invoice_items"\."document_id" = \$1 ORDER BY line_number ASC`).
			WithArgs(docID).
			WillReturnRows(itemRows)

		doc, err := repo.FindByID(context.Background(), tenantID, docID)

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, testAccessKey, doc.AccessKey)
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "MAT-001", doc.Items[0].ProductCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent document", func(t *testing.T) {
		repo, mock, mockDB := newMockFiscalDocumentRepository(t)
		defer mockDB.Close()

		docID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fiscal_documents" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, docID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		doc, err := repo.FindByID(context.Background(), tenantID, docID)

		assert.Nil(t, doc)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFiscalDocumentRepository_FindByAccessKey(t *testing.T) {
	t.Run("finds an imported key", func(t *testing.T) {
		repo, mock, mockDB := newMockFiscalDocumentRepository(t)
		defer mockDB.Close()

		docID := uuid.New()
		tenantID := uuid.New()

		docRows := sqlmock.NewRows([]string{"id", "tenant_id", "access_key", "document_number", "status"}).
			AddRow(docID, tenantID, testAccessKey, "12345", "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "fiscal_documents" WHERE tenant_id = \$1 AND access_key = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, testAccessKey, 1).
			WillReturnRows(docRows)

		mock.ExpectQuery(`SELECT \* FROM "invoice_items" WHERE "invoice_items"\."document_id" = \$1 ORDER BY line_number ASC`).
			WithArgs(docID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "document_id"}))

		doc, err := repo.FindByAccessKey(context.Background(), tenantID, testAccessKey)

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "12345", doc.DocumentNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown key maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockFiscalDocumentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fiscal_documents" WHERE tenant_id = \$1 AND access_key = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, testAccessKey, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		doc, err := repo.FindByAccessKey(context.Background(), tenantID, testAccessKey)

		assert.Nil(t, doc)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFiscalDocumentRepository_Counters(t *testing.T) {
	t.Run("aggregates counts and month total", func(t *testing.T) {
		repo, mock, mockDB := newMockFiscalDocumentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		now := time.Date(2026, time.January, 20, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "fiscal_documents" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, "PENDING").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		mock.ExpectQuery(`SELECT count\(\*\) FROM "fiscal_documents" WHERE tenant_id = \$1 AND status = \$2 AND issue_date >= \$3`).
			WithArgs(tenantID, "PROCESSED", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		mock.ExpectQuery(`SELECT count\(\*\) FROM "fiscal_documents" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, "REJECTED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_value\), 0\) AS total FROM "fiscal_documents"`).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1234.56"))

		counters, err := repo.Counters(context.Background(), tenantID, now)

		assert.NoError(t, err)
		require.NotNil(t, counters)
		assert.Equal(t, int64(3), counters.PendingCount)
		assert.Equal(t, int64(7), counters.ProcessedThisMonth)
		assert.Equal(t, int64(1), counters.RejectedCount)
		assert.True(t, counters.TotalValueThisMonth.Equal(decimal.RequireFromString("1234.56")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
