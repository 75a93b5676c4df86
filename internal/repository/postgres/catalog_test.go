package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/database"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

func setupCatalogRepo(t *testing.T) (*CatalogRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCatalogRepository(mock)
	return repo, mock
}

// ---------------------------------------------------------------------------
// GetProduct
// ---------------------------------------------------------------------------

func TestCatalogRepository_GetProduct_Success(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("prod-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "name", "price", "stock"}).
				AddRow("prod-1", "Shampoo 300ml", int64(4990), 12),
		)

	result, err := repo.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", result.ID)
	assert.Equal(t, "Shampoo 300ml", result.Name)
	assert.Equal(t, int64(4990), result.Price)
	assert.Equal(t, 12, result.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_GetProduct_NotFound(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("prod-x").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetProduct(context.Background(), "prod-x")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetService
// ---------------------------------------------------------------------------

func TestCatalogRepository_GetService_Success(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM salon_services").
		WithArgs("svc-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "name", "price", "duration_minutes"}).
				AddRow("svc-1", "Corte feminino", int64(8000), 45),
		)

	result, err := repo.GetService(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "svc-1", result.ID)
	assert.Equal(t, "Corte feminino", result.Name)
	assert.Equal(t, int64(8000), result.Price)
	assert.Equal(t, 45, result.DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_GetService_NotFound(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM salon_services").
		WithArgs("svc-x").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetService(context.Background(), "svc-x")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// DecrementStock
// ---------------------------------------------------------------------------

func TestCatalogRepository_DecrementStock_Success(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products").
		WithArgs("prod-1", 3).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(9))
	mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs("prod-1", -3, "sale-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.DecrementStock(context.Background(), "prod-1", 3, "sale-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_DecrementStock_ProductNotFound(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products").
		WithArgs("prod-x", 1).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT name FROM products").
		WithArgs("prod-x").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DecrementStock(context.Background(), "prod-x", 1, "sale-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_DecrementStock_InsufficientStock(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products").
		WithArgs("prod-1", 5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT name FROM products").
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Shampoo Hidratante 300ml"))
	mock.ExpectRollback()

	err := repo.DecrementStock(context.Background(), "prod-1", 5, "sale-1")
	assert.ErrorIs(t, err, apperrors.ErrStockExceeded)
	assert.Contains(t, err.Error(), "Shampoo Hidratante 300ml")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_DecrementStock_BeginError(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	err := repo.DecrementStock(context.Background(), "prod-1", 1, "sale-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_DecrementStock_MovementError(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE products").
		WithArgs("prod-1", 2).
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(4))
	mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs("prod-1", -2, "sale-1").
		WillReturnError(errors.New("movement insert failed"))
	mock.ExpectRollback()

	err := repo.DecrementStock(context.Background(), "prod-1", 2, "sale-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert stock movement")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// MarkAppointmentCompleted
// ---------------------------------------------------------------------------

func TestCatalogRepository_MarkAppointmentCompleted_Success(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE appointments").
		WithArgs("appt-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.MarkAppointmentCompleted(context.Background(), "appt-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_MarkAppointmentCompleted_NotFound(t *testing.T) {
	repo, mock := setupCatalogRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE appointments").
		WithArgs("appt-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkAppointmentCompleted(context.Background(), "appt-x")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
