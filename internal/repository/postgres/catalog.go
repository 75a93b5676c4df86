package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/database"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetProduct retrieves a product with its current stock level.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.ProductRef, error) {
	query := `
		SELECT id, name, price, stock
		FROM products
		WHERE id = $1`

	var p domain.ProductRef
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// GetService retrieves a salon service with its current price.
func (r *CatalogRepository) GetService(ctx context.Context, id string) (*domain.ServiceRef, error) {
	query := `
		SELECT id, name, price, duration_minutes
		FROM salon_services
		WHERE id = $1`

	var s domain.ServiceRef
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("service", id)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	return &s, nil
}

// DecrementStock atomically subtracts qty from the product's stock and records
// a stock movement row in the same transaction. The decrement happens
// server-side in a single UPDATE so concurrent checkouts on the same product
// cannot interleave a read-modify-write.
func (r *CatalogRepository) DecrementStock(ctx context.Context, productID string, qty int, saleID string) error {
	ctx, end := database.TraceQuery(ctx, "DecrementStock", "UPDATE products SET stock = stock - $2")
	var err error
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updateQuery := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`

	var remaining int
	if err = tx.QueryRow(ctx, updateQuery, productID, qty).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the product is gone or stock fell below qty since the
			// line was added. Tell them apart for the caller.
			var name string
			if lookupErr := tx.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name); lookupErr != nil {
				err = apperrors.NotFound("product", productID)
				return err
			}
			err = apperrors.StockExceeded(name)
			return err
		}
		err = fmt.Errorf("decrement stock: %w", err)
		return err
	}

	movementQuery := `
		INSERT INTO stock_movements (product_id, quantity_change, reason, reference_id)
		VALUES ($1, $2, 'sale', $3)`

	if _, err = tx.Exec(ctx, movementQuery, productID, -qty, saleID); err != nil {
		err = fmt.Errorf("insert stock movement: %w", err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit stock decrement: %w", err)
		return err
	}

	return nil
}

// MarkAppointmentCompleted transitions an appointment to completed.
func (r *CatalogRepository) MarkAppointmentCompleted(ctx context.Context, appointmentID string) error {
	query := `
		UPDATE appointments
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, appointmentID)
	if err != nil {
		return fmt.Errorf("mark appointment completed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", appointmentID)
	}

	return nil
}
