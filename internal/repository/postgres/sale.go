package postgres

import (
	"context"
	"fmt"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/database"
)

// SaleRepository implements repository.SaleRepository using PostgreSQL.
type SaleRepository struct {
	pool database.DBTX
}

// NewSaleRepository creates a new PostgreSQL-backed sale repository.
func NewSaleRepository(pool database.DBTX) *SaleRepository {
	return &SaleRepository{pool: pool}
}

// CreateHeader persists the sale header row.
func (r *SaleRepository) CreateHeader(ctx context.Context, sale *domain.Sale) error {
	ctx, end := database.TraceQuery(ctx, "CreateSaleHeader", "INSERT INTO sales")
	var err error
	defer func() { end(err) }()

	query := `
		INSERT INTO sales (id, salon_id, sequence_number, customer_id, subtotal, discount_amount,
		                   total, payment_method, status, points_granted, cashback_granted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		sale.ID, sale.SalonID, sale.SequenceNumber, nullIfEmpty(sale.CustomerID),
		sale.Subtotal, sale.DiscountAmount, sale.Total,
		sale.PaymentMethod, sale.Status, sale.PointsGranted, sale.CashbackGranted, sale.CreatedAt,
	)
	if err != nil {
		err = fmt.Errorf("create sale header: %w", err)
		return err
	}

	return nil
}

// CreateLine persists a single sale line.
func (r *SaleRepository) CreateLine(ctx context.Context, line *domain.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, item_id, kind, name, unit_price, quantity, line_total, appointment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		line.ID, line.SaleID, line.ItemID, line.Kind, line.Name,
		line.UnitPrice, line.Quantity, line.LineTotal, nullIfEmpty(line.AppointmentID),
	)
	if err != nil {
		return fmt.Errorf("create sale line: %w", err)
	}

	return nil
}

// nullIfEmpty maps an optional id to NULL so foreign keys stay clean.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
