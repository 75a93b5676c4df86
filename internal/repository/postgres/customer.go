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

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetCustomer retrieves a customer by id.
func (r *CustomerRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''),
		       points, cashback, lifetime_spend, visits, COALESCE(last_visit_at, 'epoch'::timestamptz)
		FROM customers
		WHERE id = $1`

	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email,
		&c.Points, &c.Cashback, &c.LifetimeSpend, &c.Visits, &c.LastVisitAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer", id)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &c, nil
}

// ApplyAggregate applies a sale's loyalty and visit deltas to the customer in
// a single UPDATE. All counters move server-side, so two checkouts attaching
// the same customer never lose an increment.
func (r *CustomerRepository) ApplyAggregate(ctx context.Context, id string, delta domain.CustomerDelta) error {
	ctx, end := database.TraceQuery(ctx, "ApplyCustomerAggregate", "UPDATE customers SET points = points + $2")
	var err error
	defer func() { end(err) }()

	query := `
		UPDATE customers
		SET points = points + $2,
		    cashback = cashback + $3,
		    lifetime_spend = lifetime_spend + $4,
		    visits = visits + $5,
		    last_visit_at = $6,
		    updated_at = NOW()
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id, delta.Points, delta.Cashback, delta.Spend, delta.Visits, delta.LastVisitAt)
	if err != nil {
		err = fmt.Errorf("apply customer aggregate: %w", err)
		return err
	}

	if ct.RowsAffected() == 0 {
		err = apperrors.NotFound("customer", id)
		return err
	}

	return nil
}
