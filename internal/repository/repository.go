package repository

import (
	"context"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
)

// CatalogRepository is the read/write boundary onto products, services, and
// appointments. It is the only source of truth for stock levels.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.ProductRef, error)
	GetService(ctx context.Context, id string) (*domain.ServiceRef, error)

	// DecrementStock atomically subtracts qty from the product's stock and
	// records a stock movement referencing the sale. The decrement and the
	// movement row commit together.
	DecrementStock(ctx context.Context, productID string, qty int, saleID string) error

	// MarkAppointmentCompleted transitions a scheduled appointment to
	// completed when its service line is sold.
	MarkAppointmentCompleted(ctx context.Context, appointmentID string) error
}

// CustomerRepository is the boundary onto customer records and their loyalty
// aggregates.
type CustomerRepository interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)

	// ApplyAggregate atomically applies the delta to the customer's points,
	// cashback, lifetime spend, and visit count, and sets the last-visit
	// timestamp.
	ApplyAggregate(ctx context.Context, id string, delta domain.CustomerDelta) error
}

// SaleRepository persists finalized sales and their line items.
type SaleRepository interface {
	CreateHeader(ctx context.Context, sale *domain.Sale) error
	CreateLine(ctx context.Context, line *domain.SaleLine) error
}

// PendingSaleRepository persists cart snapshots so an unfinished sale can be
// saved and later recovered.
type PendingSaleRepository interface {
	Save(ctx context.Context, ps *domain.PendingSale) error
	Get(ctx context.Context, id string) (*domain.PendingSale, error)
	List(ctx context.Context, salonID string) ([]domain.PendingSale, error)
	Delete(ctx context.Context, id string) error
}
