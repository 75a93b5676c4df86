package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/event"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/repository"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

// PendingService parks carts as pending sales and brings them back. A saved
// snapshot is pure data: no stock moves, no customer aggregates, nothing to
// undo if it is never recovered.
type PendingService struct {
	pendings repository.PendingSaleRepository
	catalog  repository.CatalogRepository
	producer *event.Producer
	loyalty  domain.LoyaltyConfig
	logger   *slog.Logger
}

// NewPendingService creates a new pending-sale service.
func NewPendingService(
	pendings repository.PendingSaleRepository,
	catalog repository.CatalogRepository,
	producer *event.Producer,
	loyalty domain.LoyaltyConfig,
	logger *slog.Logger,
) *PendingService {
	return &PendingService{
		pendings: pendings,
		catalog:  catalog,
		producer: producer,
		loyalty:  loyalty,
		logger:   logger,
	}
}

// Save snapshots the cart by value, with its current prices and totals, and
// persists it. The caller clears the cart on success.
func (s *PendingService) Save(ctx context.Context, cart *domain.Cart) (*domain.PendingSale, error) {
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cannot save an empty cart")
	}

	totals := domain.CalculateTotals(cart, s.loyalty)
	pending := domain.SnapshotCart(uuid.NewString(), cart, totals)

	if err := s.pendings.Save(ctx, pending); err != nil {
		return nil, err
	}

	if err := s.producer.PublishPendingSaleSaved(ctx, pending); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pending_sale.saved event",
			slog.String("pending_sale_id", pending.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart saved as pending sale",
		slog.String("pending_sale_id", pending.ID),
		slog.String("salon_id", pending.SalonID),
		slog.Int("line_count", len(pending.Lines)),
	)

	return pending, nil
}

// Recover rebuilds a live cart from a pending-sale snapshot. The snapshot
// must belong to salonID. Each line is re-resolved against the catalog: lines
// whose item has vanished are dropped and returned so the operator can tell
// the customer; surviving lines keep their snapshotted price and name, and
// product lines pick up a fresh stock ceiling from current stock. The
// snapshot is deleted once the cart is built.
func (s *PendingService) Recover(ctx context.Context, id, salonID string) (*domain.Cart, []domain.PendingLine, error) {
	pending, err := s.pendings.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if pending.SalonID != salonID {
		return nil, nil, apperrors.Conflict("pending sale belongs to a different salon")
	}

	cart := domain.NewCart(uuid.NewString(), pending.SalonID)
	cart.CustomerID = pending.CustomerID
	if pending.DiscountAmount > 0 {
		cart.Discount = domain.Discount{Kind: domain.DiscountFixed, Value: float64(pending.DiscountAmount)}
	}

	var dropped []domain.PendingLine
	for _, pl := range pending.Lines {
		line, err := s.resolveLine(ctx, pl)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.logger.WarnContext(ctx, "pending-sale line no longer in catalog, dropping",
					slog.String("pending_sale_id", id),
					slog.String("item_id", pl.ItemID),
					slog.String("kind", string(pl.Kind)),
				)
				dropped = append(dropped, pl)
				continue
			}
			return nil, nil, err
		}
		cart.Lines = append(cart.Lines, *line)
	}

	if err := s.pendings.Delete(ctx, id); err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "pending sale recovered",
		slog.String("pending_sale_id", id),
		slog.String("cart_id", cart.ID),
		slog.Int("recovered_lines", len(cart.Lines)),
		slog.Int("dropped_lines", len(dropped)),
	)

	return cart, dropped, nil
}

// List returns the salon's parked sales, newest first.
func (s *PendingService) List(ctx context.Context, salonID string) ([]domain.PendingSale, error) {
	if salonID == "" {
		return nil, apperrors.InvalidInput("salon id is required")
	}
	return s.pendings.List(ctx, salonID)
}

func (s *PendingService) resolveLine(ctx context.Context, pl domain.PendingLine) (*domain.CartLine, error) {
	line := domain.CartLine{
		ItemID:        pl.ItemID,
		Kind:          pl.Kind,
		Name:          pl.Name,
		UnitPrice:     pl.UnitPrice,
		Quantity:      pl.Quantity,
		AppointmentID: pl.AppointmentID,
	}

	switch pl.Kind {
	case domain.KindProduct:
		product, err := s.catalog.GetProduct(ctx, pl.ItemID)
		if err != nil {
			return nil, err
		}
		if product.Stock < 1 {
			return nil, apperrors.NotFound("product", pl.ItemID)
		}
		line.StockCeiling = product.Stock
		// Stock may have shrunk while the sale was parked.
		if line.Quantity > product.Stock {
			line.Quantity = product.Stock
		}
	case domain.KindService:
		if _, err := s.catalog.GetService(ctx, pl.ItemID); err != nil {
			return nil, err
		}
	}

	return &line, nil
}
