package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/event"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/notify"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/receipt"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/repository"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

// SaleSequencer hands out the next sale number for a salon.
type SaleSequencer interface {
	Next(ctx context.Context, salonID string) (int64, error)
}

// CheckoutResult is everything a finalized sale produced.
type CheckoutResult struct {
	Sale  *domain.Sale      `json:"sale"`
	Lines []domain.SaleLine `json:"lines"`

	// Receipt is nil when rendering failed; the sale itself is unaffected.
	Receipt *receipt.Document `json:"receipt,omitempty"`
}

// CheckoutService turns a cart into a persisted sale. The write sequence is
// fixed (sale header, then sale lines with stock and appointment effects,
// then customer aggregates) and runs without a surrounding transaction: each
// step commits on its own, and a failure halts the sequence leaving earlier
// writes in place. The failing step is reported so the operator can reconcile.
type CheckoutService struct {
	sales      repository.SaleRepository
	catalog    repository.CatalogRepository
	customers  repository.CustomerRepository
	sequencer  SaleSequencer
	receipts   receipt.Generator
	dispatcher *notify.Dispatcher
	producer   *event.Producer
	loyalty    domain.LoyaltyConfig
	logger     *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sales repository.SaleRepository,
	catalog repository.CatalogRepository,
	customers repository.CustomerRepository,
	sequencer SaleSequencer,
	receipts receipt.Generator,
	dispatcher *notify.Dispatcher,
	producer *event.Producer,
	loyalty domain.LoyaltyConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		sales:      sales,
		catalog:    catalog,
		customers:  customers,
		sequencer:  sequencer,
		receipts:   receipts,
		dispatcher: dispatcher,
		producer:   producer,
		loyalty:    loyalty,
		logger:     logger,
	}
}

// Finalize runs the checkout write sequence for the given cart. On success the
// caller is expected to clear the cart. On a *domain.StepError some writes may
// already be persisted; nothing is rolled back.
func (s *CheckoutService) Finalize(ctx context.Context, cart *domain.Cart, paymentMethod string) (*CheckoutResult, error) {
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cannot finalize an empty cart")
	}
	if !domain.IsValidPaymentMethod(paymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown payment method %q", paymentMethod))
	}

	totals := domain.CalculateTotals(cart, s.loyalty)

	seq, err := s.sequencer.Next(ctx, cart.SalonID)
	if err != nil {
		return nil, domain.NewStepError(domain.StepSequence, err)
	}

	now := time.Now().UTC()
	sale := &domain.Sale{
		ID:              uuid.NewString(),
		SalonID:         cart.SalonID,
		SequenceNumber:  seq,
		CustomerID:      cart.CustomerID,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		PaymentMethod:   paymentMethod,
		Status:          domain.SaleStatusCompleted,
		PointsGranted:   totals.PointsGranted,
		CashbackGranted: totals.CashbackGranted,
		CreatedAt:       now,
	}

	if err := s.sales.CreateHeader(ctx, sale); err != nil {
		return nil, domain.NewStepError(domain.StepSaleHeader, err)
	}

	lines, err := s.writeLines(ctx, cart, sale)
	if err != nil {
		return nil, domain.NewStepError(domain.StepSaleLines, err)
	}

	if cart.CustomerID != "" {
		delta := domain.CustomerDelta{
			Points:      totals.PointsGranted,
			Cashback:    totals.CashbackGranted,
			Spend:       totals.Total,
			Visits:      1,
			LastVisitAt: now,
		}
		if err := s.customers.ApplyAggregate(ctx, cart.CustomerID, delta); err != nil {
			return nil, domain.NewStepError(domain.StepCustomer, err)
		}
	}

	result := &CheckoutResult{Sale: sale, Lines: lines}

	// The sale is durable from here on; everything below is best-effort.
	doc, err := s.receipts.Generate(ctx, sale, lines)
	if err != nil {
		s.logger.ErrorContext(ctx, "receipt generation failed",
			slog.String("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
	} else {
		result.Receipt = doc
	}

	if cart.CustomerID != "" {
		customer, err := s.customers.GetCustomer(ctx, cart.CustomerID)
		if err != nil {
			s.logger.WarnContext(ctx, "cannot load customer for notification",
				slog.String("customer_id", cart.CustomerID),
				slog.String("error", err.Error()),
			)
		} else {
			s.dispatcher.DispatchReceipt(sale, customer)
		}
	}

	if err := s.producer.PublishSaleCompleted(ctx, sale); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale.completed event",
			slog.String("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "sale finalized",
		slog.String("sale_id", sale.ID),
		slog.String("salon_id", sale.SalonID),
		slog.Int64("sequence_number", sale.SequenceNumber),
		slog.Int64("total", sale.Total),
		slog.String("payment_method", paymentMethod),
	)

	return result, nil
}

// writeLines persists each cart line and applies its side effects: stock
// decrements for product lines, appointment completion for service lines that
// reference one. A failure stops the loop immediately.
func (s *CheckoutService) writeLines(ctx context.Context, cart *domain.Cart, sale *domain.Sale) ([]domain.SaleLine, error) {
	lines := make([]domain.SaleLine, 0, len(cart.Lines))

	for i := range cart.Lines {
		cl := &cart.Lines[i]
		line := domain.SaleLine{
			ID:            uuid.NewString(),
			SaleID:        sale.ID,
			ItemID:        cl.ItemID,
			Kind:          cl.Kind,
			Name:          cl.Name,
			UnitPrice:     cl.UnitPrice,
			Quantity:      cl.Quantity,
			LineTotal:     cl.LineTotal(),
			AppointmentID: cl.AppointmentID,
		}

		if err := s.sales.CreateLine(ctx, &line); err != nil {
			return nil, fmt.Errorf("persist line %q: %w", cl.Name, err)
		}

		switch cl.Kind {
		case domain.KindProduct:
			if err := s.catalog.DecrementStock(ctx, cl.ItemID, cl.Quantity, sale.ID); err != nil {
				return nil, fmt.Errorf("decrement stock for %q: %w", cl.Name, err)
			}
		case domain.KindService:
			if cl.AppointmentID != "" {
				if err := s.catalog.MarkAppointmentCompleted(ctx, cl.AppointmentID); err != nil {
					return nil, fmt.Errorf("complete appointment for %q: %w", cl.Name, err)
				}
			}
		}

		lines = append(lines, line)
	}

	return lines, nil
}
