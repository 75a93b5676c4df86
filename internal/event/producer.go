package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	pkgkafka "github.com/Carlos85Carvalho/luni-final-sub000/pkg/kafka"
)

// Kafka topics for point-of-sale domain events.
var (
	TopicSaleCompleted         = pkgkafka.Topic("sale", "completed")
	TopicPendingSaleSaved      = pkgkafka.Topic("pending_sale", "saved")
	TopicNotificationRequested = pkgkafka.Topic("notification", "requested")
)

// Aggregate type constant.
const AggregateTypeSale = "sale"

// Source identifier for events originating from the point-of-sale service.
const SourcePOSService = "pos-service"

// SaleCompletedData is the payload for a sale.completed event.
type SaleCompletedData struct {
	ID              string `json:"id"`
	SalonID         string `json:"salon_id"`
	SequenceNumber  int64  `json:"sequence_number"`
	CustomerID      string `json:"customer_id,omitempty"`
	Total           int64  `json:"total"`
	PaymentMethod   string `json:"payment_method"`
	PointsGranted   int64  `json:"points_granted"`
	CashbackGranted int64  `json:"cashback_granted"`
}

// PendingSaleSavedData is the payload for a pending_sale.saved event.
type PendingSaleSavedData struct {
	ID        string `json:"id"`
	SalonID   string `json:"salon_id"`
	Total     int64  `json:"total"`
	LineCount int    `json:"line_count"`
}

// NotificationRequestedData is the payload for a notification.requested event.
type NotificationRequestedData struct {
	SaleID         string `json:"sale_id"`
	SalonID        string `json:"salon_id"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	SequenceNumber int64  `json:"sequence_number"`
	Total          int64  `json:"total"`
}

// Producer publishes point-of-sale domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the point-of-sale service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSaleCompleted publishes a sale.completed event.
func (p *Producer) PublishSaleCompleted(ctx context.Context, sale *domain.Sale) error {
	data := SaleCompletedData{
		ID:              sale.ID,
		SalonID:         sale.SalonID,
		SequenceNumber:  sale.SequenceNumber,
		CustomerID:      sale.CustomerID,
		Total:           sale.Total,
		PaymentMethod:   sale.PaymentMethod,
		PointsGranted:   sale.PointsGranted,
		CashbackGranted: sale.CashbackGranted,
	}

	event, err := pkgkafka.NewEvent(TopicSaleCompleted, sale.ID, AggregateTypeSale, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create sale.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSaleCompleted, event); err != nil {
		return fmt.Errorf("publish sale.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sale.completed event",
		slog.String("sale_id", sale.ID),
		slog.Int64("sequence_number", sale.SequenceNumber),
	)

	return nil
}

// PublishPendingSaleSaved publishes a pending_sale.saved event.
func (p *Producer) PublishPendingSaleSaved(ctx context.Context, pending *domain.PendingSale) error {
	data := PendingSaleSavedData{
		ID:        pending.ID,
		SalonID:   pending.SalonID,
		Total:     pending.Total,
		LineCount: len(pending.Lines),
	}

	event, err := pkgkafka.NewEvent(TopicPendingSaleSaved, pending.ID, AggregateTypeSale, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create pending_sale.saved event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPendingSaleSaved, event); err != nil {
		return fmt.Errorf("publish pending_sale.saved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published pending_sale.saved event",
		slog.String("pending_sale_id", pending.ID),
		slog.String("salon_id", pending.SalonID),
	)

	return nil
}

// PublishNotificationRequested publishes a notification.requested event asking
// the messaging pipeline to send the customer their receipt.
func (p *Producer) PublishNotificationRequested(ctx context.Context, sale *domain.Sale, customer *domain.Customer) error {
	data := NotificationRequestedData{
		SaleID:         sale.ID,
		SalonID:        sale.SalonID,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		Phone:          customer.Phone,
		Email:          customer.Email,
		SequenceNumber: sale.SequenceNumber,
		Total:          sale.Total,
	}

	event, err := pkgkafka.NewEvent(TopicNotificationRequested, sale.ID, AggregateTypeSale, SourcePOSService, data)
	if err != nil {
		return fmt.Errorf("create notification.requested event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicNotificationRequested, event); err != nil {
		return fmt.Errorf("publish notification.requested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published notification.requested event",
		slog.String("sale_id", sale.ID),
		slog.String("customer_id", customer.ID),
	)

	return nil
}
