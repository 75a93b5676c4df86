// Package notify sends post-sale customer notifications. Dispatch is
// fire-and-forget: the sale is already persisted when a notification goes
// out, so delivery problems are logged and never surfaced to the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/event"
)

const dispatchTimeout = 10 * time.Second

// Dispatcher hands completed sales to the notification pipeline.
type Dispatcher struct {
	producer *event.Producer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher publishing through the given producer.
func NewDispatcher(producer *event.Producer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		producer: producer,
		logger:   logger,
	}
}

// DispatchReceipt asks the messaging pipeline to send the customer their
// receipt. The publish runs on a detached goroutine with its own deadline so
// a slow broker can never hold up the counter. Customers without a contact
// channel are skipped.
func (d *Dispatcher) DispatchReceipt(sale *domain.Sale, customer *domain.Customer) {
	if customer == nil || !customer.Reachable() {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.producer.PublishNotificationRequested(ctx, sale, customer); err != nil {
			d.logger.ErrorContext(ctx, "failed to dispatch receipt notification",
				slog.String("sale_id", sale.ID),
				slog.String("customer_id", customer.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until all in-flight dispatches finish. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
