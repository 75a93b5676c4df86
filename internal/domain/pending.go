package domain

import "time"

// PendingLine is a by-value snapshot of a cart line inside a pending sale.
// It is not a live reference: recovery re-resolves ItemID against the catalog
// and keeps the snapshotted price and name.
type PendingLine struct {
	Kind          LineKind `json:"kind"`
	ItemID        string   `json:"item_id"`
	Quantity      int      `json:"quantity"`
	UnitPrice     int64    `json:"unit_price"`
	Name          string   `json:"name"`
	AppointmentID string   `json:"appointment_id,omitempty"`
}

// PendingSale is a saved-but-not-finalized cart snapshot, resumable later.
// Saving one touches neither stock nor customer aggregates.
type PendingSale struct {
	ID             string        `json:"id"`
	SalonID        string        `json:"salon_id"`
	CustomerID     string        `json:"customer_id,omitempty"`
	Subtotal       int64         `json:"subtotal"`
	DiscountAmount int64         `json:"discount_amount"`
	Total          int64         `json:"total"`
	Lines          []PendingLine `json:"lines"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SnapshotCart builds a pending sale from a live cart. Lines are copied by
// value with their current prices.
func SnapshotCart(id string, cart *Cart, totals Totals) *PendingSale {
	lines := make([]PendingLine, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = PendingLine{
			Kind:          l.Kind,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Name:          l.Name,
			AppointmentID: l.AppointmentID,
		}
	}

	return &PendingSale{
		ID:             id,
		SalonID:        cart.SalonID,
		CustomerID:     cart.CustomerID,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
		Lines:          lines,
		CreatedAt:      time.Now().UTC(),
	}
}
