package domain

import "time"

// Sale status constants.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
)

// Payment method constants.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentPix      = "pix"
	PaymentTransfer = "transfer"
)

// Sale is a persisted, finalized transaction record.
type Sale struct {
	ID              string    `json:"id"`
	SalonID         string    `json:"salon_id"`
	SequenceNumber  int64     `json:"sequence_number"`
	CustomerID      string    `json:"customer_id,omitempty"`
	Subtotal        int64     `json:"subtotal"`
	DiscountAmount  int64     `json:"discount_amount"`
	Total           int64     `json:"total"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	PointsGranted   int64     `json:"points_granted"`
	CashbackGranted int64     `json:"cashback_granted"`
	CreatedAt       time.Time `json:"created_at"`
}

// SaleLine mirrors a cart line at the moment of sale, persisted as a child
// row of the sale.
type SaleLine struct {
	ID            string   `json:"id"`
	SaleID        string   `json:"sale_id"`
	ItemID        string   `json:"item_id"`
	Kind          LineKind `json:"kind"`
	Name          string   `json:"name"`
	UnitPrice     int64    `json:"unit_price"`
	Quantity      int      `json:"quantity"`
	LineTotal     int64    `json:"line_total"`
	AppointmentID string   `json:"appointment_id,omitempty"`
}

// IsValidPaymentMethod checks whether the given payment method is accepted.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentPix, PaymentTransfer:
		return true
	}
	return false
}

// Customer is the gateway view of a customer record with its loyalty
// aggregates.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Points        int64     `json:"points"`
	Cashback      int64     `json:"cashback"`
	LifetimeSpend int64     `json:"lifetime_spend"`
	Visits        int       `json:"visits"`
	LastVisitAt   time.Time `json:"last_visit_at,omitempty"`
}

// Reachable reports whether the customer has a contact channel for receipt
// notifications.
func (c *Customer) Reachable() bool {
	return c.Phone != "" || c.Email != ""
}

// CustomerDelta is the set of aggregate increments applied to a customer when
// a sale completes. All fields are deltas except LastVisitAt which is set
// absolutely.
type CustomerDelta struct {
	Points      int64
	Cashback    int64
	Spend       int64
	Visits      int
	LastVisitAt time.Time
}
