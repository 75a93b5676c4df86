package domain

import (
	"time"

	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

// LineKind distinguishes physical products from bookable services.
type LineKind string

const (
	KindProduct LineKind = "product"
	KindService LineKind = "service"
)

// DiscountKind selects how the cart discount value is interpreted.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// Discount is the cart-level discount. For percent the value is percentage
// points in [0,100]; for fixed it is an amount in cents, clamped to the
// subtotal at read time since the subtotal can change after lines change.
type Discount struct {
	Kind  DiscountKind `json:"kind"`
	Value float64      `json:"value"`
}

// CartLine is a single product or service entry in the cart.
type CartLine struct {
	ItemID    string   `json:"item_id"`
	Kind      LineKind `json:"kind"`
	Name      string   `json:"name"`
	UnitPrice int64    `json:"unit_price"`
	Quantity  int      `json:"quantity"`

	// StockCeiling is the stock snapshot captured when a product line was
	// created. Quantity may never exceed it after any mutation. Zero for
	// service lines.
	StockCeiling int `json:"stock_ceiling,omitempty"`

	// AppointmentID links a service line back to a scheduled appointment so
	// checkout can mark it completed.
	AppointmentID string `json:"appointment_id,omitempty"`

	Note string `json:"note,omitempty"`
}

// LineTotal returns unit price times quantity in cents.
func (l *CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// ProductRef is a catalog snapshot of a sellable product.
type ProductRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// ServiceRef is a catalog snapshot of a bookable service.
type ServiceRef struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Cart is the in-memory aggregate of an active point-of-sale session.
// It holds at most one line per (item, kind) pair and at most one customer.
// All mutation goes through its methods; the cart itself performs no I/O.
type Cart struct {
	ID         string     `json:"id"`
	SalonID    string     `json:"salon_id"`
	Lines      []CartLine `json:"lines"`
	Discount   Discount   `json:"discount"`
	CustomerID string     `json:"customer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart for the given salon.
func NewCart(id, salonID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		SalonID:   salonID,
		Lines:     []CartLine{},
		Discount:  Discount{Kind: DiscountPercent, Value: 0},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the cart. Carts handed across a lock boundary
// are copied first so later mutations cannot race with readers.
func (c *Cart) Clone() *Cart {
	dup := *c
	dup.Lines = make([]CartLine, len(c.Lines))
	copy(dup.Lines, c.Lines)
	return &dup
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLine returns the index of the line matching the given item and kind,
// or -1 if not found.
func (c *Cart) FindLine(itemID string, kind LineKind) int {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID && c.Lines[i].Kind == kind {
			return i
		}
	}
	return -1
}

// AddProductLine adds qty units of a product. If the product is already in the
// cart the quantities merge; a merge or a new line that would exceed the stock
// ceiling is rejected with no mutation. For a new line the ceiling is the
// product's current stock, snapshotted here.
func (c *Cart) AddProductLine(ref ProductRef, qty int) error {
	if qty < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	if i := c.FindLine(ref.ID, KindProduct); i >= 0 {
		line := &c.Lines[i]
		if line.Quantity+qty > line.StockCeiling {
			return apperrors.StockExceeded(line.Name)
		}
		line.Quantity += qty
		c.touch()
		return nil
	}

	if qty > ref.Stock {
		return apperrors.StockExceeded(ref.Name)
	}

	c.Lines = append(c.Lines, CartLine{
		ItemID:       ref.ID,
		Kind:         KindProduct,
		Name:         ref.Name,
		UnitPrice:    ref.Price,
		Quantity:     qty,
		StockCeiling: ref.Stock,
	})
	c.touch()
	return nil
}

// AddServiceLine adds a service to the cart. A service may appear at most
// once; adding a duplicate is rejected with no mutation.
func (c *Cart) AddServiceLine(ref ServiceRef, appointmentID, note string) error {
	if c.FindLine(ref.ID, KindService) >= 0 {
		return apperrors.DuplicateServiceLine(ref.Name)
	}

	c.Lines = append(c.Lines, CartLine{
		ItemID:        ref.ID,
		Kind:          KindService,
		Name:          ref.Name,
		UnitPrice:     ref.Price,
		Quantity:      1,
		AppointmentID: appointmentID,
		Note:          note,
	})
	c.touch()
	return nil
}

// RemoveLine removes the line matching the given item and kind.
func (c *Cart) RemoveLine(itemID string, kind LineKind) error {
	i := c.FindLine(itemID, kind)
	if i < 0 {
		return apperrors.NotFound("cart line", itemID)
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.touch()
	return nil
}

// AdjustQuantity changes a line's quantity by delta. A decrement that would
// take the quantity to zero or below removes the line instead (this is a
// guaranteed side effect, not an error). A product increment beyond the stock
// ceiling is rejected with no mutation.
func (c *Cart) AdjustQuantity(itemID string, kind LineKind, delta int) error {
	i := c.FindLine(itemID, kind)
	if i < 0 {
		return apperrors.NotFound("cart line", itemID)
	}

	line := &c.Lines[i]
	newQty := line.Quantity + delta
	if newQty <= 0 {
		return c.RemoveLine(itemID, kind)
	}
	if kind == KindProduct && newQty > line.StockCeiling {
		return apperrors.StockExceeded(line.Name)
	}

	line.Quantity = newQty
	c.touch()
	return nil
}

// SetLinePrice overrides the unit price of a service line. Product prices are
// fixed by the catalog and cannot be overridden.
func (c *Cart) SetLinePrice(itemID string, price int64) error {
	if price < 0 {
		return apperrors.InvalidInput("price must not be negative")
	}

	i := c.FindLine(itemID, KindService)
	if i < 0 {
		if c.FindLine(itemID, KindProduct) >= 0 {
			return apperrors.InvalidInput("product prices cannot be overridden")
		}
		return apperrors.NotFound("cart line", itemID)
	}

	c.Lines[i].UnitPrice = price
	c.touch()
	return nil
}

// SetDiscount sets the cart discount. Percent values are clamped to [0,100]
// at set time. Fixed values are kept as-is and clamped to the subtotal when
// totals are computed.
func (c *Cart) SetDiscount(kind DiscountKind, value float64) error {
	switch kind {
	case DiscountPercent:
		if value < 0 {
			value = 0
		}
		if value > 100 {
			value = 100
		}
	case DiscountFixed:
		if value < 0 {
			value = 0
		}
	default:
		return apperrors.InvalidInput("discount kind must be percent or fixed")
	}

	c.Discount = Discount{Kind: kind, Value: value}
	c.touch()
	return nil
}

// AttachCustomer associates a customer with the sale. Attaching a different
// customer replaces the previous one.
func (c *Cart) AttachCustomer(customerID string) error {
	if customerID == "" {
		return apperrors.InvalidInput("customer id is required")
	}
	c.CustomerID = customerID
	c.touch()
	return nil
}

// Clear resets the cart to its empty state, dropping lines, discount, and
// the attached customer.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.Discount = Discount{Kind: DiscountPercent, Value: 0}
	c.CustomerID = ""
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
