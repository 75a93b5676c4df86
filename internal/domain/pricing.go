package domain

import "math"

// LoyaltyConfig holds the thresholds and rates governing reward computation.
type LoyaltyConfig struct {
	// PointsPerCurrencyUnit is the number of points granted per whole
	// currency unit of the sale total.
	PointsPerCurrencyUnit float64

	// MinimumForPoints is the minimum sale total, in cents, required before
	// any points are granted. Cashback has no such threshold.
	MinimumForPoints int64

	// CashbackPercent is the percentage of the sale total returned as
	// cashback balance.
	CashbackPercent float64
}

// Totals is the derived pricing of a cart. All amounts are cents.
type Totals struct {
	Subtotal        int64 `json:"subtotal"`
	DiscountAmount  int64 `json:"discount_amount"`
	Total           int64 `json:"total"`
	PointsGranted   int64 `json:"points_granted"`
	CashbackGranted int64 `json:"cashback_granted"`
}

// CalculateTotals derives subtotal, discount, total, and loyalty rewards from
// a cart. It is a pure function: the cart is not mutated and totals are
// recomputed on every call.
//
// Points require an attached customer and a total at or above the configured
// minimum. Cashback requires only an attached customer; it has no minimum.
// The asymmetry is deliberate.
func CalculateTotals(c *Cart, cfg LoyaltyConfig) Totals {
	var subtotal int64
	for i := range c.Lines {
		subtotal += c.Lines[i].LineTotal()
	}

	var discount int64
	switch c.Discount.Kind {
	case DiscountPercent:
		discount = int64(math.Floor(float64(subtotal) * c.Discount.Value / 100))
	case DiscountFixed:
		// Clamp before the int64 conversion: a value beyond the
		// representable range converts to an arbitrary number.
		v := c.Discount.Value
		if v > float64(subtotal) {
			v = float64(subtotal)
		}
		discount = int64(v)
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	t := Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}

	if c.CustomerID == "" {
		return t
	}

	if total >= cfg.MinimumForPoints {
		t.PointsGranted = int64(math.Floor(float64(total) / 100 * cfg.PointsPerCurrencyUnit))
	}
	t.CashbackGranted = int64(math.Floor(float64(total) * cfg.CashbackPercent / 100))

	return t
}
