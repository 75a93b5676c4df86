package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loyalty() LoyaltyConfig {
	return LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		MinimumForPoints:      5000,
		CashbackPercent:       2,
	}
}

func pricedCart(t *testing.T, withCustomer bool) *Cart {
	t.Helper()
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Shampoo", Price: 4990, Stock: 10}, 2))
	require.NoError(t, c.AddServiceLine(ServiceRef{ID: "s1", Name: "Corte", Price: 8000}, "", ""))
	if withCustomer {
		require.NoError(t, c.AttachCustomer("cust-1"))
	}
	return c
}

func TestCalculateTotals_NoDiscount(t *testing.T) {
	c := pricedCart(t, false)

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(17980), totals.Subtotal)
	assert.Equal(t, int64(0), totals.DiscountAmount)
	assert.Equal(t, int64(17980), totals.Total)
}

func TestCalculateTotals_PercentDiscountFloors(t *testing.T) {
	c := pricedCart(t, false)
	require.NoError(t, c.SetDiscount(DiscountPercent, 15))

	// floor(17980 * 15 / 100) = floor(2697.0) = 2697
	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(2697), totals.DiscountAmount)
	assert.Equal(t, int64(15283), totals.Total)
}

func TestCalculateTotals_FixedDiscount(t *testing.T) {
	c := pricedCart(t, false)
	require.NoError(t, c.SetDiscount(DiscountFixed, 3000))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(3000), totals.DiscountAmount)
	assert.Equal(t, int64(14980), totals.Total)
}

func TestCalculateTotals_FixedDiscountClampedToSubtotal(t *testing.T) {
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Esmalte", Price: 1500, Stock: 3}, 1))
	require.NoError(t, c.SetDiscount(DiscountFixed, 99999))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(1500), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.Total)
}

// A fixed discount far beyond the int64-representable float range must clamp
// to the subtotal, not wrap through the float-to-int conversion.
func TestCalculateTotals_FixedDiscountBeyondInt64Range(t *testing.T) {
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Kit", Price: 5000, Stock: 3}, 1))
	require.NoError(t, c.SetDiscount(DiscountFixed, 1e19))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(5000), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.Total)
}

// Walkthrough of a typical discounted sale: a 50.00 product twice plus a
// 100.00 service with a 10% discount, then the same sale with a customer
// attached earning points and cashback.
func TestCalculateTotals_DiscountedSaleWalkthrough(t *testing.T) {
	cfg := LoyaltyConfig{PointsPerCurrencyUnit: 1, MinimumForPoints: 5000, CashbackPercent: 5}

	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Máscara Capilar", Price: 5000, Stock: 5}, 2))
	require.NoError(t, c.AddServiceLine(ServiceRef{ID: "s1", Name: "Escova", Price: 10000}, "", ""))
	require.NoError(t, c.SetDiscount(DiscountPercent, 10))

	totals := CalculateTotals(c, cfg)
	assert.Equal(t, int64(20000), totals.Subtotal)
	assert.Equal(t, int64(2000), totals.DiscountAmount)
	assert.Equal(t, int64(18000), totals.Total)
	assert.Zero(t, totals.PointsGranted)
	assert.Zero(t, totals.CashbackGranted)

	require.NoError(t, c.AttachCustomer("cust-1"))
	totals = CalculateTotals(c, cfg)
	assert.Equal(t, int64(180), totals.PointsGranted)
	assert.Equal(t, int64(900), totals.CashbackGranted)
}

func TestCalculateTotals_ClampReactsToLineRemoval(t *testing.T) {
	c := pricedCart(t, false)
	require.NoError(t, c.SetDiscount(DiscountFixed, 10000))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(10000), totals.DiscountAmount)

	// Dropping lines shrinks the subtotal below the fixed discount; the clamp
	// happens at read time, the stored value is untouched.
	require.NoError(t, c.RemoveLine("p1", KindProduct))
	totals = CalculateTotals(c, loyalty())
	assert.Equal(t, int64(8000), totals.Subtotal)
	assert.Equal(t, int64(8000), totals.DiscountAmount)
	assert.Equal(t, int64(0), totals.Total)
	assert.Equal(t, float64(10000), c.Discount.Value)
}

func TestCalculateTotals_NoCustomerNoRewards(t *testing.T) {
	c := pricedCart(t, false)

	totals := CalculateTotals(c, loyalty())
	assert.Zero(t, totals.PointsGranted)
	assert.Zero(t, totals.CashbackGranted)
}

func TestCalculateTotals_CustomerAboveMinimum(t *testing.T) {
	c := pricedCart(t, true)

	// total 17980: points = floor(179.80 * 1) = 179, cashback = floor(17980*0.02) = 359
	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(179), totals.PointsGranted)
	assert.Equal(t, int64(359), totals.CashbackGranted)
}

// Below the points minimum a customer still earns cashback: points have a
// floor, cashback does not.
func TestCalculateTotals_CustomerBelowMinimum(t *testing.T) {
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Esmalte", Price: 1500, Stock: 3}, 1))
	require.NoError(t, c.AttachCustomer("cust-1"))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(1500), totals.Total)
	assert.Zero(t, totals.PointsGranted)
	assert.Equal(t, int64(30), totals.CashbackGranted)
}

func TestCalculateTotals_MinimumBoundaryIsInclusive(t *testing.T) {
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Kit", Price: 5000, Stock: 3}, 1))
	require.NoError(t, c.AttachCustomer("cust-1"))

	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(50), totals.PointsGranted)
}

func TestCalculateTotals_DiscountCanPushBelowPointsMinimum(t *testing.T) {
	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Kit", Price: 5500, Stock: 3}, 1))
	require.NoError(t, c.AttachCustomer("cust-1"))
	require.NoError(t, c.SetDiscount(DiscountFixed, 1000))

	// Points are gated on the discounted total, not the subtotal.
	totals := CalculateTotals(c, loyalty())
	assert.Equal(t, int64(4500), totals.Total)
	assert.Zero(t, totals.PointsGranted)
	assert.Equal(t, int64(90), totals.CashbackGranted)
}

func TestCalculateTotals_FractionalRatesFloor(t *testing.T) {
	cfg := LoyaltyConfig{
		PointsPerCurrencyUnit: 0.5,
		MinimumForPoints:      0,
		CashbackPercent:       1.5,
	}

	c := NewCart("cart-1", "salon-1")
	require.NoError(t, c.AddProductLine(ProductRef{ID: "p1", Name: "Esmalte", Price: 333, Stock: 9}, 1))
	require.NoError(t, c.AttachCustomer("cust-1"))

	// points = floor(3.33 * 0.5) = 1; cashback = floor(333 * 0.015) = 4
	totals := CalculateTotals(c, cfg)
	assert.Equal(t, int64(1), totals.PointsGranted)
	assert.Equal(t, int64(4), totals.CashbackGranted)
}

func TestCalculateTotals_PureFunction(t *testing.T) {
	c := pricedCart(t, true)
	require.NoError(t, c.SetDiscount(DiscountPercent, 10))

	before := *c
	first := CalculateTotals(c, loyalty())
	second := CalculateTotals(c, loyalty())

	assert.Equal(t, first, second)
	assert.Equal(t, before.Discount, c.Discount)
	assert.Equal(t, before.Lines, c.Lines)
}

func TestCalculateTotals_EmptyCart(t *testing.T) {
	c := NewCart("cart-1", "salon-1")

	totals := CalculateTotals(c, loyalty())
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.Total)
}
