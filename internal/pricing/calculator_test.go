package pricing

import (
	"testing"

	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/stretchr/testify/assert"
)

func testCalculator() *Calculator {
	return NewCalculator(config.PricingConfig{
		PromoCodes:            map[string]int{"OMNI10": 10, "welcome20": 20, "FREE": 100},
		FreeShippingThreshold: 999,
		FlatShippingFee:       99,
		Currency:              "INR",
	})
}

func TestComputeTotals(t *testing.T) {
	calc := testCalculator()

	cases := []struct {
		name  string
		lines []Line
		code  string
		want  Totals
		promo PromoResult
	}{
		{
			name:  "empty cart ships free",
			lines: nil,
			want:  Totals{Currency: "INR", FreeAbove: 999},
			promo: PromoResult{},
		},
		{
			name:  "below threshold pays flat fee",
			lines: []Line{{UnitPrice: 499, Quantity: 1}},
			want:  Totals{ItemCount: 1, Subtotal: 499, Shipping: 99, Total: 598, Currency: "INR", FreeAbove: 999},
		},
		{
			name:  "threshold itself still pays shipping",
			lines: []Line{{UnitPrice: 333, Quantity: 3}},
			want:  Totals{ItemCount: 3, Subtotal: 999, Shipping: 99, Total: 1098, Currency: "INR", FreeAbove: 999},
		},
		{
			name:  "above threshold ships free",
			lines: []Line{{UnitPrice: 1299, Quantity: 1}, {UnitPrice: 999, Quantity: 2}},
			want:  Totals{ItemCount: 3, Subtotal: 3297, Total: 3297, Currency: "INR", FreeAbove: 999},
		},
		{
			name:  "promo is case-insensitive and rounds half away from zero",
			lines: []Line{{UnitPrice: 1295, Quantity: 1}},
			code:  " omni10 ",
			want:  Totals{ItemCount: 1, Subtotal: 1295, DiscountPct: 10, Discount: 130, Total: 1165, Currency: "INR", FreeAbove: 999},
			promo: PromoResult{Code: "OMNI10", Applied: true, Percent: 10},
		},
		{
			name:  "table keys are normalised too",
			lines: []Line{{UnitPrice: 500, Quantity: 1}},
			code:  "WELCOME20",
			want:  Totals{ItemCount: 1, Subtotal: 500, DiscountPct: 20, Discount: 100, Shipping: 99, Total: 499, Currency: "INR", FreeAbove: 999},
			promo: PromoResult{Code: "WELCOME20", Applied: true, Percent: 20},
		},
		{
			name:  "unknown code prices at zero percent",
			lines: []Line{{UnitPrice: 500, Quantity: 1}},
			code:  "bogus",
			want:  Totals{ItemCount: 1, Subtotal: 500, Shipping: 99, Total: 599, Currency: "INR", FreeAbove: 999},
			promo: PromoResult{Code: "BOGUS", Reason: ReasonInvalidPromo},
		},
		{
			name:  "full discount keeps shipping",
			lines: []Line{{UnitPrice: 500, Quantity: 1}},
			code:  "FREE",
			want:  Totals{ItemCount: 1, Subtotal: 500, DiscountPct: 100, Discount: 500, Shipping: 99, Total: 99, Currency: "INR", FreeAbove: 999},
			promo: PromoResult{Code: "FREE", Applied: true, Percent: 100},
		},
		{
			name:  "non-positive quantities are ignored",
			lines: []Line{{UnitPrice: 500, Quantity: 0}, {UnitPrice: 500, Quantity: -2}},
			want:  Totals{Currency: "INR", FreeAbove: 999},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals, promo := calc.ComputeTotals(tc.lines, tc.code)
			assert.Equal(t, tc.want, totals)
			assert.Equal(t, tc.promo, promo)
		})
	}
}

func TestComputeTotalsIsNeverNegative(t *testing.T) {
	calc := NewCalculator(config.PricingConfig{PromoCodes: map[string]int{"ALL": 100}, FreeShippingThreshold: 0})
	totals, _ := calc.ComputeTotals([]Line{{UnitPrice: 10, Quantity: 1}}, "ALL")
	assert.Equal(t, int64(0), totals.Total)
}

func TestPromoResultRejected(t *testing.T) {
	assert.False(t, PromoResult{}.Rejected())
	assert.True(t, PromoResult{Code: "X"}.Rejected())
	assert.False(t, PromoResult{Code: "X", Applied: true}.Rejected())
}

func TestLookupPromo(t *testing.T) {
	calc := testCalculator()
	pct, ok := calc.LookupPromo("Welcome20")
	assert.True(t, ok)
	assert.Equal(t, 20, pct)
	_, ok = calc.LookupPromo("")
	assert.False(t, ok)
}
