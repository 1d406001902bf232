package pricing

import (
	"strings"

	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/shopspring/decimal"
)

// ReasonInvalidPromo is reported when a non-empty code is not in the table.
const ReasonInvalidPromo = "Invalid promo code"

var hundred = decimal.NewFromInt(100)

// Line is the price-relevant part of a cart line.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Totals is the checkout breakdown. Amounts share the catalog's minor unit.
type Totals struct {
	ItemCount   int    `json:"item_count"`
	Subtotal    int64  `json:"subtotal"`
	DiscountPct int    `json:"discount_pct"`
	Discount    int64  `json:"discount"`
	Shipping    int64  `json:"shipping"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
	FreeAbove   int64  `json:"free_shipping_above"`
}

// PromoResult explains what happened to the requested code.
type PromoResult struct {
	Code    string `json:"code,omitempty"`
	Applied bool   `json:"applied"`
	Percent int    `json:"percent"`
	Reason  string `json:"reason,omitempty"`
}

// Rejected reports whether a code was given and could not be applied.
func (p PromoResult) Rejected() bool {
	return p.Code != "" && !p.Applied
}

// Calculator prices a cart from the configured promo and shipping table.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	promos    map[string]int
	threshold int64
	flatFee   int64
	currency  string
}

// NewCalculator copies the pricing table out of cfg.
func NewCalculator(cfg config.PricingConfig) *Calculator {
	promos := make(map[string]int, len(cfg.PromoCodes))
	for code, pct := range cfg.PromoCodes {
		promos[normalizeCode(code)] = pct
	}
	return &Calculator{
		promos:    promos,
		threshold: cfg.FreeShippingThreshold,
		flatFee:   cfg.FlatShippingFee,
		currency:  cfg.Currency,
	}
}

// LookupPromo returns the percent for code. Codes are case-insensitive.
func (c *Calculator) LookupPromo(code string) (int, bool) {
	pct, ok := c.promos[normalizeCode(code)]
	return pct, ok
}

// ComputeTotals prices lines with an optional promo code. An empty code means
// no promo; an unknown code prices at 0% and reports why.
func (c *Calculator) ComputeTotals(lines []Line, promoCode string) (Totals, PromoResult) {
	totals := Totals{Currency: c.currency, FreeAbove: c.threshold}
	for _, line := range lines {
		if line.Quantity <= 0 || line.UnitPrice < 0 {
			continue
		}
		totals.ItemCount += line.Quantity
		totals.Subtotal += line.UnitPrice * int64(line.Quantity)
	}

	promo := PromoResult{Code: normalizeCode(promoCode)}
	if promo.Code != "" {
		if pct, ok := c.promos[promo.Code]; ok {
			promo.Applied = true
			promo.Percent = pct
		} else {
			promo.Reason = ReasonInvalidPromo
		}
	}
	totals.DiscountPct = promo.Percent
	totals.Discount = discount(totals.Subtotal, promo.Percent)

	switch {
	case totals.ItemCount == 0:
		totals.Shipping = 0
	case totals.Subtotal > c.threshold:
		totals.Shipping = 0
	default:
		totals.Shipping = c.flatFee
	}

	total := totals.Subtotal - totals.Discount + totals.Shipping
	if total < 0 {
		total = 0
	}
	totals.Total = total
	return totals, promo
}

// discount rounds subtotal*pct/100 half away from zero.
func discount(subtotal int64, pct int) int64 {
	if pct <= 0 || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Round(0).
		IntPart()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
