package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Line is one cart entry. ID is "collection:id:size" with an empty size
// segment for unsized products; there is at most one line per ID.
type Line struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	ProductID  int       `json:"product_id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Size       string    `json:"size"`
	UnitPrice  int64     `json:"price"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"added_at"`
}

// Ref returns the product the line points at.
func (l Line) Ref() catalog.ProductRef {
	return catalog.ProductRef{Collection: l.Collection, ID: l.ProductID}
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// LineID builds the identity of a (product, size) pair.
func LineID(ref catalog.ProductRef, size string) string {
	return fmt.Sprintf("%s:%d:%s", ref.Collection, ref.ID, strings.TrimSpace(size))
}

// Clamp bounds a quantity to [MinQuantity, MaxQuantity].
func Clamp(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

// Cart is a read view of a visitor's lines.
type Cart struct {
	Lines     []Line `json:"items"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
}

func newCart(lines []Line) *Cart {
	if lines == nil {
		lines = []Line{}
	}
	c := &Cart{Lines: lines}
	for _, line := range lines {
		c.ItemCount += line.Quantity
		c.Subtotal += line.LineTotal()
	}
	return c
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// PricingLines projects the cart for the price calculator.
func (c *Cart) PricingLines() []pricing.Line {
	if c == nil {
		return nil
	}
	out := make([]pricing.Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		out = append(out, pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return out
}

func cloneLines(in []Line) []Line {
	if in == nil {
		return nil
	}
	out := make([]Line, len(in))
	copy(out, in)
	return out
}
