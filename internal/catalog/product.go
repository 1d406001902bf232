package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// DefaultCollectionDescription is shown for collections without copy of their own.
const DefaultCollectionDescription = "Discover our amazing collection of products."

// ProductRef is the global identity of a product; ids repeat across collections.
type ProductRef struct {
	Collection string `json:"collection" validate:"required"`
	ID         int    `json:"id" validate:"gte=0"`
}

func (r ProductRef) String() string {
	return fmt.Sprintf("%s:%d", r.Collection, r.ID)
}

// ReleaseDate accepts either a calendar date or an RFC 3339 timestamp.
type ReleaseDate struct {
	time.Time
}

func (d ReleaseDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *ReleaseDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("release date: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		d.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("release date %q: expected YYYY-MM-DD", raw)
	}
	d.Time = parsed.UTC()
	return nil
}

// Product is a validated catalog record. Collection always names the stored
// collection the record belongs to, even when served through a derived view.
type Product struct {
	ID               int                `json:"id" validate:"gte=0"`
	Collection       string             `json:"collection"`
	Name             string             `json:"name" validate:"required"`
	Description      string             `json:"description"`
	SmallDescription string             `json:"small_description"`
	Price            int64              `json:"price" validate:"gte=0"`
	OriginalPrice    *int64             `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Rating           float64            `json:"rating" validate:"gte=0,lte=5"`
	Reviews          int                `json:"reviews" validate:"gte=0"`
	Tags             []string           `json:"tags"`
	Sizes            []string           `json:"sizes,omitempty"`
	Material         string             `json:"material"`
	Fit              string             `json:"fit"`
	Care             string             `json:"care"`
	KeyFeature       string             `json:"key_feature"`
	Badge            enums.ProductBadge `json:"badge,omitempty" validate:"omitempty,oneof=NEW TRENDING LIMITED"`
	Featured         bool               `json:"featured"`
	InStock          bool               `json:"inStock"`
	Date             ReleaseDate        `json:"date"`
	ImageMain        string             `json:"image_main"`
	Image2           string             `json:"image-2,omitempty"`
	Image3           string             `json:"image-3,omitempty"`
	Image4           string             `json:"image-4,omitempty"`
}

// Ref returns the product's global identity.
func (p Product) Ref() ProductRef {
	return ProductRef{Collection: p.Collection, ID: p.ID}
}

// Images lists the primary image followed by any extra images.
func (p Product) Images() []string {
	images := make([]string, 0, 4)
	for _, img := range []string{p.ImageMain, p.Image2, p.Image3, p.Image4} {
		if strings.TrimSpace(img) != "" {
			images = append(images, img)
		}
	}
	return images
}

// HasSizes reports whether a size must be chosen before adding to cart.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// HasSize reports whether size is one of the product's sizes. Matching ignores case.
func (p Product) HasSize(size string) bool {
	for _, candidate := range p.Sizes {
		if strings.EqualFold(candidate, strings.TrimSpace(size)) {
			return true
		}
	}
	return false
}

// CanonicalSize returns the catalog spelling of size.
func (p Product) CanonicalSize(size string) string {
	for _, candidate := range p.Sizes {
		if strings.EqualFold(candidate, strings.TrimSpace(size)) {
			return candidate
		}
	}
	return strings.TrimSpace(size)
}

// Clone returns a deep copy so callers never share slices with the snapshot.
func (p Product) Clone() Product {
	out := p
	out.Tags = cloneStrings(p.Tags)
	out.Sizes = cloneStrings(p.Sizes)
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// Collection summarises a listed collection. Derived collections are
// computed views over a base collection.
type Collection struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Derived     bool   `json:"derived"`
	Base        string `json:"base,omitempty"`
}
