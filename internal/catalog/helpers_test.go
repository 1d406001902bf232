package catalog

import (
	"testing"
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
)

func date(value string) ReleaseDate {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return ReleaseDate{Time: parsed}
}

func testProduct(id int, name string, price int64, rating float64, fit string, featured bool, released string) Product {
	return Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Rating:    rating,
		Fit:       fit,
		Featured:  featured,
		InStock:   true,
		Date:      date(released),
		Sizes:     []string{"S", "M", "L"},
		Tags:      []string{"casual"},
		ImageMain: "/img/" + name + ".jpg",
	}
}

// testData mirrors a small storefront: ids deliberately start at 1 and do not
// equal slice positions, so index-based lookups would fail.
func testData() *Data {
	return &Data{Collections: []CollectionData{
		{
			Name:        "polos",
			Description: "Polos",
			Products: []Product{
				testProduct(1, "Classic Polo", 1299, 4.5, "Regular Fit", true, "2024-03-10"),
				testProduct(2, "Boxy Polo", 999, 4.3, "Oversized Fit", false, "2024-05-02"),
				testProduct(3, "Pique Polo", 1499, 4.7, "Slim Fit", true, "2024-06-18"),
				testProduct(4, "Resort Polo", 1199, 3.9, "Relaxed Fit", false, "2023-11-22"),
				testProduct(5, "Heavy Polo", 1399, 4.6, "OVERSIZE drop", false, "2024-07-01"),
				testProduct(6, "Tipped Polo", 1099, 4.1, "Regular Fit", false, "2024-02-14"),
				testProduct(7, "Linen Polo", 1699, 4.4, "Regular Fit", true, "2024-08-05"),
			},
		},
		{
			Name: "bottoms",
			Products: []Product{
				{ID: 10, Name: "Gift Card", Price: 1000, Rating: 5, InStock: true, Date: date("2024-01-01"), Tags: []string{"gift"}},
				{ID: 11, Name: "Chinos", Price: 1799, Rating: 4.4, InStock: true, Badge: enums.ProductBadgeNew, Date: date("2024-03-03"), Sizes: []string{"30", "32"}, Description: "Stretch cotton"},
			},
		},
	}}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreFromData(testData())
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	return store
}

func ids(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
