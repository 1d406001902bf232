package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/omnicart-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the catalog in the collections and products tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListCollections returns collections by position, then name.
func (r *Repository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	var rows []models.Collection
	if err := r.db.WithContext(ctx).Order("position ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProducts returns every product in catalog order.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Order("collection ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertCatalog writes every collection and product in data, updating rows
// that already exist by (collection, product_id).
func (r *Repository) UpsertCatalog(ctx context.Context, data *Data) error {
	if err := ValidateData(data); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, coll := range data.Collections {
			row := models.Collection{Name: coll.Name, Description: coll.Description, Position: position}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"description", "position", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("upsert collection %s: %w", coll.Name, err)
			}
			for _, product := range coll.Products {
				model := toModel(product)
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "collection"}, {Name: "product_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"name", "description", "small_description", "price", "original_price",
						"rating", "reviews", "tags", "sizes", "key_feature", "material", "fit",
						"care", "badge", "featured", "in_stock", "image_main", "images",
						"released_at", "updated_at",
					}),
				}).Create(&model).Error; err != nil {
					return fmt.Errorf("upsert product %s: %w", product.Ref(), err)
				}
			}
		}
		return nil
	})
}

// DBSource reads the catalog from the database for the store.
type DBSource struct {
	repo *Repository
}

// NewDBSource wraps a repository as a catalog source.
func NewDBSource(repo *Repository) *DBSource {
	return &DBSource{repo: repo}
}

func (s *DBSource) Fetch(ctx context.Context) (*Data, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byCollection := make(map[string][]Product, len(collections))
	for _, row := range products {
		byCollection[row.Collection] = append(byCollection[row.Collection], fromModel(row))
	}

	data := &Data{Collections: make([]CollectionData, 0, len(collections))}
	for _, coll := range collections {
		data.Collections = append(data.Collections, CollectionData{
			Name:        coll.Name,
			Description: coll.Description,
			Products:    byCollection[coll.Name],
		})
	}
	return data, nil
}

func toModel(p Product) models.Product {
	extra := make([]string, 0, 3)
	for _, img := range []string{p.Image2, p.Image3, p.Image4} {
		if img != "" {
			extra = append(extra, img)
		}
	}
	return models.Product{
		Collection:       p.Collection,
		ProductID:        p.ID,
		Name:             p.Name,
		Description:      p.Description,
		SmallDescription: p.SmallDescription,
		Price:            p.Price,
		OriginalPrice:    p.OriginalPrice,
		Rating:           p.Rating,
		Reviews:          p.Reviews,
		Tags:             cloneStrings(p.Tags),
		Sizes:            cloneStrings(p.Sizes),
		KeyFeature:       p.KeyFeature,
		Material:         p.Material,
		Fit:              p.Fit,
		Care:             p.Care,
		Badge:            p.Badge,
		Featured:         p.Featured,
		InStock:          p.InStock,
		ImageMain:        p.ImageMain,
		Images:           extra,
		ReleasedAt:       p.Date.Time,
	}
}

func fromModel(m models.Product) Product {
	p := Product{
		ID:               m.ProductID,
		Collection:       m.Collection,
		Name:             m.Name,
		Description:      m.Description,
		SmallDescription: m.SmallDescription,
		Price:            m.Price,
		OriginalPrice:    m.OriginalPrice,
		Rating:           m.Rating,
		Reviews:          m.Reviews,
		Tags:             m.Tags,
		Sizes:            m.Sizes,
		KeyFeature:       m.KeyFeature,
		Material:         m.Material,
		Fit:              m.Fit,
		Care:             m.Care,
		Badge:            m.Badge,
		Featured:         m.Featured,
		InStock:          m.InStock,
		ImageMain:        m.ImageMain,
		Date:             ReleaseDate{Time: m.ReleasedAt.UTC()},
	}
	extras := []*string{&p.Image2, &p.Image3, &p.Image4}
	for i, img := range m.Images {
		if i >= len(extras) {
			break
		}
		*extras[i] = img
	}
	return p
}
