package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/angelmondragon/omnicart-backend/pkg/config"
)

// Source produces the raw catalog. Implementations read a JSON file or the database.
type Source interface {
	Fetch(ctx context.Context) (*Data, error)
}

// Data is one full catalog read, before derived collections are applied.
type Data struct {
	Collections []CollectionData
}

// CollectionData is a stored collection and its products in catalog order.
type CollectionData struct {
	Name        string
	Description string
	Products    []Product
}

type fileDocument struct {
	Products               map[string][]fileProduct `json:"products"`
	CollectionDescriptions map[string]string        `json:"collection_description"`
	CollectionOrder        []string                 `json:"collection_order,omitempty"`
}

// fileProduct mirrors Product but lets inStock default to true when absent.
type fileProduct struct {
	Product
	InStock *bool `json:"inStock"`
}

// FileSource reads `{ "products": {collection: [...]}, "collection_description": {...} }`.
type FileSource struct {
	path string
}

// NewFileSource builds a source for the JSON document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseDocument(raw)
}

// ParseDocument decodes and validates a catalog JSON document.
func ParseDocument(raw []byte) (*Data, error) {
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	data := &Data{}
	for _, name := range collectionOrder(doc) {
		records := doc.Products[name]
		products := make([]Product, 0, len(records))
		for _, record := range records {
			product := record.Product
			product.InStock = record.InStock == nil || *record.InStock
			products = append(products, product)
		}
		data.Collections = append(data.Collections, CollectionData{
			Name:        name,
			Description: doc.CollectionDescriptions[name],
			Products:    products,
		})
	}
	if err := ValidateData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// collectionOrder follows collection_order when given, then the remaining names alphabetically.
func collectionOrder(doc fileDocument) []string {
	seen := make(map[string]bool, len(doc.Products))
	names := make([]string, 0, len(doc.Products))
	for _, name := range doc.CollectionOrder {
		if _, ok := doc.Products[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(doc.Products))
	for name := range doc.Products {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

var productValidator = validator.New()

// ValidateData checks every record once and stamps each product with its collection.
// It reports every invalid record, not just the first.
func ValidateData(data *Data) error {
	if data == nil {
		return fmt.Errorf("catalog data is nil")
	}
	var errs error
	for ci := range data.Collections {
		coll := &data.Collections[ci]
		coll.Name = strings.ToLower(strings.TrimSpace(coll.Name))
		if coll.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("collection %d has no name", ci))
			continue
		}
		if _, derived := derivedByName(coll.Name); derived {
			errs = multierr.Append(errs, fmt.Errorf("collection %q is derived and cannot be stored", coll.Name))
			continue
		}
		ids := make(map[int]bool, len(coll.Products))
		for pi := range coll.Products {
			product := &coll.Products[pi]
			product.Collection = coll.Name
			if err := productValidator.Struct(product); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s product %d: %w", coll.Name, product.ID, err))
				continue
			}
			if ids[product.ID] {
				errs = multierr.Append(errs, fmt.Errorf("%s product %d: duplicate id", coll.Name, product.ID))
				continue
			}
			ids[product.ID] = true
		}
	}
	return errs
}

// NewSourceFromConfig returns the file source or, for the "db" source, one
// backed by repo.
func NewSourceFromConfig(cfg config.CatalogConfig, repo *Repository) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case config.CatalogSourceFile, "":
		return NewFileSource(cfg.Path), nil
	case config.CatalogSourceDB:
		if repo == nil {
			return nil, fmt.Errorf("catalog repository required for %q source", config.CatalogSourceDB)
		}
		return NewDBSource(repo), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
