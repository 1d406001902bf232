package models

import (
	"time"

	"github.com/angelmondragon/omnicart-backend/pkg/enums"
)

// Collection is a stored catalog partition. Derived collections such as
// "oversized" are computed in memory and never persisted.
type Collection struct {
	Name        string    `gorm:"column:name;primaryKey"`
	Description string    `gorm:"column:description;not null;default:''"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Product is one catalog entry. ProductID is the storefront id and is only
// unique within its collection.
type Product struct {
	ID               int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Collection       string             `gorm:"column:collection;not null;uniqueIndex:ux_products_collection_product"`
	ProductID        int                `gorm:"column:product_id;not null;uniqueIndex:ux_products_collection_product"`
	Name             string             `gorm:"column:name;not null"`
	Description      string             `gorm:"column:description;not null;default:''"`
	SmallDescription string             `gorm:"column:small_description;not null;default:''"`
	Price            int64              `gorm:"column:price;not null"`
	OriginalPrice    *int64             `gorm:"column:original_price"`
	Rating           float64            `gorm:"column:rating;not null;default:0"`
	Reviews          int                `gorm:"column:reviews;not null;default:0"`
	Tags             []string           `gorm:"column:tags;type:jsonb;serializer:json"`
	Sizes            []string           `gorm:"column:sizes;type:jsonb;serializer:json"`
	KeyFeature       string             `gorm:"column:key_feature;not null;default:''"`
	Material         string             `gorm:"column:material;not null;default:''"`
	Fit              string             `gorm:"column:fit;not null;default:''"`
	Care             string             `gorm:"column:care;not null;default:''"`
	Badge            enums.ProductBadge `gorm:"column:badge;not null;default:''"`
	Featured         bool               `gorm:"column:featured;not null;default:false"`
	InStock          bool               `gorm:"column:in_stock;not null;default:true"`
	ImageMain        string             `gorm:"column:image_main;not null;default:''"`
	Images           []string           `gorm:"column:images;type:jsonb;serializer:json"`
	ReleasedAt       time.Time          `gorm:"column:released_at;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
