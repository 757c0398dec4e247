package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   int             `json:"product_id"`
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsFeatured  bool            `json:"is_featured"`
	CreatedBy   *int            `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Variants    []Variant       `json:"variants"`
	Images      []Image         `json:"images"`
}

type Variant struct {
	VariantID int    `json:"variant_id,omitempty"`
	ProductID int    `json:"product_id,omitempty"`
	Color     string `json:"color"`
	ColorName string `json:"color_name" validate:"required,max=100"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type Image struct {
	ImageID   int    `json:"image_id"`
	ProductID int    `json:"product_id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductFilter narrows List results. The zero value returns everything
// ordered by id.
type ProductFilter struct {
	Featured   *bool
	SortNewest bool
	Limit      int
}

// ProductUpdate is the desired state applied by Reconcile. Variants carrying
// a VariantID refer to persisted rows, the rest are inserted as new rows.
// NewImageURLs have already been written to the blob store by the caller.
type ProductUpdate struct {
	Name           string `validate:"required,min=2,max=200"`
	Description    string
	Price          decimal.Decimal
	IsFeatured     bool
	Variants       []Variant
	NewImageURLs   []string
	ImagesToDelete []int
	PrimaryImageID *int
}
