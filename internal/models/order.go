package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID         int                 `json:"order_id"`
	UserID          *int                `json:"user_id"`
	CustomerName    string              `json:"customer_name" validate:"required,min=2,max=150"`
	CustomerPhone   string              `json:"customer_phone" validate:"required,max=30"`
	CustomerAddress string              `json:"customer_address" validate:"required,max=500"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingCost    decimal.NullDecimal `json:"shipping_cost"`
	StatusID        int                 `json:"status_id"`
	OrderDate       time.Time           `json:"order_date"`
}

type OrderItem struct {
	OrderItemID int             `json:"order_item_id"`
	OrderID     int             `json:"order_id"`
	VariantID   int             `json:"variant_id" validate:"gt=0"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price"`
}

// OrderSummary is one row of the admin order listing: the order joined to
// its account, status and a flattened per-item description.
type OrderSummary struct {
	OrderID         int                 `json:"order_id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          string              `json:"status"`
	OrderDate       time.Time           `json:"order_date"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	CustomerAddress string              `json:"customer_address"`
	UserUsername    *string             `json:"user_username"`
	UserEmail       *string             `json:"user_email"`
	ProductsSummary *string             `json:"products_summary"`
	ShippingCost    decimal.NullDecimal `json:"shipping_cost"`
}

// OrderDetail is a single order with its line items expanded against the
// catalog for display. Item prices are the snapshot captured at order time.
type OrderDetail struct {
	Order
	Status       string            `json:"status"`
	UserUsername *string           `json:"user_username"`
	UserEmail    *string           `json:"user_email"`
	Items        []OrderDetailItem `json:"items"`
}

type OrderDetailItem struct {
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	ColorName   string          `json:"color_name"`
	ImageURL    *string         `json:"image_url"`
}

type OrderStatus struct {
	StatusID   int    `json:"id"`
	StatusName string `json:"status_name"`
}
