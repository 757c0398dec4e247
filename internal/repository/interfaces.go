package repository

import (
	"context"

	"shop-backend/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product, variants []models.Variant, imageURLs []string) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Delete(ctx context.Context, id int) (imageURLs []string, err error)

	// Reconcile applies the desired state to an existing product in one
	// transaction and returns the storage URLs of every image row it
	// removed, so the caller can clean up the blobs.
	Reconcile(ctx context.Context, id int, desired models.ProductUpdate) (removedImageURLs []string, err error)
	DeleteImage(ctx context.Context, productID, imageID int) (imageURL string, err error)
}

type OrderRepository interface {
	Place(ctx context.Context, order *models.Order, items []models.OrderItem) error
	List(ctx context.Context) ([]models.OrderSummary, error)
	GetWithItems(ctx context.Context, id int) (*models.OrderDetail, error)
	SetStatus(ctx context.Context, id, statusID int) error
	Cancel(ctx context.Context, id int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id int, update models.UserUpdate) error
	Delete(ctx context.Context, id int) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

type StatusRepository interface {
	GetAll(ctx context.Context) ([]models.OrderStatus, error)
}

type ConfigRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
