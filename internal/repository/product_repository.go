package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type productRepo struct {
	db *pgxpool.Pool
}

var validate = validator.New()

func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *models.Product, variants []models.Variant, imageURLs []string) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	for _, v := range variants {
		if err := validate.Struct(v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO products (
			name,
			description,
			price,
			is_featured,
			created_by,
			created_at
	) VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING product_id
	`

	p.CreatedAt = time.Now()

	err = tx.QueryRow(ctx, sql,
		p.Name,
		p.Description,
		p.Price,
		p.IsFeatured,
		p.CreatedBy,
		p.CreatedAt,
	).Scan(&p.ProductID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	insertVariant := `
		INSERT INTO product_variants (product_id, color, color_name, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING variant_id
	`
	for i := range variants {
		variants[i].ProductID = p.ProductID
		err := tx.QueryRow(ctx, insertVariant,
			p.ProductID,
			variants[i].Color,
			variants[i].ColorName,
			variants[i].Quantity,
		).Scan(&variants[i].VariantID)
		if err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
	}

	// The first uploaded image becomes the primary one.
	insertImage := `
		INSERT INTO product_images (product_id, image_url, is_primary)
		VALUES ($1, $2, $3)
	`
	for i, url := range imageURLs {
		if _, err := tx.Exec(ctx, insertImage, p.ProductID, url, i == 0); err != nil {
			return fmt.Errorf("failed to create product image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.Variants = variants
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `
		SELECT
			product_id,
			name,
			description,
			price,
			is_featured,
			created_by,
			created_at
		FROM products WHERE product_id = $1
	`

	var product models.Product

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&product.ProductID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.IsFeatured,
		&product.CreatedBy,
		&product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}

	if err := r.attachChildren(ctx, []*models.Product{&product}); err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepo) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	sql := `
		SELECT
			product_id,
			name,
			description,
			price,
			is_featured,
			created_by,
			created_at
		FROM products
	`

	var args []any
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		sql += ` WHERE is_featured = $1`
	}
	if filter.SortNewest {
		sql += ` ORDER BY created_at DESC, product_id DESC`
	} else {
		sql += ` ORDER BY product_id`
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ProductID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.IsFeatured,
			&p.CreatedBy,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	refs := make([]*models.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := r.attachChildren(ctx, refs); err != nil {
		return nil, err
	}

	return products, nil
}

// attachChildren loads variants and images for the given products in two
// batched queries keyed by product id.
func (r *productRepo) attachChildren(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int]*models.Product, len(products))
	ids := make([]int, 0, len(products))
	for _, p := range products {
		p.Variants = []models.Variant{}
		p.Images = []models.Image{}
		byID[p.ProductID] = p
		ids = append(ids, p.ProductID)
	}

	variantSQL := `
		SELECT variant_id, product_id, color, color_name, quantity
		FROM product_variants
		WHERE product_id = ANY($1::int[])
		ORDER BY variant_id
	`
	rows, err := r.db.Query(ctx, variantSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to get product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Variant
		if err := rows.Scan(&v.VariantID, &v.ProductID, &v.Color, &v.ColorName, &v.Quantity); err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		byID[v.ProductID].Variants = append(byID[v.ProductID].Variants, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to complete row iteration: %w", err)
	}

	imageSQL := `
		SELECT image_id, product_id, image_url, is_primary
		FROM product_images
		WHERE product_id = ANY($1::int[])
		ORDER BY image_id
	`
	rows, err = r.db.Query(ctx, imageSQL, ids)
	if err != nil {
		return fmt.Errorf("failed to get product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ImageID, &img.ProductID, &img.ImageURL, &img.IsPrimary); err != nil {
			return fmt.Errorf("failed to scan image: %w", err)
		}
		byID[img.ProductID].Images = append(byID[img.ProductID].Images, img)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return nil
}

// Reconcile brings a product's persisted state to the desired one inside a
// single transaction: scalar update, variant diff (deletes before updates
// and inserts, so a freed natural key can be reused), new image rows, image
// row deletions, then primary reassignment. Blob cleanup for the returned
// URLs is the caller's responsibility and must never fail the update.
func (r *productRepo) Reconcile(ctx context.Context, id int, desired models.ProductUpdate) ([]string, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	if err := validate.Struct(desired); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if desired.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	for _, v := range desired.Variants {
		if err := validate.Struct(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateSQL := `
		UPDATE products SET
			name = $1,
			description = $2,
			price = $3,
			is_featured = $4
		WHERE product_id = $5
	`
	tag, err := tx.Exec(ctx, updateSQL,
		desired.Name,
		desired.Description,
		desired.Price,
		desired.IsFeatured,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	rows, err := tx.Query(ctx, `SELECT variant_id FROM product_variants WHERE product_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant ids: %w", err)
	}
	var existingIDs []int
	for rows.Next() {
		var vid int
		if err := rows.Scan(&vid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan variant id: %w", err)
		}
		existingIDs = append(existingIDs, vid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	diff := diffVariants(existingIDs, desired.Variants)

	if len(diff.ToDelete) > 0 {
		_, err := tx.Exec(ctx,
			`DELETE FROM product_variants WHERE product_id = $1 AND variant_id = ANY($2::int[])`,
			id, diff.ToDelete,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to delete variants: %w", err)
		}
	}

	for _, v := range diff.ToUpdate {
		tag, err := tx.Exec(ctx,
			`UPDATE product_variants SET color = $1, color_name = $2, quantity = $3
			 WHERE variant_id = $4 AND product_id = $5`,
			v.Color, v.ColorName, v.Quantity, v.VariantID, id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update variant %d: %w", v.VariantID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: variant %d does not belong to product %d", ErrNotFound, v.VariantID, id)
		}
	}

	for _, v := range diff.ToInsert {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_variants (product_id, color, color_name, quantity)
			 VALUES ($1, $2, $3, $4)`,
			id, v.Color, v.ColorName, v.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert variant: %w", err)
		}
	}

	// New uploads never change the primary; that is an explicit step below.
	for _, url := range desired.NewImageURLs {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_images (product_id, image_url, is_primary) VALUES ($1, $2, FALSE)`,
			id, url,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert image: %w", err)
		}
	}

	var removedURLs []string
	for _, imageID := range desired.ImagesToDelete {
		var url string
		err := tx.QueryRow(ctx,
			`DELETE FROM product_images WHERE image_id = $1 AND product_id = $2 RETURNING image_url`,
			imageID, id,
		).Scan(&url)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: image %d does not belong to product %d", ErrNotFound, imageID, id)
			}
			return nil, fmt.Errorf("failed to delete image %d: %w", imageID, err)
		}
		removedURLs = append(removedURLs, url)
	}

	if desired.PrimaryImageID != nil {
		_, err := tx.Exec(ctx,
			`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to clear primary image: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`UPDATE product_images SET is_primary = TRUE WHERE image_id = $1 AND product_id = $2`,
			*desired.PrimaryImageID, id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to set primary image: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: image %d does not belong to product %d", ErrNotFound, *desired.PrimaryImageID, id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return removedURLs, nil
}

func (r *productRepo) Delete(ctx context.Context, id int) ([]string, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT image_url FROM product_images WHERE product_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get image urls: %w", err)
	}
	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan image url: %w", err)
		}
		urls = append(urls, url)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	// Variants and images cascade with the product row.
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return urls, nil
}

func (r *productRepo) DeleteImage(ctx context.Context, productID, imageID int) (string, error) {
	if productID <= 0 || imageID <= 0 {
		return "", fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	var url string
	err := r.db.QueryRow(ctx,
		`DELETE FROM product_images WHERE image_id = $1 AND product_id = $2 RETURNING image_url`,
		imageID, productID,
	).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete image %d: %w", imageID, err)
	}

	return url, nil
}
