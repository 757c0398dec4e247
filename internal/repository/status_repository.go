package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type statusRepo struct {
	db *pgxpool.Pool
}

func NewStatusRepository(db *pgxpool.Pool) StatusRepository {
	return &statusRepo{db: db}
}

func (r *statusRepo) GetAll(ctx context.Context) ([]models.OrderStatus, error) {
	sql := `SELECT status_id, status_name FROM order_statuses ORDER BY status_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get order statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.OrderStatus
	for rows.Next() {
		var s models.OrderStatus
		if err := rows.Scan(&s.StatusID, &s.StatusName); err != nil {
			return nil, fmt.Errorf("failed to scan order status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return statuses, nil
}
