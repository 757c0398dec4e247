package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

// uniqueViolation maps a 23505 on the users table to ErrDuplicate with a
// message naming the colliding column.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return fmt.Errorf("%w: email already exists", ErrDuplicate)
		}
		if strings.Contains(pgErr.ConstraintName, "username") {
			return fmt.Errorf("%w: username already exists", ErrDuplicate)
		}
		return fmt.Errorf("%w: username or email already exists", ErrDuplicate)
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: password hash required", ErrInvalidInput)
	}

	sql := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`

	u.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql, u.Username, u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.UserID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepo) GetAll(ctx context.Context) ([]models.User, error) {
	sql := `SELECT user_id, username, email, created_at FROM users ORDER BY user_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UserID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return users, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrInvalidInput)
	}

	sql := `
		SELECT user_id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`

	var u models.User
	err := r.db.QueryRow(ctx, sql, username).Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return &u, nil
}

// Update applies the non-nil fields, building the SET list dynamically the
// same way the admin edits only the submitted columns.
func (r *userRepo) Update(ctx context.Context, id int, update models.UserUpdate) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	var sets []string
	var args []any

	if update.Username != nil {
		args = append(args, *update.Username)
		sets = append(sets, fmt.Sprintf("username = $%d", len(args)))
	}
	if update.Email != nil {
		args = append(args, *update.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if update.PasswordHash != nil {
		args = append(args, *update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}

	if len(sets) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	args = append(args, id)
	sql := fmt.Sprintf("UPDATE users SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *userRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("%w: password hash required", ErrInvalidInput)
	}
	return r.Update(ctx, id, models.UserUpdate{PasswordHash: &passwordHash})
}
