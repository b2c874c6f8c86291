package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, is_admin, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW())
	          RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, is_admin, is_active, last_login, created_at
	          FROM users WHERE email = $1`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, is_admin, is_active, last_login, created_at
	          FROM users WHERE id = $1`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// EnsureAdmin creates the admin account if the email is unseen, or
// promotes an existing account. Used by the seeder.
func (r *Repository) EnsureAdmin(ctx context.Context, name, email, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, is_admin, is_active, created_at)
		 VALUES ($1, $2, $3, TRUE, TRUE, NOW())
		 ON CONFLICT (email) DO UPDATE SET is_admin = TRUE`,
		name, email, passwordHash)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}
