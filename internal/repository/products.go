package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shray90/YalaCarves-sub001/internal/domain"
)

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, original_price, category_id, artisan, image, stock, is_active, created_at
		FROM products
		WHERE is_active
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.OriginalPrice,
			&p.CategoryID,
			&p.Artisan,
			&p.Image,
			&p.Stock,
			&p.IsActive,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, original_price, category_id, artisan, image, stock, is_active, created_at
		FROM products
		WHERE id = $1
	`

	p := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.CategoryID,
		&p.Artisan,
		&p.Image,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// UpsertCategory inserts a category by name or leaves an existing one
// untouched, returning its id. Used by the seeder.
func (r *Repository) UpsertCategory(ctx context.Context, category *domain.Category) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		 RETURNING id`,
		category.Name, category.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert category: %w", err)
	}
	return id, nil
}

// UpsertProduct inserts a product by name or refreshes its listing
// fields, returning its id. Stock is only set on first insert so
// reseeding never clobbers live inventory.
func (r *Repository) UpsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, original_price, category_id, artisan, image, stock, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (name) DO UPDATE SET
		     description = EXCLUDED.description,
		     price = EXCLUDED.price,
		     original_price = EXCLUDED.original_price,
		     category_id = EXCLUDED.category_id,
		     artisan = EXCLUDED.artisan,
		     image = EXCLUDED.image,
		     is_active = EXCLUDED.is_active
		 RETURNING id`,
		product.Name, product.Description, product.Price, product.OriginalPrice,
		product.CategoryID, product.Artisan, product.Image, product.Stock, product.IsActive).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}
	return id, nil
}
