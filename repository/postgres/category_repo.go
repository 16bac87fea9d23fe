package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates a Postgres-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetByCode(ctx context.Context, code string) (*domain.Category, error) {
	const query = `
		SELECT code, name, created_at, updated_at
		FROM product_categories
		WHERE code = $1
	`
	var (
		category domain.Category
		name     []byte
	)
	err := r.pool.QueryRow(ctx, query, code).Scan(&category.Code, &name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	unmarshalJSON(name, &category.Name)
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
		SELECT code, name, created_at, updated_at
		FROM product_categories
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var (
			category domain.Category
			name     []byte
		)
		if err := rows.Scan(&category.Code, &name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		unmarshalJSON(name, &category.Name)
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category == nil || category.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO product_categories (code, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, category.Code, marshalJSON(category.Name)).
		Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if category == nil || category.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		UPDATE product_categories
		SET name = $2, updated_at = NOW()
		WHERE code = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query, category.Code, marshalJSON(category.Name)).Scan(&category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM product_categories WHERE code = $1`
	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
