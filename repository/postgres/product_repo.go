package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates a Postgres-backed product repository.
func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `code, category_code, name, description, tokens, cover, gallery, price_range, created_at, updated_at`

func (r *productRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	const query = `
		SELECT ` + productColumns + `
		FROM products
		WHERE code = $1
	`
	return scanProduct(r.pool.QueryRow(ctx, query, code))
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	const query = `
		SELECT ` + productColumns + `, COUNT(*) OVER() AS total
		FROM products
		WHERE ($1 = '' OR category_code = $1)
		  AND ($2 = '' OR $2 = ANY(tokens))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CategoryCode, filter.Token, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		products []domain.Product
		total    int
	)
	for rows.Next() {
		var (
			product                               domain.Product
			name, description, cover, gallery, pr []byte
		)
		if err := rows.Scan(
			&product.Code,
			&product.CategoryCode,
			&name,
			&description,
			&product.Tokens,
			&cover,
			&gallery,
			&pr,
			&product.CreatedAt,
			&product.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		unmarshalJSON(name, &product.Name)
		unmarshalJSON(description, &product.Description)
		unmarshalJSON(cover, &product.Cover)
		unmarshalJSON(gallery, &product.Gallery)
		unmarshalJSON(pr, &product.PriceRange)
		products = append(products, product)
	}
	return products, total, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product == nil || product.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO products (code, category_code, name, description, tokens, cover, gallery, price_range, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		product.Code,
		product.CategoryCode,
		marshalJSON(product.Name),
		marshalJSON(product.Description),
		product.Tokens,
		marshalJSON(product.Cover),
		marshalJSON(product.Gallery),
		marshalJSON(product.PriceRange),
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if product == nil || product.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		UPDATE products
		SET category_code = $2, name = $3, description = $4, tokens = $5, cover = $6, gallery = $7, updated_at = NOW()
		WHERE code = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		product.Code,
		product.CategoryCode,
		marshalJSON(product.Name),
		marshalJSON(product.Description),
		product.Tokens,
		marshalJSON(product.Cover),
		marshalJSON(product.Gallery),
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return err
	}
	return nil
}

func (r *productRepository) UpdatePriceRange(ctx context.Context, code string, priceRange domain.PriceRange) error {
	const query = `
		UPDATE products
		SET price_range = $2, updated_at = NOW()
		WHERE code = $1
	`
	tag, err := r.pool.Exec(ctx, query, code, marshalJSON(priceRange))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM products WHERE code = $1`
	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		product                               domain.Product
		name, description, cover, gallery, pr []byte
	)
	if err := row.Scan(
		&product.Code,
		&product.CategoryCode,
		&name,
		&description,
		&product.Tokens,
		&cover,
		&gallery,
		&pr,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	unmarshalJSON(name, &product.Name)
	unmarshalJSON(description, &product.Description)
	unmarshalJSON(cover, &product.Cover)
	unmarshalJSON(gallery, &product.Gallery)
	unmarshalJSON(pr, &product.PriceRange)
	return &product, nil
}
