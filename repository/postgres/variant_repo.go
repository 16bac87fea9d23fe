package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type variantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository instantiates a Postgres-backed variant repository.
func NewVariantRepository(pool *pgxpool.Pool) repository.VariantRepository {
	return &variantRepository{pool: pool}
}

const variantColumns = `code, product_code, capacity, duration, vnd, usd, created_at, updated_at`

func (r *variantRepository) GetByCode(ctx context.Context, code string) (*domain.Variant, error) {
	const query = `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE code = $1
	`
	variant, err := scanVariant(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, err
	}
	return variant, nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productCode string) ([]domain.Variant, error) {
	const query = `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_code = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, productCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *variant)
	}
	return variants, rows.Err()
}

func (r *variantRepository) Create(ctx context.Context, variant *domain.Variant) error {
	if variant == nil || variant.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO product_variants (code, product_code, capacity, duration, vnd, usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		variant.Code,
		variant.ProductCode,
		variant.Capacity,
		variant.Duration,
		marshalJSON(variant.VND),
		marshalJSON(variant.USD),
	).Scan(&variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *variantRepository) CreateMany(ctx context.Context, variants []domain.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO product_variants (code, product_code, capacity, duration, vnd, usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	for _, variant := range variants {
		batch.Queue(query,
			variant.Code,
			variant.ProductCode,
			variant.Capacity,
			variant.Duration,
			marshalJSON(variant.VND),
			marshalJSON(variant.USD),
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range variants {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrCodeTaken
			}
			return err
		}
	}
	return nil
}

func (r *variantRepository) Update(ctx context.Context, variant *domain.Variant) error {
	if variant == nil || variant.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		UPDATE product_variants
		SET capacity = $2, duration = $3, vnd = $4, usd = $5, updated_at = NOW()
		WHERE code = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		variant.Code,
		variant.Capacity,
		variant.Duration,
		marshalJSON(variant.VND),
		marshalJSON(variant.USD),
	).Scan(&variant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrVariantNotFound
		}
		return err
	}
	return nil
}

func (r *variantRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM product_variants WHERE code = $1`
	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

func scanVariant(row pgx.Row) (*domain.Variant, error) {
	var (
		variant  domain.Variant
		vnd, usd []byte
	)
	if err := row.Scan(
		&variant.Code,
		&variant.ProductCode,
		&variant.Capacity,
		&variant.Duration,
		&vnd,
		&usd,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	unmarshalJSON(vnd, &variant.VND)
	unmarshalJSON(usd, &variant.USD)
	return &variant, nil
}
