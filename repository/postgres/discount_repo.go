package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type discountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository instantiates a Postgres-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool) repository.DiscountRepository {
	return &discountRepository{pool: pool}
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*domain.Discount, error) {
	const query = `
		SELECT code, discount_percent, created_at, updated_at
		FROM discounts
		WHERE code = $1
	`
	var discount domain.Discount
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&discount.Code,
		&discount.DiscountPercent,
		&discount.CreatedAt,
		&discount.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDiscountNotFound
		}
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) List(ctx context.Context) ([]domain.Discount, error) {
	const query = `
		SELECT code, discount_percent, created_at, updated_at
		FROM discounts
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discounts []domain.Discount
	for rows.Next() {
		var discount domain.Discount
		if err := rows.Scan(
			&discount.Code,
			&discount.DiscountPercent,
			&discount.CreatedAt,
			&discount.UpdatedAt,
		); err != nil {
			return nil, err
		}
		discounts = append(discounts, discount)
	}
	return discounts, rows.Err()
}

func (r *discountRepository) Create(ctx context.Context, discount *domain.Discount) error {
	if discount == nil || discount.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO discounts (code, discount_percent, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, discount.Code, discount.DiscountPercent).
		Scan(&discount.CreatedAt, &discount.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *discountRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM discounts WHERE code = $1`
	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDiscountNotFound
	}
	return nil
}
