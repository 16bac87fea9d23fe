package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates a Postgres-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `code, email, phone, shipping_address, note, items, discount_code, total_price, qr_image_url, order_status, payment_status, created_at, updated_at`

func (r *orderRepository) GetByCode(ctx context.Context, code string) (*domain.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE code = $1
	`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) SearchByCodeSuffix(ctx context.Context, suffix string) (*domain.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE code LIKE '%' || $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, suffix))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	const query = `
		SELECT ` + orderColumns + `, COUNT(*) OVER() AS total
		FROM orders
		WHERE ($1 = '' OR order_status = $1)
		  AND ($2 = '' OR payment_status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		string(filter.OrderStatus),
		string(filter.PaymentStatus),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		total  int
	)
	for rows.Next() {
		var (
			order domain.Order
			items []byte
		)
		if err := rows.Scan(
			&order.Code,
			&order.Email,
			&order.Phone,
			&order.ShippingAddress,
			&order.Note,
			&items,
			&order.DiscountCode,
			&order.TotalPrice,
			&order.QRImageURL,
			&order.OrderStatus,
			&order.PaymentStatus,
			&order.CreatedAt,
			&order.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		unmarshalJSON(items, &order.Items)
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil || order.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO orders (code, email, phone, shipping_address, note, items, discount_code, total_price, qr_image_url, order_status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		order.Code,
		order.Email,
		order.Phone,
		order.ShippingAddress,
		order.Note,
		marshalJSON(order.Items),
		order.DiscountCode,
		order.TotalPrice,
		order.QRImageURL,
		order.OrderStatus,
		order.PaymentStatus,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	if order == nil || order.Code == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		UPDATE orders
		SET email = $2, phone = $3, shipping_address = $4, note = $5, items = $6,
		    discount_code = $7, total_price = $8, qr_image_url = $9,
		    order_status = $10, payment_status = $11, updated_at = NOW()
		WHERE code = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		order.Code,
		order.Email,
		order.Phone,
		order.ShippingAddress,
		order.Note,
		marshalJSON(order.Items),
		order.DiscountCode,
		order.TotalPrice,
		order.QRImageURL,
		order.OrderStatus,
		order.PaymentStatus,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return err
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM orders WHERE code = $1`
	tag, err := r.pool.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order domain.Order
		items []byte
	)
	if err := row.Scan(
		&order.Code,
		&order.Email,
		&order.Phone,
		&order.ShippingAddress,
		&order.Note,
		&items,
		&order.DiscountCode,
		&order.TotalPrice,
		&order.QRImageURL,
		&order.OrderStatus,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	unmarshalJSON(items, &order.Items)
	return &order, nil
}
