package repository

import (
	"context"

	"github.com/simhub/backend/domain"
)

// OrderFilter narrows order listings by status.
type OrderFilter struct {
	OrderStatus   domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Limit         int
	Offset        int
}

type OrderRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Order, error)
	// SearchByCodeSuffix matches orders whose code ends with the given digits.
	SearchByCodeSuffix(ctx context.Context, suffix string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, code string) error
}
