package repository

import (
	"context"

	"github.com/simhub/backend/domain"
)

type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Discount, error)
	List(ctx context.Context) ([]domain.Discount, error)
	Create(ctx context.Context, discount *domain.Discount) error
	Delete(ctx context.Context, code string) error
}
