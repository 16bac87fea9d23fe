package repository

import (
	"context"

	"github.com/simhub/backend/domain"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryCode string
	// Token matches against the product's search tokens.
	Token  string
	Limit  int
	Offset int
}

type ProductRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	UpdatePriceRange(ctx context.Context, code string, priceRange domain.PriceRange) error
	Delete(ctx context.Context, code string) error
}

type CategoryRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, code string) error
}

type VariantRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Variant, error)
	ListByProduct(ctx context.Context, productCode string) ([]domain.Variant, error)
	Create(ctx context.Context, variant *domain.Variant) error
	CreateMany(ctx context.Context, variants []domain.Variant) error
	Update(ctx context.Context, variant *domain.Variant) error
	Delete(ctx context.Context, code string) error
}
