package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/tokenize"
	"github.com/simhub/backend/repository"
)

// Cache is the denormalized product read model store. A nil cache disables
// caching without changing behavior.
type Cache interface {
	GetProduct(ctx context.Context, code string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateProduct(ctx context.Context, code string) error
}

// UseCase manages products, categories and variants.
type UseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	variants   repository.VariantRepository
	cache      Cache
	logger     *zap.Logger
}

func New(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	variants repository.VariantRepository,
	cache Cache,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products:   products,
		categories: categories,
		variants:   variants,
		cache:      cache,
		logger:     logger,
	}
}

// CreateProductInput carries everything needed to create a product and its
// default variant grid.
type CreateProductInput struct {
	CategoryCode string
	Name         domain.LocalizedString
	Description  domain.LocalizedString
	Cover        domain.Media
	Gallery      []domain.Media
	Capacities   []string
	Durations    []string
}

// CreateProduct validates the category, generates the product code and search
// tokens, persists the product and seeds one zero-priced variant per
// capacity/duration combination.
func (uc *UseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if _, err := uc.categories.GetByCode(ctx, input.CategoryCode); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Code:         GenerateProductCode(input.Name, time.Now()),
		CategoryCode: input.CategoryCode,
		Name:         input.Name,
		Description:  input.Description,
		Tokens:       GenerateTokens(input.Name),
		Cover:        input.Cover,
		Gallery:      input.Gallery,
	}
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}

	var seed []domain.Variant
	for _, capacity := range input.Capacities {
		for _, duration := range input.Durations {
			seed = append(seed, domain.Variant{
				Code:        VariantCode(product.Code, capacity, duration),
				ProductCode: product.Code,
				Capacity:    capacity,
				Duration:    duration,
			})
		}
	}
	if len(seed) > 0 {
		if err := uc.variants.CreateMany(ctx, seed); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("product created",
		zap.String("code", product.Code),
		zap.Int("variants", len(seed)))
	return product, nil
}

// GetProduct serves from the read cache when possible and repopulates it on a
// miss. Cache failures degrade to a direct repository read.
func (uc *UseCase) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.GetProduct(ctx, code); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			uc.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	product, err := uc.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetProduct(ctx, product); err != nil {
			uc.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return product, nil
}

// ListProducts returns a filtered page plus the unpaginated total. A free-text
// filter is reduced to its first search token.
func (uc *UseCase) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if tokens := tokenize.Tokenize(filter.Token); len(tokens) > 0 {
		filter.Token = tokens[0]
	} else {
		filter.Token = ""
	}
	return uc.products.List(ctx, filter)
}

// UpdateProductInput carries the mutable product fields.
type UpdateProductInput struct {
	CategoryCode string
	Name         *domain.LocalizedString
	Description  *domain.LocalizedString
	Cover        *domain.Media
	Gallery      []domain.Media
}

// UpdateProduct applies the changes and regenerates search tokens when the
// name changed. The product code is immutable.
func (uc *UseCase) UpdateProduct(ctx context.Context, code string, input UpdateProductInput) (*domain.Product, error) {
	product, err := uc.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.CategoryCode != "" && input.CategoryCode != product.CategoryCode {
		if _, err := uc.categories.GetByCode(ctx, input.CategoryCode); err != nil {
			return nil, err
		}
		product.CategoryCode = input.CategoryCode
	}
	if input.Name != nil {
		product.Name = *input.Name
		product.Tokens = GenerateTokens(product.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Cover != nil {
		product.Cover = *input.Cover
	}
	if input.Gallery != nil {
		product.Gallery = input.Gallery
	}

	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, code)
	return product, nil
}

// DeleteProduct removes the product; its variants go with it via the schema's
// cascade.
func (uc *UseCase) DeleteProduct(ctx context.Context, code string) error {
	if err := uc.products.Delete(ctx, code); err != nil {
		return err
	}
	uc.invalidate(ctx, code)
	return nil
}

// ListCategories returns all categories, newest first.
func (uc *UseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.categories.List(ctx)
}

// GetCategory returns a single category.
func (uc *UseCase) GetCategory(ctx context.Context, code string) (*domain.Category, error) {
	return uc.categories.GetByCode(ctx, code)
}

// CreateCategory persists a category; an empty code is derived from the
// English name.
func (uc *UseCase) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.Code == "" {
		category.Code = tokenize.Slugify(category.Name.En)
	}
	if category.Code == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := uc.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category.
func (uc *UseCase) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil || category.Code == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := uc.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (uc *UseCase) DeleteCategory(ctx context.Context, code string) error {
	return uc.categories.Delete(ctx, code)
}

// ListVariants returns a product's variants in creation order.
func (uc *UseCase) ListVariants(ctx context.Context, productCode string) ([]domain.Variant, error) {
	return uc.variants.ListByProduct(ctx, productCode)
}

// VariantInput carries the variant pricing fields.
type VariantInput struct {
	Capacity string
	Duration string
	VND      domain.VariantPrice
	USD      domain.VariantPrice
}

// CreateVariant adds a variant to an existing product and refreshes the
// product's price range.
func (uc *UseCase) CreateVariant(ctx context.Context, productCode string, input VariantInput) (*domain.Variant, error) {
	if _, err := uc.products.GetByCode(ctx, productCode); err != nil {
		return nil, err
	}

	variant := &domain.Variant{
		Code:        VariantCode(productCode, input.Capacity, input.Duration),
		ProductCode: productCode,
		Capacity:    input.Capacity,
		Duration:    input.Duration,
		VND:         input.VND,
		USD:         input.USD,
	}
	if err := uc.variants.Create(ctx, variant); err != nil {
		return nil, err
	}
	if err := uc.refreshPriceRange(ctx, productCode); err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant re-prices a variant and refreshes the product's price range.
func (uc *UseCase) UpdateVariant(ctx context.Context, code string, input VariantInput) (*domain.Variant, error) {
	variant, err := uc.variants.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Capacity != "" {
		variant.Capacity = input.Capacity
	}
	if input.Duration != "" {
		variant.Duration = input.Duration
	}
	variant.VND = input.VND
	variant.USD = input.USD

	if err := uc.variants.Update(ctx, variant); err != nil {
		return nil, err
	}
	if err := uc.refreshPriceRange(ctx, variant.ProductCode); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant removes a variant and refreshes the product's price range.
func (uc *UseCase) DeleteVariant(ctx context.Context, code string) error {
	variant, err := uc.variants.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := uc.variants.Delete(ctx, code); err != nil {
		return err
	}
	return uc.refreshPriceRange(ctx, variant.ProductCode)
}

// refreshPriceRange recomputes the product's per-currency min/max from the
// final prices of its variants and invalidates the cached read model.
func (uc *UseCase) refreshPriceRange(ctx context.Context, productCode string) error {
	variants, err := uc.variants.ListByProduct(ctx, productCode)
	if err != nil {
		return err
	}

	priceRange := ComputePriceRange(variants)
	if err := uc.products.UpdatePriceRange(ctx, productCode, priceRange); err != nil {
		return err
	}
	uc.invalidate(ctx, productCode)
	return nil
}

func (uc *UseCase) invalidate(ctx context.Context, productCode string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateProduct(ctx, productCode); err != nil {
		uc.logger.Warn("catalog cache invalidation failed",
			zap.String("code", productCode),
			zap.Error(err))
	}
}

// GenerateProductCode slugifies the English name and appends a ddMMyy suffix.
func GenerateProductCode(name domain.LocalizedString, now time.Time) string {
	return fmt.Sprintf("%s-%s", tokenize.Slugify(name.En), now.Format("020106"))
}

// GenerateTokens merges the search tokens of both display languages.
func GenerateTokens(name domain.LocalizedString) []string {
	tokens := tokenize.Tokenize(name.Vi)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	for _, t := range tokenize.Tokenize(name.En) {
		if _, ok := seen[t]; !ok {
			tokens = append(tokens, t)
			seen[t] = struct{}{}
		}
	}
	return tokens
}

// VariantCode builds the deterministic variant identifier.
func VariantCode(productCode, capacity, duration string) string {
	return fmt.Sprintf("%s-%s-%s", productCode, capacity, duration)
}

// ComputePriceRange folds variant final prices into a per-currency min/max.
// No variants yields the zero range.
func ComputePriceRange(variants []domain.Variant) domain.PriceRange {
	var priceRange domain.PriceRange
	for i, v := range variants {
		vnd, usd := v.VND.Final(), v.USD.Final()
		if i == 0 {
			priceRange.VND = domain.PriceBounds{Min: vnd, Max: vnd}
			priceRange.USD = domain.PriceBounds{Min: usd, Max: usd}
			continue
		}
		if vnd < priceRange.VND.Min {
			priceRange.VND.Min = vnd
		}
		if vnd > priceRange.VND.Max {
			priceRange.VND.Max = vnd
		}
		if usd < priceRange.USD.Min {
			priceRange.USD.Min = usd
		}
		if usd > priceRange.USD.Max {
			priceRange.USD.Max = usd
		}
	}
	return priceRange
}
