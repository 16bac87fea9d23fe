package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
	"github.com/simhub/backend/usecase/catalog"
)

type fakeProductRepo struct {
	products map[string]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*domain.Product)}
}

func (r *fakeProductRepo) GetByCode(_ context.Context, code string) (*domain.Product, error) {
	p, ok := r.products[code]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range r.products {
		if filter.CategoryCode != "" && p.CategoryCode != filter.CategoryCode {
			continue
		}
		if filter.Token != "" && !hasToken(p.Tokens, filter.Token) {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.Code]; ok {
		return domain.ErrCodeTaken
	}
	clone := *p
	r.products[p.Code] = &clone
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.Code]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *p
	r.products[p.Code] = &clone
	return nil
}

func (r *fakeProductRepo) UpdatePriceRange(_ context.Context, code string, pr domain.PriceRange) error {
	p, ok := r.products[code]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.PriceRange = pr
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, code string) error {
	if _, ok := r.products[code]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, code)
	return nil
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func (r *fakeCategoryRepo) GetByCode(_ context.Context, code string) (*domain.Category, error) {
	c, ok := r.categories[code]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) { return nil, nil }
func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.categories[c.Code] = c
	return nil
}
func (r *fakeCategoryRepo) Update(context.Context, *domain.Category) error { return nil }
func (r *fakeCategoryRepo) Delete(context.Context, string) error           { return nil }

type fakeVariantRepo struct {
	variants map[string]*domain.Variant
}

func newFakeVariantRepo() *fakeVariantRepo {
	return &fakeVariantRepo{variants: make(map[string]*domain.Variant)}
}

func (r *fakeVariantRepo) GetByCode(_ context.Context, code string) (*domain.Variant, error) {
	v, ok := r.variants[code]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVariantRepo) ListByProduct(_ context.Context, productCode string) ([]domain.Variant, error) {
	var out []domain.Variant
	for _, v := range r.variants {
		if v.ProductCode == productCode {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVariantRepo) Create(_ context.Context, v *domain.Variant) error {
	clone := *v
	r.variants[v.Code] = &clone
	return nil
}

func (r *fakeVariantRepo) CreateMany(ctx context.Context, vs []domain.Variant) error {
	for i := range vs {
		if err := r.Create(ctx, &vs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeVariantRepo) Update(_ context.Context, v *domain.Variant) error {
	if _, ok := r.variants[v.Code]; !ok {
		return domain.ErrVariantNotFound
	}
	clone := *v
	r.variants[v.Code] = &clone
	return nil
}

func (r *fakeVariantRepo) Delete(_ context.Context, code string) error {
	delete(r.variants, code)
	return nil
}

type spyCache struct {
	store       map[string]*domain.Product
	hits        int
	invalidated []string
}

func newSpyCache() *spyCache {
	return &spyCache{store: make(map[string]*domain.Product)}
}

func (c *spyCache) GetProduct(_ context.Context, code string) (*domain.Product, error) {
	if p, ok := c.store[code]; ok {
		c.hits++
		return p, nil
	}
	return nil, nil
}

func (c *spyCache) SetProduct(_ context.Context, p *domain.Product) error {
	c.store[p.Code] = p
	return nil
}

func (c *spyCache) InvalidateProduct(_ context.Context, code string) error {
	delete(c.store, code)
	c.invalidated = append(c.invalidated, code)
	return nil
}

func newTestUseCase() (*catalog.UseCase, *fakeProductRepo, *fakeVariantRepo, *spyCache) {
	products := newFakeProductRepo()
	categories := &fakeCategoryRepo{categories: map[string]*domain.Category{
		"esim": {Code: "esim", Name: domain.LocalizedString{En: "eSIM"}},
	}}
	variants := newFakeVariantRepo()
	cache := newSpyCache()
	uc := catalog.New(products, categories, variants, cache, nil)
	return uc, products, variants, cache
}

func TestCreateProduct(t *testing.T) {
	uc, _, variants, _ := newTestUseCase()
	ctx := context.Background()

	product, err := uc.CreateProduct(ctx, catalog.CreateProductInput{
		CategoryCode: "esim",
		Name: domain.LocalizedString{
			Vi: "eSIM du lịch Nhật Bản",
			En: "Japan Travel eSIM",
		},
		Capacities: []string{"5gb", "10gb"},
		Durations:  []string{"7d"},
	})
	assert.NoError(t, err)

	t.Run("code is slug plus date", func(t *testing.T) {
		suffix := time.Now().Format("020106")
		assert.Equal(t, "japan-travel-esim-"+suffix, product.Code)
	})

	t.Run("tokens cover both languages without accents", func(t *testing.T) {
		for _, want := range []string{"esim", "du", "lich", "nhat", "ban", "japan", "travel"} {
			assert.Contains(t, product.Tokens, want)
		}
		// "esim" appears in both names but only once in the tokens.
		count := 0
		for _, tok := range product.Tokens {
			if tok == "esim" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("default variant grid is seeded", func(t *testing.T) {
		seeded, err := variants.ListByProduct(ctx, product.Code)
		assert.NoError(t, err)
		assert.Len(t, seeded, 2)
		for _, v := range seeded {
			assert.Zero(t, v.VND.Original)
			assert.Contains(t, v.Code, product.Code)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := uc.CreateProduct(ctx, catalog.CreateProductInput{
			CategoryCode: "ghost",
			Name:         domain.LocalizedString{En: "X"},
		})
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	})
}

func TestGetProduct_CacheReadThrough(t *testing.T) {
	uc, products, _, cache := newTestUseCase()
	ctx := context.Background()

	seeded := &domain.Product{Code: "p1", CategoryCode: "esim"}
	assert.NoError(t, products.Create(ctx, seeded))

	first, err := uc.GetProduct(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, "p1", first.Code)
	assert.Zero(t, cache.hits)

	second, err := uc.GetProduct(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, "p1", second.Code)
	assert.Equal(t, 1, cache.hits)

	_, err = uc.GetProduct(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestVariantWritesRefreshPriceRange(t *testing.T) {
	uc, products, _, cache := newTestUseCase()
	ctx := context.Background()

	product, err := uc.CreateProduct(ctx, catalog.CreateProductInput{
		CategoryCode: "esim",
		Name:         domain.LocalizedString{En: "Korea eSIM"},
	})
	assert.NoError(t, err)

	_, err = uc.CreateVariant(ctx, product.Code, catalog.VariantInput{
		Capacity: "5gb",
		Duration: "7d",
		VND:      domain.VariantPrice{Original: 100000},
		USD:      domain.VariantPrice{Original: 4},
	})
	assert.NoError(t, err)

	_, err = uc.CreateVariant(ctx, product.Code, catalog.VariantInput{
		Capacity: "10gb",
		Duration: "30d",
		VND:      domain.VariantPrice{Original: 300000, DiscountPercent: 50},
		USD:      domain.VariantPrice{Original: 12},
	})
	assert.NoError(t, err)

	stored, err := products.GetByCode(ctx, product.Code)
	assert.NoError(t, err)
	assert.InDelta(t, 100000, stored.PriceRange.VND.Min, 0.01)
	assert.InDelta(t, 150000, stored.PriceRange.VND.Max, 0.01)
	assert.InDelta(t, 4, stored.PriceRange.USD.Min, 0.01)
	assert.InDelta(t, 12, stored.PriceRange.USD.Max, 0.01)

	assert.Contains(t, cache.invalidated, product.Code)
}

func TestComputePriceRange(t *testing.T) {
	t.Run("empty yields zero range", func(t *testing.T) {
		assert.Zero(t, catalog.ComputePriceRange(nil))
	})

	t.Run("final prices drive the bounds", func(t *testing.T) {
		pr := catalog.ComputePriceRange([]domain.Variant{
			{VND: domain.VariantPrice{Original: 200, DiscountPercent: 50}, USD: domain.VariantPrice{Original: 8}},
			{VND: domain.VariantPrice{Original: 150}, USD: domain.VariantPrice{Original: 6}},
		})
		assert.InDelta(t, 100, pr.VND.Min, 1e-9)
		assert.InDelta(t, 150, pr.VND.Max, 1e-9)
		assert.InDelta(t, 6, pr.USD.Min, 1e-9)
		assert.InDelta(t, 8, pr.USD.Max, 1e-9)
	})
}

func TestVariantCode(t *testing.T) {
	assert.Equal(t, "esim-jp-5gb-7d", catalog.VariantCode("esim-jp", "5gb", "7d"))
}
