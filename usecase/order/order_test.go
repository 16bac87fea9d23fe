package order_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
	"github.com/simhub/backend/usecase/order"
)

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) GetByCode(_ context.Context, code string) (*domain.Order, error) {
	o, ok := r.orders[code]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *fakeOrderRepo) SearchByCodeSuffix(_ context.Context, suffix string) (*domain.Order, error) {
	for code, o := range r.orders {
		if len(code) >= len(suffix) && code[len(code)-len(suffix):] == suffix {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if filter.OrderStatus != "" && o.OrderStatus != filter.OrderStatus {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	clone := *o
	r.orders[o.Code] = &clone
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *domain.Order) error {
	if _, ok := r.orders[o.Code]; !ok {
		return domain.ErrOrderNotFound
	}
	clone := *o
	r.orders[o.Code] = &clone
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, code string) error {
	if _, ok := r.orders[code]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, code)
	return nil
}

type fakeVariantRepo struct {
	variants map[string]*domain.Variant
}

func (r *fakeVariantRepo) GetByCode(_ context.Context, code string) (*domain.Variant, error) {
	v, ok := r.variants[code]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVariantRepo) ListByProduct(context.Context, string) ([]domain.Variant, error) {
	return nil, nil
}
func (r *fakeVariantRepo) Create(context.Context, *domain.Variant) error      { return nil }
func (r *fakeVariantRepo) CreateMany(context.Context, []domain.Variant) error { return nil }
func (r *fakeVariantRepo) Update(context.Context, *domain.Variant) error      { return nil }
func (r *fakeVariantRepo) Delete(context.Context, string) error               { return nil }

type fixedDiscounts map[string]int

func (d fixedDiscounts) PercentByCode(_ context.Context, code string) (int, error) {
	return d[code], nil
}

type recordingNotifier struct {
	enqueued []*domain.Order
}

func (n *recordingNotifier) EnqueueOrderCreated(_ context.Context, o *domain.Order) error {
	n.enqueued = append(n.enqueued, o)
	return nil
}

func testVariants() *fakeVariantRepo {
	return &fakeVariantRepo{variants: map[string]*domain.Variant{
		"esim-jp-5gb-7d": {
			Code:        "esim-jp-5gb-7d",
			ProductCode: "esim-jp",
			Capacity:    "5gb",
			Duration:    "7d",
			VND:         domain.VariantPrice{Original: 200000, DiscountPercent: 10},
		},
		"esim-jp-10gb-30d": {
			Code:        "esim-jp-10gb-30d",
			ProductCode: "esim-jp",
			VND:         domain.VariantPrice{Original: 500000},
		},
	}}
}

func newTestUseCase() (*order.UseCase, *fakeOrderRepo, *recordingNotifier) {
	orders := newFakeOrderRepo()
	notifier := &recordingNotifier{}
	qr := order.QRConfig{
		BankBin:       "970436",
		AccountNumber: "00112233",
		AccountName:   "SHOP VN",
		TemplateID:    "compact2",
	}
	uc := order.New(orders, testVariants(), fixedDiscounts{"SHGB010125": 20}, notifier, qr, nil)
	return uc, orders, notifier
}

func TestCreate(t *testing.T) {
	uc, orders, notifier := newTestUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, order.CreateInput{
		Email: "buyer@shop.vn",
		Phone: "0900000000",
		Items: []order.ItemInput{
			{VariantCode: "esim-jp-5gb-7d", Quantity: 2},
			{VariantCode: "esim-jp-10gb-30d", Quantity: 1},
		},
		DiscountCode: "SHGB010125",
	})
	assert.NoError(t, err)

	t.Run("code format", func(t *testing.T) {
		assert.Regexp(t, regexp.MustCompile(`^OD\d{6}\d{4}$`), created.Code)
	})

	t.Run("prices are locked in from the variants", func(t *testing.T) {
		assert.Len(t, created.Items, 2)
		assert.InDelta(t, 180000, created.Items[0].FinalPrice, 0.01)
		assert.Equal(t, "esim-jp", created.Items[0].ProductCode)
		assert.InDelta(t, 500000, created.Items[1].FinalPrice, 0.01)
	})

	t.Run("total applies the discount", func(t *testing.T) {
		// (2*180000 + 500000) * 0.8
		assert.InDelta(t, 688000, created.TotalPrice, 0.01)
	})

	t.Run("initial statuses", func(t *testing.T) {
		assert.Equal(t, domain.OrderPending, created.OrderStatus)
		assert.Equal(t, domain.PaymentUnpaid, created.PaymentStatus)
	})

	t.Run("qr image points at the order", func(t *testing.T) {
		assert.Contains(t, created.QRImageURL, "https://img.vietqr.io/image/970436-00112233-compact2.png")
		assert.Contains(t, created.QRImageURL, "addInfo="+created.Code)
		assert.Contains(t, created.QRImageURL, "amount=688000")
	})

	t.Run("persisted and notification enqueued", func(t *testing.T) {
		stored, err := orders.GetByCode(ctx, created.Code)
		assert.NoError(t, err)
		assert.Equal(t, created.TotalPrice, stored.TotalPrice)

		assert.Len(t, notifier.enqueued, 1)
		assert.Equal(t, created.Code, notifier.enqueued[0].Code)
	})
}

func TestCreate_Validation(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	t.Run("missing email", func(t *testing.T) {
		_, err := uc.Create(ctx, order.CreateInput{
			Items: []order.ItemInput{{VariantCode: "esim-jp-5gb-7d", Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("empty items", func(t *testing.T) {
		_, err := uc.Create(ctx, order.CreateInput{Email: "a@b.c"})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := uc.Create(ctx, order.CreateInput{
			Email: "a@b.c",
			Items: []order.ItemInput{{VariantCode: "esim-jp-5gb-7d", Quantity: 0}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := uc.Create(ctx, order.CreateInput{
			Email: "a@b.c",
			Items: []order.ItemInput{{VariantCode: "no-such", Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrVariantNotFound)
	})
}

func TestTrack(t *testing.T) {
	uc, orders, _ := newTestUseCase()
	ctx := context.Background()

	seeded := &domain.Order{Code: "OD0101251234", Email: "a@b.c"}
	assert.NoError(t, orders.Create(ctx, seeded))

	t.Run("full code", func(t *testing.T) {
		found, err := uc.Track(ctx, "OD0101251234")
		assert.NoError(t, err)
		assert.Equal(t, seeded.Code, found.Code)
	})

	t.Run("trailing digits", func(t *testing.T) {
		found, err := uc.Track(ctx, "1234")
		assert.NoError(t, err)
		assert.Equal(t, seeded.Code, found.Code)
	})

	t.Run("unknown suffix", func(t *testing.T) {
		_, err := uc.Track(ctx, "9999")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := uc.Track(ctx, "")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestUpdate(t *testing.T) {
	uc, orders, _ := newTestUseCase()
	ctx := context.Background()

	seeded := &domain.Order{
		Code:          "OD0101250001",
		Email:         "a@b.c",
		OrderStatus:   domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
	assert.NoError(t, orders.Create(ctx, seeded))

	t.Run("status transition", func(t *testing.T) {
		confirmed := domain.OrderConfirmed
		paid := domain.PaymentPaid
		updated, err := uc.Update(ctx, seeded.Code, order.UpdateInput{
			OrderStatus:   &confirmed,
			PaymentStatus: &paid,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderConfirmed, updated.OrderStatus)
		assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		bogus := domain.OrderStatus("TELEPORTED")
		_, err := uc.Update(ctx, seeded.Code, order.UpdateInput{OrderStatus: &bogus})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := uc.Update(ctx, "OD9999999999", order.UpdateInput{})
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestTotalPrice(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 2, FinalPrice: 100},
		{Quantity: 1, FinalPrice: 50},
	}

	assert.InDelta(t, 250, order.TotalPrice(items, 0), 1e-9)
	assert.InDelta(t, 125, order.TotalPrice(items, 50), 1e-9)
	assert.InDelta(t, 0, order.TotalPrice(items, 100), 1e-9)
	assert.InDelta(t, 0, order.TotalPrice(nil, 20), 1e-9)
}

func TestGenerateCode(t *testing.T) {
	now := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	code := order.GenerateCode(now)
	assert.Regexp(t, regexp.MustCompile(`^OD070325\d{4}$`), code)
}
