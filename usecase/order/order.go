package order

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

// DiscountResolver turns a discount code into a percentage. Unknown codes
// resolve to zero.
type DiscountResolver interface {
	PercentByCode(ctx context.Context, code string) (int, error)
}

// Notifier hands a freshly created order to the notification pipeline. The
// hand-off is durable; delivery happens out of band.
type Notifier interface {
	EnqueueOrderCreated(ctx context.Context, order *domain.Order) error
}

// QRConfig holds the bank identity baked into generated VietQR payment images.
type QRConfig struct {
	BankBin       string
	AccountNumber string
	AccountName   string
	TemplateID    string
}

// Configured reports whether QR generation is enabled.
func (c QRConfig) Configured() bool {
	return c.BankBin != "" && c.AccountNumber != "" && c.TemplateID != ""
}

// UseCase manages customer orders.
type UseCase struct {
	orders    repository.OrderRepository
	variants  repository.VariantRepository
	discounts DiscountResolver
	notifier  Notifier
	qr        QRConfig
	logger    *zap.Logger
}

func New(
	orders repository.OrderRepository,
	variants repository.VariantRepository,
	discounts DiscountResolver,
	notifier Notifier,
	qr QRConfig,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders:    orders,
		variants:  variants,
		discounts: discounts,
		notifier:  notifier,
		qr:        qr,
		logger:    logger,
	}
}

// ItemInput is one checkout line before price resolution.
type ItemInput struct {
	VariantCode string
	Quantity    int
}

// CreateInput carries everything the customer submits at checkout.
type CreateInput struct {
	Email           string
	Phone           string
	ShippingAddress string
	Note            string
	Items           []ItemInput
	DiscountCode    string
}

// Create prices the submitted lines from their current variants, applies the
// discount, generates the order code and payment QR, persists the order and
// enqueues the confirmation notification.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*domain.Order, error) {
	if input.Email == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidPayload
		}
		variant, err := uc.variants.GetByCode(ctx, line.VariantCode)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductCode: variant.ProductCode,
			VariantCode: variant.Code,
			Quantity:    line.Quantity,
			FinalPrice:  variant.VND.Final(),
		})
	}

	percent, err := uc.discounts.PercentByCode(ctx, input.DiscountCode)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Code:            GenerateCode(time.Now()),
		Email:           input.Email,
		Phone:           input.Phone,
		ShippingAddress: input.ShippingAddress,
		Note:            input.Note,
		Items:           items,
		DiscountCode:    input.DiscountCode,
		TotalPrice:      TotalPrice(items, percent),
		OrderStatus:     domain.OrderPending,
		PaymentStatus:   domain.PaymentUnpaid,
	}
	if uc.qr.Configured() {
		order.QRImageURL = QRImageURL(uc.qr, order.Code, order.TotalPrice)
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.EnqueueOrderCreated(ctx, order); err != nil {
			// The order stands; only the confirmation mail is at risk.
			uc.logger.Error("order notification enqueue failed",
				zap.String("code", order.Code),
				zap.Error(err))
		}
	}

	uc.logger.Info("order created",
		zap.String("code", order.Code),
		zap.Float64("total", order.TotalPrice))
	return order, nil
}

// Get returns an order by its full code.
func (uc *UseCase) Get(ctx context.Context, code string) (*domain.Order, error) {
	return uc.orders.GetByCode(ctx, code)
}

// Track looks an order up by full code, or by the trailing digits alone when
// the query is at most four digits long.
func (uc *UseCase) Track(ctx context.Context, query string) (*domain.Order, error) {
	if query == "" {
		return nil, domain.ErrOrderNotFound
	}
	if len(query) <= 4 && allDigits(query) {
		return uc.orders.SearchByCodeSuffix(ctx, query)
	}
	return uc.orders.GetByCode(ctx, query)
}

// List returns a filtered page of orders plus the unpaginated total.
func (uc *UseCase) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.OrderStatus != "" && !domain.ValidOrderStatus(filter.OrderStatus) {
		return nil, 0, domain.ErrInvalidPayload
	}
	if filter.PaymentStatus != "" && !domain.ValidPaymentStatus(filter.PaymentStatus) {
		return nil, 0, domain.ErrInvalidPayload
	}
	return uc.orders.List(ctx, filter)
}

// UpdateInput carries the staff-editable order fields. Nil means unchanged.
type UpdateInput struct {
	OrderStatus     *domain.OrderStatus
	PaymentStatus   *domain.PaymentStatus
	ShippingAddress *string
	Note            *string
}

// Update applies status and shipping changes. Items and prices are immutable
// once the order exists.
func (uc *UseCase) Update(ctx context.Context, code string, input UpdateInput) (*domain.Order, error) {
	order, err := uc.orders.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.OrderStatus != nil {
		if !domain.ValidOrderStatus(*input.OrderStatus) {
			return nil, domain.ErrInvalidPayload
		}
		order.OrderStatus = *input.OrderStatus
	}
	if input.PaymentStatus != nil {
		if !domain.ValidPaymentStatus(*input.PaymentStatus) {
			return nil, domain.ErrInvalidPayload
		}
		order.PaymentStatus = *input.PaymentStatus
	}
	if input.ShippingAddress != nil {
		order.ShippingAddress = *input.ShippingAddress
	}
	if input.Note != nil {
		order.Note = *input.Note
	}

	if err := uc.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order.
func (uc *UseCase) Delete(ctx context.Context, code string) error {
	return uc.orders.Delete(ctx, code)
}

// GenerateCode builds the "OD" + ddMMyy + four-random-digit order identifier.
func GenerateCode(now time.Time) string {
	return fmt.Sprintf("OD%s%04d", now.Format("020106"), rand.IntN(10000))
}

// TotalPrice sums quantity times locked-in price across the lines and applies
// the discount percentage. The result never drops below zero.
func TotalPrice(items []domain.OrderItem, discountPercent int) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.FinalPrice
	}
	total *= 1 - float64(discountPercent)/100
	return math.Max(total, 0)
}

// QRImageURL renders the VietQR image link for a pending payment.
func QRImageURL(cfg QRConfig, orderCode string, amount float64) string {
	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%.0f", amount))
	query.Set("addInfo", orderCode)
	if cfg.AccountName != "" {
		query.Set("accountName", cfg.AccountName)
	}
	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-%s.png?%s",
		cfg.BankBin, cfg.AccountNumber, cfg.TemplateID, query.Encode())
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
