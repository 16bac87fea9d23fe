package discount

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

// UseCase manages discount codes.
type UseCase struct {
	discounts repository.DiscountRepository
	logger    *zap.Logger
}

func New(discounts repository.DiscountRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{discounts: discounts, logger: logger}
}

// Create mints a discount with a generated code and persists it.
func (uc *UseCase) Create(ctx context.Context, percent int) (*domain.Discount, error) {
	if percent < 0 || percent > 100 {
		return nil, domain.ErrInvalidPayload
	}

	discount := &domain.Discount{
		Code:            GenerateCode(percent, time.Now()),
		DiscountPercent: percent,
	}
	if err := uc.discounts.Create(ctx, discount); err != nil {
		return nil, err
	}

	uc.logger.Info("discount created",
		zap.String("code", discount.Code),
		zap.Int("percent", percent))
	return discount, nil
}

// List returns all discounts, newest first.
func (uc *UseCase) List(ctx context.Context) ([]domain.Discount, error) {
	return uc.discounts.List(ctx)
}

// Get returns a single discount.
func (uc *UseCase) Get(ctx context.Context, code string) (*domain.Discount, error) {
	return uc.discounts.GetByCode(ctx, code)
}

// Delete removes a discount. Orders that already applied it keep their price.
func (uc *UseCase) Delete(ctx context.Context, code string) error {
	return uc.discounts.Delete(ctx, code)
}

// PercentByCode resolves a discount code at checkout. An empty or unknown
// code is worth zero percent, not an error.
func (uc *UseCase) PercentByCode(ctx context.Context, code string) (int, error) {
	if code == "" {
		return 0, nil
	}
	discount, err := uc.discounts.GetByCode(ctx, code)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return discount.DiscountPercent, nil
}

// GenerateCode builds the "SHGB" + ddMM + percent discount identifier.
func GenerateCode(percent int, now time.Time) string {
	return fmt.Sprintf("SHGB%s%d", now.Format("0201"), percent)
}
