package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/password"
	"github.com/simhub/backend/repository"
)

// UseCase serves the authenticated user's own account.
type UseCase struct {
	users  repository.UserRepository
	hasher *password.Hasher
	logger *zap.Logger
}

func New(users repository.UserRepository, hasher *password.Hasher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{users: users, hasher: hasher, logger: logger}
}

// Get returns the caller's user record. The password hash never leaves the
// repository on this path.
func (uc *UseCase) Get(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// ChangePassword verifies the current password before storing a new hash.
func (uc *UseCase) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" {
		return domain.ErrInvalidPayload
	}

	hash, err := uc.users.Credentials(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Verify(hash, current) {
		return domain.ErrInvalidCredentials
	}

	newHash, err := uc.hasher.Hash(next)
	if err != nil {
		return err
	}

	if err := uc.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	uc.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}
