package repository

import (
	"context"
	"time"

	"github.com/simhub/backend/domain"
)

// UserRepository is the credential store. Regular reads never include the
// password hash; Credentials is the single hash-bearing read used by login.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail compares case-insensitively while the stored casing is preserved.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Credentials(ctx context.Context, id string) (string, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	Update(ctx context.Context, user *domain.User) error
	// UpdatePassword is the single hash-bearing write. Update deliberately
	// never touches the hash column, since the users it receives come from
	// hash-less reads.
	UpdatePassword(ctx context.Context, id, hash string) error
}
