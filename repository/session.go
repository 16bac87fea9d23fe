package repository

import (
	"context"
	"time"

	"github.com/simhub/backend/domain"
)

// SessionRepository persists login sessions. Rows are never deleted by the
// auth flow; retirement flips is_expired and clamps expires_at.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	// ListActiveByUser returns the user's non-retired sessions ordered by
	// login time, oldest first.
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Session, error)
	// Retire marks a session expired. The update is conditional on the row
	// still being active; retiring a missing or already-retired session
	// returns domain.ErrSessionNotFound.
	Retire(ctx context.Context, sessionID string, at time.Time) error
	// Rotate swaps in a new refresh token and bumps last_refreshed_at without
	// touching expires_at.
	Rotate(ctx context.Context, sessionID, refreshToken string, at time.Time) error
	// PurgeRetired physically removes sessions retired before the cutoff.
	// Storage optimization only; read-time expiry interpretation is what the
	// auth flow relies on.
	PurgeRetired(ctx context.Context, retiredBefore time.Time) (int64, error)
}
