package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/repository"
)

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates a Postgres-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool) repository.SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `session_id, user_id, email, refresh_token, login_at, last_refreshed_at, is_expired, expires_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.SessionID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO auth_sessions (session_id, user_id, email, refresh_token, login_at, last_refreshed_at, is_expired, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		session.SessionID,
		session.UserID,
		session.Email,
		session.RefreshToken,
		session.LoginAt,
		session.LastRefreshedAt,
		session.IsExpired,
		session.ExpiresAt,
	)
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM auth_sessions
		WHERE session_id = $1
	`
	var session domain.Session
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.UserID,
		&session.Email,
		&session.RefreshToken,
		&session.LoginAt,
		&session.LastRefreshedAt,
		&session.IsExpired,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM auth_sessions
		WHERE user_id = $1 AND is_expired = FALSE
		ORDER BY login_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.SessionID,
			&session.UserID,
			&session.Email,
			&session.RefreshToken,
			&session.LoginAt,
			&session.LastRefreshedAt,
			&session.IsExpired,
			&session.ExpiresAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) Retire(ctx context.Context, sessionID string, at time.Time) error {
	// Conditional on the row still being active: a second logout of the same
	// session reports not-found, matching the single merged error outcome.
	const query = `
		UPDATE auth_sessions
		SET is_expired = TRUE, expires_at = $2
		WHERE session_id = $1 AND is_expired = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, sessionID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Rotate(ctx context.Context, sessionID, refreshToken string, at time.Time) error {
	const query = `
		UPDATE auth_sessions
		SET refresh_token = $2, last_refreshed_at = $3
		WHERE session_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, sessionID, refreshToken, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) PurgeRetired(ctx context.Context, retiredBefore time.Time) (int64, error) {
	const query = `
		DELETE FROM auth_sessions
		WHERE is_expired = TRUE AND expires_at < $1
	`
	tag, err := r.pool.Exec(ctx, query, retiredBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
