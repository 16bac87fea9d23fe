package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/password"
	"github.com/simhub/backend/pkg/token"
	"github.com/simhub/backend/repository"
)

// MaxActiveSessions bounds concurrent non-retired sessions per user. A login
// pushing the user past the cap retires the oldest active session.
const MaxActiveSessions = 3

// DefaultRoles are assigned to every newly registered user.
var DefaultRoles = []string{"user"}

// UseCase orchestrates registration, login, logout and token refresh. It is
// stateless between calls; all durable state lives in the repositories.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *password.Hasher
	issuer   *token.Issuer
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher *password.Hasher,
	issuer *token.Issuer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates a user with default roles and opens their first session.
func (uc *UseCase) Register(ctx context.Context, email, plaintext string) (token.Pair, error) {
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return token.Pair{}, domain.ErrEmailTaken
	} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return token.Pair{}, err
	}

	hash, err := uc.hasher.Hash(plaintext)
	if err != nil {
		return token.Pair{}, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Roles:        DefaultRoles,
		LastLoginAt:  time.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return token.Pair{}, err
	}

	pair, sessionID, err := uc.createSession(ctx, user)
	if err != nil {
		return token.Pair{}, err
	}

	uc.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("session_id", sessionID))
	return pair, nil
}

// Login verifies the password against the stored hash and opens a new
// session, retiring the oldest one when the user exceeds the concurrency cap.
// The caller resolves the user record (by email) beforehand; only the hash
// read happens here.
func (uc *UseCase) Login(ctx context.Context, user *domain.User, plaintext string) (token.Pair, error) {
	if user == nil {
		return token.Pair{}, domain.ErrInvalidCredentials
	}

	// Re-fetch the hash: normal reads exclude it, and the user may have
	// vanished since the caller's lookup. Both failure modes collapse into
	// the same error so nothing distinguishes "no such user" from "wrong
	// password".
	hash, err := uc.users.Credentials(ctx, user.ID)
	if err != nil || !uc.hasher.Verify(hash, plaintext) {
		return token.Pair{}, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if err := uc.users.SetLastLogin(ctx, user.ID, now); err != nil {
		return token.Pair{}, err
	}

	pair, sessionID, err := uc.createSession(ctx, user)
	if err != nil {
		return token.Pair{}, err
	}

	if err := uc.enforceSessionCap(ctx, user.ID); err != nil {
		return token.Pair{}, err
	}

	uc.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("session_id", sessionID))
	return pair, nil
}

// Logout retires the session. Retiring a missing or already-retired session
// fails with the same not-found error; the two cases are deliberately merged.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Retire(ctx, sessionID, time.Now()); err != nil {
		return err
	}
	uc.logger.Info("session retired", zap.String("session_id", sessionID))
	return nil
}

// RefreshTokens mints a fresh pair for an active session and rotates the
// stored refresh token. The session's absolute expiry is never extended:
// refresh prolongs nothing, only re-arms the credentials.
func (uc *UseCase) RefreshTokens(ctx context.Context, sessionID string) (token.Pair, error) {
	session, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return token.Pair{}, err
	}

	now := time.Now()
	if !session.Usable(now) {
		return token.Pair{}, domain.ErrInvalidRefreshToken
	}

	// Roles and email come from the current user record, so a role change
	// takes effect on the next refresh without forcing re-login.
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		return token.Pair{}, err
	}

	pair, err := uc.issuer.SignPair(user.ID, sessionID, user.Email, user.Roles)
	if err != nil {
		return token.Pair{}, err
	}

	if err := uc.sessions.Rotate(ctx, sessionID, pair.RefreshToken, now); err != nil {
		return token.Pair{}, err
	}
	return pair, nil
}

// createSession mints a token pair and persists the matching session row.
// The session's absolute expiry equals now + refresh-token lifetime.
func (uc *UseCase) createSession(ctx context.Context, user *domain.User) (token.Pair, string, error) {
	sessionID := uuid.NewString()

	pair, err := uc.issuer.SignPair(user.ID, sessionID, user.Email, user.Roles)
	if err != nil {
		return token.Pair{}, "", err
	}

	now := time.Now()
	session := &domain.Session{
		SessionID:       sessionID,
		UserID:          user.ID,
		Email:           user.Email,
		RefreshToken:    pair.RefreshToken,
		LoginAt:         now,
		LastRefreshedAt: now,
		IsExpired:       false,
		ExpiresAt:       now.Add(uc.issuer.RefreshLifetime()),
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return token.Pair{}, "", err
	}
	return pair, sessionID, nil
}

// enforceSessionCap runs after the new session is persisted: the fresh
// session is part of the candidate set but, being the newest, is never the
// one evicted. The read-then-retire sequence tolerates momentary overshoot
// under concurrent logins; the next login self-corrects it.
func (uc *UseCase) enforceSessionCap(ctx context.Context, userID string) error {
	active, err := uc.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(active) <= MaxActiveSessions {
		return nil
	}

	oldest := active[0]
	if err := uc.sessions.Retire(ctx, oldest.SessionID, time.Now()); err != nil {
		// Lost the race to a concurrent eviction; the cap already holds.
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}

	uc.logger.Warn("session cap reached, oldest session retired",
		zap.String("user_id", userID),
		zap.String("session_id", oldest.SessionID))
	return nil
}
