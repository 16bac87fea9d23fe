package auth_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/password"
	"github.com/simhub/backend/pkg/token"
	"github.com/simhub/backend/usecase/auth"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			clone.PasswordHash = ""
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Credentials(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return user.PasswordHash, nil
}

func (r *fakeUserRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.LastLoginAt = at
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) setRoles(id string, roles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].Roles = roles
}

func (r *fakeUserRepo) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.SessionID] = &clone
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) ListActiveByUser(_ context.Context, userID string) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []domain.Session
	for _, session := range r.sessions {
		if session.UserID == userID && !session.IsExpired {
			active = append(active, *session)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].LoginAt.Before(active[j].LoginAt)
	})
	return active, nil
}

func (r *fakeSessionRepo) Retire(_ context.Context, sessionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || session.IsExpired {
		return domain.ErrSessionNotFound
	}
	session.IsExpired = true
	session.ExpiresAt = at
	return nil
}

func (r *fakeSessionRepo) Rotate(_ context.Context, sessionID, refreshToken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.RefreshToken = refreshToken
	session.LastRefreshedAt = at
	return nil
}

func (r *fakeSessionRepo) PurgeRetired(_ context.Context, retiredBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, session := range r.sessions {
		if session.IsExpired && session.ExpiresAt.Before(retiredBefore) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (r *fakeSessionRepo) markLoginAt(sessionID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID].LoginAt = at
}

func (r *fakeSessionRepo) markExpiresAt(sessionID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID].ExpiresAt = at
}

func newTestUseCase(t *testing.T) (*auth.UseCase, *fakeUserRepo, *fakeSessionRepo, *token.Issuer) {
	t.Helper()

	issuer, err := token.New(token.Config{
		AccessSecret:    "access-secret",
		AccessLifetime:  15 * time.Minute,
		RefreshSecret:   "refresh-secret",
		RefreshLifetime: 7 * 24 * time.Hour,
	})
	assert.NoError(t, err)

	hasher := password.NewHasher(password.Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
	})

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := auth.New(users, sessions, hasher, issuer, nil)
	return uc, users, sessions, issuer
}

func register(t *testing.T, uc *auth.UseCase, users *fakeUserRepo, email, pass string) *domain.User {
	t.Helper()
	_, err := uc.Register(context.Background(), email, pass)
	assert.NoError(t, err)
	user, err := users.GetByEmail(context.Background(), email)
	assert.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	uc, users, sessions, issuer := newTestUseCase(t)
	ctx := context.Background()

	pair, err := uc.Register(ctx, "new@shop.vn", "pass-123")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	t.Run("user stored with default roles", func(t *testing.T) {
		user, err := users.GetByEmail(ctx, "new@shop.vn")
		assert.NoError(t, err)
		assert.Equal(t, []string{"user"}, user.Roles)
		assert.False(t, user.LastLoginAt.IsZero())
	})

	t.Run("first session is open", func(t *testing.T) {
		user, _ := users.GetByEmail(ctx, "new@shop.vn")
		active, err := sessions.ListActiveByUser(ctx, user.ID)
		assert.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Equal(t, pair.RefreshToken, active[0].RefreshToken)
	})

	t.Run("tokens carry the identity", func(t *testing.T) {
		claims, err := issuer.VerifyAccess(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, "new@shop.vn", claims.Email)
		assert.Equal(t, []string{"user"}, claims.Roles)
		assert.NotEmpty(t, claims.SessionID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := uc.Register(ctx, "new@shop.vn", "other-pass")
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	uc, users, _, _ := newTestUseCase(t)
	ctx := context.Background()
	user := register(t, uc, users, "buyer@shop.vn", "correct-horse")

	t.Run("correct password yields a pair", func(t *testing.T) {
		pair, err := uc.Login(ctx, user, "correct-horse")
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		_, err := uc.Login(ctx, user, "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("nil user is invalid credentials", func(t *testing.T) {
		_, err := uc.Login(ctx, nil, "correct-horse")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("vanished user is indistinguishable from wrong password", func(t *testing.T) {
		ghost := *user
		users.remove(user.ID)
		_, err := uc.Login(ctx, &ghost, "correct-horse")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestLogin_SessionCap(t *testing.T) {
	uc, users, sessions, _ := newTestUseCase(t)
	ctx := context.Background()
	user := register(t, uc, users, "multi@shop.vn", "pass-123")

	// Registration opened session 1. Space the login timestamps out so the
	// eviction order is deterministic.
	active, _ := sessions.ListActiveByUser(ctx, user.ID)
	base := time.Now().Add(-time.Hour)
	sessions.markLoginAt(active[0].SessionID, base)
	firstID := active[0].SessionID

	for i := 1; i <= 2; i++ {
		_, err := uc.Login(ctx, user, "pass-123")
		assert.NoError(t, err)

		active, _ = sessions.ListActiveByUser(ctx, user.ID)
		newest := active[len(active)-1]
		sessions.markLoginAt(newest.SessionID, base.Add(time.Duration(i)*time.Minute))
	}

	active, _ = sessions.ListActiveByUser(ctx, user.ID)
	assert.Len(t, active, auth.MaxActiveSessions)

	t.Run("fourth login evicts the oldest", func(t *testing.T) {
		_, err := uc.Login(ctx, user, "pass-123")
		assert.NoError(t, err)

		active, _ := sessions.ListActiveByUser(ctx, user.ID)
		assert.Len(t, active, auth.MaxActiveSessions)
		for _, s := range active {
			assert.NotEqual(t, firstID, s.SessionID)
		}

		evicted, err := sessions.GetByID(ctx, firstID)
		assert.NoError(t, err)
		assert.True(t, evicted.IsExpired)
		assert.False(t, evicted.ExpiresAt.After(time.Now()))
	})
}

func TestLogout(t *testing.T) {
	uc, users, sessions, issuer := newTestUseCase(t)
	ctx := context.Background()
	user := register(t, uc, users, "leaver@shop.vn", "pass-123")

	pair, err := uc.Login(ctx, user, "pass-123")
	assert.NoError(t, err)
	claims, err := issuer.VerifyAccess(pair.AccessToken)
	assert.NoError(t, err)

	t.Run("succeeds exactly once", func(t *testing.T) {
		assert.NoError(t, uc.Logout(ctx, claims.SessionID))
		assert.ErrorIs(t, uc.Logout(ctx, claims.SessionID), domain.ErrSessionNotFound)
	})

	t.Run("retired session is unusable immediately", func(t *testing.T) {
		session, err := sessions.GetByID(ctx, claims.SessionID)
		assert.NoError(t, err)
		assert.False(t, session.Usable(time.Now()))
	})

	t.Run("unknown session", func(t *testing.T) {
		assert.ErrorIs(t, uc.Logout(ctx, "no-such-session"), domain.ErrSessionNotFound)
	})
}

func TestRefreshTokens(t *testing.T) {
	uc, users, sessions, issuer := newTestUseCase(t)
	ctx := context.Background()
	user := register(t, uc, users, "refresher@shop.vn", "pass-123")

	pair, err := uc.Login(ctx, user, "pass-123")
	assert.NoError(t, err)
	claims, err := issuer.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	sessionID := claims.SessionID

	before, err := sessions.GetByID(ctx, sessionID)
	assert.NoError(t, err)

	t.Run("rotates the stored refresh token", func(t *testing.T) {
		fresh, err := uc.RefreshTokens(ctx, sessionID)
		assert.NoError(t, err)
		assert.NotEmpty(t, fresh.AccessToken)

		// JWT timestamps have second precision, so the new token may equal
		// the old one when both are minted within the same second. The store
		// matching the response is the invariant.
		after, err := sessions.GetByID(ctx, sessionID)
		assert.NoError(t, err)
		assert.Equal(t, fresh.RefreshToken, after.RefreshToken)
		assert.False(t, after.LastRefreshedAt.Before(before.LastRefreshedAt))
	})

	t.Run("never extends the absolute expiry", func(t *testing.T) {
		after, err := sessions.GetByID(ctx, sessionID)
		assert.NoError(t, err)
		assert.Equal(t, before.ExpiresAt, after.ExpiresAt)
	})

	t.Run("picks up role changes", func(t *testing.T) {
		users.setRoles(user.ID, []string{"user", "admin"})

		fresh, err := uc.RefreshTokens(ctx, sessionID)
		assert.NoError(t, err)

		claims, err := issuer.VerifyAccess(fresh.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, []string{"user", "admin"}, claims.Roles)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := uc.RefreshTokens(ctx, "no-such-session")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("past the absolute expiry the live row is rejected", func(t *testing.T) {
		other := register(t, uc, users, "laggard@shop.vn", "pass-123")
		pair, err := uc.Login(ctx, other, "pass-123")
		assert.NoError(t, err)
		claims, err := issuer.VerifyRefresh(pair.RefreshToken)
		assert.NoError(t, err)

		sessions.markExpiresAt(claims.SessionID, time.Now().Add(-time.Minute))

		_, err = uc.RefreshTokens(ctx, claims.SessionID)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

		// The row was never retired; only the clock ran out.
		session, err := sessions.GetByID(ctx, claims.SessionID)
		assert.NoError(t, err)
		assert.False(t, session.IsExpired)
	})

	t.Run("retired session is rejected", func(t *testing.T) {
		assert.NoError(t, uc.Logout(ctx, sessionID))
		_, err := uc.RefreshTokens(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})

	t.Run("vanished user", func(t *testing.T) {
		other := register(t, uc, users, "gone@shop.vn", "pass-123")
		pair, err := uc.Login(ctx, other, "pass-123")
		assert.NoError(t, err)
		claims, err := issuer.VerifyRefresh(pair.RefreshToken)
		assert.NoError(t, err)

		users.remove(other.ID)
		_, err = uc.RefreshTokens(ctx, claims.SessionID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
