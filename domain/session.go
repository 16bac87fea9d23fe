package domain

import "time"

// Session represents one authenticated login. Retirement is a soft state:
// rows are flagged, never deleted, so login history stays auditable.
type Session struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	RefreshToken    string    `json:"-"`
	LoginAt         time.Time `json:"login_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	IsExpired       bool      `json:"is_expired"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Usable reports whether the session may still be refreshed: not retired and
// not past its absolute expiry.
func (s *Session) Usable(reference time.Time) bool {
	if s == nil || s.IsExpired {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return s.ExpiresAt.After(reference)
}
