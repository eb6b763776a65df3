package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side refresh session. The refresh token itself is
// never stored, only its hash.
type Session struct {
	ID         uuid.UUID
	UserID     int64
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	LastSeenAt *time.Time
}

// IsValid reports whether the session can still be refreshed.
func (s *Session) IsValid() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}
