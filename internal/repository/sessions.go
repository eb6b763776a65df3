package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	idomain "github.com/medsched/medsched/internal/domain"
	"github.com/medsched/medsched/pkg/domain"
)

// SessionsRepository is the in-memory refresh-session store, keyed by
// session ID with a secondary index on token hash.
type SessionsRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*idomain.Session
	byHash   map[string]uuid.UUID
}

// NewSessionsRepository creates an empty sessions repository.
func NewSessionsRepository() *SessionsRepository {
	return &SessionsRepository{
		sessions: make(map[uuid.UUID]*idomain.Session),
		byHash:   make(map[string]uuid.UUID),
	}
}

// Create stores a new session.
func (r *SessionsRepository) Create(ctx context.Context, session *idomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[stored.ID] = &stored
	r.byHash[stored.TokenHash] = stored.ID
	return nil
}

// GetByTokenHash retrieves a non-revoked session by token hash.
func (r *SessionsRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*idomain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil {
		return nil, domain.ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

// Revoke revokes a session by ID.
func (r *SessionsRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

// RevokeByTokenHash revokes the session holding the given token hash.
// Unknown hashes are not an error; logout is idempotent.
func (r *SessionsRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil
	}
	if s, ok := r.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

// RevokeAllByUserID revokes every session belonging to a user.
func (r *SessionsRepository) RevokeAllByUserID(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

// UpdateLastSeen stamps a session's last-seen time.
func (r *SessionsRepository) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	now := time.Now()
	s.LastSeenAt = &now
	return nil
}
