package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/medsched/medsched/pkg/domain"
)

// UsersRepository is the in-memory user store. Password hashes are kept
// separately from the user records so they never leak through listings.
type UsersRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	creds  map[int64]string
	nextID int64
}

// NewUsersRepository creates an empty users repository.
func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		users:  make(map[int64]*domain.User),
		creds:  make(map[int64]string),
		nextID: 1,
	}
}

// Create stores a new user with its password hash. A zero ID is
// replaced with the next free one.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserAlreadyExists
		}
	}

	stored := *user
	if stored.ID == 0 {
		stored.ID = r.nextID
	}
	if stored.ID >= r.nextID {
		r.nextID = stored.ID + 1
	}
	r.users[stored.ID] = &stored
	r.creds[stored.ID] = passwordHash

	out := stored
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// PasswordHash returns the stored password hash for a user.
func (r *UsersRepository) PasswordHash(ctx context.Context, id int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hash, ok := r.creds[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return hash, nil
}

// ListByRole returns all users with the given role, sorted by ID.
// An empty role returns everyone.
func (r *UsersRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetActive toggles a user's active flag.
func (r *UsersRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Active = active
	out := *u
	return &out, nil
}

// Update replaces a stored user's mutable profile fields.
func (r *UsersRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.Email = user.Email
	u.SpecialtyID = user.SpecialtyID
	u.Specialty = user.Specialty
	u.Document = user.Document
	out := *u
	return &out, nil
}
