package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/medsched/medsched/pkg/domain"
)

// SpecialtiesRepository is the in-memory specialty catalog.
type SpecialtiesRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*domain.Specialty
	nextID int64
}

// NewSpecialtiesRepository creates an empty specialties repository.
func NewSpecialtiesRepository() *SpecialtiesRepository {
	return &SpecialtiesRepository{
		rows:   make(map[int64]*domain.Specialty),
		nextID: 1,
	}
}

// Create stores a new specialty.
func (r *SpecialtiesRepository) Create(ctx context.Context, sp *domain.Specialty) (*domain.Specialty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *sp
	if stored.ID == 0 {
		stored.ID = r.nextID
	}
	if stored.ID >= r.nextID {
		r.nextID = stored.ID + 1
	}
	r.rows[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID retrieves a specialty by ID.
func (r *SpecialtiesRepository) GetByID(ctx context.Context, id int64) (*domain.Specialty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sp, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSpecialtyNotFound
	}
	out := *sp
	return &out, nil
}

// List returns all specialties sorted by ID.
func (r *SpecialtiesRepository) List(ctx context.Context) ([]domain.Specialty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Specialty, 0, len(r.rows))
	for _, sp := range r.rows {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
