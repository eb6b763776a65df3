package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/medsched/medsched/pkg/domain"
)

// SchedulesRepository is the in-memory weekly availability store.
type SchedulesRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*domain.WeeklySchedule
	nextID int64
}

// NewSchedulesRepository creates an empty schedules repository.
func NewSchedulesRepository() *SchedulesRepository {
	return &SchedulesRepository{
		rows:   make(map[int64]*domain.WeeklySchedule),
		nextID: 1,
	}
}

// Create stores a new weekly schedule.
func (r *SchedulesRepository) Create(ctx context.Context, s *domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
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

// GetByID retrieves a schedule by ID.
func (r *SchedulesRepository) GetByID(ctx context.Context, id int64) (*domain.WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	out := *s
	return &out, nil
}

// Update replaces a stored schedule.
func (r *SchedulesRepository) Update(ctx context.Context, s *domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[s.ID]; !ok {
		return nil, domain.ErrScheduleNotFound
	}
	stored := *s
	r.rows[s.ID] = &stored
	out := stored
	return &out, nil
}

// List returns schedules, optionally scoped to one doctor, sorted by
// doctor then weekday.
func (r *SchedulesRepository) List(ctx context.Context, doctorID int64) ([]domain.WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.WeeklySchedule
	for _, s := range r.rows {
		if doctorID != 0 && s.DoctorID != doctorID {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DoctorID != out[j].DoctorID {
			return out[i].DoctorID < out[j].DoctorID
		}
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// ActiveForDay returns a doctor's active schedules covering one
// weekday (0 is Monday).
func (r *SchedulesRepository) ActiveForDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]domain.WeeklySchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.WeeklySchedule
	for _, s := range r.rows {
		if s.DoctorID == doctorID && s.DayOfWeek == dayOfWeek && s.Active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}
