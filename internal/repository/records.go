package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/medsched/medsched/pkg/domain"
)

// RecordsRepository is the in-memory medical record store.
type RecordsRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*domain.MedicalRecord
	nextID int64
}

// NewRecordsRepository creates an empty records repository.
func NewRecordsRepository() *RecordsRepository {
	return &RecordsRepository{
		rows:   make(map[int64]*domain.MedicalRecord),
		nextID: 1,
	}
}

// Create stores a new medical record.
func (r *RecordsRepository) Create(ctx context.Context, rec *domain.MedicalRecord) (*domain.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rec
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

// GetByID retrieves a record by ID.
func (r *RecordsRepository) GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

// GetByAppointmentID retrieves the record written for an appointment.
func (r *RecordsRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.rows {
		if rec.AppointmentID == appointmentID {
			out := *rec
			return &out, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// Update replaces a stored record's clinical fields.
func (r *RecordsRepository) Update(ctx context.Context, rec *domain.MedicalRecord) (*domain.MedicalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rows[rec.ID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	stored.Symptoms = rec.Symptoms
	stored.Vitals = rec.Vitals
	stored.Diagnosis = rec.Diagnosis
	stored.Prescription = rec.Prescription
	out := *stored
	return &out, nil
}

// List returns records matching the filters, newest first.
func (r *RecordsRepository) List(ctx context.Context, f domain.RecordFilters) ([]domain.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.MedicalRecord
	for _, rec := range r.rows {
		if f.PatientID != 0 && rec.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != 0 && rec.DoctorID != f.DoctorID {
			continue
		}
		if f.From != "" && rec.Date < f.From {
			continue
		}
		if f.To != "" && rec.Date > f.To {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
