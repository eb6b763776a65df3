package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	idomain "github.com/medsched/medsched/internal/domain"
	"github.com/medsched/medsched/pkg/domain"
)

// DefaultPageSize is used when a listing request does not name one.
const DefaultPageSize = 10

// AppointmentQuery narrows and pages an appointment listing. PatientID
// and DoctorID scope the listing to one party's appointments.
type AppointmentQuery struct {
	domain.AppointmentFilters
	PatientID int64
}

// AppointmentsRepository is the in-memory appointment store. It joins
// patient and doctor details from the users repository on reads.
type AppointmentsRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*idomain.AppointmentRecord
	nextID int64

	users       *UsersRepository
	specialties *SpecialtiesRepository
}

// NewAppointmentsRepository creates an empty appointments repository.
func NewAppointmentsRepository(users *UsersRepository, specialties *SpecialtiesRepository) *AppointmentsRepository {
	return &AppointmentsRepository{
		rows:        make(map[int64]*idomain.AppointmentRecord),
		nextID:      1,
		users:       users,
		specialties: specialties,
	}
}

// List returns one page of appointments matching the query, newest
// first. The free-text query matches patient name, doctor name,
// document and reason, ignoring case and accents.
func (r *AppointmentsRepository) List(ctx context.Context, q AppointmentQuery) (*domain.AppointmentPage, error) {
	r.mu.RLock()
	records := make([]*idomain.AppointmentRecord, 0, len(r.rows))
	for _, rec := range r.rows {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	var matched []domain.Appointment
	for _, rec := range records {
		appt, err := r.join(ctx, rec)
		if err != nil {
			return nil, err
		}
		if r.matches(appt, q) {
			matched = append(matched, *appt)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		if matched[i].StartTime != matched[j].StartTime {
			return matched[i].StartTime > matched[j].StartTime
		}
		return matched[i].ID > matched[j].ID
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &domain.AppointmentPage{
		Items: matched[start:end],
		Meta: domain.PageMeta{
			Page:     page,
			PageSize: size,
			Total:    total,
		},
	}, nil
}

// ListByDate returns all non-cancelled appointments on a date, ordered
// by start time. A zero doctorID means all doctors.
func (r *AppointmentsRepository) ListByDate(ctx context.Context, date string, doctorID int64) ([]domain.Appointment, error) {
	r.mu.RLock()
	records := make([]*idomain.AppointmentRecord, 0, len(r.rows))
	for _, rec := range r.rows {
		if rec.Date != date || rec.Status == domain.StatusCancelled {
			continue
		}
		if doctorID != 0 && rec.DoctorID != doctorID {
			continue
		}
		records = append(records, rec)
	}
	r.mu.RUnlock()

	out := make([]domain.Appointment, 0, len(records))
	for _, rec := range records {
		appt, err := r.join(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

// GetByID retrieves one appointment with parties joined in.
func (r *AppointmentsRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	r.mu.RLock()
	rec, ok := r.rows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	return r.join(ctx, rec)
}

// Record returns the stored row for an appointment.
func (r *AppointmentsRepository) Record(ctx context.Context, id int64) (*idomain.AppointmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	out := *rec
	return &out, nil
}

// Create stores a new appointment after checking the slot is free.
func (r *AppointmentsRepository) Create(ctx context.Context, rec *idomain.AppointmentRecord) (*domain.Appointment, error) {
	r.mu.Lock()
	if r.slotTakenLocked(rec.DoctorID, rec.Date, rec.StartTime, 0) {
		r.mu.Unlock()
		return nil, domain.ErrSlotTaken
	}

	stored := *rec
	if stored.ID == 0 {
		stored.ID = r.nextID
	}
	if stored.ID >= r.nextID {
		r.nextID = stored.ID + 1
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.rows[stored.ID] = &stored
	r.mu.Unlock()

	return r.join(ctx, &stored)
}

// SetStatus moves an appointment to a new status.
func (r *AppointmentsRepository) SetStatus(ctx context.Context, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	r.mu.Lock()
	rec, ok := r.rows[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrAppointmentNotFound
	}
	rec.Status = status
	updated := *rec
	r.mu.Unlock()

	return r.join(ctx, &updated)
}

// Reschedule moves an appointment to a new slot and confirms it.
func (r *AppointmentsRepository) Reschedule(ctx context.Context, id int64, date, startTime, endTime string) (*domain.Appointment, error) {
	r.mu.Lock()
	rec, ok := r.rows[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrAppointmentNotFound
	}
	if r.slotTakenLocked(rec.DoctorID, date, startTime, id) {
		r.mu.Unlock()
		return nil, domain.ErrSlotTaken
	}
	rec.Date = date
	rec.StartTime = startTime
	rec.EndTime = endTime
	rec.Status = domain.StatusConfirmed
	updated := *rec
	r.mu.Unlock()

	return r.join(ctx, &updated)
}

// TakenSlots returns the start times already booked for a doctor on a
// date, cancelled appointments excluded.
func (r *AppointmentsRepository) TakenSlots(ctx context.Context, doctorID int64, date string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var taken []string
	for _, rec := range r.rows {
		if rec.DoctorID == doctorID && rec.Date == date && rec.Status != domain.StatusCancelled {
			taken = append(taken, rec.StartTime)
		}
	}
	sort.Strings(taken)
	return taken, nil
}

// All returns every stored appointment row. Used for metrics.
func (r *AppointmentsRepository) All(ctx context.Context) ([]idomain.AppointmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]idomain.AppointmentRecord, 0, len(r.rows))
	for _, rec := range r.rows {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AppointmentsRepository) slotTakenLocked(doctorID int64, date, startTime string, exceptID int64) bool {
	for _, rec := range r.rows {
		if rec.ID == exceptID {
			continue
		}
		if rec.DoctorID == doctorID && rec.Date == date && rec.StartTime == startTime && rec.Status != domain.StatusCancelled {
			return true
		}
	}
	return false
}

func (r *AppointmentsRepository) matches(appt *domain.Appointment, q AppointmentQuery) bool {
	if q.PatientID != 0 && (appt.Patient == nil || appt.Patient.ID != q.PatientID) {
		return false
	}
	if q.DoctorID != 0 && (appt.Doctor == nil || appt.Doctor.ID != q.DoctorID) {
		return false
	}
	if q.SpecialtyID != 0 && appt.SpecialtyID != q.SpecialtyID {
		return false
	}
	if q.Status != "" && q.Status != "ALL" && string(appt.Status) != q.Status {
		return false
	}
	if q.From != "" && appt.Date < q.From {
		return false
	}
	if q.To != "" && appt.Date > q.To {
		return false
	}

	var patientName, patientDoc, doctorName string
	if appt.Patient != nil {
		patientName = appt.Patient.Name
		patientDoc = appt.Patient.Document
	}
	if appt.Doctor != nil {
		doctorName = appt.Doctor.Name
	}
	return matchesQuery(q.Query, patientName, patientDoc, doctorName, appt.Reason)
}

func (r *AppointmentsRepository) join(ctx context.Context, rec *idomain.AppointmentRecord) (*domain.Appointment, error) {
	appt := &domain.Appointment{
		ID:          rec.ID,
		Date:        rec.Date,
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		Status:      rec.Status,
		Reason:      rec.Reason,
		SpecialtyID: rec.SpecialtyID,
	}

	if patient, err := r.users.GetByID(ctx, rec.PatientID); err == nil {
		appt.Patient = &domain.PatientRef{
			ID:       patient.ID,
			Name:     patient.DisplayName(),
			Email:    patient.Email,
			Document: patient.Document,
		}
	}
	if doctor, err := r.users.GetByID(ctx, rec.DoctorID); err == nil {
		ref := &domain.DoctorRef{
			ID:    doctor.ID,
			Name:  doctor.DisplayName(),
			Email: doctor.Email,
		}
		if sp, err := r.specialties.GetByID(ctx, doctor.SpecialtyID); err == nil {
			ref.Specialty = sp.Name
		}
		appt.Doctor = ref
	}
	return appt, nil
}
