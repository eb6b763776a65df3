package common

import (
	"context"

	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Paginated is the listing envelope every collection endpoint uses.
type Paginated struct {
	Count   int `json:"count"`
	Results any `json:"results"`
}

// NewPaginated wraps a result slice with its total count.
func NewPaginated(count int, results any) Paginated {
	return Paginated{Count: count, Results: results}
}

// UserView is the account payload nested inside profile views.
type UserView struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	IsActive  bool        `json:"is_active"`
}

// NewUserView builds the wire form of an account.
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.Active,
	}
}

// SpecialtyView is the wire form of a specialty.
type SpecialtyView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewSpecialtyView builds the wire form of a specialty.
func NewSpecialtyView(sp *domain.Specialty) SpecialtyView {
	return SpecialtyView{ID: sp.ID, Name: sp.Name}
}

// PatientView is a patient profile with its account nested.
type PatientView struct {
	ID       int64    `json:"id"`
	User     UserView `json:"user"`
	Document string   `json:"document,omitempty"`
	Active   bool     `json:"active"`
}

// NewPatientView builds the wire form of a patient profile.
func NewPatientView(u *domain.User) PatientView {
	return PatientView{
		ID:       u.ID,
		User:     NewUserView(u),
		Document: u.Document,
		Active:   u.Active,
	}
}

// DoctorView is a doctor profile with its account and specialty nested.
type DoctorView struct {
	ID              int64          `json:"id"`
	User            UserView       `json:"user"`
	SpecialtyDetail *SpecialtyView `json:"specialty_detail,omitempty"`
	Active          bool           `json:"active"`
}

// NewDoctorView builds the wire form of a doctor profile.
func NewDoctorView(u *domain.User, sp *domain.Specialty) DoctorView {
	view := DoctorView{
		ID:     u.ID,
		User:   NewUserView(u),
		Active: u.Active,
	}
	if sp != nil {
		detail := NewSpecialtyView(sp)
		view.SpecialtyDetail = &detail
	}
	return view
}

// AppointmentView is the wire form of an appointment with both parties
// expanded.
type AppointmentView struct {
	ID        int64          `json:"id"`
	Patient   *PatientView   `json:"patient,omitempty"`
	Doctor    *DoctorView    `json:"doctor,omitempty"`
	Specialty *SpecialtyView `json:"specialty,omitempty"`
	Date      string         `json:"date"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time,omitempty"`
	Status    string         `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

// NewAppointmentView expands an appointment's parties from the store.
func NewAppointmentView(ctx context.Context, store *repository.Store, appt *domain.Appointment) AppointmentView {
	view := AppointmentView{
		ID:        appt.ID,
		Date:      appt.Date,
		StartTime: appt.StartTime,
		EndTime:   appt.EndTime,
		Status:    string(appt.Status),
		Reason:    appt.Reason,
	}
	if sp, err := store.Specialties.GetByID(ctx, appt.SpecialtyID); err == nil {
		detail := NewSpecialtyView(sp)
		view.Specialty = &detail
	}
	if appt.Patient != nil {
		if u, err := store.Users.GetByID(ctx, appt.Patient.ID); err == nil {
			pv := NewPatientView(u)
			view.Patient = &pv
		}
	}
	if appt.Doctor != nil {
		if u, err := store.Users.GetByID(ctx, appt.Doctor.ID); err == nil {
			sp, _ := store.Specialties.GetByID(ctx, u.SpecialtyID)
			dv := NewDoctorView(u, sp)
			view.Doctor = &dv
		}
	}
	return view
}

// ScheduleView is the wire form of a weekly schedule with its doctor
// expanded.
type ScheduleView struct {
	ID              int64       `json:"id"`
	DoctorDetail    *DoctorView `json:"doctor_detail,omitempty"`
	DayOfWeek       int         `json:"day_of_week"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	IntervalMinutes int         `json:"interval_minutes"`
	Active          bool        `json:"active"`
}

// NewScheduleView expands a weekly schedule's doctor from the store.
func NewScheduleView(ctx context.Context, store *repository.Store, s *domain.WeeklySchedule) ScheduleView {
	view := ScheduleView{
		ID:              s.ID,
		DayOfWeek:       s.DayOfWeek,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		IntervalMinutes: s.IntervalMinutes,
		Active:          s.Active,
	}
	if u, err := store.Users.GetByID(ctx, s.DoctorID); err == nil {
		sp, _ := store.Specialties.GetByID(ctx, u.SpecialtyID)
		dv := NewDoctorView(u, sp)
		view.DoctorDetail = &dv
	}
	return view
}

// RecordView is the wire form of a medical record with its parties
// expanded.
type RecordView struct {
	ID           int64        `json:"id"`
	Date         string       `json:"date"`
	Symptoms     string       `json:"symptoms,omitempty"`
	Vitals       string       `json:"vitals,omitempty"`
	Diagnosis    string       `json:"diagnosis,omitempty"`
	Prescription string       `json:"prescription,omitempty"`
	Patient      *PatientView `json:"patient,omitempty"`
	Doctor       *DoctorView  `json:"doctor,omitempty"`
	Appointment  *struct {
		ID int64 `json:"id"`
	} `json:"appointment,omitempty"`
}

// NewRecordView expands a medical record's parties from the store.
func NewRecordView(ctx context.Context, store *repository.Store, rec *domain.MedicalRecord) RecordView {
	view := RecordView{
		ID:           rec.ID,
		Date:         rec.Date,
		Symptoms:     rec.Symptoms,
		Vitals:       rec.Vitals,
		Diagnosis:    rec.Diagnosis,
		Prescription: rec.Prescription,
	}
	if u, err := store.Users.GetByID(ctx, rec.PatientID); err == nil {
		pv := NewPatientView(u)
		view.Patient = &pv
	}
	if u, err := store.Users.GetByID(ctx, rec.DoctorID); err == nil {
		sp, _ := store.Specialties.GetByID(ctx, u.SpecialtyID)
		dv := NewDoctorView(u, sp)
		view.Doctor = &dv
	}
	if rec.AppointmentID != 0 {
		view.Appointment = &struct {
			ID int64 `json:"id"`
		}{ID: rec.AppointmentID}
	}
	return view
}
