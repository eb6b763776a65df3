package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/medsched/medsched/pkg/domain"
)

// paginated is the backend's listing envelope.
type paginated[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

type wireSpecialty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type wirePatient struct {
	ID       int64    `json:"id"`
	User     wireUser `json:"user"`
	Document string   `json:"document,omitempty"`
	Active   bool     `json:"active"`
}

type wireDoctor struct {
	ID              int64          `json:"id"`
	User            wireUser       `json:"user"`
	SpecialtyDetail *wireSpecialty `json:"specialty_detail,omitempty"`
	Active          bool           `json:"active"`
}

type wireAppointment struct {
	ID        int64          `json:"id"`
	Patient   *wirePatient   `json:"patient,omitempty"`
	Doctor    *wireDoctor    `json:"doctor,omitempty"`
	Specialty *wireSpecialty `json:"specialty,omitempty"`
	Date      string         `json:"date"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time,omitempty"`
	Status    string         `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

func (a wireAppointment) appointment() domain.Appointment {
	appt := domain.Appointment{
		ID:        a.ID,
		Date:      a.Date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    domain.AppointmentStatus(a.Status),
		Reason:    a.Reason,
	}
	if a.Specialty != nil {
		appt.SpecialtyID = a.Specialty.ID
	}
	if a.Patient != nil {
		appt.Patient = &domain.PatientRef{
			ID:       a.Patient.User.ID,
			Name:     domain.DisplayName(a.Patient.User.FirstName, a.Patient.User.LastName, a.Patient.User.Email),
			Email:    a.Patient.User.Email,
			Document: a.Patient.Document,
		}
	}
	if a.Doctor != nil {
		ref := &domain.DoctorRef{
			ID:    a.Doctor.User.ID,
			Name:  domain.DisplayName(a.Doctor.User.FirstName, a.Doctor.User.LastName, a.Doctor.User.Email),
			Email: a.Doctor.User.Email,
		}
		if a.Doctor.SpecialtyDetail != nil {
			ref.Specialty = a.Doctor.SpecialtyDetail.Name
		}
		appt.Doctor = ref
	}
	return appt
}

// Appointments lists appointments matching the filters.
func (c *Client) Appointments(ctx context.Context, filters domain.AppointmentFilters) (*domain.AppointmentPage, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if filters.Query != "" {
		query.Set("q", filters.Query)
	}
	if filters.Status != "" && filters.Status != "ALL" {
		query.Set("status", filters.Status)
	}
	if filters.DoctorID != 0 {
		query.Set("doctor", strconv.FormatInt(filters.DoctorID, 10))
	}
	if filters.SpecialtyID != 0 {
		query.Set("specialty", strconv.FormatInt(filters.SpecialtyID, 10))
	}
	if filters.From != "" {
		query.Set("date_from", filters.From)
	}
	if filters.To != "" {
		query.Set("date_to", filters.To)
	}
	if filters.Mine {
		query.Set("mine", "true")
	}

	var resp paginated[wireAppointment]
	if err := c.get(ctx, "/appointments", query, &resp); err != nil {
		return nil, err
	}

	items := make([]domain.Appointment, 0, len(resp.Results))
	for _, item := range resp.Results {
		items = append(items, item.appointment())
	}
	return &domain.AppointmentPage{
		Items: items,
		Meta:  domain.PageMeta{Page: page, PageSize: pageSize, Total: resp.Count},
	}, nil
}

// MyAppointments lists the calling patient's own appointments.
func (c *Client) MyAppointments(ctx context.Context, filters domain.AppointmentFilters) (*domain.AppointmentPage, error) {
	filters.Mine = true
	return c.Appointments(ctx, filters)
}

// CreateAppointmentRequest books a new appointment.
type CreateAppointmentRequest struct {
	PatientID   int64  `json:"patient_id"`
	DoctorID    int64  `json:"doctor_id"`
	SpecialtyID int64  `json:"specialty_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Reason      string `json:"reason"`
}

// CreateAppointment books a new appointment.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) error {
	return c.post(ctx, "/appointments", req, nil)
}

// ConfirmAppointment marks an appointment CONFIRMED.
func (c *Client) ConfirmAppointment(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/appointments/%d/confirm", id), nil, nil)
}

// CancelAppointment marks an appointment CANCELLED.
func (c *Client) CancelAppointment(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/appointments/%d/cancel", id), nil, nil)
}

// RescheduleAppointment moves an appointment to a new slot and confirms
// it. Start and end are "2006-01-02T15:04" local timestamps.
func (c *Client) RescheduleAppointment(ctx context.Context, id int64, start, end string) error {
	body := struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}{StartTime: start, EndTime: end}
	return c.put(ctx, fmt.Sprintf("/appointments/%d", id), body, nil)
}

// DoctorAvailability returns the calendar events for a doctor, optionally
// narrowed to one date.
func (c *Client) DoctorAvailability(ctx context.Context, doctorID int64, date string) ([]domain.ScheduleEvent, error) {
	query := url.Values{}
	if doctorID != 0 {
		query.Set("doctor_id", strconv.FormatInt(doctorID, 10))
	}
	if date != "" {
		query.Set("date", date)
	}
	var resp struct {
		Events []domain.ScheduleEvent `json:"events"`
	}
	if err := c.get(ctx, "/appointments/availability", query, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}
