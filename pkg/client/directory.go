package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/medsched/medsched/pkg/domain"
)

// DirectoryEntry is a row in the admin listing pages (patients, doctors,
// users, schedules).
type DirectoryEntry struct {
	ID        int64
	Name      string
	Email     string
	Status    string
	Specialty string
	Role      domain.Role
	Active    bool
}

func listQuery(pageSize int) url.Values {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(pageSize))
	return query
}

func statusLabel(active bool) string {
	if active {
		return "Activo"
	}
	return "Inactivo"
}

// Patients lists patient profiles.
func (c *Client) Patients(ctx context.Context) ([]DirectoryEntry, error) {
	var resp paginated[wirePatient]
	if err := c.get(ctx, "/patients", listQuery(100), &resp); err != nil {
		return nil, err
	}
	entries := make([]DirectoryEntry, 0, len(resp.Results))
	for _, p := range resp.Results {
		entries = append(entries, DirectoryEntry{
			ID:     p.ID,
			Name:   domain.DisplayName(p.User.FirstName, p.User.LastName, p.User.Email),
			Email:  p.User.Email,
			Status: statusLabel(p.Active),
			Active: p.Active,
		})
	}
	return entries, nil
}

// Doctors lists doctor profiles.
func (c *Client) Doctors(ctx context.Context) ([]DirectoryEntry, error) {
	var resp paginated[wireDoctor]
	if err := c.get(ctx, "/doctors", listQuery(100), &resp); err != nil {
		return nil, err
	}
	entries := make([]DirectoryEntry, 0, len(resp.Results))
	for _, d := range resp.Results {
		entry := DirectoryEntry{
			ID:     d.ID,
			Name:   domain.DisplayName(d.User.FirstName, d.User.LastName, d.User.Email),
			Email:  d.User.Email,
			Status: statusLabel(d.Active),
			Active: d.Active,
		}
		if d.SpecialtyDetail != nil {
			entry.Specialty = d.SpecialtyDetail.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]DirectoryEntry, error) {
	var resp paginated[wireUser]
	if err := c.get(ctx, "/users", listQuery(100), &resp); err != nil {
		return nil, err
	}
	entries := make([]DirectoryEntry, 0, len(resp.Results))
	for _, u := range resp.Results {
		entries = append(entries, DirectoryEntry{
			ID:     u.ID,
			Name:   domain.DisplayName(u.FirstName, u.LastName, u.Email),
			Email:  u.Email,
			Status: statusLabel(u.IsActive),
			Role:   u.Role,
			Active: u.IsActive,
		})
	}
	return entries, nil
}

// Specialties lists active specialties.
func (c *Client) Specialties(ctx context.Context) ([]domain.Specialty, error) {
	query := listQuery(100)
	query.Set("active", "true")
	var resp paginated[wireSpecialty]
	if err := c.get(ctx, "/specialties", query, &resp); err != nil {
		return nil, err
	}
	specialties := make([]domain.Specialty, 0, len(resp.Results))
	for _, s := range resp.Results {
		specialties = append(specialties, domain.Specialty{ID: s.ID, Name: s.Name, Active: true})
	}
	return specialties, nil
}

type wireSchedule struct {
	ID              int64       `json:"id"`
	DoctorDetail    *wireDoctor `json:"doctor_detail,omitempty"`
	DayOfWeek       int         `json:"day_of_week"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	IntervalMinutes int         `json:"interval_minutes"`
	Active          bool        `json:"active"`
}

// ScheduleDetail is a weekly schedule with its doctor resolved.
type ScheduleDetail struct {
	ID              int64
	DoctorID        int64
	DoctorName      string
	DayOfWeek       int
	StartTime       string
	EndTime         string
	IntervalMinutes int
	Active          bool
}

// Schedules lists weekly schedules, optionally for one doctor.
func (c *Client) Schedules(ctx context.Context, doctorID int64) ([]ScheduleDetail, error) {
	query := listQuery(100)
	if doctorID != 0 {
		query.Set("doctor", strconv.FormatInt(doctorID, 10))
	}
	var resp paginated[wireSchedule]
	if err := c.get(ctx, "/schedules", query, &resp); err != nil {
		return nil, err
	}
	schedules := make([]ScheduleDetail, 0, len(resp.Results))
	for _, s := range resp.Results {
		detail := ScheduleDetail{
			ID:              s.ID,
			DayOfWeek:       s.DayOfWeek,
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			IntervalMinutes: s.IntervalMinutes,
			Active:          s.Active,
		}
		if s.DoctorDetail != nil {
			detail.DoctorID = s.DoctorDetail.ID
			detail.DoctorName = domain.DisplayName(s.DoctorDetail.User.FirstName, s.DoctorDetail.User.LastName, s.DoctorDetail.User.Email)
		}
		schedules = append(schedules, detail)
	}
	return schedules, nil
}

// CreatePatientRequest registers a patient account with its profile.
type CreatePatientRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Document  string
	BirthDate string
}

// CreatePatient registers a new patient.
func (c *Client) CreatePatient(ctx context.Context, req CreatePatientRequest) error {
	body := map[string]any{
		"user": map[string]any{
			"email":      req.Email,
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"role":       domain.RolePatient,
			"password":   req.Password,
		},
		"document":   req.Document,
		"birth_date": req.BirthDate,
		"active":     true,
	}
	return c.post(ctx, "/patients", body, nil)
}

// CreateDoctorRequest registers a doctor account with its profile.
type CreateDoctorRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	SpecialtyID   int64
	LicenseNumber string
	Bio           string
}

// CreateDoctor registers a new doctor.
func (c *Client) CreateDoctor(ctx context.Context, req CreateDoctorRequest) error {
	body := map[string]any{
		"user": map[string]any{
			"email":      req.Email,
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"role":       domain.RoleDoctor,
			"password":   req.Password,
		},
		"specialty":      req.SpecialtyID,
		"license_number": req.LicenseNumber,
		"bio":            req.Bio,
		"active":         true,
	}
	return c.post(ctx, "/doctors", body, nil)
}

// CreateScheduleRequest defines a weekly availability window.
type CreateScheduleRequest struct {
	DoctorID        int64  `json:"doctor"`
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	IntervalMinutes int    `json:"interval_minutes"`
}

// CreateSchedule creates a weekly schedule.
func (c *Client) CreateSchedule(ctx context.Context, req CreateScheduleRequest) error {
	body := map[string]any{
		"doctor":           req.DoctorID,
		"day_of_week":      req.DayOfWeek,
		"start_time":       req.StartTime,
		"end_time":         req.EndTime,
		"interval_minutes": req.IntervalMinutes,
		"active":           true,
	}
	return c.post(ctx, "/schedules", body, nil)
}

// UpdateSchedule replaces a weekly schedule's window.
func (c *Client) UpdateSchedule(ctx context.Context, id int64, req CreateScheduleRequest) error {
	return c.put(ctx, fmt.Sprintf("/schedules/%d", id), req, nil)
}

// SetUserActive activates or deactivates an account.
func (c *Client) SetUserActive(ctx context.Context, id int64, active bool) error {
	return c.post(ctx, fmt.Sprintf("/users/%d/%s", id, activationAction(active)), nil, nil)
}

// SetDoctorActive activates or deactivates a doctor profile.
func (c *Client) SetDoctorActive(ctx context.Context, id int64, active bool) error {
	return c.post(ctx, fmt.Sprintf("/doctors/%d/%s", id, activationAction(active)), nil, nil)
}

func activationAction(active bool) string {
	if active {
		return "activate"
	}
	return "deactivate"
}
