package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/medsched/medsched/pkg/domain"
)

type wireRecord struct {
	ID           int64        `json:"id"`
	Date         string       `json:"date"`
	Symptoms     string       `json:"symptoms,omitempty"`
	Vitals       string       `json:"vitals,omitempty"`
	Diagnosis    string       `json:"diagnosis,omitempty"`
	Prescription string       `json:"prescription,omitempty"`
	Patient      *wirePatient `json:"patient,omitempty"`
	Doctor       *wireDoctor  `json:"doctor,omitempty"`
	Appointment  *struct {
		ID int64 `json:"id"`
	} `json:"appointment,omitempty"`
}

// RecordDetail is a medical record with patient and doctor resolved for
// display.
type RecordDetail struct {
	domain.MedicalRecord
	PatientName  string
	PatientEmail string
	DoctorName   string
}

func (r wireRecord) detail() RecordDetail {
	detail := RecordDetail{
		MedicalRecord: domain.MedicalRecord{
			ID:           r.ID,
			Date:         r.Date,
			Symptoms:     r.Symptoms,
			Vitals:       r.Vitals,
			Diagnosis:    r.Diagnosis,
			Prescription: r.Prescription,
		},
	}
	if r.Patient != nil {
		detail.PatientID = r.Patient.ID
		detail.PatientName = domain.DisplayName(r.Patient.User.FirstName, r.Patient.User.LastName, r.Patient.User.Email)
		detail.PatientEmail = r.Patient.User.Email
	}
	if r.Doctor != nil {
		detail.DoctorID = r.Doctor.ID
		detail.DoctorName = domain.DisplayName(r.Doctor.User.FirstName, r.Doctor.User.LastName, r.Doctor.User.Email)
	}
	if r.Appointment != nil {
		detail.AppointmentID = r.Appointment.ID
	}
	return detail
}

// Records lists medical records matching the filters.
func (c *Client) Records(ctx context.Context, filters domain.RecordFilters) ([]RecordDetail, int, error) {
	query := url.Values{}
	query.Set("page_size", "20")
	if filters.PatientID != 0 {
		query.Set("patient", strconv.FormatInt(filters.PatientID, 10))
	}
	if filters.DoctorID != 0 {
		query.Set("doctor", strconv.FormatInt(filters.DoctorID, 10))
	}
	if filters.From != "" {
		query.Set("date_from", filters.From)
	}
	if filters.To != "" {
		query.Set("date_to", filters.To)
	}

	var resp paginated[wireRecord]
	if err := c.get(ctx, "/records", query, &resp); err != nil {
		return nil, 0, err
	}
	records := make([]RecordDetail, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, r.detail())
	}
	return records, resp.Count, nil
}

// AppointmentRecord returns the record attached to an appointment, or
// nil when none exists.
func (c *Client) AppointmentRecord(ctx context.Context, appointmentID int64) (*RecordDetail, error) {
	var resp []wireRecord
	if err := c.get(ctx, fmt.Sprintf("/records/appointment/%d", appointmentID), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, nil
	}
	detail := resp[0].detail()
	return &detail, nil
}

// RecordPayload creates or replaces a medical record.
type RecordPayload struct {
	DoctorID      int64  `json:"doctor_id"`
	PatientID     int64  `json:"patient_id"`
	AppointmentID int64  `json:"appointment_id,omitempty"`
	Date          string `json:"date"`
	Symptoms      string `json:"symptoms"`
	Vitals        string `json:"vitals"`
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
}

// CreateRecord stores a new medical record.
func (c *Client) CreateRecord(ctx context.Context, payload RecordPayload) error {
	return c.post(ctx, "/records", payload, nil)
}

// UpdateRecord replaces an existing medical record.
func (c *Client) UpdateRecord(ctx context.Context, id int64, payload RecordPayload) error {
	return c.put(ctx, fmt.Sprintf("/records/%d", id), payload, nil)
}
