package domain

// WeeklySchedule is a recurring availability window for a doctor.
// DayOfWeek is 0 (Monday) through 6 (Sunday), matching the backend.
type WeeklySchedule struct {
	ID              int64  `json:"id"`
	DoctorID        int64  `json:"doctor_id"`
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	IntervalMinutes int    `json:"interval_minutes"`
	Active          bool   `json:"active"`
}

// ScheduleEvent is a calendar entry derived from an appointment.
// Start and End are RFC 3339 timestamps.
type ScheduleEvent struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DoctorID    int64  `json:"doctorId,omitempty"`
	PatientName string `json:"patientName,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Specialty is a medical specialty offered by the hospital.
type Specialty struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
