package domain

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// PatientRef is the patient summary embedded in an appointment.
type PatientRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"`
}

// DoctorRef is the doctor summary embedded in an appointment.
type DoctorRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty,omitempty"`
}

// Appointment is a booked consultation slot.
// Date is "2006-01-02"; StartTime and EndTime are "15:04" wall-clock strings.
type Appointment struct {
	ID          int64             `json:"id"`
	Patient     *PatientRef       `json:"patient,omitempty"`
	Doctor      *DoctorRef        `json:"doctor,omitempty"`
	Date        string            `json:"date"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time,omitempty"`
	Status      AppointmentStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	SpecialtyID int64             `json:"specialty_id,omitempty"`
}

// AppointmentFilters narrows an appointment listing.
// Zero values mean "no filter"; Status "ALL" is treated the same as empty.
type AppointmentFilters struct {
	Page        int
	PageSize    int
	Query       string
	Status      string
	DoctorID    int64
	SpecialtyID int64
	From        string
	To          string
	Mine        bool
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// AppointmentPage is one page of appointments plus paging metadata.
type AppointmentPage struct {
	Items []Appointment `json:"items"`
	Meta  PageMeta      `json:"meta"`
}
