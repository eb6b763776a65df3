package domain

import (
	"time"

	"github.com/medsched/medsched/pkg/domain"
)

// AppointmentRecord is the flat appointment row as stored. Patient and
// doctor details are joined in at read time.
type AppointmentRecord struct {
	ID          int64
	PatientID   int64
	DoctorID    int64
	SpecialtyID int64
	Date        string
	StartTime   string
	EndTime     string
	Status      domain.AppointmentStatus
	Reason      string
	CreatedAt   time.Time
}
