package domain

// MedicalRecord is a clinical note attached to a patient, optionally
// linked to the appointment that produced it.
type MedicalRecord struct {
	ID            int64  `json:"id"`
	PatientID     int64  `json:"patient_id"`
	DoctorID      int64  `json:"doctor_id"`
	AppointmentID int64  `json:"appointment_id,omitempty"`
	Date          string `json:"date"`
	Symptoms      string `json:"symptoms,omitempty"`
	Vitals        string `json:"vitals,omitempty"`
	Diagnosis     string `json:"diagnosis,omitempty"`
	Prescription  string `json:"prescription,omitempty"`
}

// RecordFilters narrows a medical-record listing.
type RecordFilters struct {
	PatientID int64
	DoctorID  int64
	From      string
	To        string
}
