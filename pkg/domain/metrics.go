package domain

// KPIMetric is a single headline figure on the dashboard.
type KPIMetric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Trend int    `json:"trend,omitempty"`
}

// SpecialtyMetric counts appointments per specialty.
type SpecialtyMetric struct {
	Specialty string `json:"specialty"`
	Count     int    `json:"count"`
}

// MonthlyMetric counts appointments per "2006-01" month.
type MonthlyMetric struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TodayAppointment is a row in the dashboard's today listing.
type TodayAppointment struct {
	ID      int64  `json:"id"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// DashboardMetrics is the full dashboard payload.
type DashboardMetrics struct {
	KPIs                     []KPIMetric        `json:"kpis"`
	AppointmentsBySpecialty  []SpecialtyMetric  `json:"appointmentsBySpecialty"`
	NewPatientsByMonth       []MonthlyMetric    `json:"newPatientsByMonth"`
	TodayAppointments        []TodayAppointment `json:"todayAppointments"`
}
