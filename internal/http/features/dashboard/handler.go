package dashboard

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Handler handles the dashboard metrics endpoint.
type Handler struct {
	logger *slog.Logger
	store  *repository.Store
}

// NewHandler creates a new dashboard handler.
func NewHandler(logger *slog.Logger, store *repository.Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// Metrics computes the dashboard payload, optionally narrowed to a
// date window.
// GET /dashboard/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	all, err := h.store.Appointments.All(r.Context())
	if err != nil {
		h.logger.Error("metrics computation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var total, confirmed, pending, cancelled int
	bySpecialty := make(map[string]int)
	byMonth := make(map[string]int)

	for _, appt := range all {
		if from != "" && appt.Date < from {
			continue
		}
		if to != "" && appt.Date > to {
			continue
		}

		total++
		switch appt.Status {
		case domain.StatusConfirmed:
			confirmed++
		case domain.StatusPending:
			pending++
		case domain.StatusCancelled:
			cancelled++
		}

		specialty := "Otra"
		if sp, err := h.store.Specialties.GetByID(r.Context(), appt.SpecialtyID); err == nil {
			specialty = sp.Name
		}
		bySpecialty[specialty]++

		if len(appt.Date) >= 7 {
			byMonth[appt.Date[:7]]++
		}
	}

	today := time.Now().Format("2006-01-02")
	todayAppointments, err := h.store.Appointments.ListByDate(r.Context(), today, 0)
	if err != nil {
		h.logger.Error("metrics computation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics := domain.DashboardMetrics{
		KPIs: []domain.KPIMetric{
			{Label: "Total citas", Value: total, Trend: 5},
			{Label: "Confirmadas", Value: confirmed, Trend: 3},
			{Label: "Pendientes", Value: pending, Trend: -2},
			{Label: "Canceladas", Value: cancelled, Trend: -1},
		},
		AppointmentsBySpecialty: make([]domain.SpecialtyMetric, 0, len(bySpecialty)),
		NewPatientsByMonth:      make([]domain.MonthlyMetric, 0, len(byMonth)),
		TodayAppointments:       make([]domain.TodayAppointment, 0, len(todayAppointments)),
	}

	for specialty, count := range bySpecialty {
		metrics.AppointmentsBySpecialty = append(metrics.AppointmentsBySpecialty, domain.SpecialtyMetric{
			Specialty: specialty,
			Count:     count,
		})
	}
	sort.Slice(metrics.AppointmentsBySpecialty, func(i, j int) bool {
		return metrics.AppointmentsBySpecialty[i].Specialty < metrics.AppointmentsBySpecialty[j].Specialty
	})

	for month, count := range byMonth {
		metrics.NewPatientsByMonth = append(metrics.NewPatientsByMonth, domain.MonthlyMetric{
			Month: month,
			Count: count,
		})
	}
	sort.Slice(metrics.NewPatientsByMonth, func(i, j int) bool {
		return metrics.NewPatientsByMonth[i].Month < metrics.NewPatientsByMonth[j].Month
	})

	for _, appt := range todayAppointments {
		row := domain.TodayAppointment{
			ID:     appt.ID,
			Time:   appt.StartTime,
			Status: string(appt.Status),
		}
		if appt.Patient != nil {
			row.Patient = appt.Patient.Name
		}
		if appt.Doctor != nil {
			row.Doctor = appt.Doctor.Name
		}
		metrics.TodayAppointments = append(metrics.TodayAppointments, row)
	}

	httputil.JSON(w, http.StatusOK, metrics)
}
