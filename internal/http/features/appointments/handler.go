package appointments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	idomain "github.com/medsched/medsched/internal/domain"
	"github.com/medsched/medsched/internal/http/features/common"
	"github.com/medsched/medsched/internal/http/middleware"
	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Handler handles the appointment endpoints.
type Handler struct {
	logger *slog.Logger
	store  *repository.Store
}

// NewHandler creates a new appointments handler.
func NewHandler(logger *slog.Logger, store *repository.Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// List returns a page of appointments. Patients only ever see their
// own; doctors asking for "mine" see their own agenda.
// GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	userID, _ := middleware.GetUserID(r.Context())
	params := r.URL.Query()

	query := repository.AppointmentQuery{
		AppointmentFilters: domain.AppointmentFilters{
			Page:     intParam(params.Get("page"), 1),
			PageSize: intParam(params.Get("page_size"), repository.DefaultPageSize),
			Query:    params.Get("q"),
			Status:   params.Get("status"),
			From:     params.Get("date_from"),
			To:       params.Get("date_to"),
		},
	}
	if v := params.Get("doctor"); v != "" {
		query.DoctorID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := params.Get("specialty"); v != "" {
		query.SpecialtyID, _ = strconv.ParseInt(v, 10, 64)
	}

	mine := params.Get("mine") == "true"
	switch {
	case claims.Role == domain.RolePatient:
		query.PatientID = userID
	case mine && claims.Role == domain.RoleDoctor:
		query.DoctorID = userID
	}

	page, err := h.store.Appointments.List(r.Context(), query)
	if err != nil {
		h.logger.Error("appointment listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]common.AppointmentView, 0, len(page.Items))
	for i := range page.Items {
		views = append(views, common.NewAppointmentView(r.Context(), h.store, &page.Items[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(page.Meta.Total, views))
}

// CreateRequest books a new appointment.
type CreateRequest struct {
	PatientID   int64  `json:"patient_id"`
	DoctorID    int64  `json:"doctor_id"`
	SpecialtyID int64  `json:"specialty_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Reason      string `json:"reason"`
}

// Create books a new appointment in PENDING state.
// POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, _ := middleware.GetClaims(r.Context())
	userID, _ := middleware.GetUserID(r.Context())
	if claims.Role == domain.RolePatient {
		req.PatientID = userID
	}

	if req.PatientID == 0 || req.DoctorID == 0 || req.Date == "" || req.StartTime == "" {
		httputil.Error(w, http.StatusBadRequest, "paciente, médico, fecha y hora son requeridos")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		httputil.Error(w, http.StatusBadRequest, "fecha inválida")
		return
	}

	doctor, err := h.store.Users.GetByID(r.Context(), req.DoctorID)
	if err != nil || doctor.Role != domain.RoleDoctor {
		httputil.Error(w, http.StatusBadRequest, "médico no encontrado")
		return
	}
	if req.SpecialtyID == 0 {
		req.SpecialtyID = doctor.SpecialtyID
	}

	appt, err := h.store.Appointments.Create(r.Context(), &idomain.AppointmentRecord{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		SpecialtyID: req.SpecialtyID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      domain.StatusPending,
		Reason:      req.Reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			httputil.Error(w, http.StatusConflict, "El horario ya está ocupado")
			return
		}
		h.logger.Error("appointment creation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, common.NewAppointmentView(r.Context(), h.store, appt))
}

// Confirm marks a pending appointment confirmed.
// POST /appointments/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.StatusConfirmed, []domain.AppointmentStatus{domain.StatusPending})
}

// Cancel cancels a pending or confirmed appointment.
// POST /appointments/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.StatusCancelled, []domain.AppointmentStatus{domain.StatusPending, domain.StatusConfirmed})
}

// Complete marks a confirmed appointment completed.
// POST /appointments/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, domain.StatusCompleted, []domain.AppointmentStatus{domain.StatusConfirmed})
}

// RescheduleRequest moves an appointment. Times are local
// "2006-01-02T15:04" timestamps.
type RescheduleRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Reschedule moves an appointment to a new slot and confirms it.
// PUT /appointments/{id}
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartTime == "" || req.EndTime == "" {
		httputil.Error(w, http.StatusBadRequest, "Se requieren las fechas de inicio y fin")
		return
	}

	date, start, ok := splitLocalTimestamp(req.StartTime)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "fecha de inicio inválida")
		return
	}
	_, end, ok := splitLocalTimestamp(req.EndTime)
	if !ok {
		httputil.Error(w, http.StatusBadRequest, "fecha de fin inválida")
		return
	}

	appt, err := h.store.Appointments.Reschedule(r.Context(), id, date, start, end)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAppointmentNotFound):
			httputil.Error(w, http.StatusNotFound, "Cita no encontrada")
		case errors.Is(err, domain.ErrSlotTaken):
			httputil.Error(w, http.StatusConflict, "El horario ya está ocupado")
		default:
			h.logger.Error("reschedule failed", "error", err, "appointment_id", id)
			httputil.Error(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewAppointmentView(r.Context(), h.store, appt))
}

// Availability returns a doctor's appointments as calendar events,
// optionally narrowed to one date.
// GET /appointments/availability
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	var doctorID int64
	if v := params.Get("doctor_id"); v != "" {
		doctorID, _ = strconv.ParseInt(v, 10, 64)
	}
	date := params.Get("date")

	query := repository.AppointmentQuery{
		AppointmentFilters: domain.AppointmentFilters{
			PageSize: 1000,
			DoctorID: doctorID,
			From:     date,
			To:       date,
		},
	}
	page, err := h.store.Appointments.List(r.Context(), query)
	if err != nil {
		h.logger.Error("availability lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	events := make([]domain.ScheduleEvent, 0, len(page.Items))
	for _, appt := range page.Items {
		events = append(events, toScheduleEvent(appt))
	}
	httputil.JSON(w, http.StatusOK, map[string][]domain.ScheduleEvent{"events": events})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, to domain.AppointmentStatus, from []domain.AppointmentStatus) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	current, err := h.store.Appointments.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Cita no encontrada")
		return
	}

	allowed := false
	for _, s := range from {
		if current.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		httputil.Error(w, http.StatusConflict, "La cita no admite ese cambio de estado")
		return
	}

	appt, err := h.store.Appointments.SetStatus(r.Context(), id, to)
	if err != nil {
		h.logger.Error("status change failed", "error", err, "appointment_id", id)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewAppointmentView(r.Context(), h.store, appt))
}

// splitLocalTimestamp splits "2006-01-02T15:04" into date and wall
// clock, tolerating trailing seconds.
func splitLocalTimestamp(ts string) (date, clock string, ok bool) {
	parts := strings.SplitN(ts, "T", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", parts[0]); err != nil {
		return "", "", false
	}
	clock = parts[1]
	if len(clock) > 5 {
		clock = clock[:5]
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		return "", "", false
	}
	return parts[0], clock, true
}

func toScheduleEvent(appt domain.Appointment) domain.ScheduleEvent {
	end := appt.EndTime
	if end == "" {
		end = appt.StartTime
	}
	event := domain.ScheduleEvent{
		ID:     appt.ID,
		Start:  appt.Date + "T" + appt.StartTime + ":00Z",
		End:    appt.Date + "T" + end + ":00Z",
		Status: string(appt.Status),
	}
	patientName := "Paciente"
	if appt.Patient != nil {
		patientName = appt.Patient.Name
		event.PatientName = appt.Patient.Name
	}
	if appt.Doctor != nil {
		event.DoctorID = appt.Doctor.ID
	}
	event.Title = patientName + " (" + string(appt.Status) + ")"
	return event
}

func intParam(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
