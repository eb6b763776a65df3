package records

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medsched/medsched/internal/http/features/common"
	"github.com/medsched/medsched/internal/http/middleware"
	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Handler handles the medical record endpoints.
type Handler struct {
	logger *slog.Logger
	store  *repository.Store
}

// NewHandler creates a new records handler.
func NewHandler(logger *slog.Logger, store *repository.Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// List returns medical records matching the filters. Patients only
// see their own history; doctors only the records they wrote.
// GET /records
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaims(r.Context())
	userID, _ := middleware.GetUserID(r.Context())
	params := r.URL.Query()

	filters := domain.RecordFilters{
		From: params.Get("date_from"),
		To:   params.Get("date_to"),
	}
	if v := params.Get("patient"); v != "" {
		filters.PatientID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := params.Get("doctor"); v != "" {
		filters.DoctorID, _ = strconv.ParseInt(v, 10, 64)
	}

	switch claims.Role {
	case domain.RolePatient:
		filters.PatientID = userID
	case domain.RoleDoctor:
		filters.DoctorID = userID
	}

	records, err := h.store.Records.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("record listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]common.RecordView, 0, len(records))
	for i := range records {
		views = append(views, common.NewRecordView(r.Context(), h.store, &records[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// ByAppointment returns the records written for one appointment as a
// list, empty when none exists.
// GET /records/appointment/{id}
func (h *Handler) ByAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	views := []common.RecordView{}
	rec, err := h.store.Records.GetByAppointmentID(r.Context(), id)
	if err == nil {
		views = append(views, common.NewRecordView(r.Context(), h.store, rec))
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		h.logger.Error("record lookup failed", "error", err, "appointment_id", id)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, views)
}

// Payload creates or replaces a medical record.
type Payload struct {
	DoctorID      int64  `json:"doctor_id"`
	PatientID     int64  `json:"patient_id"`
	AppointmentID int64  `json:"appointment_id,omitempty"`
	Date          string `json:"date"`
	Symptoms      string `json:"symptoms"`
	Vitals        string `json:"vitals"`
	Diagnosis     string `json:"diagnosis"`
	Prescription  string `json:"prescription"`
}

// Create stores a new medical record. Doctors always write in their
// own name.
// POST /records
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Payload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, _ := middleware.GetClaims(r.Context())
	userID, _ := middleware.GetUserID(r.Context())
	if claims.Role == domain.RoleDoctor {
		req.DoctorID = userID
	}

	if req.PatientID == 0 || req.DoctorID == 0 {
		httputil.Error(w, http.StatusBadRequest, "paciente y médico son requeridos")
		return
	}
	if _, err := h.store.Users.GetByID(r.Context(), req.PatientID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "paciente no encontrado")
		return
	}
	if req.AppointmentID != 0 {
		if _, err := h.store.Appointments.GetByID(r.Context(), req.AppointmentID); err != nil {
			httputil.Error(w, http.StatusBadRequest, "Cita no encontrada")
			return
		}
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	rec, err := h.store.Records.Create(r.Context(), &domain.MedicalRecord{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Date:          req.Date,
		Symptoms:      req.Symptoms,
		Vitals:        req.Vitals,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
	})
	if err != nil {
		h.logger.Error("record creation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, common.NewRecordView(r.Context(), h.store, rec))
}

// Update replaces an existing record's clinical fields.
// PUT /records/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req Payload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.store.Records.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Historia clínica no encontrada")
		return
	}

	claims, _ := middleware.GetClaims(r.Context())
	userID, _ := middleware.GetUserID(r.Context())
	if claims.Role == domain.RoleDoctor && existing.DoctorID != userID {
		httputil.Error(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	rec, err := h.store.Records.Update(r.Context(), &domain.MedicalRecord{
		ID:           id,
		Symptoms:     req.Symptoms,
		Vitals:       req.Vitals,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
	})
	if err != nil {
		h.logger.Error("record update failed", "error", err, "record_id", id)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewRecordView(r.Context(), h.store, rec))
}
