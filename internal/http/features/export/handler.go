package export

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medsched/medsched/internal/repository"
)

// Handler handles the CSV export endpoints.
type Handler struct {
	logger *slog.Logger
	store  *repository.Store
}

// NewHandler creates a new export handler.
func NewHandler(logger *slog.Logger, store *repository.Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// Appointments streams every appointment as CSV.
// GET /export/appointments.csv
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.Appointments.All(r.Context())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "fecha", "hora_inicio", "hora_fin", "paciente", "medico", "estado", "motivo"})

	for _, rec := range all {
		appt, err := h.store.Appointments.GetByID(r.Context(), rec.ID)
		if err != nil {
			continue
		}
		var patient, doctor string
		if appt.Patient != nil {
			patient = appt.Patient.Name
		}
		if appt.Doctor != nil {
			doctor = appt.Doctor.Name
		}
		_ = cw.Write([]string{
			strconv.FormatInt(appt.ID, 10),
			appt.Date,
			appt.StartTime,
			appt.EndTime,
			patient,
			doctor,
			string(appt.Status),
			appt.Reason,
		})
	}
	cw.Flush()
}
