package directory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medsched/medsched/internal/auth"
	"github.com/medsched/medsched/internal/http/features/common"
	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Handler handles the directory endpoints: patients, doctors,
// accounts, specialties and weekly schedules.
type Handler struct {
	logger *slog.Logger
	store  *repository.Store
}

// NewHandler creates a new directory handler.
func NewHandler(logger *slog.Logger, store *repository.Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// Patients lists patient profiles.
// GET /patients
func (h *Handler) Patients(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users.ListByRole(r.Context(), domain.RolePatient)
	if err != nil {
		h.internalError(w, "patient listing failed", err)
		return
	}
	views := make([]common.PatientView, 0, len(users))
	for i := range users {
		views = append(views, common.NewPatientView(&users[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// Doctors lists doctor profiles.
// GET /doctors
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users.ListByRole(r.Context(), domain.RoleDoctor)
	if err != nil {
		h.internalError(w, "doctor listing failed", err)
		return
	}
	views := make([]common.DoctorView, 0, len(users))
	for i := range users {
		sp, _ := h.store.Specialties.GetByID(r.Context(), users[i].SpecialtyID)
		views = append(views, common.NewDoctorView(&users[i], sp))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// Users lists every account.
// GET /users
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users.ListByRole(r.Context(), "")
	if err != nil {
		h.internalError(w, "user listing failed", err)
		return
	}
	views := make([]common.UserView, 0, len(users))
	for i := range users {
		views = append(views, common.NewUserView(&users[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// Specialties lists the specialty catalog.
// GET /specialties
func (h *Handler) Specialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.store.Specialties.List(r.Context())
	if err != nil {
		h.internalError(w, "specialty listing failed", err)
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"
	views := make([]common.SpecialtyView, 0, len(specialties))
	for i := range specialties {
		if activeOnly && !specialties[i].Active {
			continue
		}
		views = append(views, common.NewSpecialtyView(&specialties[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// Schedules lists weekly schedules, optionally for one doctor.
// GET /schedules
func (h *Handler) Schedules(w http.ResponseWriter, r *http.Request) {
	var doctorID int64
	if v := r.URL.Query().Get("doctor"); v != "" {
		doctorID, _ = strconv.ParseInt(v, 10, 64)
	}
	schedules, err := h.store.Schedules.List(r.Context(), doctorID)
	if err != nil {
		h.internalError(w, "schedule listing failed", err)
		return
	}
	views := make([]common.ScheduleView, 0, len(schedules))
	for i := range schedules {
		views = append(views, common.NewScheduleView(r.Context(), h.store, &schedules[i]))
	}
	httputil.JSON(w, http.StatusOK, common.NewPaginated(len(views), views))
}

// createUserPayload is the nested account in profile creation requests.
type createUserPayload struct {
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	Password  string      `json:"password"`
}

// CreatePatientRequest registers a patient account with its profile.
type CreatePatientRequest struct {
	User      createUserPayload `json:"user"`
	Document  string            `json:"document"`
	BirthDate string            `json:"birth_date"`
	Active    bool              `json:"active"`
}

// CreatePatient registers a new patient.
// POST /patients
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User.Email == "" || req.User.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email y contraseña son requeridos")
		return
	}

	user := &domain.User{
		Email:     req.User.Email,
		Role:      domain.RolePatient,
		FirstName: req.User.FirstName,
		LastName:  req.User.LastName,
		Active:    true,
		Document:  req.Document,
	}
	created, err := h.createUser(w, r, user, req.User.Password)
	if err != nil {
		return
	}
	httputil.JSON(w, http.StatusCreated, common.NewPatientView(created))
}

// CreateDoctorRequest registers a doctor account with its profile.
type CreateDoctorRequest struct {
	User          createUserPayload `json:"user"`
	Specialty     int64             `json:"specialty"`
	LicenseNumber string            `json:"license_number"`
	Bio           string            `json:"bio"`
	Active        bool              `json:"active"`
}

// CreateDoctor registers a new doctor.
// POST /doctors
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User.Email == "" || req.User.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email y contraseña son requeridos")
		return
	}

	sp, err := h.store.Specialties.GetByID(r.Context(), req.Specialty)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "especialidad no encontrada")
		return
	}

	user := &domain.User{
		Email:       req.User.Email,
		Role:        domain.RoleDoctor,
		FirstName:   req.User.FirstName,
		LastName:    req.User.LastName,
		Active:      true,
		SpecialtyID: sp.ID,
		Specialty:   sp.Name,
	}
	created, err := h.createUser(w, r, user, req.User.Password)
	if err != nil {
		return
	}
	httputil.JSON(w, http.StatusCreated, common.NewDoctorView(created, sp))
}

// ScheduleRequest creates or replaces a weekly availability window.
type ScheduleRequest struct {
	Doctor          int64  `json:"doctor"`
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	IntervalMinutes int    `json:"interval_minutes"`
	Active          *bool  `json:"active,omitempty"`
}

// CreateSchedule creates a weekly schedule.
// POST /schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validSchedule(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	schedule, err := h.store.Schedules.Create(r.Context(), &domain.WeeklySchedule{
		DoctorID:        req.Doctor,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IntervalMinutes: req.IntervalMinutes,
		Active:          active,
	})
	if err != nil {
		h.internalError(w, "schedule creation failed", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, common.NewScheduleView(r.Context(), h.store, schedule))
}

// UpdateSchedule replaces a weekly schedule's window.
// PUT /schedules/{id}
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.validSchedule(w, r, &req) {
		return
	}

	existing, err := h.store.Schedules.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Horario no encontrado")
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}
	schedule, err := h.store.Schedules.Update(r.Context(), &domain.WeeklySchedule{
		ID:              id,
		DoctorID:        req.Doctor,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IntervalMinutes: req.IntervalMinutes,
		Active:          active,
	})
	if err != nil {
		h.internalError(w, "schedule update failed", err)
		return
	}
	httputil.JSON(w, http.StatusOK, common.NewScheduleView(r.Context(), h.store, schedule))
}

// SetUserActive activates or deactivates an account.
// POST /users/{id}/activate, POST /users/{id}/deactivate
func (h *Handler) SetUserActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid user id")
			return
		}

		user, err := h.store.Users.SetActive(r.Context(), id, active)
		if err != nil {
			httputil.Error(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		if !active {
			// Deactivated accounts lose their sessions right away.
			_ = h.store.Sessions.RevokeAllByUserID(r.Context(), id)
		}
		httputil.JSON(w, http.StatusOK, common.NewUserView(user))
	}
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request, user *domain.User, password string) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		h.internalError(w, "password hashing failed", err)
		return nil, err
	}
	created, err := h.store.Users.Create(r.Context(), user, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "El email ya está registrado")
			return nil, err
		}
		h.internalError(w, "user creation failed", err)
		return nil, err
	}
	return created, nil
}

func (h *Handler) validSchedule(w http.ResponseWriter, r *http.Request, req *ScheduleRequest) bool {
	if req.Doctor == 0 || req.StartTime == "" || req.EndTime == "" {
		httputil.Error(w, http.StatusBadRequest, "médico y horario son requeridos")
		return false
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		httputil.Error(w, http.StatusBadRequest, "día de la semana inválido")
		return false
	}
	doctor, err := h.store.Users.GetByID(r.Context(), req.Doctor)
	if err != nil || doctor.Role != domain.RoleDoctor {
		httputil.Error(w, http.StatusBadRequest, "médico no encontrado")
		return false
	}
	return true
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	httputil.Error(w, http.StatusInternalServerError, "internal server error")
}
