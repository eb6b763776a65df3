package authn

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/medsched/medsched/internal/auth"
	"github.com/medsched/medsched/internal/http/features/common"
	"github.com/medsched/medsched/internal/http/middleware"
	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

// Handler handles the authentication endpoints.
type Handler struct {
	logger          *slog.Logger
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
	users           *repository.UsersRepository
}

// NewHandler creates a new authentication handler.
func NewHandler(logger *slog.Logger, passwordService *auth.PasswordService, sessionService *auth.SessionService, users *repository.UsersRepository) *Handler {
	return &Handler{
		logger:          logger,
		passwordService: passwordService,
		sessionService:  sessionService,
		users:           users,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the token pair. Refresh is omitted when the
// server does not rotate refresh tokens.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// Login authenticates with email and password.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "Email y contraseña son requeridos")
		return
	}

	user, err := h.passwordService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserInactive) {
			httputil.Error(w, http.StatusUnauthorized, "Credenciales inválidas")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tokens, err := h.sessionService.IssueSession(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("session issue failed", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("login", "user_id", user.ID, "role", user.Role)
	httputil.JSON(w, http.StatusOK, TokenResponse{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a new access token.
// POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Refresh == "" {
		httputil.Error(w, http.StatusBadRequest, "refresh es requerido")
		return
	}

	tokens, err := h.sessionService.RefreshSession(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) ||
			errors.Is(err, domain.ErrSessionExpired) ||
			errors.Is(err, domain.ErrSessionRevoked) ||
			errors.Is(err, domain.ErrUserInactive) {
			httputil.Error(w, http.StatusUnauthorized, "Sesión inválida")
			return
		}
		h.logger.Error("refresh failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, TokenResponse{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	})
}

// Logout revokes the caller's session. Unknown tokens are ignored so
// logout never fails for a client that already lost its session.
// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Refresh != "" {
		_ = h.sessionService.RevokeSession(r.Context(), req.Refresh)
	}
	httputil.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated account.
// GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	httputil.JSON(w, http.StatusOK, common.NewUserView(user))
}
