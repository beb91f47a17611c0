package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/user"
)

// Handler serves /api/users. Every route expects the authenticated user in the context.
type Handler struct {
	service        *Service
	exposeInternal bool
}

func NewHandler(service *Service, exposeInternal bool) *Handler {
	return &Handler{service: service, exposeInternal: exposeInternal}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/profile", h.Get)
	r.Put("/profile", h.Update)
	r.Put("/password", h.ChangePassword)
}

// ChangePasswordRequest is the body of PUT /api/users/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ProfileResponse struct {
	User *user.User `json:"user"`
}

type UpdateResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

type PasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Get returns the caller's profile
// @Summary      Get profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ProfileResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /users/profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	httputil.RespondJSON(w, ProfileResponse{User: u}, http.StatusOK)
}

// Update edits name, bio and avatar
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateInput true "Profile fields"
// @Success      200 {object} UpdateResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /users/profile [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	u, err := h.service.Update(r.Context(), auth.MustUserID(r.Context()), in)
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, UpdateResponse{Message: "profile updated", User: u}, http.StatusOK)
}

// ChangePassword replaces the password and returns a new token
// @Summary      Change password
// @Description  Previously issued tokens stop working once the password changes.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200 {object} PasswordResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse "Current password is incorrect"
// @Router       /users/password [put]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	userID := auth.MustUserID(r.Context())
	token, err := h.service.ChangePassword(r.Context(), userID, auth.ChangePasswordInput(req))
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("password changed", "user_id", userID.String())

	httputil.RespondJSON(w, PasswordResponse{Message: "password updated", Token: token}, http.StatusOK)
}
