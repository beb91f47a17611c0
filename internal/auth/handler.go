package auth

import (
	"net/http"

	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/user"
	"github.com/redmonkez12/taskdesk/internal/validation"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service        *Service
	rateLimiter    *ratelimit.Limiter
	exposeInternal bool
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, exposeInternal bool) *Handler {
	return &Handler{
		service:        service,
		rateLimiter:    rateLimiter,
		exposeInternal: exposeInternal,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    *user.User `json:"user"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	User *user.User `json:"user"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new account and receive a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	result, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("user registered", "user_id", result.User.ID.String())

	httputil.RespondJSON(w, SessionResponse{
		Message: "account created successfully",
		Token:   result.Token,
		User:    result.User,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      403 {object} httputil.ErrorResponse "Account disabled"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	result, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, SessionResponse{
		Message: "login successful",
		Token:   result.Token,
		User:    result.User,
	}, http.StatusOK)
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	httputil.RespondJSON(w, UserResponse{User: u}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Sends a reset link if the account exists. The response is the same either way.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      429 {object} httputil.ErrorResponse "Cooldown active"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	email := validation.NormalizeEmail(req.Email)
	v := validation.New()
	v.Email("email", email)
	if err := v.Err(); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	// Check email cooldown (2 min)
	acquired, err := h.rateLimiter.AcquireEmailCooldown(r.Context(), email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		// Continue despite error
	} else if !acquired {
		httputil.RespondAppError(w, r, ErrCooldownActive, h.exposeInternal)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), email); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	// Always return success (prevent email enumeration)
	httputil.RespondJSON(w, httputil.MessageResponse{
		Message: "if that email is registered, a reset link has been sent",
	}, http.StatusOK)
}

// ResetPassword completes a password reset
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid token or password"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	if err := h.service.ResetPassword(r.Context(), ResetPasswordInput(req)); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, httputil.MessageResponse{
		Message: "password has been reset, please log in",
	}, http.StatusOK)
}
