package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/httputil"
)

// Handler serves /api/tasks. All routes sit behind auth.Middleware.RequireAuth.
type Handler struct {
	service        *Service
	exposeInternal bool
}

func NewHandler(service *Service, exposeInternal bool) *Handler {
	return &Handler{service: service, exposeInternal: exposeInternal}
}

// Routes mounts the task endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type ListResponse struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

type TaskResponse struct {
	Task *Task `json:"task"`
}

type MutationResponse struct {
	Message string `json:"message"`
	Task    *Task  `json:"task"`
}

type StatsResponse struct {
	Stats *Stats `json:"stats"`
}

// List returns the caller's tasks
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "todo, in-progress or done"
// @Param        priority query string false "low, medium or high"
// @Param        search   query string false "Case-insensitive match on title and description"
// @Param        sortBy   query string false "createdAt, updatedAt, title, dueDate or priority"
// @Param        order    query string false "asc or desc"
// @Param        page     query int    false "Page number, from 1"
// @Param        limit    query int    false "Page size, at most 100"
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), auth.MustUserID(r.Context()), ParseListQuery(r.URL.Query()))
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, ListResponse{Tasks: result.Tasks, Pagination: result.Pagination}, http.StatusOK)
}

// Stats returns per-status counts
// @Summary      Task statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} StatsResponse
// @Router       /tasks/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), auth.MustUserID(r.Context()))
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, StatsResponse{Stats: stats}, http.StatusOK)
}

// Get returns one task
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	t, err := h.service.Get(r.Context(), auth.MustUserID(r.Context()), id)
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, TaskResponse{Task: t}, http.StatusOK)
}

// Create adds a task
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateInput true "Task"
// @Success      201 {object} MutationResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Router       /tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	t, err := h.service.Create(r.Context(), auth.MustUserID(r.Context()), in)
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, MutationResponse{Message: "task created", Task: t}, http.StatusCreated)
}

// Update changes a task
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string      true "Task ID"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} MutationResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var in UpdateInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	t, err := h.service.Update(r.Context(), auth.MustUserID(r.Context()), id, in)
	if err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, MutationResponse{Message: "task updated", Task: t}, http.StatusOK)
}

// Delete removes a task
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), auth.MustUserID(r.Context()), id); err != nil {
		httputil.RespondAppError(w, r, err, h.exposeInternal)
		return
	}

	httputil.RespondJSON(w, httputil.MessageResponse{Message: "task deleted"}, http.StatusOK)
}

// taskID parses the {id} path segment. A malformed id cannot name any task, so it is a 404.
func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondAppError(w, r, ErrNotFound, h.exposeInternal)
		return uuid.Nil, false
	}
	return id, true
}
