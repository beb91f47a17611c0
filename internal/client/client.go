// Package client is a typed HTTP client for the taskdesk API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/task"
	"github.com/redmonkez12/taskdesk/internal/user"
	"github.com/redmonkez12/taskdesk/internal/validation"
)

// ErrUnauthorized is matched by any 401 or 403 response.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  []validation.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// Session is the body returned by register and login.
type Session struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    *user.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Me resolves the current token to its user.
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	var out struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	var out messageResponse
	body := map[string]string{"token": token, "newPassword": newPassword}
	if err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ProfileUpdate is the body of a profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   string  `json:"name"`
	Bio    *string `json:"bio,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (c *Client) Profile(ctx context.Context) (*user.User, error) {
	var out struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*user.User, error) {
	var out struct {
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ChangePassword returns the replacement token. The previous one is no longer accepted.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	if err := c.do(ctx, http.MethodPut, "/api/users/password", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// TaskInput is the body for creating a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
}

// TaskUpdate is the body for editing a task. Title is always sent; nil fields
// are omitted and left unchanged. ClearDueDate sends an explicit null.
type TaskUpdate struct {
	Title        string
	Description  *string
	Status       *string
	Priority     *string
	Tags         *[]string
	DueDate      *string
	ClearDueDate bool
}

func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	m := map[string]any{"title": u.Title}
	if u.Description != nil {
		m["description"] = *u.Description
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	if u.Priority != nil {
		m["priority"] = *u.Priority
	}
	if u.Tags != nil {
		m["tags"] = *u.Tags
	}
	switch {
	case u.ClearDueDate:
		m["dueDate"] = nil
	case u.DueDate != nil:
		m["dueDate"] = *u.DueDate
	}
	return json.Marshal(m)
}

// TaskFilter maps onto the list query string. Zero values are not sent.
type TaskFilter struct {
	Status   string
	Priority string
	Search   string
	SortBy   string
	Order    string
	Page     int
	Limit    int
}

func (f TaskFilter) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("status", f.Status)
	set("priority", f.Priority)
	set("search", f.Search)
	set("sortBy", f.SortBy)
	set("order", f.Order)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

type TaskList struct {
	Tasks      []*task.Task    `json:"tasks"`
	Pagination task.Pagination `json:"pagination"`
}

func (c *Client) ListTasks(ctx context.Context, f TaskFilter) (*TaskList, error) {
	path := "/api/tasks"
	if q := f.values().Encode(); q != "" {
		path += "?" + q
	}

	var out TaskList
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var out struct {
		Task *task.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*task.Task, error) {
	var out struct {
		Task *task.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, in TaskUpdate) (*task.Task, error) {
	var out struct {
		Task *task.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id.String(), in, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil)
}

func (c *Client) TaskStats(ctx context.Context) (*task.Stats, error) {
	var out struct {
		Stats *task.Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats", nil, &out); err != nil {
		return nil, err
	}
	return out.Stats, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code"`
	Errors []validation.FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
