package task

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	statuses   = []string{string(StatusTodo), string(StatusInProgress), string(StatusDone)}
	priorities = []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Stats holds per-status counts for one owner. Total is the sum of the three.
type Stats struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in-progress"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

func (s *Stats) add(status string, n int64) {
	switch Status(status) {
	case StatusTodo:
		s.Todo += n
	case StatusInProgress:
		s.InProgress += n
	case StatusDone:
		s.Done += n
	default:
		return
	}
	s.Total += n
}

// Patch lists the fields to change on an existing task. Nil means unchanged.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Tags        *[]string
	DueDate     *DueDatePatch
}

// DueDatePatch sets or clears the due date.
type DueDatePatch struct {
	Value *time.Time
}

// Page is one slice of a listing plus the total number of matches.
type Page struct {
	Tasks []*Task
	Total int64
}

// sortColumns maps accepted sortBy values to stored field names.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"dueDate":   "due_date",
	"priority":  "priority",
}
