package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/taskdesk/internal/task"
)

func TestFormatDue(t *testing.T) {
	assert.Equal(t, "-", FormatDue(nil))

	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-01", FormatDue(&day))

	at := time.Date(2025, 9, 1, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-01 14:30", FormatDue(&at))
}

func TestTaskTable(t *testing.T) {
	var buf bytes.Buffer
	TaskTable(&buf, nil, task.Pagination{Page: 1, Limit: 20})
	assert.Contains(t, buf.String(), "No tasks found.")

	buf.Reset()
	tasks := []*task.Task{
		{ID: uuid.New(), Title: "Write report", Status: task.StatusInProgress, Priority: task.PriorityHigh, Tags: []string{"work", "q3"}},
		{ID: uuid.New(), Title: "Buy milk", Status: task.StatusTodo, Priority: task.PriorityLow},
	}
	TaskTable(&buf, tasks, task.Pagination{Total: 2, Page: 1, Limit: 20, Pages: 1})

	out := buf.String()
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "in-progress")
	assert.Contains(t, out, "work, q3")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Page 1 of 1 (2 tasks)")
}
