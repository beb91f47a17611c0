package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/validation"
)

func TestCreateInput_Defaults(t *testing.T) {
	task, err := CreateInput{Title: "  Write report  "}.toTask()
	require.NoError(t, err)

	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, []string{}, task.Tags)
	assert.Nil(t, task.DueDate)
}

func TestCreateInput_TagsAndDates(t *testing.T) {
	due := "2025-03-01"
	task, err := CreateInput{
		Title:   "Plan trip",
		Tags:    []string{" travel ", "", "travel", "family"},
		DueDate: &due,
	}.toTask()
	require.NoError(t, err)

	assert.Equal(t, []string{"travel", "family"}, task.Tags)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	ts := "2025-03-01T09:30:00+02:00"
	task, err = CreateInput{Title: "Plan trip", DueDate: &ts}.toTask()
	require.NoError(t, err)
	assert.True(t, task.DueDate.Equal(time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, task.DueDate.Location())
}

func TestCreateInput_Validation(t *testing.T) {
	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = strings.Repeat("t", i+1)
	}
	badDate := "next tuesday"

	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing title", CreateInput{Title: "   "}, "title"},
		{"short title", CreateInput{Title: "a"}, "title"},
		{"long title", CreateInput{Title: strings.Repeat("a", 101)}, "title"},
		{"long description", CreateInput{Title: "ok title", Description: strings.Repeat("d", 501)}, "description"},
		{"bad status", CreateInput{Title: "ok title", Status: "archived"}, "status"},
		{"bad priority", CreateInput{Title: "ok title", Priority: "urgent"}, "priority"},
		{"too many tags", CreateInput{Title: "ok title", Tags: tooMany}, "tags"},
		{"long tag", CreateInput{Title: "ok title", Tags: []string{strings.Repeat("x", 31)}}, "tags"},
		{"bad due date", CreateInput{Title: "ok title", DueDate: &badDate}, "dueDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.toTask()
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.True(t, verrs.Has(tt.field), "expected error on %s, got %v", tt.field, verrs)
		})
	}
}

func TestUpdateInput_DueDateStates(t *testing.T) {
	decode := func(body string) UpdateInput {
		var in UpdateInput
		require.NoError(t, json.Unmarshal([]byte(body), &in))
		return in
	}

	p, err := decode(`{"title":"Keep"}`).toPatch()
	require.NoError(t, err)
	assert.Nil(t, p.DueDate, "absent field leaves due date alone")
	assert.Nil(t, p.Status)
	assert.Nil(t, p.Tags)

	p, err = decode(`{"title":"Keep","dueDate":null}`).toPatch()
	require.NoError(t, err)
	require.NotNil(t, p.DueDate)
	assert.Nil(t, p.DueDate.Value, "null clears the due date")

	p, err = decode(`{"title":"Keep","dueDate":"2025-12-24","tags":[]}`).toPatch()
	require.NoError(t, err)
	require.NotNil(t, p.DueDate.Value)
	assert.Equal(t, 24, p.DueDate.Value.Day())
	require.NotNil(t, p.Tags)
	assert.Empty(t, *p.Tags)

	var in UpdateInput
	assert.Error(t, json.Unmarshal([]byte(`{"title":"Keep","dueDate":42}`), &in))
}

func TestUpdateInput_TitleRequired(t *testing.T) {
	status := "done"
	_, err := UpdateInput{Status: &status}.toPatch()

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("title"))
}
