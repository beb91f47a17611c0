package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redmonkez12/taskdesk/internal/validation"
)

const (
	maxTags      = 10
	maxTagLength = 30
)

// CreateInput is the body of POST /api/tasks.
type CreateInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	DueDate     *string  `json:"dueDate"`
}

// UpdateInput is the body of PUT /api/tasks/{id}. Title is required; omitted
// fields keep their stored value and "dueDate": null clears the due date.
type UpdateInput struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	Tags        *[]string `json:"tags"`
	DueDate     DateField `json:"dueDate"`
}

// DateField tells an absent field apart from an explicit null.
type DateField struct {
	Set   bool
	Value *string
}

func (d *DateField) UnmarshalJSON(b []byte) error {
	d.Set = true
	if bytes.Equal(b, []byte("null")) {
		d.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("dueDate must be a string or null: %w", err)
	}
	d.Value = &s
	return nil
}

func (in CreateInput) toTask() (*Task, error) {
	v := validation.New()

	t := &Task{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusTodo,
		Priority:    PriorityMedium,
	}

	validateTitle(v, t.Title)
	validateDescription(v, t.Description)

	if in.Status != "" {
		v.OneOf("status", in.Status, statuses...)
		t.Status = Status(in.Status)
	}
	if in.Priority != "" {
		v.OneOf("priority", in.Priority, priorities...)
		t.Priority = Priority(in.Priority)
	}

	t.Tags = normalizeTags(v, in.Tags)

	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		t.DueDate = parseDueDate(v, *in.DueDate)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (in UpdateInput) toPatch() (Patch, error) {
	v := validation.New()
	var p Patch

	title := strings.TrimSpace(in.Title)
	validateTitle(v, title)
	p.Title = &title

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		validateDescription(v, desc)
		p.Description = &desc
	}
	if in.Status != nil {
		v.OneOf("status", *in.Status, statuses...)
		status := Status(*in.Status)
		p.Status = &status
	}
	if in.Priority != nil {
		v.OneOf("priority", *in.Priority, priorities...)
		priority := Priority(*in.Priority)
		p.Priority = &priority
	}
	if in.Tags != nil {
		tags := normalizeTags(v, *in.Tags)
		p.Tags = &tags
	}
	if in.DueDate.Set {
		p.DueDate = &DueDatePatch{}
		if in.DueDate.Value != nil && strings.TrimSpace(*in.DueDate.Value) != "" {
			p.DueDate.Value = parseDueDate(v, *in.DueDate.Value)
		}
	}

	if err := v.Err(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func validateTitle(v *validation.Validator, title string) {
	if v.Required("title", title) {
		v.Length("title", title, 2, 100)
	}
}

func validateDescription(v *validation.Validator, desc string) {
	v.Check(utf8.RuneCountInString(desc) <= 500, "description", "description must be at most 500 characters")
}

// normalizeTags trims tags, drops blanks and repeats, and keeps first-seen order.
func normalizeTags(v *validation.Validator, raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}

		if utf8.RuneCountInString(tag) > maxTagLength {
			v.Add("tags", fmt.Sprintf("each tag must be at most %d characters", maxTagLength))
		}
		tags = append(tags, tag)
	}

	if len(tags) > maxTags {
		v.Add("tags", fmt.Sprintf("tags must have at most %d items", maxTags))
	}

	return tags
}

// parseDueDate accepts RFC 3339 timestamps and plain dates (YYYY-MM-DD).
func parseDueDate(v *validation.Validator, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}

	v.Add("dueDate", "invalid date format")
	return nil
}
