package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/redmonkez12/taskdesk/internal/task"
	"github.com/redmonkez12/taskdesk/internal/user"
)

func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

func Error(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}

func Warning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

func Subtle(w io.Writer, msg string) {
	fmt.Fprintln(w, subtleStyle.Render(msg))
}

// FormatDue renders a due date, or "-" when unset.
func FormatDue(d *time.Time) string {
	if d == nil {
		return "-"
	}
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Format(time.DateOnly)
	}
	return d.Format("2006-01-02 15:04")
}

// TaskTable lists tasks with a pagination footer.
func TaskTable(w io.Writer, tasks []*task.Task, p task.Pagination) {
	if len(tasks) == 0 {
		Subtle(w, "No tasks found.")
		return
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID.String(),
			t.Title,
			string(t.Status),
			string(t.Priority),
			FormatDue(t.DueDate),
			strings.Join(t.Tags, ", "),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		Headers("ID", "TITLE", "STATUS", "PRIORITY", "DUE", "TAGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case 2:
				return cellStyle.Foreground(statusColors[rows[row][2]])
			case 3:
				return cellStyle.Foreground(priorityColors[rows[row][3]])
			}
			return cellStyle
		})

	fmt.Fprintln(w, tbl.Render())
	Subtle(w, fmt.Sprintf("Page %d of %d (%d tasks)", p.Page, max(p.Pages, 1), p.Total))
}

// TaskDetail prints every field of one task.
func TaskDetail(w io.Writer, t *task.Task) {
	fmt.Fprintln(w, titleStyle.Render(t.Title))
	field(w, "ID", t.ID.String())
	field(w, "Status", lipgloss.NewStyle().Foreground(statusColors[string(t.Status)]).Render(string(t.Status)))
	field(w, "Priority", lipgloss.NewStyle().Foreground(priorityColors[string(t.Priority)]).Render(string(t.Priority)))
	field(w, "Due", FormatDue(t.DueDate))
	if len(t.Tags) > 0 {
		field(w, "Tags", strings.Join(t.Tags, ", "))
	}
	if t.Description != "" {
		field(w, "Description", t.Description)
	}
	field(w, "Created", t.CreatedAt.Local().Format(time.DateTime))
	field(w, "Updated", t.UpdatedAt.Local().Format(time.DateTime))
}

// UserDetail prints a profile. stale marks an identity the server has not confirmed.
func UserDetail(w io.Writer, u *user.User, stale bool) {
	fmt.Fprintln(w, titleStyle.Render(u.Name))
	field(w, "Email", u.Email)
	if u.Bio != "" {
		field(w, "Bio", u.Bio)
	}
	if u.Avatar != "" {
		field(w, "Avatar", u.Avatar)
	}
	field(w, "Member since", u.CreatedAt.Local().Format(time.DateOnly))
	if stale {
		Warning(w, "Offline: showing cached profile, not confirmed by the server.")
	}
}

// Stats prints per-status counts.
func Stats(w io.Writer, s *task.Stats) {
	fmt.Fprintln(w, titleStyle.Render("Task statistics"))
	field(w, "To do", fmt.Sprint(s.Todo))
	field(w, "In progress", fmt.Sprint(s.InProgress))
	field(w, "Done", fmt.Sprint(s.Done))
	field(w, "Total", fmt.Sprint(s.Total))
}

func field(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+" "+value)
}
