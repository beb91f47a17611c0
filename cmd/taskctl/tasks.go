package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/taskdesk/cmd/taskctl/ui"
	"github.com/redmonkez12/taskdesk/internal/client"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and manage your tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			return a.signedIn(cmd)
		},
	}

	cmd.AddCommand(
		a.tasksListCmd(),
		a.tasksShowCmd(),
		a.tasksAddCmd(),
		a.tasksEditCmd(),
		a.tasksDoneCmd(),
		a.tasksRemoveCmd(),
		a.tasksStatsCmd(),
	)
	return cmd
}

func (a *app) tasksListCmd() *cobra.Command {
	var f client.TaskFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.api.ListTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			ui.TaskTable(cmd.OutOrStdout(), list.Tasks, list.Pagination)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Status, "status", "", "Filter by status (todo, in-progress, done)")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "Filter by priority (low, medium, high)")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "Search title and description")
	cmd.Flags().StringVar(&f.SortBy, "sort", "", "Sort by createdAt, updatedAt, title, dueDate or priority")
	cmd.Flags().StringVar(&f.Order, "order", "", "asc or desc")
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Tasks per page (max 100)")
	return cmd
}

func (a *app) tasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			t, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			ui.TaskDetail(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func (a *app) tasksAddCmd() *cobra.Command {
	var in client.TaskInput

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Long:  "Create a task. Without a title the task is entered interactively.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				in.Title = strings.Join(args, " ")
			}
			if strings.TrimSpace(in.Title) == "" {
				if err := ui.NewTask(&in.Title, &in.Description, &in.Priority, &in.DueDate); err != nil {
					return err
				}
			}

			t, err := a.api.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Created %q (%s)", t.Title, t.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&in.Status, "status", "", "Initial status (default todo)")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "Priority (default medium)")
	cmd.Flags().StringSliceVar(&in.Tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	return cmd
}

func (a *app) tasksEditCmd() *cobra.Command {
	var (
		title, description, status, priority, due string
		tags                                      []string
		clearDue                                  bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long:  "Change fields of a task. Only the flags you pass are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			upd := client.TaskUpdate{Title: title, ClearDueDate: clearDue}
			if !changed("title") {
				current, err := a.api.GetTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				upd.Title = current.Title
			}
			if changed("description") {
				upd.Description = &description
			}
			if changed("status") {
				upd.Status = &status
			}
			if changed("priority") {
				upd.Priority = &priority
			}
			if changed("tags") {
				upd.Tags = &tags
			}
			if changed("due") {
				upd.DueDate = &due
			}

			t, err := a.api.UpdateTask(cmd.Context(), id, upd)
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Updated %q", t.Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Replace tags (comma-separated)")
	cmd.Flags().StringVar(&due, "due", "", "New due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (a *app) tasksDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			current, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}

			done := "done"
			t, err := a.api.UpdateTask(cmd.Context(), id, client.TaskUpdate{Title: current.Title, Status: &done})
			if err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), fmt.Sprintf("Completed %q", t.Title))
			return nil
		},
	}
}

func (a *app) tasksRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := ui.Confirm("Delete this task? This cannot be undone.")
				if err != nil {
					return err
				}
				if !ok {
					ui.Subtle(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := a.api.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "Task deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func (a *app) tasksStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.api.TaskStats(cmd.Context())
			if err != nil {
				return err
			}
			ui.Stats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
