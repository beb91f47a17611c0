package task_test

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/database"
	"github.com/redmonkez12/taskdesk/internal/database/databasetest"
	"github.com/redmonkez12/taskdesk/internal/task"
)

func TestBunRepository(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) task.Repository {
		return task.NewBunRepository(databasetest.New(t))
	})
}

// Runs against a real server when MONGODB_TEST_URI is set.
func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	runRepositoryTests(t, func(t *testing.T) task.Repository {
		ctx := context.Background()
		client, db, err := database.ConnectMongo(ctx, config.DatabaseConfig{
			MongoURI:      uri,
			MongoDatabase: fmt.Sprintf("taskdesk_test_%d", time.Now().UnixNano()),
		})
		require.NoError(t, err)
		require.NoError(t, database.EnsureIndexes(ctx, db))
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = client.Disconnect(context.Background())
		})
		return task.NewMongoRepository(db)
	})
}

func listQuery(mods ...func(*task.ListQuery)) task.ListQuery {
	q := task.ParseListQuery(nil)
	for _, m := range mods {
		m(&q)
	}
	return q
}

func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) task.Repository) {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	create := func(t *testing.T, repo task.Repository, owner uuid.UUID, title string, mods ...func(*task.Task)) *task.Task {
		t.Helper()
		in := &task.Task{Title: title, Status: task.StatusTodo, Priority: task.PriorityMedium}
		for _, m := range mods {
			m(in)
		}
		created, err := repo.Create(ctx, owner, in)
		require.NoError(t, err)
		return created
	}

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		created := create(t, repo, alice, "Buy milk", func(tk *task.Task) {
			tk.Tags = []string{"errand"}
			tk.DueDate = &due
		})

		assert.Equal(t, alice, created.OwnerID)
		assert.NotEqual(t, uuid.Nil, created.ID)

		got, err := repo.Get(ctx, alice, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, []string{"errand"}, got.Tags)
		require.NotNil(t, got.DueDate)
		assert.True(t, got.DueDate.Equal(due))
	})

	t.Run("foreign owner sees not found", func(t *testing.T) {
		repo := newRepo(t)
		mine := create(t, repo, alice, "Secret plan")

		_, errForeign := repo.Get(ctx, bob, mine.ID)
		_, errAbsent := repo.Get(ctx, bob, uuid.New())
		assert.ErrorIs(t, errForeign, task.ErrNotFound)
		assert.ErrorIs(t, errAbsent, task.ErrNotFound)

		title := "Hijacked"
		_, err := repo.Update(ctx, bob, mine.ID, task.Patch{Title: &title})
		assert.ErrorIs(t, err, task.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, bob, mine.ID), task.ErrNotFound)

		page, err := repo.List(ctx, bob, listQuery())
		require.NoError(t, err)
		assert.Zero(t, page.Total)
		assert.Empty(t, page.Tasks)

		got, err := repo.Get(ctx, alice, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, "Secret plan", got.Title)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, alice, "Only task")

		q := task.ParseListQuery(url.Values{"page": {"922337203685477581"}})
		page, err := repo.List(ctx, alice, q)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		assert.Empty(t, page.Tasks)
	})

	t.Run("list filters", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, alice, "Quarterly report", func(tk *task.Task) { tk.Priority = task.PriorityHigh })
		create(t, repo, alice, "Groceries", func(tk *task.Task) { tk.Description = "eggs, REPORT card paper" })
		create(t, repo, alice, "Laundry", func(tk *task.Task) { tk.Status = task.StatusDone })
		create(t, repo, alice, "Pay 100% of rent")
		create(t, repo, bob, "Bob's report")

		page, err := repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Search = "report" }))
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)

		page, err = repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Status = task.StatusDone }))
		require.NoError(t, err)
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "Laundry", page.Tasks[0].Title)

		page, err = repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Priority = task.PriorityHigh }))
		require.NoError(t, err)
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "Quarterly report", page.Tasks[0].Title)

		// metacharacters match literally
		page, err = repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Search = "100%" }))
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Total)

		page, err = repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Search = ".*" }))
		require.NoError(t, err)
		assert.EqualValues(t, 0, page.Total)
	})

	t.Run("search folds non-ascii case", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, alice, "ÜBERWEISUNG prüfen")
		create(t, repo, alice, "Café", func(tk *task.Task) { tk.Description = "ÉCLAIRS bestellen" })

		page, err := repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Search = "überweisung" }))
		require.NoError(t, err)
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "ÜBERWEISUNG prüfen", page.Tasks[0].Title)

		page, err = repo.List(ctx, alice, listQuery(func(q *task.ListQuery) { q.Search = "Éclairs" }))
		require.NoError(t, err)
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "Café", page.Tasks[0].Title)
	})

	t.Run("sort and paginate", func(t *testing.T) {
		repo := newRepo(t)
		for _, title := range []string{"delta", "alpha", "echo", "charlie", "bravo"} {
			create(t, repo, alice, title)
		}

		q := listQuery(func(q *task.ListQuery) {
			q.SortBy = "title"
			q.Desc = false
			q.Limit = 2
			q.Page = 2
		})
		page, err := repo.List(ctx, alice, q)
		require.NoError(t, err)
		assert.EqualValues(t, 5, page.Total)
		require.Len(t, page.Tasks, 2)
		assert.Equal(t, "charlie", page.Tasks[0].Title)
		assert.Equal(t, "delta", page.Tasks[1].Title)

		q.Page = 3
		page, err = repo.List(ctx, alice, q)
		require.NoError(t, err)
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "echo", page.Tasks[0].Title)
	})

	t.Run("update applies only set fields", func(t *testing.T) {
		repo := newRepo(t)
		due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		created := create(t, repo, alice, "Draft", func(tk *task.Task) {
			tk.Description = "first pass"
			tk.Tags = []string{"a"}
			tk.DueDate = &due
		})

		title := "Final"
		status := task.StatusInProgress
		tags := []string{"b", "c"}
		updated, err := repo.Update(ctx, alice, created.ID, task.Patch{Title: &title, Status: &status, Tags: &tags})
		require.NoError(t, err)
		assert.Equal(t, "Final", updated.Title)
		assert.Equal(t, task.StatusInProgress, updated.Status)
		assert.Equal(t, "first pass", updated.Description)
		assert.Equal(t, []string{"b", "c"}, updated.Tags)
		require.NotNil(t, updated.DueDate)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		updated, err = repo.Update(ctx, alice, created.ID, task.Patch{Title: &title, DueDate: &task.DueDatePatch{}})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		created := create(t, repo, alice, "Temporary")

		require.NoError(t, repo.Delete(ctx, alice, created.ID))
		_, err := repo.Get(ctx, alice, created.ID)
		assert.ErrorIs(t, err, task.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, alice, created.ID), task.ErrNotFound)
	})

	t.Run("stats", func(t *testing.T) {
		repo := newRepo(t)
		create(t, repo, alice, "one")
		create(t, repo, alice, "two")
		create(t, repo, alice, "three", func(tk *task.Task) { tk.Status = task.StatusInProgress })
		create(t, repo, alice, "four", func(tk *task.Task) { tk.Status = task.StatusDone })
		create(t, repo, bob, "five", func(tk *task.Task) { tk.Status = task.StatusDone })

		stats, err := repo.Stats(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, task.Stats{Todo: 2, InProgress: 1, Done: 1, Total: 4}, *stats)

		again, err := repo.Stats(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, stats, again)

		empty, err := repo.Stats(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, task.Stats{}, *empty)
	})
}
