package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/taskdesk/internal/database"
)

// BunRepository stores tasks in PostgreSQL or SQLite.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, ownerID uuid.UUID, t *Task) (*Task, error) {
	ts := now()
	row := &database.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        nonNilTags(t.Tags),
		DueDate:     t.DueDate,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return mapDBTaskToModel(row), nil
}

func (r *BunRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*Task, error) {
	row := new(database.Task)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return mapDBTaskToModel(row), nil
}

func (r *BunRepository) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*Page, error) {
	filter := func(sq *bun.SelectQuery) *bun.SelectQuery {
		sq = sq.Where("owner_id = ?", ownerID)
		if q.Status != "" {
			sq = sq.Where("status = ?", string(q.Status))
		}
		if q.Priority != "" {
			sq = sq.Where("priority = ?", string(q.Priority))
		}
		if q.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
			fold := database.CaseFold(r.db)
			sq = sq.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
				return g.
					Where(fold+"(title) LIKE ? ESCAPE '!'", pattern).
					WhereOr(fold+"(description) LIKE ? ESCAPE '!'", pattern)
			})
		}
		return sq
	}

	total, err := r.db.NewSelect().Model((*database.Task)(nil)).Apply(filter).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}

	var rows []database.Task
	err = r.db.NewSelect().
		Model(&rows).
		Apply(filter).
		OrderExpr("? "+direction, bun.Ident(q.sortColumn())).
		OrderExpr("id ASC").
		Limit(q.Limit).
		Offset(q.offset()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	page := &Page{Tasks: make([]*Task, 0, len(rows)), Total: int64(total)}
	for i := range rows {
		page.Tasks = append(page.Tasks, mapDBTaskToModel(&rows[i]))
	}

	return page, nil
}

func (r *BunRepository) Update(ctx context.Context, ownerID, id uuid.UUID, p Patch) (*Task, error) {
	uq := r.db.NewUpdate().
		Model((*database.Task)(nil)).
		Set("updated_at = ?", now()).
		Where("id = ? AND owner_id = ?", id, ownerID)

	if p.Title != nil {
		uq = uq.Set("title = ?", *p.Title)
	}
	if p.Description != nil {
		uq = uq.Set("description = ?", *p.Description)
	}
	if p.Status != nil {
		uq = uq.Set("status = ?", string(*p.Status))
	}
	if p.Priority != nil {
		uq = uq.Set("priority = ?", string(*p.Priority))
	}
	if p.Tags != nil {
		encoded, err := json.Marshal(nonNilTags(*p.Tags))
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		uq = uq.Set("tags = ?", string(encoded))
	}
	if p.DueDate != nil {
		uq = uq.Set("due_date = ?", p.DueDate.Value)
	}

	result, err := uq.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return r.Get(ctx, ownerID, id)
}

func (r *BunRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Task)(nil)).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return requireAffected(result)
}

func (r *BunRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	var counts []struct {
		Status string `bun:"status"`
		Count  int64  `bun:"count"`
	}

	err := r.db.NewSelect().
		Model((*database.Task)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
	}

	stats := &Stats{}
	for _, c := range counts {
		stats.add(c.Status, c.Count)
	}

	return stats, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func mapDBTaskToModel(row *database.Task) *Task {
	t := &Task{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		Status:      Status(row.Status),
		Priority:    Priority(row.Priority),
		Tags:        nonNilTags(row.Tags),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	if row.DueDate != nil {
		due := row.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}
