package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the tables and indexes used by the bun repositories.
// It is idempotent.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{(*User)(nil), (*Task)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		name    string
		columns []string
	}{
		{"tasks_owner_created_idx", []string{"owner_id", "created_at"}},
		{"tasks_owner_status_idx", []string{"owner_id", "status"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*Task)(nil)).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
