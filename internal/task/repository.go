package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/apperror"
	"github.com/redmonkez12/taskdesk/internal/httputil"
)

// ErrNotFound covers both a missing task and a task owned by someone else.
var ErrNotFound = apperror.New(apperror.KindNotFound, httputil.CodeTaskNotFound, "task not found")

// Repository stores tasks. Every method is scoped to ownerID: the owner is
// part of each query predicate, so a task that belongs to another user
// behaves exactly like one that does not exist.
type Repository interface {
	Create(ctx context.Context, ownerID uuid.UUID, t *Task) (*Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*Page, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, p Patch) (*Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error)
}

func now() time.Time {
	return time.Now().UTC()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
