package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the relational row for an account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	Name              string    `bun:"name,notnull"`
	Email             string    `bun:"email,notnull,unique"`
	PasswordHash      string    `bun:"password_hash,notnull"`
	Bio               string    `bun:"bio,notnull,default:''"`
	Avatar            string    `bun:"avatar,notnull,default:''"`
	IsActive          bool      `bun:"is_active,notnull,default:true"`
	PasswordChangedAt time.Time `bun:"password_changed_at,notnull"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

// Task is the relational row for a task. Tags are stored as a JSON array.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	OwnerID     uuid.UUID  `bun:"owner_id,notnull,type:uuid"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description,notnull,default:''"`
	Status      string     `bun:"status,notnull"`
	Priority    string     `bun:"priority,notnull"`
	Tags        []string   `bun:"tags,type:jsonb"`
	DueDate     *time.Time `bun:"due_date"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`
}
