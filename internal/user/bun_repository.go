package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/taskdesk/internal/database"
)

// BunRepository stores users in PostgreSQL or SQLite.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Create inserts a new user into the database
func (r *BunRepository) Create(ctx context.Context, params CreateParams) (*User, error) {
	ts := now()
	dbUser := &database.User{
		ID:                uuid.New(),
		Name:              params.Name,
		Email:             params.Email,
		PasswordHash:      params.PasswordHash,
		IsActive:          true,
		PasswordChangedAt: ts,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}

	if _, err := r.db.NewInsert().Model(dbUser).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u := mapDBUserToModel(dbUser)
	u.PasswordHash = ""
	return u, nil
}

// GetByID retrieves a user by ID without the password hash
func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		ExcludeColumn("password_hash").
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetCredentialsByEmail retrieves a user including the password hash
func (r *BunRepository) GetCredentialsByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

func (r *BunRepository) GetCredentialsByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user credentials: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateProfile applies the profile fields and returns the stored user
func (r *BunRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*User, error) {
	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("name = ?", update.Name).
		Set("updated_at = ?", now()).
		Where("id = ?", id)
	if update.Bio != nil {
		q = q.Set("bio = ?", *update.Bio)
	}
	if update.Avatar != nil {
		q = q.Set("avatar = ?", *update.Avatar)
	}

	if err := checkAffected(q.Exec(ctx)); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return r.GetByID(ctx, id)
}

// UpdatePassword updates a user's password hash and marks older tokens as stale
func (r *BunRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("password_changed_at = ?", changedAt.UTC()).
		Set("updated_at = ?", now()).
		Where("id = ?", id).
		Exec(ctx)
	if err := checkAffected(result, err); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *BunRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", now()).
		Where("id = ?", id).
		Exec(ctx)
	if err := checkAffected(result, err); err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return nil
}

func (r *BunRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func checkAffected(result sql.Result, err error) error {
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                dbu.ID,
		Name:              dbu.Name,
		Email:             dbu.Email,
		PasswordHash:      dbu.PasswordHash,
		Bio:               dbu.Bio,
		Avatar:            dbu.Avatar,
		IsActive:          dbu.IsActive,
		PasswordChangedAt: dbu.PasswordChangedAt.UTC(),
		CreatedAt:         dbu.CreatedAt.UTC(),
		UpdatedAt:         dbu.UpdatedAt.UTC(),
	}
}
