package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/redmonkez12/taskdesk/internal/database"
)

type userDocument struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Email             string    `bson:"email"`
	PasswordHash      string    `bson:"password_hash,omitempty"`
	Bio               string    `bson:"bio"`
	Avatar            string    `bson:"avatar"`
	IsActive          bool      `bson:"is_active"`
	PasswordChangedAt time.Time `bson:"password_changed_at"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// MongoRepository stores users in the "users" collection. Ids are kept as UUID strings.
type MongoRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db, coll: db.Collection(database.UsersCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, params CreateParams) (*User, error) {
	ts := now()
	doc := userDocument{
		ID:                uuid.NewString(),
		Name:              params.Name,
		Email:             params.Email,
		PasswordHash:      params.PasswordHash,
		IsActive:          true,
		PasswordChangedAt: ts,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	doc.PasswordHash = ""
	return doc.toModel()
}

func (r *MongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	opts := options.FindOne().SetProjection(bson.M{"password_hash": 0})
	return r.findOne(ctx, bson.M{"_id": id.String()}, opts)
}

func (r *MongoRepository) GetCredentialsByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) GetCredentialsByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *MongoRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*User, error) {
	set := bson.M{"name": update.Name, "updated_at": now()}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	if err := r.updateOne(ctx, id, set); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	err := r.updateOne(ctx, id, bson.M{
		"password_hash":       passwordHash,
		"password_changed_at": changedAt.UTC(),
		"updated_at":          now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *MongoRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := r.updateOne(ctx, id, bson.M{"is_active": active, "updated_at": now()}); err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (*User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel()
}

func (r *MongoRepository) updateOne(ctx context.Context, id uuid.UUID, set bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (d userDocument) toModel() (*User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}

	return &User{
		ID:                id,
		Name:              d.Name,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		Bio:               d.Bio,
		Avatar:            d.Avatar,
		IsActive:          d.IsActive,
		PasswordChangedAt: d.PasswordChangedAt.UTC(),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}, nil
}
