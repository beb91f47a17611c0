package task

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/redmonkez12/taskdesk/internal/database"
)

type taskDocument struct {
	ID          string     `bson:"_id"`
	OwnerID     string     `bson:"owner_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	Tags        []string   `bson:"tags"`
	DueDate     *time.Time `bson:"due_date"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

// MongoRepository stores tasks in the "tasks" collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.TasksCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, ownerID uuid.UUID, t *Task) (*Task, error) {
	ts := now()
	doc := taskDocument{
		ID:          uuid.NewString(),
		OwnerID:     ownerID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        nonNilTags(t.Tags),
		DueDate:     t.DueDate,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return doc.toModel()
}

func (r *MongoRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*Task, error) {
	var doc taskDocument
	err := r.coll.FindOne(ctx, ownedBy(ownerID, id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return doc.toModel()
}

func (r *MongoRepository) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*Page, error) {
	filter := bson.D{{Key: "owner_id", Value: ownerID.String()}}
	if q.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(q.Status)})
	}
	if q.Priority != "" {
		filter = append(filter, bson.E{Key: "priority", Value: string(q.Priority)})
	}
	if q.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	direction := 1
	if q.Desc {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: q.sortColumn(), Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.offset())).
		SetLimit(int64(q.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	page := &Page{Tasks: make([]*Task, 0, len(docs)), Total: total}
	for _, doc := range docs {
		t, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		page.Tasks = append(page.Tasks, t)
	}

	return page, nil
}

func (r *MongoRepository) Update(ctx context.Context, ownerID, id uuid.UUID, p Patch) (*Task, error) {
	set := bson.M{"updated_at": now()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.Tags != nil {
		set["tags"] = nonNilTags(*p.Tags)
	}
	if p.DueDate != nil {
		set["due_date"] = p.DueDate.Value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err := r.coll.FindOneAndUpdate(ctx, ownedBy(ownerID, id), bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return doc.toModel()
}

func (r *MongoRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, ownedBy(ownerID, id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner_id", Value: ownerID.String()}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate task stats: %w", err)
	}

	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode task stats: %w", err)
	}

	stats := &Stats{}
	for _, g := range groups {
		stats.add(g.Status, g.Count)
	}

	return stats, nil
}

func ownedBy(ownerID, id uuid.UUID) bson.D {
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "owner_id", Value: ownerID.String()},
	}
}

func (d taskDocument) toModel() (*Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", d.ID, err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", d.OwnerID, err)
	}

	t := &Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       d.Title,
		Description: d.Description,
		Status:      Status(d.Status),
		Priority:    Priority(d.Priority),
		Tags:        nonNilTags(d.Tags),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t, nil
}
