package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	whErrors "carebook/internal/workinghours/errors"
	"carebook/pkg/config"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "working_hours"
)

type WorkingHoursRepository interface {
	Get(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error)
	Upsert(ctx context.Context, entry *model.WorkingHours) error
	FindByWorker(ctx context.Context, workerID string, fromDate, toDate string) ([]*model.WorkingHours, error)
	FindInRange(ctx context.Context, workerID string, fromDate, toDate string) ([]*model.WorkingHours, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoWorkingHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkingHoursRepository(cfg *config.Config) WorkingHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkingHoursRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWorkingHoursRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes creates the unique (worker_id, work_date) index backing the
// one-entry-per-day upsert contract.
func (r *mongoWorkingHoursRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "worker_id", Value: 1},
			{Key: "work_date", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create working hours index: %w", err)
	}
	return nil
}

func (r *mongoWorkingHoursRepository) Get(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"worker_id": workerID,
		"work_date": workDate,
	}

	var entry model.WorkingHours
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, whErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find working hours: %w", err)
	}

	return &entry, nil
}

func (r *mongoWorkingHoursRepository) Upsert(ctx context.Context, entry *model.WorkingHours) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entry.UpdatedAt = now

	filter := bson.M{
		"worker_id": entry.WorkerID,
		"work_date": entry.WorkDate,
	}
	update := bson.M{
		"$set": bson.M{
			"worker_id":  entry.WorkerID,
			"work_date":  entry.WorkDate,
			"start_time": entry.StartTime,
			"end_time":   entry.EndTime,
			"updated_at": entry.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert working hours: %w", err)
	}

	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkingHoursRepository) FindByWorker(ctx context.Context, workerID string, fromDate, toDate string) ([]*model.WorkingHours, error) {
	if workerID == "" {
		return nil, fmt.Errorf("%w: empty worker id", whErrors.ErrInvalidID)
	}
	return r.FindInRange(ctx, workerID, fromDate, toDate)
}

// FindInRange returns entries ordered by date; an empty workerID matches all
// workers.
func (r *mongoWorkingHoursRepository) FindInRange(ctx context.Context, workerID string, fromDate, toDate string) ([]*model.WorkingHours, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if workerID != "" {
		filter["worker_id"] = workerID
	}
	dateFilter := bson.M{}
	if fromDate != "" {
		dateFilter["$gte"] = fromDate
	}
	if toDate != "" {
		dateFilter["$lte"] = toDate
	}
	if len(dateFilter) > 0 {
		filter["work_date"] = dateFilter
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "work_date", Value: 1},
		{Key: "worker_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find working hours: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WorkingHours
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode working hours: %w", err)
	}

	return entries, nil
}
