package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	eventserrors "carebook/internal/scheduleevents/errors"
	"carebook/pkg/config"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "schedule_events"
)

type ScheduleEventRepository interface {
	Create(ctx context.Context, event *model.ScheduleEvent) error
	FindByID(ctx context.Context, id string) (*model.ScheduleEvent, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduleEvent, error)
	Update(ctx context.Context, id string, event *model.ScheduleEvent) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	FindByWorker(ctx context.Context, workerID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.ScheduleEvent, error)
	CountByWorker(ctx context.Context, workerID string, startTime, endTime *time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoScheduleEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduleEventRepository(cfg *config.Config) ScheduleEventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoScheduleEventRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoScheduleEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "worker_id", Value: 1},
			{Key: "start_time", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule event index: %w", err)
	}
	return nil
}

func (r *mongoScheduleEventRepository) Create(ctx context.Context, event *model.ScheduleEvent) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to create schedule event: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleEventRepository) FindByID(ctx context.Context, id string) (*model.ScheduleEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	var event model.ScheduleEvent
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find schedule event: %w", err)
	}

	return &event, nil
}

func (r *mongoScheduleEventRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduleEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.ScheduleEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode schedule events: %w", err)
	}

	return events, nil
}

func (r *mongoScheduleEventRepository) Update(ctx context.Context, id string, event *model.ScheduleEvent) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"worker_id":  event.WorkerID,
			"event_type": event.EventType,
			"start_time": event.StartTime,
			"end_time":   event.EndTime,
			"notes":      event.Notes,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule event: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, eventserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoScheduleEventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule event: %w", err)
	}

	if result.DeletedCount == 0 {
		return eventserrors.ErrNotFound
	}

	return nil
}

func (r *mongoScheduleEventRepository) FindByWorker(
	ctx context.Context,
	workerID string,
	startTime, endTime *time.Time,
	limit int, offset int64,
) ([]*model.ScheduleEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildWorkerFilter(workerID, startTime, endTime)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.ScheduleEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode schedule events: %w", err)
	}

	return events, nil
}

func (r *mongoScheduleEventRepository) CountByWorker(ctx context.Context, workerID string, startTime, endTime *time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildWorkerFilter(workerID, startTime, endTime))
	if err != nil {
		return 0, fmt.Errorf("failed to count schedule events by worker: %w", err)
	}
	return count, nil
}

// An empty workerID matches all workers.
func (r *mongoScheduleEventRepository) buildWorkerFilter(workerID string, startTime, endTime *time.Time) bson.M {
	filter := bson.M{}
	if workerID != "" {
		filter["worker_id"] = workerID
	}

	if startTime != nil || endTime != nil {
		timeFilters := bson.M{}
		if startTime != nil && endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
				"end_time":   bson.M{"$gt": *startTime},
			}
		} else if startTime != nil {
			timeFilters = bson.M{
				"end_time": bson.M{"$gt": *startTime},
			}
		} else if endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
			}
		}

		filter["$and"] = []bson.M{timeFilters}
	}

	return filter
}

func (r *mongoScheduleEventRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count schedule events: %w", err)
	}

	return count, nil
}
