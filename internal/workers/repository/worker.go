package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	workerserrors "carebook/internal/workers/errors"
	"carebook/pkg/config"
	"carebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "workers"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	FindByID(ctx context.Context, id string) (*model.Worker, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Worker, error)
	Update(ctx context.Context, id string, worker *model.Worker) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type mongoWorkerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWorkerRepository(cfg *config.Config) WorkerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkerRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWorkerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoWorkerRepository) Create(ctx context.Context, worker *model.Worker) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	worker.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, worker)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		worker.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkerRepository) FindByID(ctx context.Context, id string) (*model.Worker, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workerserrors.ErrInvalidID, id)
	}

	var worker model.Worker
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&worker)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find worker: %w", err)
	}

	return &worker, nil
}

func (r *mongoWorkerRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Worker, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find workers: %w", err)
	}
	defer cursor.Close(ctx)

	var workers []*model.Worker
	if err = cursor.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("failed to decode workers: %w", err)
	}

	return workers, nil
}

func (r *mongoWorkerRepository) Update(ctx context.Context, id string, worker *model.Worker) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workerserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"first_name": worker.FirstName,
			"last_name":  worker.LastName,
			"active":     worker.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update worker: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, workerserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoWorkerRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workerserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}

	if result.DeletedCount == 0 {
		return workerserrors.ErrNotFound
	}

	return nil
}

func (r *mongoWorkerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count workers: %w", err)
	}

	return count, nil
}
