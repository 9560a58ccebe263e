package service

import (
	"context"
	"errors"
	"sync"

	workerserrors "carebook/internal/workers/errors"
	"carebook/internal/workers/repository"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/model"
	"carebook/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type WorkerService interface {
	Create(ctx context.Context, worker *model.Worker) error
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Worker, int64, error)
	Update(ctx context.Context, id string, updates *model.WorkerUpdate) error
	Delete(ctx context.Context, id string) error
}

type workerService struct {
	repo     repository.WorkerRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewWorkerService(repo repository.WorkerRepository, cfg *config.Config) WorkerService {
	return &workerService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *workerService) Create(ctx context.Context, worker *model.Worker) error {
	worker.FirstName = sanitizer.NormalizeName(worker.FirstName)
	worker.LastName = sanitizer.NormalizeName(worker.LastName)

	if err := s.validate.Struct(worker); err != nil {
		s.cfg.Log.Warn("Worker validation failed", "error", err)
		return apperrors.Validation("Worker validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, worker); err != nil {
		s.cfg.Log.Error("Failed to create worker", "error", err)
		return apperrors.Persistence("worker", "create", err)
	}

	s.cfg.Log.Info("Worker created successfully", "id", worker.ID)
	return nil
}

func (s *workerService) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Worker ID cannot be empty")
	}

	worker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, workerserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Worker", id)
		}
		if errors.Is(err, workerserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid worker ID format")
		}
		return nil, apperrors.Persistence("worker", "lookup", err)
	}

	return worker, nil
}

func (s *workerService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Worker, int64, error) {
	var count int64
	var workers []*model.Worker
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count workers", "error", errCount)
			errCount = apperrors.Persistence("worker", "count", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		workers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list workers", "error", errFind)
			errFind = apperrors.Persistence("worker", "list", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return workers, count, nil
}

func (s *workerService) Update(ctx context.Context, id string, updates *model.WorkerUpdate) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if updates.FirstName != "" {
		existing.FirstName = sanitizer.NormalizeName(updates.FirstName)
	}
	if updates.LastName != "" {
		existing.LastName = sanitizer.NormalizeName(updates.LastName)
	}
	if updates.Active != nil {
		existing.Active = *updates.Active
	}

	if err := s.validate.Struct(existing); err != nil {
		s.cfg.Log.Warn("Worker update validation failed", "id", id, "error", err)
		return apperrors.Validation("Worker validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, existing); err != nil {
		if errors.Is(err, workerserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Worker", id)
		}
		return apperrors.Persistence("worker", "update", err)
	}

	s.cfg.Log.Info("Worker updated successfully", "id", id)
	return nil
}

func (s *workerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Worker ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, workerserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Worker", id)
		}
		if errors.Is(err, workerserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid worker ID format")
		}
		return apperrors.Persistence("worker", "delete", err)
	}

	s.cfg.Log.Info("Worker deleted successfully", "id", id)
	return nil
}
