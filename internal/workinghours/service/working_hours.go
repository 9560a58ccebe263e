package service

import (
	"context"
	"errors"

	whErrors "carebook/internal/workinghours/errors"
	"carebook/internal/workinghours/repository"
	"carebook/internal/workinghours/validator"
	"carebook/pkg/cache"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/model"
	"carebook/pkg/timeutil"
)

// WorkingHoursService is the registry of per-day working hours. Save replaces
// any existing entry for the same worker and day.
type WorkingHoursService interface {
	Save(ctx context.Context, entry *model.WorkingHours) error
	GetByWorkerAndDate(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error)
	ListByWorker(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
	ListInRange(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error)
}

type workingHoursService struct {
	repo      repository.WorkingHoursRepository
	validator *validator.WorkingHoursValidator
	cache     *cache.AvailabilityCache
	cfg       *config.Config
}

func NewWorkingHoursService(
	repo repository.WorkingHoursRepository,
	validator *validator.WorkingHoursValidator,
	availabilityCache *cache.AvailabilityCache,
	cfg *config.Config,
) WorkingHoursService {
	return &workingHoursService{
		repo:      repo,
		validator: validator,
		cache:     availabilityCache,
		cfg:       cfg,
	}
}

func (s *workingHoursService) Save(ctx context.Context, entry *model.WorkingHours) error {
	if err := s.normalize(entry); err != nil {
		return err
	}

	if err := s.validator.Validate(entry); err != nil {
		s.cfg.Log.Warn("Working hours validation failed", "worker_id", entry.WorkerID, "error", err)
		return apperrors.Validation("Working hours validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to save working hours",
			"worker_id", entry.WorkerID,
			"work_date", entry.WorkDate,
			"error", err,
		)
		return apperrors.Persistence("working hours", "save", err)
	}

	// A changed day invalidates every cached window classification for it.
	s.cache.Invalidate(ctx, entry.WorkerID, entry.WorkDate)

	s.cfg.Log.Info("Working hours saved",
		"worker_id", entry.WorkerID,
		"work_date", entry.WorkDate,
		"start_time", entry.StartTime,
		"end_time", entry.EndTime,
	)
	return nil
}

func (s *workingHoursService) GetByWorkerAndDate(ctx context.Context, workerID, workDate string) (*model.WorkingHours, error) {
	if workerID == "" {
		return nil, apperrors.InvalidInput("Worker ID cannot be empty")
	}
	if workDate == "" {
		return nil, apperrors.InvalidInput("Work date cannot be empty")
	}

	entry, err := s.repo.Get(ctx, workerID, workDate)
	if err != nil {
		if errors.Is(err, whErrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Working hours", workerID+"/"+workDate)
		}
		return nil, apperrors.Persistence("working hours", "lookup", err)
	}

	return entry, nil
}

func (s *workingHoursService) ListByWorker(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
	if workerID == "" {
		return nil, apperrors.InvalidInput("Worker ID cannot be empty")
	}

	entries, err := s.repo.FindByWorker(ctx, workerID, fromDate, toDate)
	if err != nil {
		s.cfg.Log.Error("Failed to list working hours", "worker_id", workerID, "error", err)
		return nil, apperrors.Persistence("working hours", "list", err)
	}

	return entries, nil
}

func (s *workingHoursService) ListInRange(ctx context.Context, workerID, fromDate, toDate string) ([]*model.WorkingHours, error) {
	entries, err := s.repo.FindInRange(ctx, workerID, fromDate, toDate)
	if err != nil {
		s.cfg.Log.Error("Failed to list working hours in range",
			"worker_id", workerID,
			"from", fromDate,
			"to", toDate,
			"error", err,
		)
		return nil, apperrors.Persistence("working hours", "list", err)
	}

	return entries, nil
}

// normalize rewrites both times to HH:mm:ss so stored entries compare cleanly
// against requested windows.
func (s *workingHoursService) normalize(entry *model.WorkingHours) error {
	start, err := timeutil.Normalize(entry.StartTime)
	if err != nil {
		return apperrors.InvalidInput("Invalid start_time: " + err.Error())
	}
	end, err := timeutil.Normalize(entry.EndTime)
	if err != nil {
		return apperrors.InvalidInput("Invalid end_time: " + err.Error())
	}
	entry.StartTime = start
	entry.EndTime = end
	return nil
}
