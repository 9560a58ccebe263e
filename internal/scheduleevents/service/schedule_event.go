package service

import (
	"context"
	"errors"
	"sync"
	"time"

	eventserrors "carebook/internal/scheduleevents/errors"
	"carebook/internal/scheduleevents/repository"
	"carebook/internal/scheduleevents/validator"
	"carebook/pkg/cache"
	"carebook/pkg/config"
	apperrors "carebook/pkg/errors"
	"carebook/pkg/kafka"
	"carebook/pkg/model"
	"carebook/pkg/sanitizer"
)

type ScheduleEventService interface {
	Create(ctx context.Context, event *model.ScheduleEvent) error
	GetByID(ctx context.Context, id string) (*model.ScheduleEvent, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduleEvent, int64, error)
	Update(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error
	Delete(ctx context.Context, id string) error
	ListForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
	ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error)
}

type scheduleEventService struct {
	repo      repository.ScheduleEventRepository
	validator *validator.ScheduleEventValidator
	cache     *cache.AvailabilityCache
	producer  *kafka.Producer
	cfg       *config.Config
}

func NewScheduleEventService(
	repo repository.ScheduleEventRepository,
	validator *validator.ScheduleEventValidator,
	availabilityCache *cache.AvailabilityCache,
	producer *kafka.Producer,
	cfg *config.Config,
) ScheduleEventService {
	return &scheduleEventService{
		repo:      repo,
		validator: validator,
		cache:     availabilityCache,
		producer:  producer,
		cfg:       cfg,
	}
}

func (s *scheduleEventService) Create(ctx context.Context, event *model.ScheduleEvent) error {
	event.EventType = sanitizer.NormalizeLabel(event.EventType)
	event.Notes = sanitizer.NormalizeNotes(event.Notes)
	if err := s.validate(event); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create schedule event", "worker_id", event.WorkerID, "error", err)
		return apperrors.Persistence("schedule event", "create", err)
	}

	s.invalidateAvailability(ctx, event.WorkerID, event.StartTime, event.EndTime)
	s.publishEvent(ctx, model.EventScheduleEventCreated, event)

	s.cfg.Log.Info("Schedule event created successfully",
		"id", event.ID,
		"worker_id", event.WorkerID,
		"event_type", event.EventType,
		"start_time", event.StartTime,
	)
	return nil
}

func (s *scheduleEventService) GetByID(ctx context.Context, id string) (*model.ScheduleEvent, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Schedule event", id)
		}
		if errors.Is(err, eventserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid schedule event ID format")
		}
		return nil, apperrors.Persistence("schedule event", "lookup", err)
	}

	return event, nil
}

func (s *scheduleEventService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.ScheduleEvent, int64, error) {
	var count int64
	var events []*model.ScheduleEvent
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count schedule events", "error", errCount)
			errCount = apperrors.Persistence("schedule event", "count", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list schedule events", "error", errFind)
			errFind = apperrors.Persistence("schedule event", "list", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return events, count, nil
}

func (s *scheduleEventService) Update(ctx context.Context, id string, updates *model.ScheduleEventUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Schedule event ID cannot be empty")
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Schedule event update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	merged.EventType = sanitizer.NormalizeLabel(merged.EventType)
	merged.Notes = sanitizer.NormalizeNotes(merged.Notes)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Schedule event", id)
		}
		s.cfg.Log.Error("Failed to update schedule event", "id", id, "error", err)
		return apperrors.Persistence("schedule event", "update", err)
	}

	s.invalidateAvailability(ctx, existing.WorkerID, existing.StartTime, existing.EndTime)
	s.invalidateAvailability(ctx, merged.WorkerID, merged.StartTime, merged.EndTime)
	s.publishEvent(ctx, model.EventScheduleEventUpdated, merged)

	s.cfg.Log.Info("Schedule event updated successfully", "id", id)
	return nil
}

func (s *scheduleEventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Schedule event ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Schedule event", id)
		}
		return apperrors.Persistence("schedule event", "delete", err)
	}

	s.invalidateAvailability(ctx, existing.WorkerID, existing.StartTime, existing.EndTime)
	s.publishEvent(ctx, model.EventScheduleEventDeleted, existing)

	s.cfg.Log.Info("Schedule event deleted successfully", "id", id)
	return nil
}

// ListForWorker returns every event overlapping [start, end) regardless of
// type.
func (s *scheduleEventService) ListForWorker(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
	if workerID == "" {
		return nil, apperrors.InvalidInput("Worker ID is required")
	}

	events, err := s.repo.FindByWorker(ctx, workerID, &start, &end, config.DefaultPaginationLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list schedule events for worker", "worker_id", workerID, "error", err)
		return nil, apperrors.Persistence("schedule event", "list", err)
	}

	return events, nil
}

// ListInRange returns events overlapping [start, end). An empty workerID
// matches all workers.
func (s *scheduleEventService) ListInRange(ctx context.Context, workerID string, start, end time.Time) ([]*model.ScheduleEvent, error) {
	events, err := s.repo.FindByWorker(ctx, workerID, &start, &end, config.DefaultPaginationLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list schedule events in range", "worker_id", workerID, "error", err)
		return nil, apperrors.Persistence("schedule event", "list range", err)
	}

	return events, nil
}

// --- Helpers ---

func (s *scheduleEventService) mergeUpdates(existing *model.ScheduleEvent, updates *model.ScheduleEventUpdate) *model.ScheduleEvent {
	merged := *existing

	if updates.EventType != "" {
		merged.EventType = updates.EventType
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	return &merged
}

func (s *scheduleEventService) validate(event *model.ScheduleEvent) error {
	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Schedule event validation failed", "error", err)
		return apperrors.Validation("Schedule event validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *scheduleEventService) invalidateAvailability(ctx context.Context, workerID string, start, end time.Time) {
	s.cache.InvalidateRange(ctx, workerID, start, end, s.cfg.Location())
}

func (s *scheduleEventService) publishEvent(ctx context.Context, eventType string, event *model.ScheduleEvent) {
	if s.producer == nil {
		return
	}

	payload := model.ScheduleEventEvent{
		Type:       eventType,
		EventID:    event.ID,
		WorkerID:   event.WorkerID,
		EventType:  event.EventType,
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(event.WorkerID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("scheduler").
		Build()

	if err := s.producer.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish schedule event notification",
			"event_type", eventType,
			"event_id", event.ID,
			"error", err,
		)
	}
}
